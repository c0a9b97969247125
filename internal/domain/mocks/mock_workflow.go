package mocks

import (
	"context"

	"gest.dev/pkg/gest/internal/domain"
	m "gest.dev/pkg/gest/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockWorkflow is a testify mock of the Workflow interface.
type MockWorkflow struct {
	mock.Mock
}

type MockWorkflow_Expecter struct {
	mock *mock.Mock
}

func (_m *MockWorkflow) EXPECT() *MockWorkflow_Expecter {
	return &MockWorkflow_Expecter{mock: &_m.Mock}
}

// List provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	ret := _m.Called(ctx, args)

	if len(ret) == 0 {
		panic("no return value specified for List")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.ListArgs) error); ok {
		r0 = rf(ctx, args)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockWorkflow_List_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'List'
type MockWorkflow_List_Call struct {
	*mock.Call
}

// List is a helper method to define mock.On call
//   - ctx context.Context
//   - args domain.ListArgs
func (_e *MockWorkflow_Expecter) List(ctx interface{}, args interface{}) *MockWorkflow_List_Call {
	return &MockWorkflow_List_Call{Call: _e.mock.On("List", ctx, args)}
}

func (_c *MockWorkflow_List_Call) Run(run func(ctx context.Context, args domain.ListArgs)) *MockWorkflow_List_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.ListArgs))
	})
	return _c
}

func (_c *MockWorkflow_List_Call) Return(_a0 error) *MockWorkflow_List_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockWorkflow_List_Call) RunAndReturn(run func(context.Context, domain.ListArgs) error) *MockWorkflow_List_Call {
	_c.Call.Return(run)
	return _c
}

// Run provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) (m.RunSummary, error) {
	ret := _m.Called(ctx, args)

	if len(ret) == 0 {
		panic("no return value specified for Run")
	}

	var r0 m.RunSummary
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.RunArgs) (m.RunSummary, error)); ok {
		return rf(ctx, args)
	}
	if rf, ok := ret.Get(0).(func(context.Context, domain.RunArgs) m.RunSummary); ok {
		r0 = rf(ctx, args)
	} else {
		r0 = ret.Get(0).(m.RunSummary)
	}

	if rf, ok := ret.Get(1).(func(context.Context, domain.RunArgs) error); ok {
		r1 = rf(ctx, args)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockWorkflow_Run_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Run'
type MockWorkflow_Run_Call struct {
	*mock.Call
}

// Run is a helper method to define mock.On call
//   - ctx context.Context
//   - args domain.RunArgs
func (_e *MockWorkflow_Expecter) Run(ctx interface{}, args interface{}) *MockWorkflow_Run_Call {
	return &MockWorkflow_Run_Call{Call: _e.mock.On("Run", ctx, args)}
}

func (_c *MockWorkflow_Run_Call) Run(run func(ctx context.Context, args domain.RunArgs)) *MockWorkflow_Run_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.RunArgs))
	})
	return _c
}

func (_c *MockWorkflow_Run_Call) Return(_a0 m.RunSummary, _a1 error) *MockWorkflow_Run_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockWorkflow_Run_Call) RunAndReturn(run func(context.Context, domain.RunArgs) (m.RunSummary, error)) *MockWorkflow_Run_Call {
	_c.Call.Return(run)
	return _c
}

// View provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)

	if len(ret) == 0 {
		panic("no return value specified for View")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.ViewArgs) error); ok {
		r0 = rf(ctx, args)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockWorkflow_View_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'View'
type MockWorkflow_View_Call struct {
	*mock.Call
}

// View is a helper method to define mock.On call
//   - ctx context.Context
//   - args domain.ViewArgs
func (_e *MockWorkflow_Expecter) View(ctx interface{}, args interface{}) *MockWorkflow_View_Call {
	return &MockWorkflow_View_Call{Call: _e.mock.On("View", ctx, args)}
}

func (_c *MockWorkflow_View_Call) Run(run func(ctx context.Context, args domain.ViewArgs)) *MockWorkflow_View_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.ViewArgs))
	})
	return _c
}

func (_c *MockWorkflow_View_Call) Return(_a0 error) *MockWorkflow_View_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockWorkflow_View_Call) RunAndReturn(run func(context.Context, domain.ViewArgs) error) *MockWorkflow_View_Call {
	_c.Call.Return(run)
	return _c
}

// Watch provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Watch(ctx context.Context, args domain.RunArgs) error {
	ret := _m.Called(ctx, args)

	if len(ret) == 0 {
		panic("no return value specified for Watch")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.RunArgs) error); ok {
		r0 = rf(ctx, args)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockWorkflow_Watch_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Watch'
type MockWorkflow_Watch_Call struct {
	*mock.Call
}

// Watch is a helper method to define mock.On call
//   - ctx context.Context
//   - args domain.RunArgs
func (_e *MockWorkflow_Expecter) Watch(ctx interface{}, args interface{}) *MockWorkflow_Watch_Call {
	return &MockWorkflow_Watch_Call{Call: _e.mock.On("Watch", ctx, args)}
}

func (_c *MockWorkflow_Watch_Call) Run(run func(ctx context.Context, args domain.RunArgs)) *MockWorkflow_Watch_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.RunArgs))
	})
	return _c
}

func (_c *MockWorkflow_Watch_Call) Return(_a0 error) *MockWorkflow_Watch_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockWorkflow_Watch_Call) RunAndReturn(run func(context.Context, domain.RunArgs) error) *MockWorkflow_Watch_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockWorkflow creates a new instance of MockWorkflow. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mock := &MockWorkflow{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
