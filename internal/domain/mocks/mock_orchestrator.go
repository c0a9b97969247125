package mocks

import (
	"context"

	m "gest.dev/pkg/gest/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockOrchestrator is a testify mock of the Orchestrator interface.
type MockOrchestrator struct {
	mock.Mock
}

type MockOrchestrator_Expecter struct {
	mock *mock.Mock
}

func (_m *MockOrchestrator) EXPECT() *MockOrchestrator_Expecter {
	return &MockOrchestrator_Expecter{mock: &_m.Mock}
}

// Coverage provides a mock function with given fields: 
func (_m *MockOrchestrator) Coverage() []m.FileCoverage {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Coverage")
	}

	var r0 []m.FileCoverage
	if rf, ok := ret.Get(0).(func() []m.FileCoverage); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]m.FileCoverage)
		}
	}

	return r0
}

// MockOrchestrator_Coverage_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Coverage'
type MockOrchestrator_Coverage_Call struct {
	*mock.Call
}

// Coverage is a helper method to define mock.On call
func (_e *MockOrchestrator_Expecter) Coverage() *MockOrchestrator_Coverage_Call {
	return &MockOrchestrator_Coverage_Call{Call: _e.mock.On("Coverage")}
}

func (_c *MockOrchestrator_Coverage_Call) Run(run func()) *MockOrchestrator_Coverage_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockOrchestrator_Coverage_Call) Return(_a0 []m.FileCoverage) *MockOrchestrator_Coverage_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOrchestrator_Coverage_Call) RunAndReturn(run func() []m.FileCoverage) *MockOrchestrator_Coverage_Call {
	_c.Call.Return(run)
	return _c
}

// RunSuite provides a mock function with given fields: ctx, file
func (_m *MockOrchestrator) RunSuite(ctx context.Context, file m.Path) m.SuiteResult {
	ret := _m.Called(ctx, file)

	if len(ret) == 0 {
		panic("no return value specified for RunSuite")
	}

	var r0 m.SuiteResult
	if rf, ok := ret.Get(0).(func(context.Context, m.Path) m.SuiteResult); ok {
		r0 = rf(ctx, file)
	} else {
		r0 = ret.Get(0).(m.SuiteResult)
	}

	return r0
}

// MockOrchestrator_RunSuite_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'RunSuite'
type MockOrchestrator_RunSuite_Call struct {
	*mock.Call
}

// RunSuite is a helper method to define mock.On call
//   - ctx context.Context
//   - file m.Path
func (_e *MockOrchestrator_Expecter) RunSuite(ctx interface{}, file interface{}) *MockOrchestrator_RunSuite_Call {
	return &MockOrchestrator_RunSuite_Call{Call: _e.mock.On("RunSuite", ctx, file)}
}

func (_c *MockOrchestrator_RunSuite_Call) Run(run func(ctx context.Context, file m.Path)) *MockOrchestrator_RunSuite_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.Path))
	})
	return _c
}

func (_c *MockOrchestrator_RunSuite_Call) Return(_a0 m.SuiteResult) *MockOrchestrator_RunSuite_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOrchestrator_RunSuite_Call) RunAndReturn(run func(context.Context, m.Path) m.SuiteResult) *MockOrchestrator_RunSuite_Call {
	_c.Call.Return(run)
	return _c
}

// Summary provides a mock function with given fields: 
func (_m *MockOrchestrator) Summary() m.RunSummary {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Summary")
	}

	var r0 m.RunSummary
	if rf, ok := ret.Get(0).(func() m.RunSummary); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(m.RunSummary)
	}

	return r0
}

// MockOrchestrator_Summary_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Summary'
type MockOrchestrator_Summary_Call struct {
	*mock.Call
}

// Summary is a helper method to define mock.On call
func (_e *MockOrchestrator_Expecter) Summary() *MockOrchestrator_Summary_Call {
	return &MockOrchestrator_Summary_Call{Call: _e.mock.On("Summary")}
}

func (_c *MockOrchestrator_Summary_Call) Run(run func()) *MockOrchestrator_Summary_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockOrchestrator_Summary_Call) Return(_a0 m.RunSummary) *MockOrchestrator_Summary_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOrchestrator_Summary_Call) RunAndReturn(run func() m.RunSummary) *MockOrchestrator_Summary_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockOrchestrator creates a new instance of MockOrchestrator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockOrchestrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrchestrator {
	mock := &MockOrchestrator{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
