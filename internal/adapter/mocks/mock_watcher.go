package mocks

import (
	"context"

	m "gest.dev/pkg/gest/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockWatcher is a testify mock of the Watcher interface.
type MockWatcher struct {
	mock.Mock
}

type MockWatcher_Expecter struct {
	mock *mock.Mock
}

func (_m *MockWatcher) EXPECT() *MockWatcher_Expecter {
	return &MockWatcher_Expecter{mock: &_m.Mock}
}

// Watch provides a mock function with given fields: ctx, roots
func (_m *MockWatcher) Watch(ctx context.Context, roots []m.Path) (<-chan struct{}, <-chan error, error) {
	ret := _m.Called(ctx, roots)

	if len(ret) == 0 {
		panic("no return value specified for Watch")
	}

	var r0 <-chan struct{}
	var r1 <-chan error
	var r2 error
	if rf, ok := ret.Get(0).(func(context.Context, []m.Path) (<-chan struct{}, <-chan error, error)); ok {
		return rf(ctx, roots)
	}
	if rf, ok := ret.Get(0).(func(context.Context, []m.Path) <-chan struct{}); ok {
		r0 = rf(ctx, roots)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(<-chan struct{})
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, []m.Path) <-chan error); ok {
		r1 = rf(ctx, roots)
	} else {
		if ret.Get(1) != nil {
			r1 = ret.Get(1).(<-chan error)
		}
	}

	if rf, ok := ret.Get(2).(func(context.Context, []m.Path) error); ok {
		r2 = rf(ctx, roots)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// MockWatcher_Watch_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Watch'
type MockWatcher_Watch_Call struct {
	*mock.Call
}

// Watch is a helper method to define mock.On call
//   - ctx context.Context
//   - roots []m.Path
func (_e *MockWatcher_Expecter) Watch(ctx interface{}, roots interface{}) *MockWatcher_Watch_Call {
	return &MockWatcher_Watch_Call{Call: _e.mock.On("Watch", ctx, roots)}
}

func (_c *MockWatcher_Watch_Call) Run(run func(ctx context.Context, roots []m.Path)) *MockWatcher_Watch_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].([]m.Path))
	})
	return _c
}

func (_c *MockWatcher_Watch_Call) Return(_a0 <-chan struct{}, _a1 <-chan error, _a2 error) *MockWatcher_Watch_Call {
	_c.Call.Return(_a0, _a1, _a2)
	return _c
}

func (_c *MockWatcher_Watch_Call) RunAndReturn(run func(context.Context, []m.Path) (<-chan struct{}, <-chan error, error)) *MockWatcher_Watch_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockWatcher creates a new instance of MockWatcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockWatcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWatcher {
	mock := &MockWatcher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
