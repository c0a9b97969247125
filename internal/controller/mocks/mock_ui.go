package mocks

import (
	"context"

	"gest.dev/pkg/gest/internal/controller"
	m "gest.dev/pkg/gest/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockUI is a testify mock of the UI interface.
type MockUI struct {
	mock.Mock
}

type MockUI_Expecter struct {
	mock *mock.Mock
}

func (_m *MockUI) EXPECT() *MockUI_Expecter {
	return &MockUI_Expecter{mock: &_m.Mock}
}

// Close provides a mock function with given fields: ctx
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// MockUI_Close_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Close'
type MockUI_Close_Call struct {
	*mock.Call
}

// Close is a helper method to define mock.On call
//   - ctx context.Context
func (_e *MockUI_Expecter) Close(ctx interface{}) *MockUI_Close_Call {
	return &MockUI_Close_Call{Call: _e.mock.On("Close", ctx)}
}

func (_c *MockUI_Close_Call) Run(run func(ctx context.Context)) *MockUI_Close_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})
	return _c
}

func (_c *MockUI_Close_Call) Return() *MockUI_Close_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_Close_Call) RunAndReturn(run func(context.Context)) *MockUI_Close_Call {
	_c.Run(run)
	return _c
}

// DisplayCoverage provides a mock function with given fields: ctx, coverage
func (_m *MockUI) DisplayCoverage(ctx context.Context, coverage []m.FileCoverage) {
	_m.Called(ctx, coverage)
}

// MockUI_DisplayCoverage_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'DisplayCoverage'
type MockUI_DisplayCoverage_Call struct {
	*mock.Call
}

// DisplayCoverage is a helper method to define mock.On call
//   - ctx context.Context
//   - coverage []m.FileCoverage
func (_e *MockUI_Expecter) DisplayCoverage(ctx interface{}, coverage interface{}) *MockUI_DisplayCoverage_Call {
	return &MockUI_DisplayCoverage_Call{Call: _e.mock.On("DisplayCoverage", ctx, coverage)}
}

func (_c *MockUI_DisplayCoverage_Call) Run(run func(ctx context.Context, coverage []m.FileCoverage)) *MockUI_DisplayCoverage_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].([]m.FileCoverage))
	})
	return _c
}

func (_c *MockUI_DisplayCoverage_Call) Return() *MockUI_DisplayCoverage_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_DisplayCoverage_Call) RunAndReturn(run func(context.Context, []m.FileCoverage)) *MockUI_DisplayCoverage_Call {
	_c.Run(run)
	return _c
}

// DisplayError provides a mock function with given fields: ctx, err
func (_m *MockUI) DisplayError(ctx context.Context, err error) {
	_m.Called(ctx, err)
}

// MockUI_DisplayError_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'DisplayError'
type MockUI_DisplayError_Call struct {
	*mock.Call
}

// DisplayError is a helper method to define mock.On call
//   - ctx context.Context
//   - err error
func (_e *MockUI_Expecter) DisplayError(ctx interface{}, err interface{}) *MockUI_DisplayError_Call {
	return &MockUI_DisplayError_Call{Call: _e.mock.On("DisplayError", ctx, err)}
}

func (_c *MockUI_DisplayError_Call) Run(run func(ctx context.Context, err error)) *MockUI_DisplayError_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(error))
	})
	return _c
}

func (_c *MockUI_DisplayError_Call) Return() *MockUI_DisplayError_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_DisplayError_Call) RunAndReturn(run func(context.Context, error)) *MockUI_DisplayError_Call {
	_c.Run(run)
	return _c
}

// DisplayRunStart provides a mock function with given fields: ctx, files
func (_m *MockUI) DisplayRunStart(ctx context.Context, files []m.Path) {
	_m.Called(ctx, files)
}

// MockUI_DisplayRunStart_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'DisplayRunStart'
type MockUI_DisplayRunStart_Call struct {
	*mock.Call
}

// DisplayRunStart is a helper method to define mock.On call
//   - ctx context.Context
//   - files []m.Path
func (_e *MockUI_Expecter) DisplayRunStart(ctx interface{}, files interface{}) *MockUI_DisplayRunStart_Call {
	return &MockUI_DisplayRunStart_Call{Call: _e.mock.On("DisplayRunStart", ctx, files)}
}

func (_c *MockUI_DisplayRunStart_Call) Run(run func(ctx context.Context, files []m.Path)) *MockUI_DisplayRunStart_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].([]m.Path))
	})
	return _c
}

func (_c *MockUI_DisplayRunStart_Call) Return() *MockUI_DisplayRunStart_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_DisplayRunStart_Call) RunAndReturn(run func(context.Context, []m.Path)) *MockUI_DisplayRunStart_Call {
	_c.Run(run)
	return _c
}

// DisplaySuiteResult provides a mock function with given fields: ctx, result
func (_m *MockUI) DisplaySuiteResult(ctx context.Context, result m.SuiteResult) {
	_m.Called(ctx, result)
}

// MockUI_DisplaySuiteResult_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'DisplaySuiteResult'
type MockUI_DisplaySuiteResult_Call struct {
	*mock.Call
}

// DisplaySuiteResult is a helper method to define mock.On call
//   - ctx context.Context
//   - result m.SuiteResult
func (_e *MockUI_Expecter) DisplaySuiteResult(ctx interface{}, result interface{}) *MockUI_DisplaySuiteResult_Call {
	return &MockUI_DisplaySuiteResult_Call{Call: _e.mock.On("DisplaySuiteResult", ctx, result)}
}

func (_c *MockUI_DisplaySuiteResult_Call) Run(run func(ctx context.Context, result m.SuiteResult)) *MockUI_DisplaySuiteResult_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.SuiteResult))
	})
	return _c
}

func (_c *MockUI_DisplaySuiteResult_Call) Return() *MockUI_DisplaySuiteResult_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_DisplaySuiteResult_Call) RunAndReturn(run func(context.Context, m.SuiteResult)) *MockUI_DisplaySuiteResult_Call {
	_c.Run(run)
	return _c
}

// DisplaySummary provides a mock function with given fields: ctx, summary
func (_m *MockUI) DisplaySummary(ctx context.Context, summary m.RunSummary) {
	_m.Called(ctx, summary)
}

// MockUI_DisplaySummary_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'DisplaySummary'
type MockUI_DisplaySummary_Call struct {
	*mock.Call
}

// DisplaySummary is a helper method to define mock.On call
//   - ctx context.Context
//   - summary m.RunSummary
func (_e *MockUI_Expecter) DisplaySummary(ctx interface{}, summary interface{}) *MockUI_DisplaySummary_Call {
	return &MockUI_DisplaySummary_Call{Call: _e.mock.On("DisplaySummary", ctx, summary)}
}

func (_c *MockUI_DisplaySummary_Call) Run(run func(ctx context.Context, summary m.RunSummary)) *MockUI_DisplaySummary_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.RunSummary))
	})
	return _c
}

func (_c *MockUI_DisplaySummary_Call) Return() *MockUI_DisplaySummary_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_DisplaySummary_Call) RunAndReturn(run func(context.Context, m.RunSummary)) *MockUI_DisplaySummary_Call {
	_c.Run(run)
	return _c
}

// DisplayTestFiles provides a mock function with given fields: ctx, files
func (_m *MockUI) DisplayTestFiles(ctx context.Context, files []m.Path) {
	_m.Called(ctx, files)
}

// MockUI_DisplayTestFiles_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'DisplayTestFiles'
type MockUI_DisplayTestFiles_Call struct {
	*mock.Call
}

// DisplayTestFiles is a helper method to define mock.On call
//   - ctx context.Context
//   - files []m.Path
func (_e *MockUI_Expecter) DisplayTestFiles(ctx interface{}, files interface{}) *MockUI_DisplayTestFiles_Call {
	return &MockUI_DisplayTestFiles_Call{Call: _e.mock.On("DisplayTestFiles", ctx, files)}
}

func (_c *MockUI_DisplayTestFiles_Call) Run(run func(ctx context.Context, files []m.Path)) *MockUI_DisplayTestFiles_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].([]m.Path))
	})
	return _c
}

func (_c *MockUI_DisplayTestFiles_Call) Return() *MockUI_DisplayTestFiles_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_DisplayTestFiles_Call) RunAndReturn(run func(context.Context, []m.Path)) *MockUI_DisplayTestFiles_Call {
	_c.Run(run)
	return _c
}

// Start provides a mock function with given fields: ctx, options
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	_va := make([]interface{}, len(options))
	for _i := range options {
		_va[_i] = options[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, ctx)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)

	if len(ret) == 0 {
		panic("no return value specified for Start")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, ...controller.StartOption) error); ok {
		r0 = rf(ctx, options...)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockUI_Start_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Start'
type MockUI_Start_Call struct {
	*mock.Call
}

// Start is a helper method to define mock.On call
//   - ctx context.Context
//   - options ...controller.StartOption
func (_e *MockUI_Expecter) Start(ctx interface{}, options ...interface{}) *MockUI_Start_Call {
	return &MockUI_Start_Call{Call: _e.mock.On("Start",
		append([]interface{}{ctx}, options...)...)}
}

func (_c *MockUI_Start_Call) Run(run func(ctx context.Context, options ...controller.StartOption)) *MockUI_Start_Call {
	_c.Call.Run(func(args mock.Arguments) {
		variadicArgs := make([]controller.StartOption, len(args)-1)
		for i, a := range args[1:] {
			if a != nil {
				variadicArgs[i] = a.(controller.StartOption)
			}
		}
		run(args[0].(context.Context), variadicArgs...)
	})
	return _c
}

func (_c *MockUI_Start_Call) Return(_a0 error) *MockUI_Start_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockUI_Start_Call) RunAndReturn(run func(context.Context, ...controller.StartOption) error) *MockUI_Start_Call {
	_c.Call.Return(run)
	return _c
}

// Wait provides a mock function with given fields: ctx
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// MockUI_Wait_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Wait'
type MockUI_Wait_Call struct {
	*mock.Call
}

// Wait is a helper method to define mock.On call
//   - ctx context.Context
func (_e *MockUI_Expecter) Wait(ctx interface{}) *MockUI_Wait_Call {
	return &MockUI_Wait_Call{Call: _e.mock.On("Wait", ctx)}
}

func (_c *MockUI_Wait_Call) Run(run func(ctx context.Context)) *MockUI_Wait_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})
	return _c
}

func (_c *MockUI_Wait_Call) Return() *MockUI_Wait_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockUI_Wait_Call) RunAndReturn(run func(context.Context)) *MockUI_Wait_Call {
	_c.Run(run)
	return _c
}

// NewMockUI creates a new instance of MockUI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mock := &MockUI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
