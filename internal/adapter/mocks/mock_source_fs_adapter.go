package mocks

import (
	"context"
	"os"

	"gest.dev/pkg/gest/internal/adapter"
	m "gest.dev/pkg/gest/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockSourceFSAdapter is a testify mock of the SourceFSAdapter interface.
type MockSourceFSAdapter struct {
	mock.Mock
}

type MockSourceFSAdapter_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSourceFSAdapter) EXPECT() *MockSourceFSAdapter_Expecter {
	return &MockSourceFSAdapter_Expecter{mock: &_m.Mock}
}

// Abs provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) Abs(path m.Path) (m.Path, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for Abs")
	}

	var r0 m.Path
	var r1 error
	if rf, ok := ret.Get(0).(func(m.Path) (m.Path, error)); ok {
		return rf(path)
	}
	if rf, ok := ret.Get(0).(func(m.Path) m.Path); ok {
		r0 = rf(path)
	} else {
		r0 = ret.Get(0).(m.Path)
	}

	if rf, ok := ret.Get(1).(func(m.Path) error); ok {
		r1 = rf(path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockSourceFSAdapter_Abs_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Abs'
type MockSourceFSAdapter_Abs_Call struct {
	*mock.Call
}

// Abs is a helper method to define mock.On call
//   - path m.Path
func (_e *MockSourceFSAdapter_Expecter) Abs(path interface{}) *MockSourceFSAdapter_Abs_Call {
	return &MockSourceFSAdapter_Abs_Call{Call: _e.mock.On("Abs", path)}
}

func (_c *MockSourceFSAdapter_Abs_Call) Run(run func(path m.Path)) *MockSourceFSAdapter_Abs_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_Abs_Call) Return(_a0 m.Path, _a1 error) *MockSourceFSAdapter_Abs_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_Abs_Call) RunAndReturn(run func(m.Path) (m.Path, error)) *MockSourceFSAdapter_Abs_Call {
	_c.Call.Return(run)
	return _c
}

// FileInfo provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for FileInfo")
	}

	var r0 os.FileInfo
	var r1 error
	if rf, ok := ret.Get(0).(func(m.Path) (os.FileInfo, error)); ok {
		return rf(path)
	}
	if rf, ok := ret.Get(0).(func(m.Path) os.FileInfo); ok {
		r0 = rf(path)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(os.FileInfo)
		}
	}

	if rf, ok := ret.Get(1).(func(m.Path) error); ok {
		r1 = rf(path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockSourceFSAdapter_FileInfo_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FileInfo'
type MockSourceFSAdapter_FileInfo_Call struct {
	*mock.Call
}

// FileInfo is a helper method to define mock.On call
//   - path m.Path
func (_e *MockSourceFSAdapter_Expecter) FileInfo(path interface{}) *MockSourceFSAdapter_FileInfo_Call {
	return &MockSourceFSAdapter_FileInfo_Call{Call: _e.mock.On("FileInfo", path)}
}

func (_c *MockSourceFSAdapter_FileInfo_Call) Run(run func(path m.Path)) *MockSourceFSAdapter_FileInfo_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_FileInfo_Call) Return(_a0 os.FileInfo, _a1 error) *MockSourceFSAdapter_FileInfo_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_FileInfo_Call) RunAndReturn(run func(m.Path) (os.FileInfo, error)) *MockSourceFSAdapter_FileInfo_Call {
	_c.Call.Return(run)
	return _c
}

// Glob provides a mock function with given fields: ctx, root, patterns
func (_m *MockSourceFSAdapter) Glob(ctx context.Context, root m.Path, patterns []string) ([]m.Path, error) {
	ret := _m.Called(ctx, root, patterns)

	if len(ret) == 0 {
		panic("no return value specified for Glob")
	}

	var r0 []m.Path
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, m.Path, []string) ([]m.Path, error)); ok {
		return rf(ctx, root, patterns)
	}
	if rf, ok := ret.Get(0).(func(context.Context, m.Path, []string) []m.Path); ok {
		r0 = rf(ctx, root, patterns)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]m.Path)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, m.Path, []string) error); ok {
		r1 = rf(ctx, root, patterns)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockSourceFSAdapter_Glob_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Glob'
type MockSourceFSAdapter_Glob_Call struct {
	*mock.Call
}

// Glob is a helper method to define mock.On call
//   - ctx context.Context
//   - root m.Path
//   - patterns []string
func (_e *MockSourceFSAdapter_Expecter) Glob(ctx interface{}, root interface{}, patterns interface{}) *MockSourceFSAdapter_Glob_Call {
	return &MockSourceFSAdapter_Glob_Call{Call: _e.mock.On("Glob", ctx, root, patterns)}
}

func (_c *MockSourceFSAdapter_Glob_Call) Run(run func(ctx context.Context, root m.Path, patterns []string)) *MockSourceFSAdapter_Glob_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.Path), args[2].([]string))
	})
	return _c
}

func (_c *MockSourceFSAdapter_Glob_Call) Return(_a0 []m.Path, _a1 error) *MockSourceFSAdapter_Glob_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_Glob_Call) RunAndReturn(run func(context.Context, m.Path, []string) ([]m.Path, error)) *MockSourceFSAdapter_Glob_Call {
	_c.Call.Return(run)
	return _c
}

// HashFile provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) HashFile(path m.Path) (string, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for HashFile")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(m.Path) (string, error)); ok {
		return rf(path)
	}
	if rf, ok := ret.Get(0).(func(m.Path) string); ok {
		r0 = rf(path)
	} else {
		r0 = ret.Get(0).(string)
	}

	if rf, ok := ret.Get(1).(func(m.Path) error); ok {
		r1 = rf(path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockSourceFSAdapter_HashFile_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'HashFile'
type MockSourceFSAdapter_HashFile_Call struct {
	*mock.Call
}

// HashFile is a helper method to define mock.On call
//   - path m.Path
func (_e *MockSourceFSAdapter_Expecter) HashFile(path interface{}) *MockSourceFSAdapter_HashFile_Call {
	return &MockSourceFSAdapter_HashFile_Call{Call: _e.mock.On("HashFile", path)}
}

func (_c *MockSourceFSAdapter_HashFile_Call) Run(run func(path m.Path)) *MockSourceFSAdapter_HashFile_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_HashFile_Call) Return(_a0 string, _a1 error) *MockSourceFSAdapter_HashFile_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_HashFile_Call) RunAndReturn(run func(m.Path) (string, error)) *MockSourceFSAdapter_HashFile_Call {
	_c.Call.Return(run)
	return _c
}

// JoinPath provides a mock function with given fields: elem
func (_m *MockSourceFSAdapter) JoinPath(elem ...string) m.Path {
	_va := make([]interface{}, len(elem))
	for _i := range elem {
		_va[_i] = elem[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)

	if len(ret) == 0 {
		panic("no return value specified for JoinPath")
	}

	var r0 m.Path
	if rf, ok := ret.Get(0).(func(...string) m.Path); ok {
		r0 = rf(elem...)
	} else {
		r0 = ret.Get(0).(m.Path)
	}

	return r0
}

// MockSourceFSAdapter_JoinPath_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'JoinPath'
type MockSourceFSAdapter_JoinPath_Call struct {
	*mock.Call
}

// JoinPath is a helper method to define mock.On call
//   - elem ...string
func (_e *MockSourceFSAdapter_Expecter) JoinPath(elem ...interface{}) *MockSourceFSAdapter_JoinPath_Call {
	return &MockSourceFSAdapter_JoinPath_Call{Call: _e.mock.On("JoinPath",
		append([]interface{}{}, elem...)...)}
}

func (_c *MockSourceFSAdapter_JoinPath_Call) Run(run func(elem ...string)) *MockSourceFSAdapter_JoinPath_Call {
	_c.Call.Run(func(args mock.Arguments) {
		variadicArgs := make([]string, len(args))
		for i, a := range args[0:] {
			if a != nil {
				variadicArgs[i] = a.(string)
			}
		}
		run(variadicArgs...)
	})
	return _c
}

func (_c *MockSourceFSAdapter_JoinPath_Call) Return(_a0 m.Path) *MockSourceFSAdapter_JoinPath_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockSourceFSAdapter_JoinPath_Call) RunAndReturn(run func(...string) m.Path) *MockSourceFSAdapter_JoinPath_Call {
	_c.Call.Return(run)
	return _c
}

// ReadFile provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for ReadFile")
	}

	var r0 []byte
	var r1 error
	if rf, ok := ret.Get(0).(func(m.Path) ([]byte, error)); ok {
		return rf(path)
	}
	if rf, ok := ret.Get(0).(func(m.Path) []byte); ok {
		r0 = rf(path)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	if rf, ok := ret.Get(1).(func(m.Path) error); ok {
		r1 = rf(path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockSourceFSAdapter_ReadFile_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ReadFile'
type MockSourceFSAdapter_ReadFile_Call struct {
	*mock.Call
}

// ReadFile is a helper method to define mock.On call
//   - path m.Path
func (_e *MockSourceFSAdapter_Expecter) ReadFile(path interface{}) *MockSourceFSAdapter_ReadFile_Call {
	return &MockSourceFSAdapter_ReadFile_Call{Call: _e.mock.On("ReadFile", path)}
}

func (_c *MockSourceFSAdapter_ReadFile_Call) Run(run func(path m.Path)) *MockSourceFSAdapter_ReadFile_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_ReadFile_Call) Return(_a0 []byte, _a1 error) *MockSourceFSAdapter_ReadFile_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_ReadFile_Call) RunAndReturn(run func(m.Path) ([]byte, error)) *MockSourceFSAdapter_ReadFile_Call {
	_c.Call.Return(run)
	return _c
}

// Walk provides a mock function with given fields: root, recursive, fn
func (_m *MockSourceFSAdapter) Walk(root m.Path, recursive bool, fn adapter.FilepathWalkFunc) error {
	ret := _m.Called(root, recursive, fn)

	if len(ret) == 0 {
		panic("no return value specified for Walk")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(m.Path, bool, adapter.FilepathWalkFunc) error); ok {
		r0 = rf(root, recursive, fn)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockSourceFSAdapter_Walk_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Walk'
type MockSourceFSAdapter_Walk_Call struct {
	*mock.Call
}

// Walk is a helper method to define mock.On call
//   - root m.Path
//   - recursive bool
//   - fn adapter.FilepathWalkFunc
func (_e *MockSourceFSAdapter_Expecter) Walk(root interface{}, recursive interface{}, fn interface{}) *MockSourceFSAdapter_Walk_Call {
	return &MockSourceFSAdapter_Walk_Call{Call: _e.mock.On("Walk", root, recursive, fn)}
}

func (_c *MockSourceFSAdapter_Walk_Call) Run(run func(root m.Path, recursive bool, fn adapter.FilepathWalkFunc)) *MockSourceFSAdapter_Walk_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path), args[1].(bool), args[2].(adapter.FilepathWalkFunc))
	})
	return _c
}

func (_c *MockSourceFSAdapter_Walk_Call) Return(_a0 error) *MockSourceFSAdapter_Walk_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockSourceFSAdapter_Walk_Call) RunAndReturn(run func(m.Path, bool, adapter.FilepathWalkFunc) error) *MockSourceFSAdapter_Walk_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockSourceFSAdapter creates a new instance of MockSourceFSAdapter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockSourceFSAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSourceFSAdapter {
	mock := &MockSourceFSAdapter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
