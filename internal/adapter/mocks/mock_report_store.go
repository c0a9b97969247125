package mocks

import (
	m "gest.dev/pkg/gest/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockReportStore is a testify mock of the ReportStore interface.
type MockReportStore struct {
	mock.Mock
}

type MockReportStore_Expecter struct {
	mock *mock.Mock
}

func (_m *MockReportStore) EXPECT() *MockReportStore_Expecter {
	return &MockReportStore_Expecter{mock: &_m.Mock}
}

// LoadReport provides a mock function with given fields: path
func (_m *MockReportStore) LoadReport(path m.Path) (m.RunReport, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for LoadReport")
	}

	var r0 m.RunReport
	var r1 error
	if rf, ok := ret.Get(0).(func(m.Path) (m.RunReport, error)); ok {
		return rf(path)
	}
	if rf, ok := ret.Get(0).(func(m.Path) m.RunReport); ok {
		r0 = rf(path)
	} else {
		r0 = ret.Get(0).(m.RunReport)
	}

	if rf, ok := ret.Get(1).(func(m.Path) error); ok {
		r1 = rf(path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockReportStore_LoadReport_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'LoadReport'
type MockReportStore_LoadReport_Call struct {
	*mock.Call
}

// LoadReport is a helper method to define mock.On call
//   - path m.Path
func (_e *MockReportStore_Expecter) LoadReport(path interface{}) *MockReportStore_LoadReport_Call {
	return &MockReportStore_LoadReport_Call{Call: _e.mock.On("LoadReport", path)}
}

func (_c *MockReportStore_LoadReport_Call) Run(run func(path m.Path)) *MockReportStore_LoadReport_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path))
	})
	return _c
}

func (_c *MockReportStore_LoadReport_Call) Return(_a0 m.RunReport, _a1 error) *MockReportStore_LoadReport_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockReportStore_LoadReport_Call) RunAndReturn(run func(m.Path) (m.RunReport, error)) *MockReportStore_LoadReport_Call {
	_c.Call.Return(run)
	return _c
}

// SaveReport provides a mock function with given fields: path, report
func (_m *MockReportStore) SaveReport(path m.Path, report m.RunReport) error {
	ret := _m.Called(path, report)

	if len(ret) == 0 {
		panic("no return value specified for SaveReport")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(m.Path, m.RunReport) error); ok {
		r0 = rf(path, report)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockReportStore_SaveReport_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'SaveReport'
type MockReportStore_SaveReport_Call struct {
	*mock.Call
}

// SaveReport is a helper method to define mock.On call
//   - path m.Path
//   - report m.RunReport
func (_e *MockReportStore_Expecter) SaveReport(path interface{}, report interface{}) *MockReportStore_SaveReport_Call {
	return &MockReportStore_SaveReport_Call{Call: _e.mock.On("SaveReport", path, report)}
}

func (_c *MockReportStore_SaveReport_Call) Run(run func(path m.Path, report m.RunReport)) *MockReportStore_SaveReport_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(m.Path), args[1].(m.RunReport))
	})
	return _c
}

func (_c *MockReportStore_SaveReport_Call) Return(_a0 error) *MockReportStore_SaveReport_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockReportStore_SaveReport_Call) RunAndReturn(run func(m.Path, m.RunReport) error) *MockReportStore_SaveReport_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockReportStore creates a new instance of MockReportStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	mock := &MockReportStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
