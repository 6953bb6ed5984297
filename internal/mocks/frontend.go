// Package mocks contains hand-rolled gomock-style mocks for the
// capability interfaces in pkg/cursor, following the shape mockgen
// would generate for them.
package mocks

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	cursor "github.com/kdmitry/cclint/pkg/cursor"
)

// MockFrontend is a mock of the cursor.Frontend interface.
type MockFrontend struct {
	ctrl     *gomock.Controller
	recorder *MockFrontendMockRecorder
}

// MockFrontendMockRecorder is the mock recorder for MockFrontend.
type MockFrontendMockRecorder struct {
	mock *MockFrontend
}

// NewMockFrontend creates a new mock instance.
func NewMockFrontend(ctrl *gomock.Controller) *MockFrontend {
	mock := &MockFrontend{ctrl: ctrl}
	mock.recorder = &MockFrontendMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockFrontend) EXPECT() *MockFrontendMockRecorder {
	return m.recorder
}

// Parse mocks base method.
func (m *MockFrontend) Parse(sourcePath string, compileArgs []string) (cursor.TranslationUnit, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Parse", sourcePath, compileArgs)
	ret0, _ := ret[0].(cursor.TranslationUnit)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Parse indicates an expected call of Parse.
func (mr *MockFrontendMockRecorder) Parse(sourcePath, compileArgs any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Parse",
		reflect.TypeOf((*MockFrontend)(nil).Parse), sourcePath, compileArgs)
}

// MockTranslationUnit is a mock of the cursor.TranslationUnit interface.
type MockTranslationUnit struct {
	ctrl     *gomock.Controller
	recorder *MockTranslationUnitMockRecorder
}

// MockTranslationUnitMockRecorder is the mock recorder for MockTranslationUnit.
type MockTranslationUnitMockRecorder struct {
	mock *MockTranslationUnit
}

// NewMockTranslationUnit creates a new mock instance.
func NewMockTranslationUnit(ctrl *gomock.Controller) *MockTranslationUnit {
	mock := &MockTranslationUnit{ctrl: ctrl}
	mock.recorder = &MockTranslationUnitMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTranslationUnit) EXPECT() *MockTranslationUnitMockRecorder {
	return m.recorder
}

// Cursor mocks base method.
func (m *MockTranslationUnit) Cursor() cursor.Cursor {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Cursor")
	ret0, _ := ret[0].(cursor.Cursor)
	return ret0
}

// Cursor indicates an expected call of Cursor.
func (mr *MockTranslationUnitMockRecorder) Cursor() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Cursor",
		reflect.TypeOf((*MockTranslationUnit)(nil).Cursor))
}

// Includes mocks base method.
func (m *MockTranslationUnit) Includes() []string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Includes")
	ret0, _ := ret[0].([]string)
	return ret0
}

// Includes indicates an expected call of Includes.
func (mr *MockTranslationUnitMockRecorder) Includes() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Includes",
		reflect.TypeOf((*MockTranslationUnit)(nil).Includes))
}

// Dispose mocks base method.
func (m *MockTranslationUnit) Dispose() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Dispose")
}

// Dispose indicates an expected call of Dispose.
func (mr *MockTranslationUnitMockRecorder) Dispose() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dispose",
		reflect.TypeOf((*MockTranslationUnit)(nil).Dispose))
}

var (
	_ cursor.Frontend        = (*MockFrontend)(nil)
	_ cursor.TranslationUnit = (*MockTranslationUnit)(nil)
)
