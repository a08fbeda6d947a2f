package network

import "net/http"

type MockHttp struct {
	GetFunc func(req *http.Request) ([]byte, error)
	DoFunc  func(req *http.Request) (int, []byte, error)
}

func (m *MockHttp) Get(req *http.Request) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(req)
	}

	return nil, nil
}

func (m *MockHttp) Do(req *http.Request) (int, []byte, error) {
	if m.DoFunc != nil {
		return m.DoFunc(req)
	}

	return http.StatusOK, nil, nil
}
