package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"speite/internal/app/api/provider"
)

// MockEngine is a testify mock of provider.Engine. Info is not mocked; it
// reports EngineName, or "mock" when empty.
type MockEngine struct {
	mock.Mock
	EngineName string
}

func (m *MockEngine) Load(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockEngine) Transcribe(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*provider.Response)
	return resp, args.Error(1)
}

func (m *MockEngine) Info() provider.EngineInfo {
	name := m.EngineName
	if name == "" {
		name = "mock"
	}
	return provider.EngineInfo{Name: name, Type: provider.EngineTypeLocal}
}

func (m *MockEngine) Close() error {
	return m.Called().Error(0)
}
