package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/life-engine/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc       func(ctx context.Context, modelName string) error
	GetChatResponseFunc func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Track calls for testing
	InitModelCalls       []string
	GetChatResponseCalls []GetChatResponseCall

	mu sync.Mutex // protects all fields above
}

type GetChatResponseCall struct {
	Messages []chat.ChatMessage
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}
	return nil
}

// GetChatResponse mocks response generation
func (m *MockLLMAPI) GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	m.GetChatResponseCalls = append(m.GetChatResponseCalls, GetChatResponseCall{Messages: messages})
	fn := m.GetChatResponseFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	return &chat.ChatResponse{Message: "{}"}, nil
}

// SetResponse sets up the mock to always answer with message
func (m *MockLLMAPI) SetResponse(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetChatResponseFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return &chat.ChatResponse{Message: message}, nil
	}
}

// SetGetChatResponseError sets up the mock to return an error on GetChatResponse
func (m *MockLLMAPI) SetGetChatResponseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetChatResponseFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = nil
	m.GetChatResponseCalls = nil
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []GetChatResponseCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	respCalls := make([]GetChatResponseCall, len(m.GetChatResponseCalls))
	copy(respCalls, m.GetChatResponseCalls)

	return initCalls, respCalls
}
