package services

import (
	"context"

	"github.com/jwebster45206/life-engine/pkg/chat"
)

// LLMService defines the interface for interacting with a text-generation API
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// GetChatResponse sends a conversation and returns the model's reply
	GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
