// Package assistant answers free-form questions about a recommendation table.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/clearance-agent/pkg/clients/llm"
)

// SystemPrompt restricts the model to the supplied table.
const SystemPrompt = "You are an inventory clearance assistant. " +
	"You are given a CSV of products recommended for clearance. " +
	"Answer the user's question using only the data in the CSV. " +
	"If the answer is not in the data, say so."

const defaultTimeout = 60 * time.Second

// ErrEmptyQuestion is returned for blank questions; no request is sent.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Service wraps an llm.Client with the clearance prompt.
type Service struct {
	client  llm.Client
	timeout time.Duration
}

// NewService creates an assistant. A non-positive timeout uses the default.
func NewService(client llm.Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{client: client, timeout: timeout}
}

// Messages builds the conversation sent for question over table.
func Messages(question, table string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: fmt.Sprintf("CSV Data:\n%s\n\nQuestion: %s", table, question)},
	}
}

// Ask answers question using only the CSV table.
func (s *Service) Ask(ctx context.Context, question, table string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if s == nil || s.client == nil {
		return "", llm.ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.client.Complete(ctx, Messages(question, table), llm.Options{})
	if err != nil {
		return "", fmt.Errorf("ask assistant: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
