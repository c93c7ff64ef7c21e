package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// MockClient is a mock implementation of LLMClient for tests and the
// offline development mode.
type MockClient struct {
	mu      sync.Mutex
	scripts []string
	err     error
}

// NewMockClient creates a new mock generation client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// Enqueue queues a scripted reply; replies are consumed in order.
func (m *MockClient) Enqueue(replies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, replies...)
}

// Fail makes every subsequent call return err.
func (m *MockClient) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CreateChatCompletion returns the next scripted reply, or a generated
// one when nothing is queued.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var content string
	if len(m.scripts) > 0 {
		content = m.scripts[0]
		m.scripts = m.scripts[1:]
	} else {
		content = m.generateMockResponse(req)
	}

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index: 0,
				Message: &ChatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: &Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(content) / 4,
			TotalTokens:      m.estimateTokens(req) + len(content)/4,
		},
	}, nil
}

// mockIDRe mirrors the candidate tag syntax so the offline mode can
// echo valid recommendation ids without importing the convo package.
var mockIDRe = regexp.MustCompile(`\[FOOD_ID:([^\]\s]+)\]`)

func (m *MockClient) generateMockResponse(req *ChatCompletionRequest) string {
	prompt := ""
	if len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
	}

	ids := []string{}
	for _, match := range mockIDRe.FindAllStringSubmatch(prompt, -1) {
		ids = append(ids, match[1])
		if len(ids) == 2 {
			break
		}
	}
	if len(ids) == 0 {
		return "I couldn't find a close match on the menu right now, but tell me a bit more about what you're craving and I'll keep looking."
	}
	return fmt.Sprintf("Here are a couple of dishes I think you'll enjoy. [FOOD_IDS:%s]", strings.Join(ids, ","))
}

func (m *MockClient) estimateTokens(req *ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}
