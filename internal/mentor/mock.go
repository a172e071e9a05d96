package mentor

import (
	"context"
	"sync"

	"github.com/sakif/roadmap-academy/internal/model"
)

// MockProvider is a deterministic Provider for tests. It returns canned
// replies in FIFO order and records every call it receives.
type MockProvider struct {
	mu sync.Mutex

	ChatReplies []string
	ChatErr     error
	ChatCalls   []ChatCall

	Ideas     []*model.ProjectIdea
	IdeaErr   error
	IdeaCalls []IdeaRequest
}

// ChatCall records the arguments of one Chat invocation.
type ChatCall struct {
	History      []model.ChatMessage
	ActiveModule *ModuleContext
	Progress     *ProgressSummary
}

func (m *MockProvider) Chat(_ context.Context, history []model.ChatMessage, activeModule *ModuleContext, progress *ProgressSummary) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, ChatCall{History: history, ActiveModule: activeModule, Progress: progress})

	if m.ChatErr != nil {
		return "", m.ChatErr
	}
	if len(m.ChatReplies) == 0 {
		return "", &ErrUnavailable{}
	}

	reply := m.ChatReplies[0]
	m.ChatReplies = m.ChatReplies[1:]
	return reply, nil
}

func (m *MockProvider) ProjectIdea(_ context.Context, req IdeaRequest) (*model.ProjectIdea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IdeaCalls = append(m.IdeaCalls, req)

	if m.IdeaErr != nil {
		return nil, m.IdeaErr
	}
	if len(m.Ideas) == 0 {
		return nil, &ErrUnavailable{}
	}

	idea := m.Ideas[0]
	m.Ideas = m.Ideas[1:]
	return idea, nil
}
