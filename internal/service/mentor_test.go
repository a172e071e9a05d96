package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/mentor"
	"github.com/sakif/roadmap-academy/internal/model"
)

func newTestMentorService(t *testing.T, provider *mentor.MockProvider, users *fakeUserRepo, progress *fakeProgressRepo) *MentorService {
	t.Helper()
	cat := newTestCatalog(t)
	progressSvc := NewProgressService(progress, cat, newTestLogger())
	rewardSvc := NewRewardService(users, progressSvc, cat, newTestLogger())
	return NewMentorService(provider, users, progressSvc, rewardSvc, cat, newTestLogger())
}

func userMessage(content string) []model.ChatMessage {
	return []model.ChatMessage{{Role: model.RoleUser, Content: content}}
}

// =========================================================================
// CHAT TESTS
// =========================================================================

func TestChat(t *testing.T) {
	provider := &mentor.MockProvider{ChatReplies: []string{"Keep going, you're doing great."}}
	svc := newTestMentorService(t, provider, newFakeUserRepo(), newFakeProgressRepo())

	reply, err := svc.Chat(context.Background(), "", userMessage("How do I learn CSS?"), "")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Keep going, you're doing great." {
		t.Errorf("reply = %q", reply)
	}

	if len(provider.ChatCalls) != 1 {
		t.Fatalf("provider received %d calls, want 1", len(provider.ChatCalls))
	}
	call := provider.ChatCalls[0]
	if call.ActiveModule != nil {
		t.Error("ActiveModule set without an active module id")
	}
	if call.Progress != nil {
		t.Error("Progress set for an anonymous chat")
	}
}

func TestChat_EmptyHistory(t *testing.T) {
	svc := newTestMentorService(t, &mentor.MockProvider{}, newFakeUserRepo(), newFakeProgressRepo())

	_, err := svc.Chat(context.Background(), "", nil, "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Chat() error = %v, want ErrValidation", err)
	}
}

func TestChat_ActiveModuleContext(t *testing.T) {
	provider := &mentor.MockProvider{ChatReplies: []string{"ok"}}
	svc := newTestMentorService(t, provider, newFakeUserRepo(), newFakeProgressRepo())

	if _, err := svc.Chat(context.Background(), "", userMessage("hi"), "foundations"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	call := provider.ChatCalls[0]
	if call.ActiveModule == nil {
		t.Fatal("ActiveModule not set")
	}
	if call.ActiveModule.Title != "Foundations" {
		t.Errorf("ActiveModule.Title = %q, want %q", call.ActiveModule.Title, "Foundations")
	}
}

// An unknown active module id is not an error — the mentor just gets no
// module context.
func TestChat_UnknownActiveModule(t *testing.T) {
	provider := &mentor.MockProvider{ChatReplies: []string{"ok"}}
	svc := newTestMentorService(t, provider, newFakeUserRepo(), newFakeProgressRepo())

	if _, err := svc.Chat(context.Background(), "", userMessage("hi"), "deleted-module"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if provider.ChatCalls[0].ActiveModule != nil {
		t.Error("ActiveModule set for an unknown module id")
	}
}

func TestChat_ProgressContextForSignedInUser(t *testing.T) {
	provider := &mentor.MockProvider{ChatReplies: []string{"ok"}}
	users := newFakeUserRepo()
	progress := newFakeProgressRepo()
	svc := newTestMentorService(t, provider, users, progress)
	ctx := context.Background()

	registerTestUser(t, users, "alice")
	completeModule(t, svc.progress, "alice", "foundations", 5, 1)
	if _, err := svc.reward.ClaimChest(ctx, "alice", "foundations"); err != nil {
		t.Fatalf("ClaimChest(): %v", err)
	}

	if _, err := svc.Chat(ctx, "alice", userMessage("what next?"), ""); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	call := provider.ChatCalls[0]
	if call.Progress == nil {
		t.Fatal("Progress not set for a signed-in user")
	}
	// foundations is 6 of 10 trackable items
	if call.Progress.OverallPercent != 60 {
		t.Errorf("OverallPercent = %d, want 60", call.Progress.OverallPercent)
	}
	if len(call.Progress.CompletedModuleTitles) != 1 || call.Progress.CompletedModuleTitles[0] != "Foundations" {
		t.Errorf("CompletedModuleTitles = %v, want [Foundations]", call.Progress.CompletedModuleTitles)
	}
}

// Progress context is advisory: if loading it fails, the chat proceeds
// without it rather than failing.
func TestChat_ProgressFailureDoesNotBlockChat(t *testing.T) {
	provider := &mentor.MockProvider{ChatReplies: []string{"still here"}}
	users := newFakeUserRepo()
	users.getErr = errors.New("db down")
	svc := newTestMentorService(t, provider, users, newFakeProgressRepo())

	reply, err := svc.Chat(context.Background(), "alice", userMessage("hi"), "")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "still here" {
		t.Errorf("reply = %q", reply)
	}
	if provider.ChatCalls[0].Progress != nil {
		t.Error("Progress set despite the load failure")
	}
}

// Provider errors pass through untouched — the HTTP handler decides what
// the learner sees.
func TestChat_ProviderErrorPassesThrough(t *testing.T) {
	provider := &mentor.MockProvider{ChatErr: &mentor.ErrUnavailable{Err: errors.New("quota")}}
	svc := newTestMentorService(t, provider, newFakeUserRepo(), newFakeProgressRepo())

	_, err := svc.Chat(context.Background(), "", userMessage("hi"), "")
	var unavailable *mentor.ErrUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("Chat() error = %v, want *mentor.ErrUnavailable", err)
	}
}

// =========================================================================
// GENERATE IDEA TESTS
// =========================================================================

func TestGenerateIdea(t *testing.T) {
	provider := &mentor.MockProvider{
		Ideas: []*model.ProjectIdea{{
			Title:       "Recipe Finder",
			Description: "A searchable recipe site.",
			Features:    []string{"search", "favourites", "tags"},
		}},
	}
	svc := newTestMentorService(t, provider, newFakeUserRepo(), newFakeProgressRepo())

	idea, err := svc.GenerateIdea(context.Background(), "foundations")
	if err != nil {
		t.Fatalf("GenerateIdea() error = %v", err)
	}
	if idea.Title != "Recipe Finder" {
		t.Errorf("Title = %q", idea.Title)
	}

	if len(provider.IdeaCalls) != 1 {
		t.Fatalf("provider received %d calls, want 1", len(provider.IdeaCalls))
	}
	req := provider.IdeaCalls[0]
	if req.ModuleTitle != "Foundations" {
		t.Errorf("ModuleTitle = %q, want %q", req.ModuleTitle, "Foundations")
	}
	if req.Difficulty != model.DifficultyBeginner {
		t.Errorf("Difficulty = %q, want Beginner", req.Difficulty)
	}
	if len(req.Topics) != 5 {
		t.Errorf("len(Topics) = %d, want 5", len(req.Topics))
	}
}

func TestGenerateIdea_UnknownModule(t *testing.T) {
	svc := newTestMentorService(t, &mentor.MockProvider{}, newFakeUserRepo(), newFakeProgressRepo())

	_, err := svc.GenerateIdea(context.Background(), "no-such-module")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GenerateIdea() error = %v, want ErrNotFound", err)
	}
}

func TestGenerateIdea_ProviderErrorBecomesUpstream(t *testing.T) {
	provider := &mentor.MockProvider{IdeaErr: &mentor.ErrUnavailable{Err: errors.New("timeout")}}
	svc := newTestMentorService(t, provider, newFakeUserRepo(), newFakeProgressRepo())

	_, err := svc.GenerateIdea(context.Background(), "foundations")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("GenerateIdea() error = %v, want ErrUpstream", err)
	}
}
