package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/handler"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/service"
)

func newTestRoadmapHandler(t *testing.T, users *fakeUserRepo, progress *fakeProgressRepo) (*handler.RoadmapHandler, *service.ProgressService) {
	t.Helper()
	cat := newTestCatalog(t)
	progressSvc := service.NewProgressService(progress, cat, newTestLogger())
	authSvc := service.NewAuthService(users, newTestTokens(t), auth.NewPasswordServiceForTest(4), newTestLogger())
	return handler.NewRoadmapHandler(cat, progressSvc, authSvc, newTestLogger()), progressSvc
}

// roadmapView mirrors the fields of the response the tests care about.
type roadmapView struct {
	ID       string `json:"id"`
	Claimed  bool   `json:"claimed"`
	Progress struct {
		Percent       int  `json:"percent"`
		FullyComplete bool `json:"fullyComplete"`
	} `json:"progress"`
}

func TestRoadmapHandler_Roadmap_Anonymous(t *testing.T) {
	h, _ := newTestRoadmapHandler(t, newFakeUserRepo(), newFakeProgressRepo())

	rr := httptest.NewRecorder()
	h.HandleRoadmap(rr, httptest.NewRequest(http.MethodGet, "/api/roadmap", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var views []roadmapView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "foundations", views[0].ID)
	assert.Zero(t, views[0].Progress.Percent)
	assert.False(t, views[0].Claimed)
}

func TestRoadmapHandler_Roadmap_SignedIn(t *testing.T) {
	users := newFakeUserRepo()
	h, progressSvc := newTestRoadmapHandler(t, users, newFakeProgressRepo())

	require.NoError(t, users.Create(context.Background(), &model.User{
		Username:      "alice",
		ClaimedChests: []string{"foundations"},
	}))
	require.NoError(t, progressSvc.ToggleTopic(context.Background(), "alice", "foundations", 0))

	wrapped, cookie := authenticated(t, h.HandleRoadmap)
	req := httptest.NewRequest(http.MethodGet, "/api/roadmap", nil)
	req.AddCookie(cookie)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var views []roadmapView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, 33, views[0].Progress.Percent)
	assert.True(t, views[0].Claimed)
}

func TestRoadmapHandler_Module(t *testing.T) {
	h, _ := newTestRoadmapHandler(t, newFakeUserRepo(), newFakeProgressRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/roadmap/foundations", nil)
	req.SetPathValue("id", "foundations")

	rr := httptest.NewRecorder()
	h.HandleModule(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var view roadmapView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, "foundations", view.ID)
	assert.Zero(t, view.Progress.Percent)
	assert.False(t, view.Progress.FullyComplete)
}

func TestRoadmapHandler_Module_NotFound(t *testing.T) {
	h, _ := newTestRoadmapHandler(t, newFakeUserRepo(), newFakeProgressRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/roadmap/atlantis", nil)
	req.SetPathValue("id", "atlantis")

	rr := httptest.NewRecorder()
	h.HandleModule(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoadmapHandler_Summary(t *testing.T) {
	users := newFakeUserRepo()
	progress := newFakeProgressRepo()
	h, progressSvc := newTestRoadmapHandler(t, users, progress)

	// 2 of 3 trackable items in the fixture catalog
	require.NoError(t, progressSvc.ToggleTopic(context.Background(), "alice", "foundations", 0))
	require.NoError(t, progressSvc.ToggleTopic(context.Background(), "alice", "foundations", 1))

	wrapped, cookie := authenticated(t, h.HandleSummary)
	req := httptest.NewRequest(http.MethodGet, "/api/progress/summary", nil)
	req.AddCookie(cookie)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OverallPercent int `json:"overallPercent"`
		Modules        []struct {
			ModuleID        string `json:"moduleId"`
			CompletedTopics int    `json:"completedTopics"`
			Percent         int    `json:"percent"`
		} `json:"modules"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 67, resp.OverallPercent)
	require.Len(t, resp.Modules, 1)
	assert.Equal(t, 2, resp.Modules[0].CompletedTopics)
	assert.Equal(t, 67, resp.Modules[0].Percent)
}
