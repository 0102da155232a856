package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/go-fin-novel-kit/internal/pipeline"
	"github.com/shouni/go-fin-novel-kit/internal/session"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

type generateRequest struct {
	Difficulty domain.Difficulty `json:"difficulty"`
}

type quizRequest struct {
	StoryData  *domain.Story     `json:"story_data"`
	StoryID    string            `json:"story_id"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type summaryRequest struct {
	StoryData        *domain.Story            `json:"story_data"`
	StoryID          string                   `json:"story_id"`
	SelectedInterest *domain.SelectedInterest `json:"selected_interest"`
}

type tutorRequest struct {
	Question string           `json:"question"`
	History  []domain.Message `json:"history"`
}

// Root はサービスが動いていることを返します。
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "Financial Novel API is running"})
}

func (h *Handler) LoadUserData(w http.ResponseWriter, r *http.Request) {
	state := h.svc.LoadUserData(r.Context())
	JSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "User data loaded successfully",
		"selected_interest": state.Interest,
	})
}

// GenerateStory は物語、クイズ、要約をまとめて生成します。
func (h *Handler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.GenerateStory(r.Context(), req.Difficulty)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"storyId": rec.ID,
		"story":   rec.Story,
		"quiz":    rec.Quiz,
		"summary": rec.Summary,
	})
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quiz, err := h.svc.GenerateQuiz(r.Context(), pipeline.QuizInput{
		StoryData:  req.StoryData,
		StoryID:    req.StoryID,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "quiz": quiz})
}

// GenerateSummary はモデルの失敗を 502 で返すのだ。
func (h *Handler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	summary, err := h.svc.GenerateSummary(r.Context(), pipeline.SummaryInput{
		StoryData: req.StoryData,
		StoryID:   req.StoryID,
		Interest:  req.SelectedInterest,
	})
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "summary": summary})
}

func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Fetch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Fail(w, r, err)
		return
	}
	writeView(w, view)
}

func (h *Handler) LatestStory(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Latest(r.Context())
	if err != nil {
		Fail(w, r, err)
		return
	}
	writeView(w, view)
}

func writeView(w http.ResponseWriter, v pipeline.StoryView) {
	JSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"storyId":         v.ID,
		"story":           v.Story,
		"quiz":            v.Quiz,
		"summary":         v.Summary,
		"frontend_format": v.FrontendFormat,
	})
}

func (h *Handler) ListStories(w http.ResponseWriter, r *http.Request) {
	metas, err := h.svc.List(r.Context())
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "stories": metas})
}

func (h *Handler) GetGameState(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{"success": true, "game_state": h.svc.GameState()})
}

func (h *Handler) PatchGameState(w http.ResponseWriter, r *http.Request) {
	var patch session.Patch
	if err := decode(r, &patch); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "game_state": h.svc.UpdateGameState(patch)})
}

func (h *Handler) Tutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, err := h.svc.Tutor(r.Context(), req.Question, req.History)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "response": answer})
}
