package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shouni/go-fin-novel-kit/internal/pipeline"
	"github.com/shouni/go-fin-novel-kit/internal/session"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/store"
)

// Service はHTTP層から呼び出すユースケースの集合です。
// *pipeline.Orchestrator がこれを満たすのだ。
type Service interface {
	GenerateStory(ctx context.Context, difficulty domain.Difficulty) (store.Record, error)
	GenerateQuiz(ctx context.Context, in pipeline.QuizInput) (domain.Quiz, error)
	GenerateSummary(ctx context.Context, in pipeline.SummaryInput) (domain.Summary, error)
	Fetch(ctx context.Context, id string) (pipeline.StoryView, error)
	Latest(ctx context.Context) (pipeline.StoryView, error)
	List(ctx context.Context) ([]store.Meta, error)
	LoadUserData(ctx context.Context) session.State
	GameState() session.State
	UpdateGameState(p session.Patch) session.State
	Tutor(ctx context.Context, question string, history []domain.Message) (string, error)
}

var _ Service = (*pipeline.Orchestrator)(nil)

// Options はルーターの任意設定なのだ。
type Options struct {
	AllowedOrigins []string
	// MediaDir が空でなければ /media 配下で静的配信します。
	MediaDir string
}

// Handler はAPIのハンドラー群です。
type Handler struct {
	svc Service
}

// NewHandler は Handler を生成します。
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter はミドルウェアとルートを設定した chi ルーターを返します。
func NewRouter(h *Handler, opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(origins))

	r.Get("/", h.Root)
	h.RegisterRoutes(r)

	if opts.MediaDir != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir)))
		r.Handle("/media/*", fs)
	}
	return r
}

// RegisterRoutes は /api 配下のルートを登録します。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/load-user-data", h.LoadUserData)
		r.Post("/generate", h.GenerateStory)
		r.Post("/generate-quiz", h.GenerateQuiz)
		r.Post("/generate-summary", h.GenerateSummary)
		r.Get("/story/{id}", h.GetStory)
		r.Get("/latest-story", h.LatestStory)
		r.Get("/stories", h.ListStories)
		r.Get("/game-state", h.GetGameState)
		r.Patch("/game-state", h.PatchGameState)
		r.Post("/tutor", h.Tutor)
	})
}
