package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/go-fin-novel-kit/internal/session"
	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/generator"
	"github.com/shouni/go-fin-novel-kit/pkg/publisher"
	"github.com/shouni/go-fin-novel-kit/pkg/store"
)

var (
	// ErrStoryNotFound は指定IDの物語がキャッシュに無いときに返されます。
	ErrStoryNotFound = errors.New("物語が見つかりません")
	// ErrNoStoryAvailable は物語の指定が無く、キャッシュも空のときに返されます。
	ErrNoStoryAvailable = errors.New("利用できる物語がありません。先に物語を生成してください")
	// ErrSummaryFailed は要約生成の失敗を呼び出し元へ伝えるためのエラーなのだ。
	ErrSummaryFailed = errors.New("要約の生成に失敗しました")
)

// Generators は Orchestrator が使う生成器一式です。
type Generators struct {
	Story   *generator.StoryGenerator
	Quiz    *generator.QuizGenerator
	Summary *generator.SummaryGenerator
	Tutor   *generator.Tutor
}

// Orchestrator はセッションとキャッシュを持ち、各生成器を順に呼び出します。
type Orchestrator struct {
	gens    Generators
	store   store.Store
	session *session.Manager
	archive Archiver
	newID   func() string
	now     func() time.Time
}

// Archiver は保存済みの記録を成果物として書き出す関数です。
type Archiver func(ctx context.Context, rec store.Record) error

// Option は Orchestrator の任意設定なのだ。
type Option func(*Orchestrator)

// WithArchiver は生成のたびに記録を書き出す Archiver を設定します。
// 書き出しの失敗はログに残すだけで、生成結果には影響しません。
func WithArchiver(a Archiver) Option {
	return func(o *Orchestrator) { o.archive = a }
}

// New は Orchestrator を生成します。
func New(gens Generators, st store.Store, sess *session.Manager, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gens:    gens,
		store:   st,
		session: sess,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StoryView は取得系APIが返す形なのだ。
type StoryView struct {
	ID             string           `json:"story_id"`
	Story          *domain.Story    `json:"story"`
	Quiz           *domain.Quiz     `json:"quiz,omitempty"`
	Summary        *domain.Summary  `json:"summary,omitempty"`
	FrontendFormat publisher.Scenes `json:"frontend_format"`
}

// ViewOf は記録をフロントエンド向けの形に変換します。
func ViewOf(r store.Record) StoryView {
	return StoryView{
		ID:             r.ID,
		Story:          r.Story,
		Quiz:           r.Quiz,
		Summary:        r.Summary,
		FrontendFormat: publisher.ProjectScenes(r.Story),
	}
}

// GenerateStory はユーザーデータを読み直したうえで、物語、クイズ、要約を続けて生成し、キャッシュに保存します。
// 物語の生成に失敗してもプレースホルダーを保存して返すのだ。
// 要約の失敗はフォールバック要約で置き換えます。
func (o *Orchestrator) GenerateStory(ctx context.Context, difficulty domain.Difficulty) (store.Record, error) {
	o.session.Load()
	o.session.SetDifficulty(difficulty)
	state := o.session.Snapshot()

	// 1. 物語
	storyRes := o.gens.Story.Generate(ctx, generator.StoryRequest{
		Concept:    state.Concept,
		Difficulty: state.Difficulty,
		Interest:   state.Interest,
	})
	if !storyRes.OK() {
		slog.WarnContext(ctx, "物語の生成に失敗したため、プレースホルダーを返します", "outcome", storyRes.Outcome.String(), "error", storyRes.Err)
	}
	story := storyRes.Value

	// 2. クイズ
	quizRes := o.gens.Quiz.Generate(ctx, story, state.Difficulty)
	quiz := quizRes.Value

	// 3. 要約
	interest := state.Interest
	summaryRes := o.gens.Summary.Generate(ctx, story, &interest)
	if summaryRes.Err != nil {
		slog.WarnContext(ctx, "要約の生成に失敗したため、フォールバック要約を使います", "outcome", summaryRes.Outcome.String(), "error", summaryRes.Err)
	}
	summary := summaryRes.Value

	// 4. 保存
	rec := store.Record{
		ID:        o.newID(),
		Story:     story,
		Quiz:      &quiz,
		Summary:   &summary,
		Interest:  state.Interest,
		CreatedAt: o.now(),
	}
	if err := o.store.Put(ctx, rec); err != nil {
		return rec, fmt.Errorf("生成結果の保存に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "物語を保存しました", "story_id", rec.ID, "title", story.Plot.Title)

	if o.archive != nil {
		if err := o.archive(ctx, rec); err != nil {
			slog.WarnContext(ctx, "成果物の書き出しに失敗しました", "story_id", rec.ID, "error", err)
		}
	}
	return rec, nil
}

// QuizInput はクイズ生成の入力です。StoryID、StoryData、最新の順に物語を探すのだ。
type QuizInput struct {
	StoryData  *domain.Story
	StoryID    string
	Difficulty domain.Difficulty
}

// GenerateQuiz はクイズを生成します。物語が見つからない場合を除き、常にクイズを返します。
func (o *Orchestrator) GenerateQuiz(ctx context.Context, in QuizInput) (domain.Quiz, error) {
	story, err := o.resolveStory(ctx, in.StoryData, in.StoryID)
	if err != nil {
		return domain.Quiz{}, err
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = o.session.Snapshot().Difficulty
	}

	res := o.gens.Quiz.Generate(ctx, story, difficulty)
	return res.Value, nil
}

// SummaryInput は要約生成の入力です。Interest が nil ならセッションの興味対象を使います。
type SummaryInput struct {
	StoryData *domain.Story
	StoryID   string
	Interest  *domain.SelectedInterest
}

// GenerateSummary は要約を生成します。
// 入力不正ならフォールバック要約を返し、モデルやパースの失敗は ErrSummaryFailed で返すのだ。
func (o *Orchestrator) GenerateSummary(ctx context.Context, in SummaryInput) (domain.Summary, error) {
	story, err := o.resolveStory(ctx, in.StoryData, in.StoryID)
	if err != nil {
		return domain.Summary{}, err
	}
	interest := in.Interest
	if interest == nil || interest.IsZero() {
		si := o.session.Snapshot().Interest
		interest = &si
	}

	res := o.gens.Summary.Generate(ctx, story, interest)
	switch res.Outcome {
	case generator.OutcomeSuccess, generator.OutcomeInputInvalid:
		return res.Value, nil
	default:
		return res.Value, fmt.Errorf("%w (%s): %w", ErrSummaryFailed, res.Outcome, res.Err)
	}
}

// resolveStory は入力から物語を決めます。
// StoryID があればキャッシュを引き、無ければ StoryData、それも空なら最新の記録を使うのだ。
// キャッシュの記録は読むだけで書き換えません。
func (o *Orchestrator) resolveStory(ctx context.Context, inline *domain.Story, id string) (*domain.Story, error) {
	var (
		rec store.Record
		err error
	)
	switch {
	case id != "":
		rec, err = o.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, id)
		}
	case inline != nil && !inline.IsZero():
		return inline, nil
	default:
		rec, err = o.store.Latest(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoStoryAvailable
		}
	}
	if err != nil {
		return nil, fmt.Errorf("キャッシュからの取得に失敗しました: %w", err)
	}
	if rec.Story == nil {
		return nil, ErrStoryNotFound
	}
	return rec.Story, nil
}

// Fetch は ID で記録を取得します。
func (o *Orchestrator) Fetch(ctx context.Context, id string) (StoryView, error) {
	rec, err := o.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return StoryView{}, ErrStoryNotFound
	}
	if err != nil {
		return StoryView{}, err
	}
	return ViewOf(rec), nil
}

// Latest は最後に生成した記録を返します。
func (o *Orchestrator) Latest(ctx context.Context) (StoryView, error) {
	rec, err := o.store.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return StoryView{}, ErrNoStoryAvailable
	}
	if err != nil {
		return StoryView{}, err
	}
	return ViewOf(rec), nil
}

// List はキャッシュ済みの物語を新しい順に返します。
func (o *Orchestrator) List(ctx context.Context) ([]store.Meta, error) {
	return o.store.List(ctx)
}

// LoadUserData はユーザーデータを読み直してセッションを更新します。
func (o *Orchestrator) LoadUserData(context.Context) session.State {
	return o.session.Load()
}

// GameState は現在のセッション状態を返します。
func (o *Orchestrator) GameState() session.State {
	return o.session.Snapshot()
}

// UpdateGameState はセッション状態を部分更新します。
func (o *Orchestrator) UpdateGameState(p session.Patch) session.State {
	return o.session.Update(p)
}

// Tutor はチューターに質問します。
func (o *Orchestrator) Tutor(ctx context.Context, question string, history []domain.Message) (string, error) {
	return o.gens.Tutor.Respond(ctx, question, history)
}
