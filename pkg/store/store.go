package store

import (
	"context"
	"errors"
	"time"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

// ErrNotFound は指定IDの記録が存在しないときに返されます。
var ErrNotFound = errors.New("記録が見つかりません")

// ListingConcept は一覧表示で使う学習テーマのラベルなのだ。
const ListingConcept = "savings"

// Record は1回の生成で得られた成果物一式です。
type Record struct {
	ID        string                  `json:"story_id"`
	Story     *domain.Story           `json:"story"`
	Quiz      *domain.Quiz            `json:"quiz,omitempty"`
	Summary   *domain.Summary         `json:"summary,omitempty"`
	Interest  domain.SelectedInterest `json:"interest"`
	CreatedAt time.Time               `json:"created_at"`
}

// Meta は一覧用の軽量な情報なのだ。
type Meta struct {
	StoryID      string    `json:"story_id"`
	Title        string    `json:"title"`
	Concept      string    `json:"concept"`
	InterestArea string    `json:"interest_area"`
	Timestamp    time.Time `json:"timestamp"`
}

// MetaOf は記録から一覧用の情報を作ります。
func MetaOf(r Record) Meta {
	m := Meta{
		StoryID:      r.ID,
		Concept:      ListingConcept,
		InterestArea: r.Interest.Category,
		Timestamp:    r.CreatedAt,
	}
	if r.Story != nil {
		m.Title = r.Story.Plot.Title
	}
	return m
}

// Store は生成物のキャッシュです。
// Put は同じIDに対して上書きし、作成順序は最初の Put のものを保ちます。
// List と Latest は作成順の新しいものから返すのだ。
type Store interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	Latest(ctx context.Context) (Record, error)
	List(ctx context.Context) ([]Meta, error)
}

var errEmptyID = errors.New("記録のIDが空です")
