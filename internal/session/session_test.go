package session

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
)

func TestManager(t *testing.T) {
	t.Run("初期状態はデフォルト値なのだ", func(t *testing.T) {
		s := NewManager("", nil).Snapshot()
		if s.Difficulty != domain.DifficultyBeginner {
			t.Errorf("期待値 beginner, 実際の値 %s", s.Difficulty)
		}
		if s.Concept != domain.DefaultConcept() || s.Interest != domain.DefaultInterest() {
			t.Errorf("デフォルト値になっていないのだ: %+v", s)
		}
	})

	t.Run("ユーザーデータが無くてもデフォルトで続行するのだ", func(t *testing.T) {
		m := NewManager(filepath.Join(t.TempDir(), "missing.json"), nil)
		s := m.Load()
		if s.Interest != domain.DefaultInterest() {
			t.Errorf("期待値 %+v, 実際の値 %+v", domain.DefaultInterest(), s.Interest)
		}
	})

	t.Run("ユーザーデータから興味対象を選ぶのだ", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "interests.json")
		doc := `{"data":{"user":{"preferences":{"interests":{"Movies/Series":["Stranger Things"]}}}}}`
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("準備に失敗したのだ: %v", err)
		}
		m := NewManager(path, rand.New(rand.NewPCG(1, 1)))
		s := m.Load()
		want := domain.SelectedInterest{Category: domain.CategoryMoviesSeries, Interest: "Stranger Things"}
		if s.Interest != want {
			t.Errorf("期待値 %+v, 実際の値 %+v", want, s.Interest)
		}
		if len(s.UserData) == 0 {
			t.Error("UserData が保持されていないのだ")
		}
	})

	t.Run("空の難易度は現状維持なのだ", func(t *testing.T) {
		m := NewManager("", nil)
		m.SetDifficulty(domain.DifficultyAdvanced)
		if got := m.SetDifficulty(""); got != domain.DifficultyAdvanced {
			t.Errorf("期待値 advanced, 実際の値 %s", got)
		}
	})

	t.Run("部分更新は指定したフィールドだけ変えるのだ", func(t *testing.T) {
		m := NewManager("", nil)
		d := domain.DifficultyIntermediate
		s := m.Update(Patch{Difficulty: &d})
		if s.Difficulty != d || s.Concept != domain.DefaultConcept() {
			t.Errorf("想定外の状態なのだ: %+v", s)
		}
		c := domain.Concept{Topic: "Saving", Subtopic: "Emergency Funds"}
		s = m.Update(Patch{Concept: &c})
		if s.Concept != c || s.Difficulty != d {
			t.Errorf("想定外の状態なのだ: %+v", s)
		}
	})

	t.Run("並行に更新しても壊れないのだ", func(t *testing.T) {
		m := NewManager("", nil)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				m.SetDifficulty(domain.DifficultyAdvanced)
			}()
			go func() {
				defer wg.Done()
				_ = m.Snapshot()
			}()
		}
		wg.Wait()
		if got := m.Snapshot().Difficulty; got != domain.DifficultyAdvanced {
			t.Errorf("期待値 advanced, 実際の値 %s", got)
		}
	})
}
