package session

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/shouni/go-fin-novel-kit/pkg/domain"
	"github.com/shouni/go-fin-novel-kit/pkg/preference"
)

// State はプロセス全体で共有する学習セッションの状態です。
type State struct {
	Difficulty domain.Difficulty       `json:"difficulty"`
	Concept    domain.Concept          `json:"selected_concept"`
	Interest   domain.SelectedInterest `json:"selected_interest"`
	UserData   json.RawMessage         `json:"user_data,omitempty"`
}

// Patch は部分更新の内容なのだ。nil のフィールドは変更しません。
type Patch struct {
	Difficulty *domain.Difficulty `json:"difficulty,omitempty"`
	Concept    *domain.Concept    `json:"selected_concept,omitempty"`
}

// Manager は State を排他制御付きで保持します。
type Manager struct {
	mu       sync.RWMutex
	state    State
	dataPath string
	rand     *rand.Rand
}

// NewManager は初期状態の Manager を作ります。r が nil ならグローバルな乱数源を使うのだ。
func NewManager(dataPath string, r *rand.Rand) *Manager {
	return &Manager{
		dataPath: dataPath,
		rand:     r,
		state: State{
			Difficulty: domain.DifficultyBeginner,
			Concept:    domain.DefaultConcept(),
			Interest:   domain.DefaultInterest(),
		},
	}
}

// Load はユーザーデータを読み直し、興味対象を選び直します。
// 失敗してもデフォルトの興味対象で続行するのだ。
func (m *Manager) Load() State {
	selected, profile := preference.Resolve(m.dataPath, m.rand)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Interest = selected
	m.state.UserData = profile.UserData
	return m.snapshotLocked()
}

// Snapshot は現在の状態のコピーを返します。
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	s := m.state
	s.UserData = slices.Clone(m.state.UserData)
	return s
}

// SetDifficulty は難易度を更新して新しい値を返します。空文字なら現状維持です。
// 未知の値も警告を出したうえで受け入れるのだ。
func (m *Manager) SetDifficulty(d domain.Difficulty) domain.Difficulty {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d == "" {
		return m.state.Difficulty
	}
	if !d.Known() {
		slog.Warn("未知の難易度が指定されました", "difficulty", d)
	}
	m.state.Difficulty = d
	return d
}

// Update は部分更新を適用します。
func (m *Manager) Update(p Patch) State {
	if p.Difficulty != nil {
		m.SetDifficulty(*p.Difficulty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Concept != nil && p.Concept.Topic != "" {
		m.state.Concept = *p.Concept
	}
	return m.snapshotLocked()
}
