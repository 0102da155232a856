package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 15 * time.Minute

type memoryEntry struct {
	record Record
	seq    uint64
}

// MemoryStore は go-cache を使ったプロセス内キャッシュです。
// ttl が 0 以下なら期限切れにならないのだ。
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration

	// Put の読み込みと書き込みを一続きにするためのロック
	mu  sync.Mutex
	seq uint64
}

// NewMemoryStore は MemoryStore を生成します。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryStore{
		cache: cache.New(ttl, memoryCleanupInterval),
		ttl:   ttl,
	}
}

func (m *MemoryStore) Put(ctx context.Context, r Record) error {
	if r.ID == "" {
		return errEmptyID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{record: r}
	if existing, ok := m.cache.Get(r.ID); ok {
		prev := existing.(memoryEntry)
		entry.seq = prev.seq
		if entry.record.CreatedAt.IsZero() {
			entry.record.CreatedAt = prev.record.CreatedAt
		}
	} else {
		m.seq++
		entry.seq = m.seq
	}
	if entry.record.CreatedAt.IsZero() {
		entry.record.CreatedAt = time.Now()
	}
	m.cache.Set(r.ID, entry, m.ttl)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	v, ok := m.cache.Get(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	return v.(memoryEntry).record, nil
}

func (m *MemoryStore) Latest(ctx context.Context) (Record, error) {
	entries, err := m.sorted(ctx)
	if err != nil {
		return Record{}, err
	}
	if len(entries) == 0 {
		return Record{}, ErrNotFound
	}
	return entries[0].record, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Meta, error) {
	entries, err := m.sorted(ctx)
	if err != nil {
		return nil, err
	}
	metas := make([]Meta, 0, len(entries))
	for _, e := range entries {
		metas = append(metas, MetaOf(e.record))
	}
	return metas, nil
}

// sorted は期限内のエントリを作成順の降順で返します。
func (m *MemoryStore) sorted(ctx context.Context) ([]memoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := m.cache.Items()
	entries := make([]memoryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Object.(memoryEntry))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })
	return entries, nil
}
