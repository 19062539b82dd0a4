package stats

import (
	"context"
	"sort"
	"sync"
)

const defaultMemoryCapacity = 1000

// MemoryStore keeps the most recent records in a bounded buffer.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	recent   []Stats
	total    map[string]int
	scores   map[string]int
	lastTick map[string]int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		recent:   make([]Stats, 0, capacity),
		total:    make(map[string]int),
		scores:   make(map[string]int),
		lastTick: make(map[string]int),
	}
}

func (m *MemoryStore) Record(_ context.Context, s Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total[s.RunID]++
	m.scores[s.RunID] += s.Score
	if s.CurrentTick > m.lastTick[s.RunID] {
		m.lastTick[s.RunID] = s.CurrentTick
	}
	m.recent = append(m.recent, s.Clone())
	if len(m.recent) > m.capacity {
		m.recent = m.recent[len(m.recent)-m.capacity:]
	}
	return nil
}

// List returns up to limit most recent records of runID, oldest first. An
// empty runID matches every run.
func (m *MemoryStore) List(_ context.Context, runID string, limit int) ([]Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if runID != "" && m.total[runID] == 0 {
		return nil, ErrNotFound
	}
	var out []Stats
	for i := len(m.recent) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if runID == "" || m.recent[i].RunID == runID {
			out = append(out, m.recent[i].Clone())
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *MemoryStore) Runs(context.Context) ([]RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RunSummary, 0, len(m.total))
	for runID, count := range m.total {
		out = append(out, RunSummary{
			RunID:     runID,
			Count:     count,
			MeanScore: float64(m.scores[runID]) / float64(count),
			LastTick:  m.lastTick[runID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
