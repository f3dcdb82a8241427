package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/google/uuid"
)

// ScoreLedger is an in-memory implementation of app.ScoreLedger. A single lock makes
// get-or-create and read-modify-write atomic.
type ScoreLedger struct {
	mu   sync.Mutex
	now  func() time.Time
	rows map[ledgerKey]*domain.Score
	byID map[string]ledgerKey
	// deleted holds events removed by the catalog cascade. Event ids are never reused.
	deleted map[string]struct{}
}

type ledgerKey struct {
	playerID string
	eventID  string
}

func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{
		now:  time.Now,
		rows:    make(map[ledgerKey]*domain.Score),
		byID:    make(map[string]ledgerKey),
		deleted: make(map[string]struct{}),
	}
}

func (l *ScoreLedger) GetOrCreate(_ context.Context, playerID, eventID string, initialLevel int) (domain.Score, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey{playerID: playerID, eventID: eventID}
	if row, ok := l.rows[key]; ok {
		return *row, false, nil
	}
	// A start racing the event's deletion must not outlive the cascade.
	if _, gone := l.deleted[eventID]; gone {
		return domain.Score{}, false, domain.ErrEventNotFound
	}
	now := l.now()
	row := &domain.Score{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		EventID:   eventID,
		Level:     initialLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.rows[key] = row
	l.byID[row.ID] = key
	return *row, true, nil
}

func (l *ScoreLedger) Update(_ context.Context, playerID, eventID string, fn func(*domain.Score) error) (domain.Score, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.rows[ledgerKey{playerID: playerID, eventID: eventID}]
	if !ok {
		return domain.Score{}, domain.ErrScoreNotFound
	}
	next := *row
	if err := fn(&next); err != nil {
		return domain.Score{}, err
	}
	row.Level = next.Level
	row.Score = next.Score
	row.UpdatedAt = next.UpdatedAt
	return *row, nil
}

func (l *ScoreLedger) GetScore(_ context.Context, scoreID string) (domain.Score, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, ok := l.byID[scoreID]
	if !ok {
		return domain.Score{}, domain.ErrScoreNotFound
	}
	return *l.rows[key], nil
}

func (l *ScoreLedger) ListByEvent(_ context.Context, eventID string) ([]domain.Score, error) {
	out := l.filter(func(s *domain.Score) bool { return s.EventID == eventID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Level > out[j].Level
	})
	return out, nil
}

func (l *ScoreLedger) CountByEvent(_ context.Context, eventID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key := range l.rows {
		if key.eventID == eventID {
			n++
		}
	}
	return n, nil
}

func (l *ScoreLedger) ListByPlayer(_ context.Context, playerID string) ([]domain.Score, error) {
	out := l.filter(func(s *domain.Score) bool { return s.PlayerID == playerID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Len reports the number of rows.
func (l *ScoreLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *ScoreLedger) filter(keep func(*domain.Score) bool) []domain.Score {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Score, 0)
	for _, row := range l.rows {
		if keep(row) {
			out = append(out, *row)
		}
	}
	return out
}

func (l *ScoreLedger) deleteEvent(eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted[eventID] = struct{}{}
	for key, row := range l.rows {
		if key.eventID == eventID {
			delete(l.byID, row.ID)
			delete(l.rows, key)
		}
	}
}
