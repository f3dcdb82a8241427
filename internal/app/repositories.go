package app

import (
	"context"

	"quizhunt-service/internal/domain"
)

// EventRepository stores events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListEventsBySociety(ctx context.Context, societyID string) ([]domain.Event, error)
	ListEventsInRange(ctx context.Context, r domain.WindowRange) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) error
	// DeleteEvent removes the event together with its questions, rules and scores.
	DeleteEvent(ctx context.Context, eventID string) error
}

// QuestionRepository stores questions. Levels are unique per event.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q domain.Question) error
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
	ListQuestions(ctx context.Context, eventID string) ([]domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeleteQuestion(ctx context.Context, questionID string) error
}

// RuleRepository stores rules.
type RuleRepository interface {
	CreateRule(ctx context.Context, r domain.Rule) error
	GetRule(ctx context.Context, ruleID string) (domain.Rule, error)
	ListRules(ctx context.Context, eventID string) ([]domain.Rule, error)
	UpdateRule(ctx context.Context, r domain.Rule) error
	DeleteRule(ctx context.Context, ruleID string) error
}

// ScoreLedger holds one row per (player, event). Implementations must make GetOrCreate
// and Update atomic per row.
type ScoreLedger interface {
	// GetOrCreate returns the row, creating it at initialLevel with a zero score. The
	// bool reports whether this call created it.
	GetOrCreate(ctx context.Context, playerID, eventID string, initialLevel int) (domain.Score, bool, error)
	// Update applies fn to the locked row and persists the result. If fn fails nothing
	// is written. Returns domain.ErrScoreNotFound when no row exists.
	Update(ctx context.Context, playerID, eventID string, fn func(*domain.Score) error) (domain.Score, error)
	GetScore(ctx context.Context, scoreID string) (domain.Score, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Score, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	ListByPlayer(ctx context.Context, playerID string) ([]domain.Score, error)
}

// QuestionSource serves an event's ordered questions, usually from a cache.
type QuestionSource interface {
	GetQuestions(ctx context.Context, eventID string) (domain.QuestionSet, error)
	Invalidate(ctx context.Context, eventID string) error
}

// LeaderboardMirror is an optional fast copy of the ledger ordering (Redis, etc). It may
// lose rows (expiry, restarts), so readers compare it against the ledger.
type LeaderboardMirror interface {
	// Record writes a row unless a newer version (by UpdatedAt) is already held.
	Record(ctx context.Context, score domain.Score) error
	// Rebuild merges a ledger snapshot of the event with the same version rule.
	Rebuild(ctx context.Context, eventID string, rows []domain.Score) error
	Entries(ctx context.Context, eventID string) ([]domain.LeaderboardEntry, error)
	Forget(ctx context.Context, eventID string) error
}
