package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quizhunt-service/internal/domain"
)

// PlayService drives players through an event's questions and keeps the score ledger.
type PlayService struct {
	events       EventRepository
	questions    QuestionSource
	scores       ScoreLedger
	hub          *LeaderboardHub
	mirror       LeaderboardMirror
	logger       *slog.Logger
	initialLevel int
	now          func() time.Time
}

// PlayOption customizes a PlayService.
type PlayOption func(*PlayService)

// WithInitialLevel sets the level new score rows start at.
func WithInitialLevel(level int) PlayOption {
	return func(s *PlayService) { s.initialLevel = level }
}

// WithLeaderboardMirror enables a mirror that is written after each ledger change and
// read first by Leaderboard.
func WithLeaderboardMirror(m LeaderboardMirror) PlayOption {
	return func(s *PlayService) { s.mirror = m }
}

// WithPlayLogger sets the logger.
func WithPlayLogger(l *slog.Logger) PlayOption {
	return func(s *PlayService) { s.logger = l }
}

// WithPlayClock is used by tests for deterministic timestamps.
func WithPlayClock(now func() time.Time) PlayOption {
	return func(s *PlayService) { s.now = now }
}

func NewPlayService(events EventRepository, questions QuestionSource, scores ScoreLedger, opts ...PlayOption) *PlayService {
	s := &PlayService{
		events:    events,
		questions: questions,
		scores:    scores,
		hub:       NewLeaderboardHub(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentQuestion returns the question at the player's level, starting the event for
// them on first access.
func (s *PlayService) CurrentQuestion(ctx context.Context, p domain.Principal, eventID string) (domain.PlayQuestion, error) {
	if err := requirePlayer(p); err != nil {
		return domain.PlayQuestion{}, err
	}
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return domain.PlayQuestion{}, err
	}

	row, created, err := s.scores.GetOrCreate(ctx, p.ID, eventID, s.initialLevel)
	if err != nil {
		return domain.PlayQuestion{}, fmt.Errorf("start event: %w", err)
	}
	if created {
		s.logger.Info("player started event", "player_id", p.ID, "event_id", eventID)
		s.scoreChanged(ctx, row)
	}

	set, err := s.questions.GetQuestions(ctx, eventID)
	if err != nil {
		return domain.PlayQuestion{}, err
	}
	q, err := set.Lookup(row.Level, s.initialLevel)
	if err != nil {
		return domain.PlayQuestion{}, err
	}
	return q.ForPlayer(), nil
}

// SubmitAnswer judges answer against the player's current question and updates level
// and score together. The row must already exist.
func (s *PlayService) SubmitAnswer(ctx context.Context, p domain.Principal, eventID, answer string) (domain.AnswerResult, error) {
	if err := requirePlayer(p); err != nil {
		return domain.AnswerResult{}, err
	}

	set, err := s.questions.GetQuestions(ctx, eventID)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	var outcome domain.Outcome
	row, err := s.scores.Update(ctx, p.ID, eventID, func(row *domain.Score) error {
		q, err := set.Lookup(row.Level, s.initialLevel)
		if err != nil {
			return err
		}
		if q.Matches(answer) {
			row.Level++
			row.Score += q.CorrectScore
			outcome = domain.OutcomeCorrect
		} else {
			row.Score += q.IncorrectScore
			outcome = domain.OutcomeIncorrect
		}
		row.UpdatedAt = nextVersion(s.now(), row.UpdatedAt)
		return nil
	})
	if err != nil {
		return domain.AnswerResult{}, err
	}

	s.scoreChanged(ctx, row)
	return domain.AnswerResult{Outcome: outcome, Level: row.Level, Score: row.Score}, nil
}

// Leaderboard ranks every player of the event by score, then level.
func (s *PlayService) Leaderboard(ctx context.Context, p domain.Principal, eventID string) (domain.Leaderboard, error) {
	if err := requireAuthenticated(p); err != nil {
		return domain.Leaderboard{}, err
	}
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return domain.Leaderboard{}, err
	}

	if s.mirror == nil {
		return s.ledgerLeaderboard(ctx, eventID)
	}
	if entries, ok := s.mirroredEntries(ctx, eventID); ok {
		return domain.Leaderboard{EventID: eventID, Entries: entries, UpdatedAt: s.now()}, nil
	}
	rows, err := s.scores.ListByEvent(ctx, eventID)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("list scores: %w", err)
	}
	if err := s.mirror.Rebuild(ctx, eventID, rows); err != nil {
		s.logger.Warn("leaderboard mirror rebuild failed", "event_id", eventID, "error", err)
	}
	return domain.Leaderboard{EventID: eventID, Entries: domain.RankScores(rows), UpdatedAt: s.now()}, nil
}

// mirroredEntries returns the mirror's standings when it holds exactly the ledger's
// players for the event.
func (s *PlayService) mirroredEntries(ctx context.Context, eventID string) ([]domain.LeaderboardEntry, bool) {
	want, err := s.scores.CountByEvent(ctx, eventID)
	if err != nil || want == 0 {
		return nil, false
	}
	entries, err := s.mirror.Entries(ctx, eventID)
	if err != nil {
		s.logger.Warn("leaderboard mirror read failed, using ledger", "event_id", eventID, "error", err)
		return nil, false
	}
	if len(entries) != want {
		s.logger.Debug("leaderboard mirror incomplete", "event_id", eventID, "mirrored", len(entries), "rows", want)
		return nil, false
	}
	domain.SortEntries(entries)
	return entries, true
}

// Subscribe streams leaderboard snapshots for an event, starting with the current one.
func (s *PlayService) Subscribe(ctx context.Context, p domain.Principal, eventID string) (<-chan domain.Leaderboard, func(), error) {
	lb, err := s.Leaderboard(ctx, p, eventID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(lb)
	return ch, cancel, nil
}

// ListScores returns the calling player's score rows across events.
func (s *PlayService) ListScores(ctx context.Context, p domain.Principal) ([]domain.Score, error) {
	if err := requirePlayer(p); err != nil {
		return nil, err
	}
	return s.scores.ListByPlayer(ctx, p.ID)
}

// GetScore returns one of the calling player's score rows.
func (s *PlayService) GetScore(ctx context.Context, p domain.Principal, scoreID string) (domain.Score, error) {
	if err := requirePlayer(p); err != nil {
		return domain.Score{}, err
	}
	row, err := s.scores.GetScore(ctx, scoreID)
	if err != nil {
		return domain.Score{}, err
	}
	if err := requireSelf(p, row); err != nil {
		return domain.Score{}, err
	}
	return row, nil
}

func (s *PlayService) ledgerLeaderboard(ctx context.Context, eventID string) (domain.Leaderboard, error) {
	rows, err := s.scores.ListByEvent(ctx, eventID)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("list scores: %w", err)
	}
	return domain.Leaderboard{EventID: eventID, Entries: domain.RankScores(rows), UpdatedAt: s.now()}, nil
}

// scoreChanged runs the side effects of a committed ledger change. Failures are logged;
// the ledger stays authoritative.
func (s *PlayService) scoreChanged(ctx context.Context, row domain.Score) {
	if s.mirror != nil {
		if err := s.mirror.Record(ctx, row); err != nil {
			s.logger.Warn("leaderboard mirror write failed", "event_id", row.EventID, "player_id", row.PlayerID, "error", err)
			// A lost write would leave a stale row that still counts as complete.
			if err := s.mirror.Forget(ctx, row.EventID); err != nil {
				s.logger.Warn("leaderboard mirror forget failed", "event_id", row.EventID, "error", err)
			}
		}
	}
	if !s.hub.HasSubscribers(row.EventID) {
		return
	}
	lb, err := s.ledgerLeaderboard(ctx, row.EventID)
	if err != nil {
		s.logger.Warn("leaderboard broadcast skipped", "event_id", row.EventID, "error", err)
		return
	}
	s.hub.Publish(lb)
}

// nextVersion stamps a row change. Stamps are whole microseconds (the Postgres
// resolution) and strictly increase per row, so the mirror can order writes by them.
func nextVersion(now, prev time.Time) time.Time {
	if floor := prev.Add(time.Microsecond); now.Before(floor) {
		now = floor
	}
	return now.Truncate(time.Microsecond)
}
