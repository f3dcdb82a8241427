package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/google/uuid"
)

// CatalogService manages events, questions and rules for societies and lists events for
// players.
type CatalogService struct {
	events    EventRepository
	questions QuestionRepository
	rules     RuleRepository
	cache     QuestionSource
	mirror    LeaderboardMirror
	logger    *slog.Logger
	now       func() time.Time
	floor     time.Time
	ceiling   time.Time
}

// CatalogOption customizes a CatalogService.
type CatalogOption func(*CatalogService)

// WithCatalogClock overrides the wall clock used for timestamps and windows.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

// WithWindowBounds overrides the outer bounds of the past and future windows.
func WithWindowBounds(floor, ceiling time.Time) CatalogOption {
	return func(s *CatalogService) {
		if !floor.IsZero() {
			s.floor = floor
		}
		if !ceiling.IsZero() {
			s.ceiling = ceiling
		}
	}
}

// WithCatalogMirror lets event deletion drop the mirrored leaderboard.
func WithCatalogMirror(m LeaderboardMirror) CatalogOption {
	return func(s *CatalogService) { s.mirror = m }
}

// WithCatalogLogger sets the logger.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(s *CatalogService) { s.logger = l }
}

func NewCatalogService(events EventRepository, questions QuestionRepository, rules RuleRepository, cache QuestionSource, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		events:    events,
		questions: questions,
		rules:     rules,
		cache:     cache,
		logger:    slog.Default(),
		now:       time.Now,
		floor:     domain.DefaultWindowFloor,
		ceiling:   domain.DefaultWindowCeiling,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent stores a new event owned by the calling society.
func (s *CatalogService) CreateEvent(ctx context.Context, p domain.Principal, event domain.Event) (domain.Event, error) {
	if err := requireSociety(p); err != nil {
		return domain.Event{}, err
	}
	if err := event.Validate(); err != nil {
		return domain.Event{}, err
	}
	now := s.now()
	event.ID = uuid.NewString()
	event.SocietyID = p.ID
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// GetOwnedEvent returns an event the calling society owns.
func (s *CatalogService) GetOwnedEvent(ctx context.Context, p domain.Principal, eventID string) (domain.Event, error) {
	if err := requireSociety(p); err != nil {
		return domain.Event{}, err
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := requireOwner(p, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

// ListOwnedEvents lists the calling society's events.
func (s *CatalogService) ListOwnedEvents(ctx context.Context, p domain.Principal) ([]domain.Event, error) {
	if err := requireSociety(p); err != nil {
		return nil, err
	}
	return s.events.ListEventsBySociety(ctx, p.ID)
}

// UpdateEvent replaces the editable fields of an owned event.
func (s *CatalogService) UpdateEvent(ctx context.Context, p domain.Principal, eventID string, in domain.Event) (domain.Event, error) {
	event, err := s.GetOwnedEvent(ctx, p, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	event.Title = in.Title
	event.Description = in.Description
	event.StartTime = in.StartTime
	event.EndTime = in.EndTime
	if err := event.Validate(); err != nil {
		return domain.Event{}, err
	}
	event.UpdatedAt = s.now()
	if err := s.events.UpdateEvent(ctx, event); err != nil {
		return domain.Event{}, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an owned event with everything hanging off it.
func (s *CatalogService) DeleteEvent(ctx context.Context, p domain.Principal, eventID string) error {
	if _, err := s.GetOwnedEvent(ctx, p, eventID); err != nil {
		return err
	}
	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.invalidate(ctx, eventID)
	if s.mirror != nil {
		if err := s.mirror.Forget(ctx, eventID); err != nil {
			s.logger.Warn("leaderboard mirror forget failed", "event_id", eventID, "error", err)
		}
	}
	return nil
}

// CreateQuestion adds a question to an owned event.
func (s *CatalogService) CreateQuestion(ctx context.Context, p domain.Principal, eventID string, q domain.Question) (domain.Question, error) {
	if _, err := s.GetOwnedEvent(ctx, p, eventID); err != nil {
		return domain.Question{}, err
	}
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	q.ID = uuid.NewString()
	q.EventID = eventID
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	s.invalidate(ctx, eventID)
	return q, nil
}

// GetQuestion returns a question of an owned event, answer included.
func (s *CatalogService) GetQuestion(ctx context.Context, p domain.Principal, questionID string) (domain.Question, error) {
	if err := requireSociety(p); err != nil {
		return domain.Question{}, err
	}
	q, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	if _, err := s.GetOwnedEvent(ctx, p, q.EventID); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// ListQuestions lists an owned event's questions ordered by level.
func (s *CatalogService) ListQuestions(ctx context.Context, p domain.Principal, eventID string) ([]domain.Question, error) {
	if _, err := s.GetOwnedEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	qs, err := s.questions.ListQuestions(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return domain.NewQuestionSet(eventID, qs).Questions(), nil
}

// UpdateQuestion replaces the editable fields of a question.
func (s *CatalogService) UpdateQuestion(ctx context.Context, p domain.Principal, questionID string, in domain.Question) (domain.Question, error) {
	q, err := s.GetQuestion(ctx, p, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	q.Level = in.Level
	q.Prompt = in.Prompt
	q.Answer = in.Answer
	q.CorrectScore = in.CorrectScore
	q.IncorrectScore = in.IncorrectScore
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	if err := s.questions.UpdateQuestion(ctx, q); err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	s.invalidate(ctx, q.EventID)
	return q, nil
}

// DeleteQuestion removes a question.
func (s *CatalogService) DeleteQuestion(ctx context.Context, p domain.Principal, questionID string) error {
	q, err := s.GetQuestion(ctx, p, questionID)
	if err != nil {
		return err
	}
	if err := s.questions.DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	s.invalidate(ctx, q.EventID)
	return nil
}

// CreateRule adds a rule to an owned event.
func (s *CatalogService) CreateRule(ctx context.Context, p domain.Principal, eventID string, r domain.Rule) (domain.Rule, error) {
	if _, err := s.GetOwnedEvent(ctx, p, eventID); err != nil {
		return domain.Rule{}, err
	}
	if err := r.Validate(); err != nil {
		return domain.Rule{}, err
	}
	r.ID = uuid.NewString()
	r.EventID = eventID
	if err := s.rules.CreateRule(ctx, r); err != nil {
		return domain.Rule{}, fmt.Errorf("create rule: %w", err)
	}
	return r, nil
}

// GetRule returns a rule of an owned event.
func (s *CatalogService) GetRule(ctx context.Context, p domain.Principal, ruleID string) (domain.Rule, error) {
	if err := requireSociety(p); err != nil {
		return domain.Rule{}, err
	}
	r, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		return domain.Rule{}, err
	}
	if _, err := s.GetOwnedEvent(ctx, p, r.EventID); err != nil {
		return domain.Rule{}, err
	}
	return r, nil
}

// ListRules lists an owned event's rules.
func (s *CatalogService) ListRules(ctx context.Context, p domain.Principal, eventID string) ([]domain.Rule, error) {
	if _, err := s.GetOwnedEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	return s.rules.ListRules(ctx, eventID)
}

// UpdateRule replaces a rule's content.
func (s *CatalogService) UpdateRule(ctx context.Context, p domain.Principal, ruleID string, in domain.Rule) (domain.Rule, error) {
	r, err := s.GetRule(ctx, p, ruleID)
	if err != nil {
		return domain.Rule{}, err
	}
	r.Content = in.Content
	if err := r.Validate(); err != nil {
		return domain.Rule{}, err
	}
	if err := s.rules.UpdateRule(ctx, r); err != nil {
		return domain.Rule{}, fmt.Errorf("update rule: %w", err)
	}
	return r, nil
}

// DeleteRule removes a rule.
func (s *CatalogService) DeleteRule(ctx context.Context, p domain.Principal, ruleID string) error {
	if _, err := s.GetRule(ctx, p, ruleID); err != nil {
		return err
	}
	if err := s.rules.DeleteRule(ctx, ruleID); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// ListEvents lists every event for players browsing what to start.
func (s *CatalogService) ListEvents(ctx context.Context, p domain.Principal) ([]domain.Event, error) {
	if err := requirePlayer(p); err != nil {
		return nil, err
	}
	return s.events.ListEvents(ctx)
}

// EventsInWindow lists events in the past, present or future window at the current time.
func (s *CatalogService) EventsInWindow(ctx context.Context, p domain.Principal, w domain.Window) ([]domain.Event, error) {
	if err := requirePlayer(p); err != nil {
		return nil, err
	}
	r := domain.RangeFor(w, s.now(), s.floor, s.ceiling)
	return s.events.ListEventsInRange(ctx, r)
}

// EventDetail returns an event with its rules and question count. Answers stay hidden.
func (s *CatalogService) EventDetail(ctx context.Context, p domain.Principal, eventID string) (domain.EventDetail, error) {
	if err := requirePlayer(p); err != nil {
		return domain.EventDetail{}, err
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.EventDetail{}, err
	}
	rules, err := s.rules.ListRules(ctx, eventID)
	if err != nil {
		return domain.EventDetail{}, err
	}
	set, err := s.cache.GetQuestions(ctx, eventID)
	if err != nil {
		return domain.EventDetail{}, err
	}
	return domain.EventDetail{Event: event, Rules: rules, QuestionCount: set.Len()}, nil
}

func (s *CatalogService) invalidate(ctx context.Context, eventID string) {
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.logger.Warn("question cache invalidation failed", "event_id", eventID, "error", err)
	}
}
