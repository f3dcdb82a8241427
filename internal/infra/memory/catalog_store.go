package memory

import (
	"context"
	"sort"
	"sync"

	"quizhunt-service/internal/domain"
)

// CatalogStore is an in-memory implementation of the event, question and rule
// repositories. It also serves as a QuestionLoader.
type CatalogStore struct {
	mu        sync.RWMutex
	events    map[string]domain.Event
	questions map[string]domain.Question
	rules     map[string]domain.Rule
	// onDelete runs under the store lock when an event is removed.
	onDelete []func(eventID string)
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		events:    make(map[string]domain.Event),
		questions: make(map[string]domain.Question),
		rules:     make(map[string]domain.Rule),
	}
}

// CascadeTo removes a ledger's rows for an event when the event is deleted.
func (s *CatalogStore) CascadeTo(ledger *ScoreLedger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, ledger.deleteEvent)
}

func (s *CatalogStore) CreateEvent(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	return nil
}

func (s *CatalogStore) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *CatalogStore) ListEvents(_ context.Context) ([]domain.Event, error) {
	return s.filterEvents(func(domain.Event) bool { return true }), nil
}

func (s *CatalogStore) ListEventsBySociety(_ context.Context, societyID string) ([]domain.Event, error) {
	return s.filterEvents(func(e domain.Event) bool { return e.SocietyID == societyID }), nil
}

func (s *CatalogStore) ListEventsInRange(_ context.Context, r domain.WindowRange) ([]domain.Event, error) {
	return s.filterEvents(r.Contains), nil
}

func (s *CatalogStore) UpdateEvent(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	s.events[event.ID] = event
	return nil
}

func (s *CatalogStore) DeleteEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	delete(s.events, eventID)
	for id, q := range s.questions {
		if q.EventID == eventID {
			delete(s.questions, id)
		}
	}
	for id, r := range s.rules {
		if r.EventID == eventID {
			delete(s.rules, id)
		}
	}
	for _, fn := range s.onDelete {
		fn(eventID)
	}
	return nil
}

func (s *CatalogStore) CreateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[q.EventID]; !ok {
		return domain.ErrEventNotFound
	}
	if s.levelTakenLocked(q) {
		return domain.ErrDuplicateLevel
	}
	s.questions[q.ID] = q
	return nil
}

func (s *CatalogStore) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *CatalogStore) ListQuestions(_ context.Context, eventID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.EventID == eventID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

// LoadQuestions implements QuestionLoader.
func (s *CatalogStore) LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	return s.ListQuestions(ctx, eventID)
}

func (s *CatalogStore) UpdateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	if s.levelTakenLocked(q) {
		return domain.ErrDuplicateLevel
	}
	s.questions[q.ID] = q
	return nil
}

func (s *CatalogStore) DeleteQuestion(_ context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, questionID)
	return nil
}

func (s *CatalogStore) CreateRule(_ context.Context, r domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[r.EventID]; !ok {
		return domain.ErrEventNotFound
	}
	s.rules[r.ID] = r
	return nil
}

func (s *CatalogStore) GetRule(_ context.Context, ruleID string) (domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return domain.Rule{}, domain.ErrRuleNotFound
	}
	return r, nil
}

func (s *CatalogStore) ListRules(_ context.Context, eventID string) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Rule, 0)
	for _, r := range s.rules {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *CatalogStore) UpdateRule(_ context.Context, r domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	s.rules[r.ID] = r
	return nil
}

func (s *CatalogStore) DeleteRule(_ context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[ruleID]; !ok {
		return domain.ErrRuleNotFound
	}
	delete(s.rules, ruleID)
	return nil
}

func (s *CatalogStore) filterEvents(keep func(domain.Event) bool) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *CatalogStore) levelTakenLocked(q domain.Question) bool {
	for id, other := range s.questions {
		if id != q.ID && other.EventID == q.EventID && other.Level == q.Level {
			return true
		}
	}
	return false
}
