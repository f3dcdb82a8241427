package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizhunt-service/internal/domain"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// CatalogStore persists events, questions and rules with bun.
type CatalogStore struct {
	db *bun.DB
}

func NewCatalogStore(db *bun.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) CreateEvent(ctx context.Context, event domain.Event) error {
	_, err := s.db.NewInsert().Model(fromEvent(event)).Exec(ctx)
	return err
}

func (s *CatalogStore) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	var m eventModel
	err := s.db.NewSelect().Model(&m).Where("e.id = ?", eventID).Scan(ctx)
	if err != nil {
		return domain.Event{}, notFound(err, domain.ErrEventNotFound)
	}
	return m.toDomain(), nil
}

func (s *CatalogStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var ms []eventModel
	if err := s.db.NewSelect().Model(&ms).Order("e.start_time ASC", "e.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return toEvents(ms), nil
}

func (s *CatalogStore) ListEventsBySociety(ctx context.Context, societyID string) ([]domain.Event, error) {
	var ms []eventModel
	err := s.db.NewSelect().Model(&ms).
		Where("e.society_id = ?", societyID).
		Order("e.start_time ASC", "e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list society events: %w", err)
	}
	return toEvents(ms), nil
}

func (s *CatalogStore) ListEventsInRange(ctx context.Context, r domain.WindowRange) ([]domain.Event, error) {
	column := "e.start_time"
	if r.Field == domain.FieldEndTime {
		column = "e.end_time"
	}
	var ms []eventModel
	err := s.db.NewSelect().Model(&ms).
		Where("? BETWEEN ? AND ?", bun.Ident(column), r.From, r.To).
		Order("e.start_time ASC", "e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events in range: %w", err)
	}
	return toEvents(ms), nil
}

func (s *CatalogStore) UpdateEvent(ctx context.Context, event domain.Event) error {
	res, err := s.db.NewUpdate().Model(fromEvent(event)).
		Column("title", "description", "start_time", "end_time", "updated_at").
		WherePK().
		Exec(ctx)
	return affected(res, err, domain.ErrEventNotFound)
}

func (s *CatalogStore) DeleteEvent(ctx context.Context, eventID string) error {
	// questions, rules and scores go with it via ON DELETE CASCADE
	res, err := s.db.NewDelete().Model((*eventModel)(nil)).Where("id = ?", eventID).Exec(ctx)
	return affected(res, err, domain.ErrEventNotFound)
}

func (s *CatalogStore) CreateQuestion(ctx context.Context, q domain.Question) error {
	_, err := s.db.NewInsert().Model(fromQuestion(q)).Exec(ctx)
	return questionErr(err)
}

func (s *CatalogStore) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	var m questionModel
	if err := s.db.NewSelect().Model(&m).Where("q.id = ?", questionID).Scan(ctx); err != nil {
		return domain.Question{}, notFound(err, domain.ErrQuestionNotFound)
	}
	return m.toDomain(), nil
}

func (s *CatalogStore) ListQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	var ms []questionModel
	err := s.db.NewSelect().Model(&ms).Where("q.event_id = ?", eventID).Order("q.level ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.Question, len(ms))
	for i, m := range ms {
		out[i] = m.toDomain()
	}
	return out, nil
}

func (s *CatalogStore) UpdateQuestion(ctx context.Context, q domain.Question) error {
	res, err := s.db.NewUpdate().Model(fromQuestion(q)).
		Column("level", "prompt", "answer", "correct_score", "incorrect_score").
		WherePK().
		Exec(ctx)
	return affected(res, questionErr(err), domain.ErrQuestionNotFound)
}

func (s *CatalogStore) DeleteQuestion(ctx context.Context, questionID string) error {
	res, err := s.db.NewDelete().Model((*questionModel)(nil)).Where("id = ?", questionID).Exec(ctx)
	return affected(res, err, domain.ErrQuestionNotFound)
}

func (s *CatalogStore) CreateRule(ctx context.Context, r domain.Rule) error {
	_, err := s.db.NewInsert().Model(&ruleModel{ID: r.ID, EventID: r.EventID, Content: r.Content}).Exec(ctx)
	return foreignKey(err, domain.ErrEventNotFound)
}

func (s *CatalogStore) GetRule(ctx context.Context, ruleID string) (domain.Rule, error) {
	var m ruleModel
	if err := s.db.NewSelect().Model(&m).Where("r.id = ?", ruleID).Scan(ctx); err != nil {
		return domain.Rule{}, notFound(err, domain.ErrRuleNotFound)
	}
	return m.toDomain(), nil
}

func (s *CatalogStore) ListRules(ctx context.Context, eventID string) ([]domain.Rule, error) {
	var ms []ruleModel
	if err := s.db.NewSelect().Model(&ms).Where("r.event_id = ?", eventID).Order("r.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	out := make([]domain.Rule, len(ms))
	for i, m := range ms {
		out[i] = m.toDomain()
	}
	return out, nil
}

func (s *CatalogStore) UpdateRule(ctx context.Context, r domain.Rule) error {
	res, err := s.db.NewUpdate().Model(&ruleModel{ID: r.ID, EventID: r.EventID, Content: r.Content}).
		Column("content").
		WherePK().
		Exec(ctx)
	return affected(res, err, domain.ErrRuleNotFound)
}

func (s *CatalogStore) DeleteRule(ctx context.Context, ruleID string) error {
	res, err := s.db.NewDelete().Model((*ruleModel)(nil)).Where("id = ?", ruleID).Exec(ctx)
	return affected(res, err, domain.ErrRuleNotFound)
}

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

func affected(res sql.Result, err, sentinel error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func questionErr(err error) error {
	if pgCode(err) == codeUniqueViolation {
		return domain.ErrDuplicateLevel
	}
	return foreignKey(err, domain.ErrEventNotFound)
}

func foreignKey(err, sentinel error) error {
	if pgCode(err) == codeForeignKeyViolation {
		return sentinel
	}
	return err
}
