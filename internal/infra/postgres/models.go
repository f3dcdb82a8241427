package postgres

import (
	"time"

	"quizhunt-service/internal/domain"

	"github.com/uptrace/bun"
)

type eventModel struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          string    `bun:"id,pk"`
	SocietyID   string    `bun:"society_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID             string `bun:"id,pk"`
	EventID        string `bun:"event_id,notnull"`
	Level          int    `bun:"level,notnull"`
	Prompt         string `bun:"prompt,notnull"`
	Answer         string `bun:"answer,notnull"`
	CorrectScore   int    `bun:"correct_score,notnull"`
	IncorrectScore int    `bun:"incorrect_score,notnull"`
}

type ruleModel struct {
	bun.BaseModel `bun:"table:rules,alias:r"`

	ID      string `bun:"id,pk"`
	EventID string `bun:"event_id,notnull"`
	Content string `bun:"content,notnull"`
}

type scoreModel struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID        string    `bun:"id,pk"`
	PlayerID  string    `bun:"player_id,notnull"`
	EventID   string    `bun:"event_id,notnull"`
	Level     int       `bun:"level,notnull"`
	Score     int       `bun:"score,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func fromEvent(e domain.Event) *eventModel {
	return &eventModel{
		ID:          e.ID,
		SocietyID:   e.SocietyID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (m eventModel) toDomain() domain.Event {
	return domain.Event{
		ID:          m.ID,
		SocietyID:   m.SocietyID,
		Title:       m.Title,
		Description: m.Description,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromQuestion(q domain.Question) *questionModel {
	return &questionModel{
		ID:             q.ID,
		EventID:        q.EventID,
		Level:          q.Level,
		Prompt:         q.Prompt,
		Answer:         q.Answer,
		CorrectScore:   q.CorrectScore,
		IncorrectScore: q.IncorrectScore,
	}
}

func (m questionModel) toDomain() domain.Question {
	return domain.Question{
		ID:             m.ID,
		EventID:        m.EventID,
		Level:          m.Level,
		Prompt:         m.Prompt,
		Answer:         m.Answer,
		CorrectScore:   m.CorrectScore,
		IncorrectScore: m.IncorrectScore,
	}
}

func (m ruleModel) toDomain() domain.Rule {
	return domain.Rule{ID: m.ID, EventID: m.EventID, Content: m.Content}
}

func (m scoreModel) toDomain() domain.Score {
	return domain.Score{
		ID:        m.ID,
		PlayerID:  m.PlayerID,
		EventID:   m.EventID,
		Level:     m.Level,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toEvents(ms []eventModel) []domain.Event {
	out := make([]domain.Event, len(ms))
	for i, m := range ms {
		out[i] = m.toDomain()
	}
	return out
}

func toScores(ms []scoreModel) []domain.Score {
	out := make([]domain.Score, len(ms))
	for i, m := range ms {
		out[i] = m.toDomain()
	}
	return out
}
