package postgres

import (
	"context"
	"fmt"

	"quizhunt-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads an event's question sequence straight from the pool for the
// question caches.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, eventID string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, event_id, level, prompt, answer, correct_score, incorrect_score
		FROM questions WHERE event_id=$1 ORDER BY level`, eventID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.EventID, &q.Level, &q.Prompt, &q.Answer, &q.CorrectScore, &q.IncorrectScore); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return out, nil
}
