package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ScoreLedger stores score rows. Rows are unique per (player_id, event_id) and every
// mutation runs in a transaction holding the row lock.
type ScoreLedger struct {
	db  *bun.DB
	now func() time.Time
}

func NewScoreLedger(db *bun.DB) *ScoreLedger {
	return &ScoreLedger{db: db, now: time.Now}
}

func (l *ScoreLedger) GetOrCreate(ctx context.Context, playerID, eventID string, initialLevel int) (domain.Score, bool, error) {
	now := l.now()
	m := &scoreModel{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		EventID:   eventID,
		Level:     initialLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := l.db.NewInsert().Model(m).
		On("CONFLICT (player_id, event_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Score{}, false, foreignKey(err, domain.ErrEventNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Score{}, false, err
	}

	var row scoreModel
	err = l.db.NewSelect().Model(&row).
		Where("s.player_id = ? AND s.event_id = ?", playerID, eventID).
		Scan(ctx)
	if err != nil {
		return domain.Score{}, false, notFound(err, domain.ErrScoreNotFound)
	}
	return row.toDomain(), n == 1, nil
}

func (l *ScoreLedger) Update(ctx context.Context, playerID, eventID string, fn func(*domain.Score) error) (domain.Score, error) {
	var out domain.Score
	err := l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var row scoreModel
		err := tx.NewSelect().Model(&row).
			Where("s.player_id = ? AND s.event_id = ?", playerID, eventID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return notFound(err, domain.ErrScoreNotFound)
		}

		next := row.toDomain()
		if err := fn(&next); err != nil {
			return err
		}
		row.Level = next.Level
		row.Score = next.Score
		row.UpdatedAt = next.UpdatedAt

		if _, err := tx.NewUpdate().Model(&row).
			Column("level", "score", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update score: %w", err)
		}
		out = row.toDomain()
		return nil
	})
	if err != nil {
		return domain.Score{}, err
	}
	return out, nil
}

func (l *ScoreLedger) GetScore(ctx context.Context, scoreID string) (domain.Score, error) {
	var row scoreModel
	if err := l.db.NewSelect().Model(&row).Where("s.id = ?", scoreID).Scan(ctx); err != nil {
		return domain.Score{}, notFound(err, domain.ErrScoreNotFound)
	}
	return row.toDomain(), nil
}

func (l *ScoreLedger) ListByEvent(ctx context.Context, eventID string) ([]domain.Score, error) {
	var rows []scoreModel
	err := l.db.NewSelect().Model(&rows).
		Where("s.event_id = ?", eventID).
		Order("s.score DESC", "s.level DESC", "s.player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list event scores: %w", err)
	}
	return toScores(rows), nil
}

func (l *ScoreLedger) CountByEvent(ctx context.Context, eventID string) (int, error) {
	n, err := l.db.NewSelect().Model((*scoreModel)(nil)).
		Where("s.event_id = ?", eventID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count event scores: %w", err)
	}
	return n, nil
}

func (l *ScoreLedger) ListByPlayer(ctx context.Context, playerID string) ([]domain.Score, error) {
	var rows []scoreModel
	err := l.db.NewSelect().Model(&rows).
		Where("s.player_id = ?", playerID).
		Order("s.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list player scores: %w", err)
	}
	return toScores(rows), nil
}
