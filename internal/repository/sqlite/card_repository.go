package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

var cardColumns = []string{
	"id", "group_id", "position", "question", "answer",
	"correct_count", "unsure_count", "incorrect_count", "mastered", "created_at",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.GroupID, &c.Position, &c.Question, &c.Answer,
		&c.CorrectCount, &c.UnsureCount, &c.IncorrectCount, &c.Mastered, &c.CreatedAt)
	return c, err
}

// needsReview mirrors flashcard.NeedsReview.
var needsReview = squirrel.Or{
	squirrel.Gt{"unsure_count": 0},
	squirrel.And{squirrel.Gt{"correct_count": 0}, squirrel.Gt{"incorrect_count": 0}},
	squirrel.Gt{"incorrect_count": 0},
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: group_id=%d, ids=%d, needs_review=%t, limit=%d, offset=%d",
		filter.GroupID, len(filter.IDs), filter.NeedsReview, filter.Limit, filter.Offset)

	query := sqlBuilder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"group_id": filter.GroupID})

	if len(filter.IDs) > 0 {
		query = query.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Mastered != nil {
		query = query.Where(squirrel.Eq{"mastered": *filter.Mastered})
	}
	if filter.NeedsReview {
		query = query.Where(needsReview)
	}
	query = query.OrderBy("position", "id")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build card query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Get(ctx context.Context, groupID, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	sqlStr, args, err := sqlBuilder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"group_id": groupID, "id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found: group_id=%d, id=%d", groupID, id)
		} else {
			log.Error("failed to get card: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) Append(ctx context.Context, groupID int64, cards []models.Card) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("appending %d cards: group_id=%d", len(cards), groupID)

	var ids []int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		ids, err = appendCards(ctx, tx, groupID, cards)
		return err
	})
	if err != nil {
		log.Error("failed to append cards: %v", err)
		return nil, err
	}
	log.Info("appended %d cards: group_id=%d", len(ids), groupID)
	return ids, nil
}

func appendCards(ctx context.Context, tx *sql.Tx, groupID int64, cards []models.Card) ([]int64, error) {
	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM cards WHERE group_id = ?`, groupID).Scan(&next); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO cards (group_id, position, question, answer, correct_count, unsure_count, incorrect_count, mastered)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(cards))
	for i, c := range cards {
		res, err := stmt.ExecContext(ctx, groupID, next+i, c.Question, c.Answer,
			c.CorrectCount, c.UnsureCount, c.IncorrectCount, c.Mastered)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *cardRepository) UpdateText(ctx context.Context, groupID, id int64, question, answer string) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card text: group_id=%d, id=%d", groupID, id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE cards SET question = ?, answer = ? WHERE id = ? AND group_id = ?`,
		question, answer, id, groupID)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *cardRepository) SaveStats(ctx context.Context, groupID int64, cards []models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("saving stats of %d cards: group_id=%d", len(cards), groupID)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
UPDATE cards
SET correct_count = ?, unsure_count = ?, incorrect_count = ?, mastered = ?
WHERE id = ? AND group_id = ?
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range cards {
			if _, err := stmt.ExecContext(ctx,
				c.CorrectCount, c.UnsureCount, c.IncorrectCount, c.Mastered, c.ID, groupID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save card stats: %v", err)
	}
	return err
}

func (r *cardRepository) Delete(ctx context.Context, groupID int64, ids []int64) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Info("deleting %d cards: group_id=%d", len(ids), groupID)
	if len(ids) == 0 {
		return 0, nil
	}

	sqlStr, args, err := sqlBuilder.Delete("cards").
		Where(squirrel.Eq{"group_id": groupID, "id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to delete cards: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cardRepository) Move(ctx context.Context, groupID, id int64, delta int) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("moving card: group_id=%d, id=%d, delta=%d", groupID, id, delta)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, position FROM cards WHERE group_id = ? ORDER BY position, id`, groupID)
		if err != nil {
			return err
		}
		type slot struct {
			id       int64
			position int
		}
		var order []slot
		idx := -1
		for rows.Next() {
			var s slot
			if err := rows.Scan(&s.id, &s.position); err != nil {
				rows.Close()
				return err
			}
			if s.id == id {
				idx = len(order)
			}
			order = append(order, s)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if idx < 0 {
			return sql.ErrNoRows
		}

		target := idx + delta
		if delta == 0 || target < 0 || target >= len(order) {
			log.Debug("move out of range, ignoring: index=%d, target=%d", idx, target)
			return nil
		}

		a, b := order[idx], order[target]
		if a.position == b.position {
			// Positions can only collide in hand-edited data; spread them
			// out so the swap is visible.
			for i, s := range order {
				if _, err := tx.ExecContext(ctx, `UPDATE cards SET position = ? WHERE id = ?`, i, s.id); err != nil {
					return err
				}
				order[i].position = i
			}
			a, b = order[idx], order[target]
		}
		if _, err := tx.ExecContext(ctx, `UPDATE cards SET position = ? WHERE id = ?`, b.position, a.id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE cards SET position = ? WHERE id = ?`, a.position, b.id)
		return err
	})
}

func (r *cardRepository) ResetStats(ctx context.Context, groupID int64, ids []int64) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Info("resetting stats of %d cards: group_id=%d", len(ids), groupID)
	if len(ids) == 0 {
		return 0, nil
	}

	sqlStr, args, err := sqlBuilder.Update("cards").
		Set("correct_count", 0).
		Set("unsure_count", 0).
		Set("incorrect_count", 0).
		Set("mastered", false).
		Where(squirrel.Eq{"group_id": groupID, "id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to reset card stats: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cardRepository) Clear(ctx context.Context, groupID int64) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Info("clearing cards: group_id=%d", groupID)

	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE group_id = ?`, groupID)
	if err != nil {
		log.Error("failed to clear cards: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cardRepository) Stats(ctx context.Context, groupID int64) (*models.CardStats, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	var st models.CardStats
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*),
    COALESCE(SUM(correct_count), 0),
    COALESCE(SUM(unsure_count), 0),
    COALESCE(SUM(incorrect_count), 0),
    COALESCE(SUM(CASE WHEN mastered THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN unsure_count > 0 OR incorrect_count > 0 THEN 1 ELSE 0 END), 0)
FROM cards
WHERE group_id = ?
`, groupID).Scan(&st.TotalCards, &st.CorrectTotal, &st.UnsureTotal, &st.IncorrectTotal, &st.MasteredCards, &st.ReviewCards)
	if err != nil {
		log.Error("failed to compute card stats: %v", err)
		return nil, err
	}
	return &st, nil
}
