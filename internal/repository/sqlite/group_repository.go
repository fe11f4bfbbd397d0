package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
)

type groupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new GroupRepository implementation
func NewGroupRepository(db *sql.DB) repository.GroupRepository {
	return &groupRepository{db: db}
}

const groupSelect = `
SELECT g.id, g.name, g.created_at, COUNT(c.id)
FROM card_groups g
LEFT JOIN cards c ON c.group_id = g.id
`

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	log := logger.FromContext(ctx).WithPrefix("group_repo")
	log.Debug("listing groups")

	rows, err := r.db.QueryContext(ctx, groupSelect+`GROUP BY g.id ORDER BY g.id`)
	if err != nil {
		log.Error("failed to query groups: %v", err)
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.CardCount); err != nil {
			log.Error("failed to scan group row: %v", err)
			return nil, err
		}
		groups = append(groups, g)
	}
	log.Debug("found %d groups", len(groups))
	return groups, rows.Err()
}

func (r *groupRepository) Get(ctx context.Context, id int64) (*models.Group, error) {
	log := logger.FromContext(ctx).WithPrefix("group_repo")
	log.Debug("getting group: id=%d", id)

	var g models.Group
	err := r.db.QueryRowContext(ctx, groupSelect+`WHERE g.id = ? GROUP BY g.id`, id).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.CardCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("group not found: id=%d", id)
		} else {
			log.Error("failed to get group: %v", err)
		}
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	log := logger.FromContext(ctx).WithPrefix("group_repo")

	var g models.Group
	err := r.db.QueryRowContext(ctx, groupSelect+`WHERE g.name = ? GROUP BY g.id`, name).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.CardCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get group by name: %v", err)
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) Insert(ctx context.Context, name string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("group_repo")
	log.Debug("inserting group: name=%s", name)

	res, err := r.db.ExecContext(ctx, `INSERT INTO card_groups (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicateName
		}
		log.Error("failed to insert group: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get group id: %v", err)
		return 0, err
	}
	log.Info("group created: id=%d, name=%s", id, name)
	return id, nil
}

func (r *groupRepository) Rename(ctx context.Context, id int64, name string) error {
	log := logger.FromContext(ctx).WithPrefix("group_repo")
	log.Debug("renaming group: id=%d, name=%s", id, name)

	res, err := r.db.ExecContext(ctx, `UPDATE card_groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateName
		}
		log.Error("failed to rename group: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *groupRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("group_repo")
	log.Info("deleting group: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM card_groups WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete group: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *groupRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_groups`).Scan(&n); err != nil {
		logger.FromContext(ctx).WithPrefix("group_repo").Error("failed to count groups: %v", err)
		return 0, err
	}
	return n, nil
}

// requireAffected turns an update or delete that matched nothing into
// sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
