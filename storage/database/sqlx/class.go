package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core/class"
)

type classRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Level     null.String `db:"level"`
	CreatedAt time.Time   `db:"created_at"`
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sql.DB) *classRepository {
	return &classRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo classRepository) unpack(row classRow) class.Class {
	return class.Class{
		ID:        row.ID,
		Name:      row.Name,
		Level:     row.Level,
		CreatedAt: row.CreatedAt,
	}
}

func (repo classRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM class WHERE lower(name) = lower($1))", name)
	if err != nil {
		return errors.Wrap(err, "checking class name uniqueness")
	}
	if exists {
		return class.ErrClassExists
	}
	return nil
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	row := classRow{
		ID:        cls.ID,
		Name:      cls.Name,
		Level:     cls.Level,
		CreatedAt: cls.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO class (id, name, level, created_at)
		VALUES (:id, :name, :level, :created_at)`, row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return class.Class{}, class.ErrClassExists
		}
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return repo.unpack(row), nil
}

func (repo classRepository) GetClassByName(ctx context.Context, name string) (class.Class, error) {
	var row classRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM class WHERE lower(name) = lower($1)", name)
	if err != nil {
		if err == sql.ErrNoRows {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, errors.Wrap(err, "finding class")
	}
	return repo.unpack(row), nil
}

func (repo classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM class ORDER BY name ASC"); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, repo.unpack(row))
	}
	return classes, nil
}
