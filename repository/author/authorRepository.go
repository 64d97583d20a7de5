package authorrepo

import (
	"context"
	"errors"
	"time"

	"github.com/ceciliaMar/Virtual-Library/model"
	"github.com/ceciliaMar/Virtual-Library/util/database"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("author not found")

type Repo interface {
	Create(ctx context.Context, fullName string) (*model.Author, error)
	ByID(ctx context.Context, id int64) (*model.Author, error)
	ByName(ctx context.Context, fullName string) (*model.Author, error)
	List(ctx context.Context) ([]model.Author, error)
	Update(ctx context.Context, id int64, fullName string) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, fullName string) (*model.Author, error) {
	a := &model.Author{FullName: fullName}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO authors (full_name) VALUES ($1) RETURNING id`,
		fullName,
	).Scan(&a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Author, error) {
	a := &model.Author{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, full_name FROM authors WHERE id = $1`, id,
	).Scan(&a.ID, &a.FullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repo) ByName(ctx context.Context, fullName string) (*model.Author, error) {
	a := &model.Author{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, full_name FROM authors WHERE lower(full_name) = lower($1)`, fullName,
	).Scan(&a.ID, &a.FullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns every author with their books attached.
func (r *repo) List(ctx context.Context) ([]model.Author, error) {
	const q = `
		SELECT a.id, a.full_name,
			b.id, b.title, b.loan_status, b.created_at
		FROM authors a
		LEFT JOIN books b ON b.author_id = a.id
		ORDER BY a.id, b.id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Author
	byID := map[int64]int{}
	for rows.Next() {
		var (
			a         model.Author
			bookID    *int64
			title     *string
			status    *model.LoanStatus
			createdAt *time.Time
		)
		if err := rows.Scan(&a.ID, &a.FullName, &bookID, &title, &status, &createdAt); err != nil {
			return nil, err
		}
		idx, seen := byID[a.ID]
		if !seen {
			out = append(out, a)
			idx = len(out) - 1
			byID[a.ID] = idx
		}
		if bookID != nil {
			out[idx].Books = append(out[idx].Books, model.Book{
				ID:         *bookID,
				Title:      *title,
				AuthorID:   a.ID,
				LoanStatus: *status,
				CreatedAt:  *createdAt,
			})
		}
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, id int64, fullName string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE authors SET full_name = $2 WHERE id = $1`, id, fullName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
