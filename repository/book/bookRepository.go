package bookrepo

import (
	"context"
	"errors"

	"github.com/ceciliaMar/Virtual-Library/model"
	"github.com/ceciliaMar/Virtual-Library/util/database"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("book not found")
	ErrOnLoan   = errors.New("book is on loan")
)

type Repo interface {
	Create(ctx context.Context, title string, authorID int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, title *string, authorID *int64) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, title string, authorID int64) (*model.Book, error) {
	const q = `
		INSERT INTO books (title, author_id, loan_status)
		VALUES ($1, $2, 'AVAILABLE')
		RETURNING id, created_at`
	b := &model.Book{Title: title, AuthorID: authorID, LoanStatus: model.BookAvailable}
	if err := r.db.Pool.QueryRow(ctx, q, title, authorID).Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.author_id, b.loan_status, b.active_rent_id, b.created_at,
			a.id, a.full_name
		FROM books b
		JOIN authors a ON a.id = b.author_id
		ORDER BY b.id DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		var a model.Author
		if err := rows.Scan(
			&b.ID, &b.Title, &b.AuthorID, &b.LoanStatus, &b.ActiveRentID, &b.CreatedAt,
			&a.ID, &a.FullName,
		); err != nil {
			return nil, err
		}
		b.Author = &a
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.author_id, b.loan_status, b.active_rent_id, b.created_at,
			a.id, a.full_name
		FROM books b
		JOIN authors a ON a.id = b.author_id
		WHERE b.id = $1`
	var b model.Book
	var a model.Author
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.AuthorID, &b.LoanStatus, &b.ActiveRentID, &b.CreatedAt,
		&a.ID, &a.FullName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Author = &a
	return &b, nil
}

func (r *repo) Update(ctx context.Context, id int64, title *string, authorID *int64) error {
	const q = `
		UPDATE books
		SET title = COALESCE($2, title),
			author_id = COALESCE($3, author_id)
		WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, title, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	// A loaned book stays in the catalog until it comes back.
	const q = `
		DELETE FROM books
		WHERE id = $1
		AND loan_status = 'AVAILABLE'`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var status model.LoanStatus
		err := r.db.Pool.QueryRow(ctx, `SELECT loan_status FROM books WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrOnLoan
	}
	return nil
}
