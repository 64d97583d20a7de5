// repository/rent/repo.go
package rentrepo

import (
	"context"
	"errors"
	"time"

	"github.com/ceciliaMar/Virtual-Library/model"
	"github.com/ceciliaMar/Virtual-Library/util/database"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrRentLimit = errors.New("rent limit reached")
)

// Repo is the rental ledger: it owns the compound Book+Rent writes.
// CreateRentAndMarkLoaned and CloseRentAndMarkAvailable each run as one
// transaction, so the book row and its rent row can never disagree.
type Repo interface {
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	GetRent(ctx context.Context, id int64) (*model.Rent, error)
	GetOpenRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error)

	// CreateRentAndMarkLoaned inserts an open rent and flips the book to
	// ON_LOAN. ErrConflict when the book is already out at commit time,
	// ErrRentLimit when the user holds maxOpen open rents, ErrNotFound
	// when the user row is gone.
	CreateRentAndMarkLoaned(ctx context.Context, bookID, userID int64, checkoutDate time.Time, maxOpen int) (*model.Rent, error)

	// CloseRentAndMarkAvailable stamps return_date on the rent and frees
	// the book. ErrConflict when the rent is already closed or is not the
	// book's active rent.
	CloseRentAndMarkAvailable(ctx context.Context, bookID, rentID int64, returnDate time.Time) (*model.Rent, *model.Book, error)

	// ListOpenRents is the overdue-scan read: every open rent joined with
	// its book and renting user, one consistent pass.
	ListOpenRents(ctx context.Context) ([]model.OpenRentRow, error)

	ListRents(ctx context.Context) ([]model.Rent, error)
	ListRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author_id, loan_status, active_rent_id, created_at
		FROM books
		WHERE id = $1`
	b := &model.Book{}
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&b.ID, &b.Title, &b.AuthorID, &b.LoanStatus, &b.ActiveRentID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) GetRent(ctx context.Context, id int64) (*model.Rent, error) {
	const q = `
		SELECT id, book_id, user_id, checkout_date, return_date
		FROM rents
		WHERE id = $1`
	rn := &model.Rent{}
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&rn.ID, &rn.BookID, &rn.UserID, &rn.CheckoutDate, &rn.ReturnDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rn, nil
}

func (r *repo) GetOpenRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error) {
	const q = `
		SELECT id, book_id, user_id, checkout_date, return_date
		FROM rents
		WHERE user_id = $1
		AND return_date IS NULL`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRents(rows)
}

func (r *repo) CreateRentAndMarkLoaned(ctx context.Context, bookID, userID int64, checkoutDate time.Time, maxOpen int) (*model.Rent, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the user row so concurrent opens by the same user serialize;
	// the open-rent count below is then race-free.
	var uid int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var open int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM rents WHERE user_id = $1 AND return_date IS NULL`,
		userID,
	).Scan(&open)
	if err != nil {
		return nil, err
	}
	if open >= maxOpen {
		return nil, ErrRentLimit
	}

	rent := &model.Rent{BookID: bookID, UserID: userID, CheckoutDate: checkoutDate}
	err = tx.QueryRow(ctx, `
		INSERT INTO rents (book_id, user_id, checkout_date)
		VALUES ($1, $2, $3)
		RETURNING id`,
		bookID, userID, checkoutDate,
	).Scan(&rent.ID)
	if err != nil {
		return nil, err
	}

	// Guard: only an available book may be taken. Zero rows means a
	// concurrent open won, or the book vanished; either way the caller
	// lost the race.
	tag, err := tx.Exec(ctx, `
		UPDATE books
		SET loan_status = 'ON_LOAN',
			active_rent_id = $2
		WHERE id = $1
		AND loan_status = 'AVAILABLE'`,
		bookID, rent.ID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rent, nil
}

func (r *repo) CloseRentAndMarkAvailable(ctx context.Context, bookID, rentID int64, returnDate time.Time) (*model.Rent, *model.Book, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	rent := &model.Rent{ID: rentID, ReturnDate: &returnDate}
	err = tx.QueryRow(ctx, `
		UPDATE rents
		SET return_date = $2
		WHERE id = $1
		AND return_date IS NULL
		RETURNING book_id, user_id, checkout_date`,
		rentID, returnDate,
	).Scan(&rent.BookID, &rent.UserID, &rent.CheckoutDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrConflict
	}
	if err != nil {
		return nil, nil, err
	}

	b := &model.Book{}
	err = tx.QueryRow(ctx, `
		UPDATE books
		SET loan_status = 'AVAILABLE',
			active_rent_id = NULL
		WHERE id = $1
		AND active_rent_id = $2
		RETURNING id, title, author_id, loan_status, active_rent_id, created_at`,
		bookID, rentID,
	).Scan(&b.ID, &b.Title, &b.AuthorID, &b.LoanStatus, &b.ActiveRentID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrConflict
	}
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return rent, b, nil
}

func (r *repo) ListOpenRents(ctx context.Context) ([]model.OpenRentRow, error) {
	const q = `
		SELECT r.id, r.book_id, b.title, r.user_id, u.full_name, u.email, r.checkout_date
		FROM rents r
		JOIN books b ON b.id = r.book_id
		JOIN users u ON u.id = r.user_id
		WHERE r.return_date IS NULL
		ORDER BY r.checkout_date`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OpenRentRow
	for rows.Next() {
		var e model.OpenRentRow
		if err := rows.Scan(
			&e.RentID, &e.BookID, &e.BookTitle,
			&e.UserID, &e.UserName, &e.UserEmail, &e.CheckoutDate,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) ListRents(ctx context.Context) ([]model.Rent, error) {
	const q = `
		SELECT id, book_id, user_id, checkout_date, return_date
		FROM rents
		ORDER BY checkout_date DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRents(rows)
}

func (r *repo) ListRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error) {
	const q = `
		SELECT id, book_id, user_id, checkout_date, return_date
		FROM rents
		WHERE user_id = $1
		ORDER BY checkout_date DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRents(rows)
}

func scanRents(rows pgx.Rows) ([]model.Rent, error) {
	var out []model.Rent
	for rows.Next() {
		var rn model.Rent
		if err := rows.Scan(&rn.ID, &rn.BookID, &rn.UserID, &rn.CheckoutDate, &rn.ReturnDate); err != nil {
			return nil, err
		}
		out = append(out, rn)
	}
	return out, rows.Err()
}
