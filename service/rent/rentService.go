package rent

import (
	"context"
	"errors"
	"time"

	"github.com/ceciliaMar/Virtual-Library/model"
	rentrepo "github.com/ceciliaMar/Virtual-Library/repository/rent"
	userrepo "github.com/ceciliaMar/Virtual-Library/repository/user"
	"github.com/ceciliaMar/Virtual-Library/util/metrics"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrBookUnavailable ErrCode = "BOOK_UNAVAILABLE"
	ErrRentLimit       ErrCode = "RENT_LIMIT"
	ErrNotOnLoan       ErrCode = "NOT_ON_LOAN"
	ErrStateConflict   ErrCode = "STATE_CONFLICT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// MaxOpenRents is how many books a user may hold at once.
const MaxOpenRents = 3

// Ledger is the slice of the rent repository this service needs.
type Ledger interface {
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	GetRent(ctx context.Context, id int64) (*model.Rent, error)
	GetOpenRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error)
	CreateRentAndMarkLoaned(ctx context.Context, bookID, userID int64, checkoutDate time.Time, maxOpen int) (*model.Rent, error)
	CloseRentAndMarkAvailable(ctx context.Context, bookID, rentID int64, returnDate time.Time) (*model.Rent, *model.Book, error)
	ListRents(ctx context.Context) ([]model.Rent, error)
	ListRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error)
}

// Users is the identity read this service needs.
type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// Returned is what Close hands back; the controller turns it into the
// user-facing message.
type Returned struct {
	Book        *model.Book
	Rent        *model.Rent
	Penalty     int64
	DaysElapsed int
}

type Service interface {
	// Open checks the book out to the user.
	Open(ctx context.Context, bookID, userID int64) (*model.Rent, error)

	// Close returns the book identified by bookID and settles the penalty.
	Close(ctx context.Context, bookID int64) (*Returned, error)

	// OpenRentsForUser lists the user's outstanding rents.
	OpenRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error)

	// Availability reports the loan status and, while out, the expected
	// return date.
	Availability(ctx context.Context, bookID int64) (*model.Availability, error)

	// History lists every rent the user ever had, open and closed.
	History(ctx context.Context, userID int64) ([]model.Rent, error)

	// ListAll lists every rent on record.
	ListAll(ctx context.Context) ([]model.Rent, error)
}

// ----- Service implementation -----

type service struct {
	ledger Ledger
	users  Users
	now    func() time.Time
}

func New(ledger Ledger, users Users) Service {
	return &service{ledger: ledger, users: users, now: time.Now}
}

func (s *service) Open(ctx context.Context, bookID, userID int64) (*model.Rent, error) {
	book, err := s.ledger.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, rentrepo.ErrNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	// Unavailability wins over any per-user condition; callers get the
	// same answer no matter who asks.
	if book.LoanStatus == model.BookOnLoan {
		return nil, makeErr(ErrBookUnavailable)
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}

	open, err := s.ledger.GetOpenRentsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(open) >= MaxOpenRents {
		return nil, makeErr(ErrRentLimit)
	}

	rent, err := s.ledger.CreateRentAndMarkLoaned(ctx, bookID, userID, s.now().UTC(), MaxOpenRents)
	if err != nil {
		switch {
		case errors.Is(err, rentrepo.ErrConflict):
			// a concurrent open won the book; no retry here
			metrics.RentConflicts.Inc()
			return nil, makeErr(ErrBookUnavailable)
		case errors.Is(err, rentrepo.ErrRentLimit):
			return nil, makeErr(ErrRentLimit)
		case errors.Is(err, rentrepo.ErrNotFound):
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}
	metrics.RentsOpened.Inc()

	rent.Book = book
	rent.User = user
	return rent, nil
}

func (s *service) Close(ctx context.Context, bookID int64) (*Returned, error) {
	book, err := s.ledger.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, rentrepo.ErrNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.LoanStatus != model.BookOnLoan || book.ActiveRentID == nil {
		return nil, makeErr(ErrNotOnLoan)
	}

	returnDate := s.now().UTC()
	rent, updated, err := s.ledger.CloseRentAndMarkAvailable(ctx, bookID, *book.ActiveRentID, returnDate)
	if err != nil {
		if errors.Is(err, rentrepo.ErrConflict) {
			metrics.RentConflicts.Inc()
			return nil, makeErr(ErrStateConflict)
		}
		return nil, err
	}

	penalty, days := Penalty(rent.CheckoutDate, returnDate)
	metrics.RentsClosed.Inc()
	if penalty > 0 {
		metrics.PenaltiesAssessed.Inc()
		metrics.PenaltyAmount.Add(float64(penalty))
	}

	return &Returned{Book: updated, Rent: rent, Penalty: penalty, DaysElapsed: days}, nil
}

func (s *service) OpenRentsForUser(ctx context.Context, userID int64) ([]model.Rent, error) {
	return s.ledger.GetOpenRentsForUser(ctx, userID)
}

func (s *service) Availability(ctx context.Context, bookID int64) (*model.Availability, error) {
	book, err := s.ledger.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, rentrepo.ErrNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	out := &model.Availability{Status: book.LoanStatus}
	if book.LoanStatus == model.BookOnLoan && book.ActiveRentID != nil {
		rent, err := s.ledger.GetRent(ctx, *book.ActiveRentID)
		if err != nil {
			return nil, err
		}
		est := EstimatedReturnDate(rent.CheckoutDate)
		out.EstimatedReturnDate = &est
	}
	return out, nil
}

func (s *service) History(ctx context.Context, userID int64) ([]model.Rent, error) {
	return s.ledger.ListRentsForUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]model.Rent, error) {
	return s.ledger.ListRents(ctx)
}
