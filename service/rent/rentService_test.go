package rent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ceciliaMar/Virtual-Library/model"
	rentrepo "github.com/ceciliaMar/Virtual-Library/repository/rent"
	userrepo "github.com/ceciliaMar/Virtual-Library/repository/user"

	"github.com/stretchr/testify/require"
)

// memLedger is a mutex-serialized ledger; the compound operations are
// atomic the same way the postgres transactions are.
type memLedger struct {
	mu       sync.Mutex
	books    map[int64]*model.Book
	rents    map[int64]*model.Rent
	nextRent int64
}

var _ Ledger = (*memLedger)(nil)

func newMemLedger() *memLedger {
	return &memLedger{
		books: map[int64]*model.Book{},
		rents: map[int64]*model.Rent{},
	}
}

func (m *memLedger) addBook(id int64, title string) {
	m.books[id] = &model.Book{ID: id, Title: title, AuthorID: 1, LoanStatus: model.BookAvailable}
}

func (m *memLedger) GetBook(_ context.Context, id int64) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, rentrepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memLedger) GetRent(_ context.Context, id int64) (*model.Rent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rents[id]
	if !ok {
		return nil, rentrepo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memLedger) GetOpenRentsForUser(_ context.Context, userID int64) ([]model.Rent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openRentsLocked(userID), nil
}

func (m *memLedger) openRentsLocked(userID int64) []model.Rent {
	var out []model.Rent
	for _, r := range m.rents {
		if r.UserID == userID && r.ReturnDate == nil {
			out = append(out, *r)
		}
	}
	return out
}

func (m *memLedger) CreateRentAndMarkLoaned(_ context.Context, bookID, userID int64, checkoutDate time.Time, maxOpen int) (*model.Rent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.openRentsLocked(userID)) >= maxOpen {
		return nil, rentrepo.ErrRentLimit
	}
	b, ok := m.books[bookID]
	if !ok || b.LoanStatus != model.BookAvailable {
		return nil, rentrepo.ErrConflict
	}
	m.nextRent++
	r := &model.Rent{ID: m.nextRent, BookID: bookID, UserID: userID, CheckoutDate: checkoutDate}
	m.rents[r.ID] = r
	b.LoanStatus = model.BookOnLoan
	rid := r.ID
	b.ActiveRentID = &rid
	cp := *r
	return &cp, nil
}

func (m *memLedger) CloseRentAndMarkAvailable(_ context.Context, bookID, rentID int64, returnDate time.Time) (*model.Rent, *model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rents[rentID]
	if !ok || r.ReturnDate != nil {
		return nil, nil, rentrepo.ErrConflict
	}
	b, ok := m.books[bookID]
	if !ok || b.ActiveRentID == nil || *b.ActiveRentID != rentID {
		return nil, nil, rentrepo.ErrConflict
	}
	rd := returnDate
	r.ReturnDate = &rd
	b.LoanStatus = model.BookAvailable
	b.ActiveRentID = nil
	rc, bc := *r, *b
	return &rc, &bc, nil
}

func (m *memLedger) ListRents(_ context.Context) ([]model.Rent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Rent
	for _, r := range m.rents {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memLedger) ListRentsForUser(_ context.Context, userID int64) ([]model.Rent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Rent
	for _, r := range m.rents {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type usersMock struct {
	users map[int64]*model.User
}

func (u *usersMock) ByID(_ context.Context, id int64) (*model.User, error) {
	usr, ok := u.users[id]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	return usr, nil
}

func fixedUsers(ids ...int64) *usersMock {
	m := &usersMock{users: map[int64]*model.User{}}
	for _, id := range ids {
		m.users[id] = &model.User{ID: id, FullName: "User", Email: "user@example.com"}
	}
	return m
}

func newTestService(l Ledger, u Users, now time.Time) *service {
	return &service{ledger: l, users: u, now: func() time.Time { return now }}
}

// --- tests ---

func TestOpen_BookNotFound(t *testing.T) {
	s := newTestService(newMemLedger(), fixedUsers(1), time.Now())
	_, err := s.Open(context.Background(), 99, 1)
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestOpen_UserNotFound(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	s := newTestService(l, fixedUsers(), time.Now())
	_, err := s.Open(context.Background(), 1, 7)
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestOpen_Success(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(l, fixedUsers(1), t0)

	rent, err := s.Open(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, t0, rent.CheckoutDate)
	require.Nil(t, rent.ReturnDate)
	require.NotNil(t, rent.Book)
	require.NotNil(t, rent.User)

	b, err := l.GetBook(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.BookOnLoan, b.LoanStatus)
	require.NotNil(t, b.ActiveRentID)
	require.Equal(t, rent.ID, *b.ActiveRentID)
}

func TestOpen_BookUnavailable(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	s := newTestService(l, fixedUsers(1, 2), time.Now())

	_, err := s.Open(context.Background(), 1, 1)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), 1, 2)
	require.Equal(t, ErrBookUnavailable, Code(err))
}

// An unavailable book reports unavailability even when the requesting
// user is also at their limit.
func TestOpen_UnavailableWinsOverLimit(t *testing.T) {
	l := newMemLedger()
	for i := int64(1); i <= 5; i++ {
		l.addBook(i, "Book")
	}
	s := newTestService(l, fixedUsers(1, 2), time.Now())

	for i := int64(1); i <= 3; i++ {
		_, err := s.Open(context.Background(), i, 1)
		require.NoError(t, err)
	}
	_, err := s.Open(context.Background(), 4, 2)
	require.NoError(t, err)

	// user 1 is at the limit AND book 4 is out; unavailability wins
	_, err = s.Open(context.Background(), 4, 1)
	require.Equal(t, ErrBookUnavailable, Code(err))
}

func TestOpen_RentLimit(t *testing.T) {
	l := newMemLedger()
	for i := int64(1); i <= 4; i++ {
		l.addBook(i, "Book")
	}
	s := newTestService(l, fixedUsers(1), time.Now())

	for i := int64(1); i <= 3; i++ {
		_, err := s.Open(context.Background(), i, 1)
		require.NoError(t, err)
	}

	_, err := s.Open(context.Background(), 4, 1)
	require.Equal(t, ErrRentLimit, Code(err))

	// closing one frees a slot
	_, err = s.Close(context.Background(), 1)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), 4, 1)
	require.NoError(t, err)
}

func TestClose_RoundTrip(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(l, fixedUsers(1), t0)

	opened, err := s.Open(context.Background(), 1, 1)
	require.NoError(t, err)

	s.now = func() time.Time { return t0.Add(2 * 24 * time.Hour) }
	out, err := s.Close(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, opened.ID, out.Rent.ID)
	require.NotNil(t, out.Rent.ReturnDate)
	require.Equal(t, t0.Add(2*24*time.Hour), *out.Rent.ReturnDate)
	require.EqualValues(t, 0, out.Penalty)
	require.Equal(t, 2, out.DaysElapsed)
	require.Equal(t, model.BookAvailable, out.Book.LoanStatus)
	require.Nil(t, out.Book.ActiveRentID)
}

func TestClose_NotOnLoan(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	s := newTestService(l, fixedUsers(1), time.Now())

	_, err := s.Close(context.Background(), 1)
	require.Equal(t, ErrNotOnLoan, Code(err))
}

func TestClose_SecondCallRejected(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	s := newTestService(l, fixedUsers(1), time.Now())

	_, err := s.Open(context.Background(), 1, 1)
	require.NoError(t, err)
	_, err = s.Close(context.Background(), 1)
	require.NoError(t, err)

	_, err = s.Close(context.Background(), 1)
	require.Equal(t, ErrNotOnLoan, Code(err))
}

// Full lifecycle: loan, blocked second loan, late return with penalty,
// loan again.
func TestScenario_LateReturn(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "B1")
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := newTestService(l, fixedUsers(1, 2), t0)

	r1, err := s.Open(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, t0, r1.CheckoutDate)

	_, err = s.Open(context.Background(), 1, 2)
	require.Equal(t, ErrBookUnavailable, Code(err))

	s.now = func() time.Time { return t0.Add(9 * 24 * time.Hour) }
	out, err := s.Close(context.Background(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 200, out.Penalty)
	require.Equal(t, 9, out.DaysElapsed)
	require.Equal(t, model.BookAvailable, out.Book.LoanStatus)

	_, err = s.Open(context.Background(), 1, 2)
	require.NoError(t, err)
}

func TestAvailability(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(l, fixedUsers(1), t0)

	av, err := s.Availability(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.BookAvailable, av.Status)
	require.Nil(t, av.EstimatedReturnDate)

	_, err = s.Open(context.Background(), 1, 1)
	require.NoError(t, err)

	av, err = s.Availability(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.BookOnLoan, av.Status)
	require.NotNil(t, av.EstimatedReturnDate)
	require.Equal(t, t0.AddDate(0, 0, 7), *av.EstimatedReturnDate)

	_, err = s.Availability(context.Background(), 42)
	require.Equal(t, ErrBookNotFound, Code(err))
}

// Concurrent opens against one book: exactly one wins, everyone else
// sees unavailability.
func TestOpen_ConcurrentSameBook(t *testing.T) {
	l := newMemLedger()
	l.addBook(1, "Dune")
	var ids []int64
	for i := int64(1); i <= 16; i++ {
		ids = append(ids, i)
	}
	s := newTestService(l, fixedUsers(ids...), time.Now())

	var wg sync.WaitGroup
	results := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.Open(context.Background(), 1, int64(i+1))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		require.Contains(t, []ErrCode{ErrBookUnavailable, ErrStateConflict}, Code(err))
	}
	require.Equal(t, 1, wins)
}

// Concurrent opens by one user across many books: never more than 3
// succeed.
func TestOpen_ConcurrentRentLimit(t *testing.T) {
	l := newMemLedger()
	for i := int64(1); i <= 10; i++ {
		l.addBook(i, "Book")
	}
	s := newTestService(l, fixedUsers(1), time.Now())

	var wg sync.WaitGroup
	results := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.Open(context.Background(), int64(i+1), 1)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		}
	}
	require.LessOrEqual(t, wins, MaxOpenRents)

	open, err := s.OpenRentsForUser(context.Background(), 1)
	require.NoError(t, err)
	require.LessOrEqual(t, len(open), MaxOpenRents)
}
