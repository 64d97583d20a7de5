package booksvc

import (
	"context"
	"errors"

	"github.com/ceciliaMar/Virtual-Library/model"
	authorrepo "github.com/ceciliaMar/Virtual-Library/repository/author"
	bookrepo "github.com/ceciliaMar/Virtual-Library/repository/book"
)

var (
	ErrNotFound       = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrOnLoan         = errors.New("book is on loan")
)

type Repo interface {
	Create(ctx context.Context, title string, authorID int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, title *string, authorID *int64) error
	Delete(ctx context.Context, id int64) error
}

type Authors interface {
	ByID(ctx context.Context, id int64) (*model.Author, error)
}

type Service interface {
	Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, req model.UpdateBookReq) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	r Repo
	a Authors
}

func New(r Repo, a Authors) Service { return &service{r: r, a: a} }

func (s *service) Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error) {
	author, err := s.a.ByID(ctx, req.AuthorID)
	if err != nil {
		if errors.Is(err, authorrepo.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	b, err := s.r.Create(ctx, req.Title, author.ID)
	if err != nil {
		return nil, err
	}
	b.Author = author
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if errors.Is(err, bookrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *service) Update(ctx context.Context, id int64, req model.UpdateBookReq) error {
	if req.AuthorID != nil {
		if _, err := s.a.ByID(ctx, *req.AuthorID); err != nil {
			if errors.Is(err, authorrepo.ErrNotFound) {
				return ErrAuthorNotFound
			}
			return err
		}
	}
	err := s.r.Update(ctx, id, req.Title, req.AuthorID)
	if errors.Is(err, bookrepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.Delete(ctx, id)
	switch {
	case errors.Is(err, bookrepo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, bookrepo.ErrOnLoan):
		return ErrOnLoan
	}
	return err
}
