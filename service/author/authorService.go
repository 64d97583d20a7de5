package authorsvc

import (
	"context"
	"errors"

	"github.com/ceciliaMar/Virtual-Library/model"
	authorrepo "github.com/ceciliaMar/Virtual-Library/repository/author"
)

var (
	ErrNotFound  = errors.New("author not found")
	ErrNameTaken = errors.New("author already exists")
)

type Repo interface {
	Create(ctx context.Context, fullName string) (*model.Author, error)
	ByID(ctx context.Context, id int64) (*model.Author, error)
	ByName(ctx context.Context, fullName string) (*model.Author, error)
	List(ctx context.Context) ([]model.Author, error)
	Update(ctx context.Context, id int64, fullName string) error
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	Create(ctx context.Context, fullName string) (*model.Author, error)
	List(ctx context.Context) ([]model.Author, error)
	Detail(ctx context.Context, id int64) (*model.Author, error)
	Update(ctx context.Context, id int64, fullName string) error
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, fullName string) (*model.Author, error) {
	if _, err := s.r.ByName(ctx, fullName); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, authorrepo.ErrNotFound) {
		return nil, err
	}
	return s.r.Create(ctx, fullName)
}

func (s *service) List(ctx context.Context) ([]model.Author, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.Author, error) {
	a, err := s.r.ByID(ctx, id)
	if errors.Is(err, authorrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *service) Update(ctx context.Context, id int64, fullName string) error {
	err := s.r.Update(ctx, id, fullName)
	if errors.Is(err, authorrepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.Delete(ctx, id)
	if errors.Is(err, authorrepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
