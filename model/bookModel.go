// model/book.go
package model

import "time"

type LoanStatus string

const (
	BookAvailable LoanStatus = "AVAILABLE"
	BookOnLoan    LoanStatus = "ON_LOAN"
)

type Book struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	AuthorID     int64      `json:"author_id"`
	LoanStatus   LoanStatus `json:"loan_status"`
	ActiveRentID *int64     `json:"active_rent_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	// joined when the caller asked for relations
	Author *Author `json:"author,omitempty"`
}

// Availability is what GET /books/:id/availability returns: the loan
// status plus, while the book is out, the date it should come back.
type Availability struct {
	Status              LoanStatus `json:"status"`
	EstimatedReturnDate *time.Time `json:"estimated_return_date,omitempty"`
}

// CreateBookReq represents book creation payload
// swagger:model CreateBookReq
type CreateBookReq struct {
	Title    string `json:"title" validate:"required,min=3,max=64"`
	AuthorID int64  `json:"author_id" validate:"required,gt=0"`
}

// UpdateBookReq carries optional fields; nil means leave unchanged.
type UpdateBookReq struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=3,max=64"`
	AuthorID *int64  `json:"author_id,omitempty" validate:"omitempty,gt=0"`
}
