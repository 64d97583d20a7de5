// model/rent.go
package model

import "time"

// Rent is one lending record. ReturnDate stays nil while the book is
// out; setting it closes the rent for good.
type Rent struct {
	ID           int64      `json:"id"`
	BookID       int64      `json:"book_id"`
	UserID       int64      `json:"user_id"`
	CheckoutDate time.Time  `json:"checkout_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`

	Book *Book `json:"book,omitempty"`
	User *User `json:"user,omitempty"`
}

// Open reports whether the rent is still outstanding.
func (r Rent) Open() bool { return r.ReturnDate == nil }

// OpenRentRow is the joined shape the overdue scan reads: one row per
// open rent with the book and the renting user resolved.
type OpenRentRow struct {
	RentID       int64     `json:"rent_id"`
	BookID       int64     `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	CheckoutDate time.Time `json:"checkout_date"`
}

// CreateRentReq represents rent creation payload
// swagger:model CreateRentReq
type CreateRentReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
