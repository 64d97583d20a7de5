package model

type Author struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`

	Books []Book `json:"books,omitempty"`
}

// CreateAuthorReq represents author creation payload
// swagger:model CreateAuthorReq
type CreateAuthorReq struct {
	FullName string `json:"full_name" validate:"required,min=3,max=64"`
}

type UpdateAuthorReq struct {
	FullName string `json:"full_name" validate:"required,min=3,max=64"`
}
