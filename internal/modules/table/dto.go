package table

import "karaoke/internal/domain"

type CreateTableRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
	Nick     string `json:"nick" binding:"required,min=2,max=32"`
}

// JoinResponse carries the minted session: the token is the only
// credential a guest ever holds.
type JoinResponse struct {
	Token string        `json:"token"`
	Guest *domain.Guest `json:"guest"`
	Table *domain.Table `json:"table"`
}
