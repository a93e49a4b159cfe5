package actions

import (
	"context"

	"github.com/carson-networks/expense-server/internal/storage"
)

type RegisterUser struct {
	Username     string
	Email        string
	PasswordHash string

	Created *storage.User
}

func (r *RegisterUser) Perform(ctx context.Context, writer storage.Writer) error {
	created, err := writer.Users().Insert(ctx, &storage.User{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	})
	if err != nil {
		return err
	}

	r.Created = created
	return nil
}
