package postgres

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/expense-server/internal/storage"
)

const usersTable = "users"

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

var userMapper = scan.StructMapper[*userRow]()

func userColumns() []any {
	return []any{
		psql.Quote("id"),
		psql.Quote("username"),
		psql.Quote("email"),
		psql.Quote("password_hash"),
		psql.Quote("created_at"),
	}
}

type userTable struct {
	exec bob.Executor
}

var _ storage.UserWriter = (*userTable)(nil)

func (t *userTable) FindByUsername(ctx context.Context, username string) (*storage.User, error) {
	q := psql.Select(
		sm.Columns(userColumns()...),
		sm.From(usersTable),
		sm.Where(psql.Quote("username").EQ(psql.Arg(username))),
	)
	row, err := bob.One(ctx, t.exec, q, userMapper)
	if err != nil {
		return nil, translate(err)
	}
	return row.toUser(), nil
}

func (t *userTable) Insert(ctx context.Context, u *storage.User) (*storage.User, error) {
	q := psql.Insert(
		im.Into(usersTable, "username", "email", "password_hash"),
		im.Values(psql.Arg(u.Username, u.Email, u.PasswordHash)),
		im.Returning(userColumns()...),
	)
	row, err := bob.One(ctx, t.exec, q, userMapper)
	if err != nil {
		return nil, translate(err)
	}
	return row.toUser(), nil
}

func (r *userRow) toUser() *storage.User {
	return &storage.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}
