package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/user"
)

type userRepository struct {
	repo
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repo{exec: exec}}
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		LastLogin:    null.NewTime(row.LastLogin.Time.UTC(), row.LastLogin.Valid),
	}
}

const userColumns = "id, username, password_hash, created_at, last_login"

func (r userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	id, err := insert(ctx, r.getExec(exec),
		"INSERT INTO users (username, password_hash, created_at, last_login) VALUES (?, ?, ?, ?)",
		usr.Username, usr.PasswordHash, usr.CreatedAt.UTC(), usr.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = id
	return usr, nil
}

func (r userRepository) UsernameExists(ctx context.Context, username string, exec ...core.DBExecutor) (bool, error) {
	n, err := count(ctx, r.getExec(exec), "SELECT COUNT(*) FROM users WHERE username = ?", username)
	if err != nil {
		return false, errors.Wrap(err, "checking username uniqueness")
	}
	return n > 0, nil
}

func (r userRepository) GetUserByID(ctx context.Context, id int64, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	if err := get(ctx, r.getExec(exec), &row, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user by ID")
	}
	return row.toUser(), nil
}

func (r userRepository) GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	if err := get(ctx, r.getExec(exec), &row, "SELECT "+userColumns+" FROM users WHERE username = ?", username); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user by username")
	}
	return row.toUser(), nil
}

func (r userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	err := execOne(ctx, r.getExec(exec), user.ErrNotFound, "updating user",
		"UPDATE users SET username = ?, password_hash = ?, last_login = ? WHERE id = ?",
		usr.Username, usr.PasswordHash, usr.LastLogin, usr.ID,
	)
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}
