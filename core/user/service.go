package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user not found")
	ErrUsernameExists     = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		UsernameExists(ctx context.Context, username string, exec ...core.DBExecutor) (bool, error)
		GetUserByID(ctx context.Context, id int64, exec ...core.DBExecutor) (User, error)
		GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	// RegisterHook runs in the registration transaction, right after the user row is inserted.
	RegisterHook func(ctx context.Context, exec core.DBExecutor, userID int64) error

	Service struct {
		db         core.DB
		repo       Repository
		onRegister []RegisterHook
	}
)

func NewService(db core.DB, repo Repository, hooks ...RegisterHook) *Service {
	return &Service{db: db, repo: repo, onRegister: hooks}
}

// Register creates a user (expects a validated NewUser) and runs the register hooks atomically.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Username:  nu.Username,
		CreatedAt: nowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		exists, err := svc.repo.UsernameExists(ctx, usr.Username, tx)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameExists
		}

		if usr, err = svc.repo.CreateUser(ctx, usr, tx); err != nil {
			return err
		}
		for _, hook := range svc.onRegister {
			if err := hook(ctx, tx, usr.ID); err != nil {
				return errors.Wrap(err, "running register hook")
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return usr, nil
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, username, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = null.TimeFrom(nowFunc().UTC())
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(username))
}

// ResetPassword sets a new password (expects a validated password).
func (svc *Service) ResetPassword(ctx context.Context, username, pwd string) error {
	usr, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}
