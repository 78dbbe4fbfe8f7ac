package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// UserService manages registered users. Every operation is admin-only.
type UserService struct {
	Deps
}

// NewUserService constructs a UserService.
func NewUserService(d Deps) *UserService {
	return &UserService{Deps: d.withDefaults()}
}

// Register adds a user. Emails are unique.
func (s *UserService) Register(ctx context.Context, caller model.Caller, in model.User) (*model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := checkLen("name", in.Name, 2, 250); err != nil {
		return nil, err
	}
	if err := checkLen("email", in.Email, 6, 254); err != nil {
		return nil, err
	}
	if !isValidEmail(in.Email) {
		return nil, badRequest("email %q is not a valid address", in.Email)
	}

	exists, err := s.Store.Users().ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, storage(err, "check email")
	}
	if exists {
		return nil, conflict("email %s is already registered", in.Email)
	}

	u := &model.User{Name: in.Name, Email: in.Email}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("email %s is already registered", in.Email)
		}
		return nil, storage(err, "create user")
	}

	s.log(ctx).WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, caller model.Caller, userID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.Store.Users().Delete(ctx, userID); err != nil {
		return storage(err, "user with id=%d", userID)
	}
	s.log(ctx).WithFields(logrus.Fields{"user_id": userID}).Info("user deleted")
	return nil
}

// List returns users, optionally restricted to ids, one page at a time.
func (s *UserService) List(ctx context.Context, caller model.Caller, ids []int64, page Page) ([]model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := page.validate(); err != nil {
		return nil, err
	}
	users, err := s.Store.Users().List(ctx, ids, page.offset(), page.Size)
	if err != nil {
		return nil, storage(err, "list users")
	}
	return users, nil
}
