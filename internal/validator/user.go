package validator // import "github.com/Xunop/e-library/internal/validator"

import (
	"context"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/util"
)

func ValidateSignupRequest(ctx context.Context, s *store.Store, user *model.UserSignupRequest) error {
	if err := ValidateStruct(user); err != nil {
		return err
	}
	if !util.UIDMatcher.MatchString(user.Username) {
		return NewFieldError("username", "Enter a valid username.")
	}
	existing, err := s.GetUser(ctx, &model.FindUser{Username: &user.Username})
	if err != nil {
		return err
	}
	if existing != nil {
		return NewFieldError("username", "A user with that username already exists.")
	}
	return nil
}

func ValidateSigninRequest(user *model.UserSigninRequest) error {
	return ValidateStruct(user)
}

func ValidateUserRoleRequest(req *model.UserRoleRequest) error {
	return ValidateStruct(req)
}
