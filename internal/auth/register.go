package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/buy2brands/wholesale-api/internal/users"
	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/security"
)

const emailTakenMessage = "email already registered"

// Register creates a buyer account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.BusinessType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid business type")
	}
	if req.NumberOfStores < 1 {
		req.NumberOfStores = 1
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, security.ErrWeakPassword) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "password too weak").
			WithDetails(map[string]string{"password": strings.TrimPrefix(err.Error(), security.ErrWeakPassword.Error()+": ")})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	active := true
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:               email,
		PasswordHash:        passwordHash,
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		ContactNumber:       strings.TrimSpace(req.ContactNumber),
		CompanyName:         strings.TrimSpace(req.CompanyName),
		Website:             req.Website,
		BusinessDescription: req.BusinessDescription,
		BusinessType:        req.BusinessType,
		NumberOfStores:      req.NumberOfStores,
		BillingAddress:      req.BillingAddress,
		DispatchAddress:     req.DispatchAddress,
		ContactPreferences:  req.ContactPreferences,
		Role:                enums.UserRoleUser,
		IsActive:            &active,
	})
	if err != nil {
		// a concurrent sign-up with the same address loses on the unique index
		if db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issue(ctx, user, s.now())
}
