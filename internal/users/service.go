package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/google/uuid"
)

// Service covers profile self-service and account administration.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	List(ctx context.Context, search string, params pagination.Params) (*UserList, error)
	SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error)
	SetRole(ctx context.Context, actorID, userID uuid.UUID, role enums.UserRole) (*UserDTO, error)
	Delete(ctx context.Context, actorID, userID uuid.UUID) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, params pagination.Params) ([]models.User, string, error)
}

type service struct {
	repo userStore
}

// NewService builds the users service.
func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	if input.BusinessType != nil && !input.BusinessType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid business type")
	}
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.ContactNumber != nil {
		updates["contact_number"] = strings.TrimSpace(*input.ContactNumber)
	}
	if input.Website != nil {
		updates["website"] = input.Website
	}
	if input.BusinessDescription != nil {
		updates["business_description"] = input.BusinessDescription
	}
	if input.BusinessType != nil {
		updates["business_type"] = *input.BusinessType
	}
	if input.NumberOfStores != nil {
		updates["number_of_stores"] = *input.NumberOfStores
	}
	if input.BillingAddress != nil {
		updates["billing_address"] = *input.BillingAddress
	}
	if input.DispatchAddress != nil {
		updates["dispatch_address"] = *input.DispatchAddress
	}
	if input.ContactPreferences != nil {
		updates["contact_preferences"] = *input.ContactPreferences
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Me(ctx, userID)
}

func (s *service) List(ctx context.Context, search string, params pagination.Params) (*UserList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, search, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := &UserList{Users: make([]UserDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Users = append(out.Users, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error) {
	if actorID == userID && !active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot deactivate your own account")
	}
	return s.adminUpdate(ctx, userID, map[string]any{"is_active": active})
}

func (s *service) SetRole(ctx context.Context, actorID, userID uuid.UUID, role enums.UserRole) (*UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, `invalid role, must be "user" or "admin"`)
	}
	if actorID == userID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot remove your own admin role")
	}
	return s.adminUpdate(ctx, userID, map[string]any{"role": role})
}

func (s *service) Delete(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "you cannot delete your own account")
	}
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) adminUpdate(ctx context.Context, userID uuid.UUID, updates map[string]any) (*UserDTO, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return s.Me(ctx, userID)
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
