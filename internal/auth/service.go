package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/advotecate/advotecate/internal/rbac"
)

// ErrInvalidCredentials indicates a failed login. It covers unknown email,
// wrong password and disabled accounts so the response never reveals which.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// Grants returns the user's organization memberships and custom permission
// grants for embedding into tokens.
func (s *Service) Grants(ctx context.Context, userID string) (orgs []string, grants []string, err error) {
	orgs, err = s.repo.Organizations(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	grants, err = s.repo.CustomGrants(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return orgs, grants, nil
}

// GrantsToPermissions converts "resource:action" grant strings into
// permission values. Malformed entries are skipped.
func GrantsToPermissions(grants []string) []rbac.Permission {
	perms := make([]rbac.Permission, 0, len(grants))
	for _, grant := range grants {
		resource, action, ok := strings.Cut(grant, ":")
		if !ok || resource == "" || action == "" {
			continue
		}
		perms = append(perms, rbac.Permission{Resource: resource, Action: action})
	}
	return perms
}
