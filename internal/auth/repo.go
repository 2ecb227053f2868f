package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no account matches the lookup.
var ErrNotFound = errors.New("auth: account not found")

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Organizations(ctx context.Context, userID string) ([]string, error)
	// CustomGrants returns per-user permission grants as "resource:action"
	// pairs. These ride along in the access token and short-circuit role
	// evaluation.
	CustomGrants(ctx context.Context, userID string) ([]string, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `SELECT id, email, password_hash, role, kyc_status, is_active, created_at, updated_at
		FROM users WHERE email = $1`
	var account Account
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.KYCStatus, &account.IsActive, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("auth: find by email: %w", err)
	}
	return &account, nil
}

// Organizations returns the ids of organizations the user belongs to.
func (r *PGRepository) Organizations(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT organization_id FROM organization_members WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("auth: organizations: %w", err)
	}
	defer rows.Close()

	var orgs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("auth: organizations scan: %w", err)
		}
		orgs = append(orgs, id)
	}
	return orgs, rows.Err()
}

// CustomGrants returns the user's extra permission grants.
func (r *PGRepository) CustomGrants(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT resource, action FROM user_permissions WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("auth: custom grants: %w", err)
	}
	defer rows.Close()

	var grants []string
	for rows.Next() {
		var resource, action string
		if err := rows.Scan(&resource, &action); err != nil {
			return nil, fmt.Errorf("auth: custom grants scan: %w", err)
		}
		grants = append(grants, resource+":"+action)
	}
	return grants, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
