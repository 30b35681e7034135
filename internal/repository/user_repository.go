package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// UserRepository manages application users and their refresh tokens.
type UserRepository struct {
	users  *collection[models.User]
	tokens *collection[models.RefreshToken]
}

// NewUserRepository constructs the repository.
func NewUserRepository(store *recordstore.Store) *UserRepository {
	return &UserRepository{
		users:  newCollection[models.User](store, keyUsers, nil),
		tokens: newCollection[models.RefreshToken](store, keyRefreshTokens, nil),
	}
}

// FindByEmail returns the user or nil when absent. Emails match
// case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) *models.User {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users.snapshot(ctx) {
		if strings.ToLower(u.Email) == email {
			return &u
		}
	}
	return nil
}

// FindByID returns the user or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) *models.User {
	for _, u := range r.users.snapshot(ctx) {
		if u.ID == id {
			return &u
		}
	}
	return nil
}

// List returns users matching the filter.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) []models.User {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []models.User
	for _, u := range r.users.snapshot(ctx) {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.FullName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Save inserts or replaces a user by id.
func (r *UserRepository) Save(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	err := r.users.update(ctx, func(records []models.User) []models.User {
		return recordstore.Upsert(records, []models.User{user}, func(a, b models.User) bool {
			return a.ID == b.ID
		})
	})
	return user, err
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return r.users.update(ctx, func(records []models.User) []models.User {
		for i := range records {
			if records[i].ID == id {
				records[i].LastLogin = &ts
				records[i].UpdatedAt = ts
				break
			}
		}
		return records
	})
}

// CreateRefreshToken persists a new refresh token.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	return r.tokens.update(ctx, func(records []models.RefreshToken) []models.RefreshToken {
		return append(records, token)
	})
}

// FindRefreshToken returns the token record or nil when absent.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) *models.RefreshToken {
	for _, t := range r.tokens.snapshot(ctx) {
		if t.Token == token {
			return &t
		}
	}
	return nil
}

// RevokeRefreshToken marks one token revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return r.tokens.update(ctx, func(records []models.RefreshToken) []models.RefreshToken {
		for i := range records {
			if records[i].ID == id {
				records[i].Revoked = true
				records[i].RevokedAt = &revokedAt
				break
			}
		}
		return records
	})
}

// RevokeUserRefreshTokens revokes every live token a user holds.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	return r.tokens.update(ctx, func(records []models.RefreshToken) []models.RefreshToken {
		for i := range records {
			if records[i].UserID == userID && !records[i].Revoked {
				records[i].Revoked = true
				records[i].RevokedAt = &now
			}
		}
		return records
	})
}
