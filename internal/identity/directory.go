// Package identity resolves display profiles for user ids. It is decoration
// only: a failed lookup never fails the caller.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// Directory is backed by the local users table. It serves profile lookups and
// the accounts used by the dev register and login endpoints.
type Directory struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDirectory(db *gorm.DB, logger *slog.Logger) *Directory {
	return &Directory{db: db, logger: logger}
}

// Lookup returns the profile for userID. The bool is false when the user is
// unknown or the lookup failed; failures are logged, not returned.
func (d *Directory) Lookup(ctx context.Context, userID string) (Profile, bool) {
	var u models.User
	err := d.db.WithContext(ctx).
		Select("first_name", "last_name", "image_url").
		Where("id = ?", userID).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, false
	}
	if err != nil {
		d.logger.WarnContext(ctx, "profile lookup failed", "user_id", userID, "error", err)
		return Profile{}, false
	}
	return Profile{FirstName: u.FirstName, LastName: u.LastName, ImageURL: u.ImageURL}, true
}

// Create stores a new local account. Username and email must be unused.
func (d *Directory) Create(ctx context.Context, u *models.User) error {
	var taken int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Count(&taken).Error
	if err != nil {
		return apperr.Internal("failed to check existing users", err)
	}
	if taken > 0 {
		return apperr.InvalidArgument("username or email already exists")
	}

	if err := d.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.InvalidArgument("username or email already exists")
		}
		return apperr.Internal("failed to create user", err)
	}
	return nil
}

func (d *Directory) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.find(ctx, "email = ?", email)
}

func (d *Directory) ByID(ctx context.Context, id string) (*models.User, error) {
	return d.find(ctx, "id = ?", id)
}

func (d *Directory) find(ctx context.Context, query string, arg string) (*models.User, error) {
	var u models.User
	err := d.db.WithContext(ctx).Where(query, arg).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return &u, nil
}
