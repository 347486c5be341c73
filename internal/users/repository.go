package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"energienachweise/marketplace-backend/internal/auth"
)

// Repository handles all database operations for users
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, user *User) error
	ListUnverifiedExperts(ctx context.Context) ([]User, error)
	SearchVerifiedExperts(ctx context.Context, fachbereich string, limit int) ([]User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) Save(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormRepository) ListUnverifiedExperts(ctx context.Context) ([]User, error) {
	var experts []User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_verified = ?", auth.RoleExperte, false).
		Order("created_at").
		Find(&experts).Error
	return experts, err
}

func (r *gormRepository) SearchVerifiedExperts(ctx context.Context, fachbereich string, limit int) ([]User, error) {
	q := r.db.WithContext(ctx).
		Where("role = ? AND is_verified = ?", auth.RoleExperte, true)
	if fachbereich != "" {
		q = q.Where("fachbereiche ILIKE ?", "%"+escapeLike(fachbereich)+"%")
	}
	var experts []User
	err := q.Limit(limit).Find(&experts).Error
	return experts, err
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
