package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"energienachweise/marketplace-backend/internal/auth"
)

var (
	// ErrEmailTaken means the registration email is already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrExpertNotFound means no expert account exists for the given id.
	ErrExpertNotFound = errors.New("expert not found")
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// RegisterCustomerRequest carries customer registration input.
type RegisterCustomerRequest struct {
	Email    string
	Password string
}

// RegisterExpertRequest carries expert registration input.
type RegisterExpertRequest struct {
	Email             string
	Password          string
	Personentyp       Personentyp
	Vorname           *string
	Nachname          *string
	Firmenname        *string
	Fachbereiche      []string
	Mitarbeiteranzahl *int
	Berufsnachweis    *string
}

// Service implements identity operations: registration, verification and
// expert matching.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new users service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterCustomer creates a customer account. Customers are verified from
// the start.
func (s *Service) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RoleKunde,
		IsVerified:   true,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterExpert creates an expert account pending admin verification.
func (s *Service) RegisterExpert(ctx context.Context, req RegisterExpertRequest) (*User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	personentyp := req.Personentyp
	user := &User{
		Email:             req.Email,
		PasswordHash:      hash,
		Role:              auth.RoleExperte,
		Personentyp:       &personentyp,
		Vorname:           req.Vorname,
		Nachname:          req.Nachname,
		Firmenname:        req.Firmenname,
		Fachbereiche:      strings.Join(req.Fachbereiche, ","),
		Mitarbeiteranzahl: req.Mitarbeiteranzahl,
		Berufsnachweis:    req.Berufsnachweis,
		IsVerified:        false,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) create(ctx context.Context, user *User) error {
	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Unique index closes the race between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// ListUnverifiedExperts returns experts awaiting admin verification.
func (s *Service) ListUnverifiedExperts(ctx context.Context) ([]User, error) {
	return s.repo.ListUnverifiedExperts(ctx)
}

// VerifyExpert flips an expert account to verified.
func (s *Service) VerifyExpert(ctx context.Context, expertID uuid.UUID) (*User, error) {
	user, err := s.repo.FindByID(ctx, expertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpertNotFound
		}
		return nil, err
	}
	if user.Role != auth.RoleExperte {
		return nil, ErrExpertNotFound
	}
	user.IsVerified = true
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Expert verified", zap.String("expert_id", user.ID.String()))
	return user, nil
}

// SearchExperts returns verified experts, optionally filtered by a
// case-insensitive Fachbereich substring. The limit defaults to 50 and is
// clamped to 1..200.
func (s *Service) SearchExperts(ctx context.Context, fachbereich string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repo.SearchVerifiedExperts(ctx, fachbereich, limit)
}

// IsVerifiedExpert reports whether the id belongs to a verified expert
// account. Used by the lifecycle engine to validate request targets.
func (s *Service) IsVerifiedExpert(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == auth.RoleExperte && user.IsVerified, nil
}

// PrincipalByID implements auth.PrincipalStore.
func (s *Service) PrincipalByID(ctx context.Context, id uuid.UUID) (auth.Principal, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Principal{}, auth.ErrUnknownPrincipal
		}
		return auth.Principal{}, err
	}
	return user.Principal(), nil
}

// CredentialsByEmail implements auth.CredentialStore.
func (s *Service) CredentialsByEmail(ctx context.Context, email string) (auth.Principal, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Principal{}, "", auth.ErrUnknownPrincipal
		}
		return auth.Principal{}, "", err
	}
	return user.Principal(), user.PasswordHash, nil
}
