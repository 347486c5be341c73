package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"energienachweise/marketplace-backend/internal/auth"
)

// Personentyp distinguishes individual experts from companies.
type Personentyp string

const (
	PersonentypNatuerlich Personentyp = "natürliche Person"
	PersonentypFirma      Personentyp = "Firma"
)

// User is an account in the marketplace. Experts carry the profile fields;
// customers and admins leave them empty.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         auth.Role `gorm:"type:varchar(20);not null;default:'kunde'" json:"role"`

	Personentyp       *Personentyp `gorm:"type:varchar(40)" json:"personentyp,omitempty"`
	Vorname           *string      `gorm:"size:120" json:"vorname,omitempty"`
	Nachname          *string      `gorm:"size:120" json:"nachname,omitempty"`
	Firmenname        *string      `gorm:"size:200" json:"firmenname,omitempty"`
	Mitarbeiteranzahl *int         `json:"mitarbeiteranzahl,omitempty"`
	Fachbereiche      string       `gorm:"size:255" json:"-"`
	Berufsnachweis    *string      `gorm:"type:text" json:"berufsnachweis,omitempty"`

	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// FachbereichList splits the stored CSV into a list.
func (u *User) FachbereichList() []string {
	if u.Fachbereiche == "" {
		return []string{}
	}
	return strings.Split(u.Fachbereiche, ",")
}

// Principal derives the access-control view of the user.
func (u *User) Principal() auth.Principal {
	return auth.Principal{ID: u.ID, Role: u.Role, IsVerified: u.IsVerified}
}

// UserOut is the API representation of a user. Fachbereiche are returned as
// a list rather than the stored CSV.
type UserOut struct {
	ID                uuid.UUID    `json:"id"`
	Email             string       `json:"email"`
	Role              auth.Role    `json:"role"`
	IsVerified        bool         `json:"is_verified"`
	Personentyp       *Personentyp `json:"personentyp,omitempty"`
	Vorname           *string      `json:"vorname,omitempty"`
	Nachname          *string      `json:"nachname,omitempty"`
	Firmenname        *string      `json:"firmenname,omitempty"`
	Mitarbeiteranzahl *int         `json:"mitarbeiteranzahl,omitempty"`
	Fachbereiche      []string     `json:"fachbereiche"`
	Berufsnachweis    *string      `json:"berufsnachweis,omitempty"`
}

// Out builds the API representation.
func (u *User) Out() UserOut {
	return UserOut{
		ID:                u.ID,
		Email:             u.Email,
		Role:              u.Role,
		IsVerified:        u.IsVerified,
		Personentyp:       u.Personentyp,
		Vorname:           u.Vorname,
		Nachname:          u.Nachname,
		Firmenname:        u.Firmenname,
		Mitarbeiteranzahl: u.Mitarbeiteranzahl,
		Fachbereiche:      u.FachbereichList(),
		Berufsnachweis:    u.Berufsnachweis,
	}
}
