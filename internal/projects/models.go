package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Kontrolltyp classifies the control a project requires.
type Kontrolltyp string

const (
	KontrolltypPK     Kontrolltyp = "pk"     // private Kontrolle
	KontrolltypAK     Kontrolltyp = "ak"     // Ausführungskontrolle
	KontrolltypBeides Kontrolltyp = "beides"
)

// ProjektStatus is the lifecycle state of a project.
type ProjektStatus string

const (
	ProjektStatusPlan ProjektStatus = "plan"
	ProjektStatusAusf ProjektStatus = "ausf"
	ProjektStatusDone ProjektStatus = "done"
)

// RequestStatus is the lifecycle state of an expert request.
type RequestStatus string

const (
	RequestStatusRequested RequestStatus = "requested"
	RequestStatusResponded RequestStatus = "responded"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusExpired   RequestStatus = "expired"
)

// Project is a compliance project owned by exactly one customer.
type Project struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	KundeID uuid.UUID `gorm:"type:uuid;not null;index" json:"kunde_id"`

	Name     string  `gorm:"size:200;not null" json:"name"`
	EGID     *string `gorm:"column:egid;size:32" json:"egid,omitempty"`
	Parzelle *string `gorm:"size:64" json:"parzelle,omitempty"`
	Adresse  *string `gorm:"size:255" json:"adresse,omitempty"`
	Ort      *string `gorm:"size:120" json:"ort,omitempty"`

	Kontrolltyp Kontrolltyp   `gorm:"type:varchar(10);not null" json:"kontrolltyp"`
	Status      ProjektStatus `gorm:"type:varchar(10);not null;default:'plan'" json:"status"`

	CreatedAt time.Time `json:"created_at"`

	Evidences []ProjectEvidence `gorm:"constraint:OnDelete:CASCADE" json:"evidences"`
	Requests  []ExpertRequest   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectEvidence is one compliance document reference attached to a project.
type ProjectEvidence struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Fachbereich      string         `gorm:"size:50;not null" json:"fachbereich"`
	ENCode           string         `gorm:"column:en_code;size:32;not null" json:"en_code"`
	SwissTransferURL *string        `gorm:"size:500" json:"swiss_transfer_url,omitempty"`
	RequiredDocs     datatypes.JSON `json:"required_docs"`

	CreatedAt time.Time `json:"created_at"`
}

// ExpertRequest invites one expert to quote on one project. The unique index
// on (project_id, experte_id) enforces at most one request per pair at the
// storage layer.
type ExpertRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_expert_requests_project_experte" json:"project_id"`
	ExperteID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_expert_requests_project_experte" json:"experte_id"`

	Status RequestStatus `gorm:"type:varchar(12);not null;default:'requested'" json:"status"`

	CreatedAt time.Time `json:"created_at"`

	Quotes []ExpertQuote `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
}

// ExpertQuote is a priced response to an expert request. Quotes are
// immutable once created.
type ExpertQuote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`

	Preis     float64 `gorm:"type:numeric(10,2);not null" json:"preis"`
	Kommentar *string `gorm:"type:text" json:"kommentar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
