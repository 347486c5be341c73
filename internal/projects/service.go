package projects

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"energienachweise/marketplace-backend/internal/auth"
)

// ExpertDirectory answers whether an id belongs to a verified expert.
// Implemented by the users service.
type ExpertDirectory interface {
	IsVerifiedExpert(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateProjectInput carries project creation fields.
type CreateProjectInput struct {
	Name        string
	EGID        *string
	Parzelle    *string
	Adresse     *string
	Ort         *string
	Kontrolltyp Kontrolltyp
}

// PatchProjectInput carries the patchable project fields.
type PatchProjectInput struct {
	Kontrolltyp *Kontrolltyp
	Status      *ProjektStatus
}

// EvidenceInput carries evidence creation fields.
type EvidenceInput struct {
	Fachbereich      string
	ENCode           string
	SwissTransferURL *string
	RequiredDocs     []string
}

// QuoteInput carries quote submission fields.
type QuoteInput struct {
	Preis     float64
	Kommentar *string
}

// Service owns the project / request / quote lifecycle and the
// authorization checks embedded in every transition.
type Service struct {
	repo    Repository
	experts ExpertDirectory
	states  *StateMachine
	logger  *zap.Logger
}

// NewService creates a new lifecycle service
func NewService(repo Repository, experts ExpertDirectory, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		experts: experts,
		states:  NewStateMachine(),
		logger:  logger,
	}
}

// canManage is the ownership check shared by every project-scoped
// operation: the owning customer or an admin.
func canManage(p auth.Principal, kundeID uuid.UUID) bool {
	return p.IsAdmin() || p.ID == kundeID
}

// loadOwnedProject resolves a project with not-found reported before the
// ownership check.
func (s *Service) loadOwnedProject(ctx context.Context, p auth.Principal, projectID uuid.UUID) (*Project, error) {
	project, err := s.repo.ProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if !canManage(p, project.KundeID) {
		return nil, ErrForbidden
	}
	return project, nil
}

// CreateProject creates a project owned by the acting principal with status
// "plan".
func (s *Service) CreateProject(ctx context.Context, p auth.Principal, input CreateProjectInput) (*Project, error) {
	project := &Project{
		KundeID:     p.ID,
		Name:        input.Name,
		EGID:        input.EGID,
		Parzelle:    input.Parzelle,
		Adresse:     input.Adresse,
		Ort:         input.Ort,
		Kontrolltyp: input.Kontrolltyp,
		Status:      ProjektStatusPlan,
		Evidences:   []ProjectEvidence{},
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListMyProjects returns the customer's own projects; admins see all.
func (s *Service) ListMyProjects(ctx context.Context, p auth.Principal) ([]Project, error) {
	if p.IsAdmin() {
		return s.repo.ListProjects(ctx)
	}
	return s.repo.ListProjectsByKunde(ctx, p.ID)
}

// GetProject returns one project for its owner or an admin.
func (s *Service) GetProject(ctx context.Context, p auth.Principal, projectID uuid.UUID) (*Project, error) {
	return s.loadOwnedProject(ctx, p, projectID)
}

// PatchProject updates the patchable project fields.
func (s *Service) PatchProject(ctx context.Context, p auth.Principal, projectID uuid.UUID, input PatchProjectInput) (*Project, error) {
	project, err := s.loadOwnedProject(ctx, p, projectID)
	if err != nil {
		return nil, err
	}
	if input.Kontrolltyp != nil {
		project.Kontrolltyp = *input.Kontrolltyp
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if err := s.repo.SaveProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// AddEvidence attaches a compliance document reference to a project.
func (s *Service) AddEvidence(ctx context.Context, p auth.Principal, projectID uuid.UUID, input EvidenceInput) (*ProjectEvidence, error) {
	if _, err := s.loadOwnedProject(ctx, p, projectID); err != nil {
		return nil, err
	}
	docs := input.RequiredDocs
	if docs == nil {
		docs = []string{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	evidence := &ProjectEvidence{
		ProjectID:        projectID,
		Fachbereich:      input.Fachbereich,
		ENCode:           input.ENCode,
		SwissTransferURL: input.SwissTransferURL,
		RequiredDocs:     datatypes.JSON(raw),
	}
	if err := s.repo.CreateEvidence(ctx, evidence); err != nil {
		return nil, err
	}
	return evidence, nil
}

// ListEvidences returns a project's evidences, newest first.
func (s *Service) ListEvidences(ctx context.Context, p auth.Principal, projectID uuid.UUID) ([]ProjectEvidence, error) {
	if _, err := s.loadOwnedProject(ctx, p, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListEvidences(ctx, projectID)
}

// DeleteEvidence removes an evidence. The evidence id must belong to the
// given project id.
func (s *Service) DeleteEvidence(ctx context.Context, p auth.Principal, projectID, evidenceID uuid.UUID) error {
	if _, err := s.loadOwnedProject(ctx, p, projectID); err != nil {
		return err
	}
	evidence, err := s.repo.EvidenceByID(ctx, projectID, evidenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvidenceNotFound
		}
		return err
	}
	return s.repo.DeleteEvidence(ctx, evidence)
}

// CreateRequests invites the given experts to quote on a project. Experts
// already holding a request on the project are skipped silently; if every
// supplied id is a duplicate the operation fails as a whole. Only the newly
// created requests are returned.
func (s *Service) CreateRequests(ctx context.Context, p auth.Principal, projectID uuid.UUID, expertIDs []uuid.UUID) ([]ExpertRequest, error) {
	if _, err := s.loadOwnedProject(ctx, p, projectID); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(expertIDs))
	var created []*ExpertRequest
	for _, expertID := range expertIDs {
		if seen[expertID] {
			continue
		}
		seen[expertID] = true

		verified, err := s.experts.IsVerifiedExpert(ctx, expertID)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, ErrUnknownExpert
		}

		exists, err := s.repo.RequestExists(ctx, projectID, expertID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		created = append(created, &ExpertRequest{
			ProjectID: projectID,
			ExperteID: expertID,
			Status:    RequestStatusRequested,
		})
	}

	if len(created) == 0 {
		return nil, ErrNoNewRequests
	}
	if err := s.repo.CreateRequests(ctx, created); err != nil {
		// Unique index closes the race between the existence check and
		// the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNoNewRequests
		}
		return nil, err
	}

	out := make([]ExpertRequest, 0, len(created))
	for _, request := range created {
		out = append(out, *request)
	}
	return out, nil
}

// ListMyRequests returns the requests visible to the principal in the given
// role view: customers see requests on their projects, experts their own
// requests.
func (s *Service) ListMyRequests(ctx context.Context, p auth.Principal, view auth.Role) ([]ExpertRequest, error) {
	switch view {
	case auth.RoleKunde:
		return s.repo.ListRequestsByKunde(ctx, p.ID)
	case auth.RoleExperte:
		return s.repo.ListRequestsByExperte(ctx, p.ID)
	default:
		return nil, ErrForbidden
	}
}

// SubmitQuote attaches a quote to an open request as its assigned expert or
// an admin. A requested request becomes responded; a responded one stays
// responded.
func (s *Service) SubmitQuote(ctx context.Context, p auth.Principal, requestID uuid.UUID, input QuoteInput) (*ExpertQuote, error) {
	request, err := s.repo.RequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if !p.IsAdmin() && request.ExperteID != p.ID {
		return nil, ErrForbidden
	}
	if !s.states.Quotable(request.Status) {
		return nil, ErrRequestClosed
	}

	quote := &ExpertQuote{
		RequestID: request.ID,
		Preis:     input.Preis,
		Kommentar: input.Kommentar,
	}
	if err := s.repo.SubmitQuote(ctx, request, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// quoteContext loads a quote with its request and project, reporting
// not-found before the ownership check.
func (s *Service) quoteContext(ctx context.Context, p auth.Principal, quoteID uuid.UUID) (*ExpertQuote, *ExpertRequest, *Project, error) {
	quote, err := s.repo.QuoteByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrQuoteNotFound
		}
		return nil, nil, nil, err
	}
	request, err := s.repo.RequestByID(ctx, quote.RequestID)
	if err != nil {
		return nil, nil, nil, err
	}
	project, err := s.repo.ProjectByID(ctx, request.ProjectID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !canManage(p, project.KundeID) {
		return nil, nil, nil, ErrForbidden
	}
	return quote, request, project, nil
}

// AcceptQuote accepts one quote: its request becomes accepted, every other
// request of the project becomes rejected and the project moves to "ausf",
// atomically. A project with an accepted request refuses further accepts.
func (s *Service) AcceptQuote(ctx context.Context, p auth.Principal, quoteID uuid.UUID) error {
	_, request, project, err := s.quoteContext(ctx, p, quoteID)
	if err != nil {
		return err
	}
	if err := s.repo.AcceptQuote(ctx, request, project); err != nil {
		return err
	}
	s.logger.Info("Quote accepted",
		zap.String("project_id", project.ID.String()),
		zap.String("request_id", request.ID.String()))
	return nil
}

// RejectQuote sets the quote's parent request to rejected. Sibling requests
// and the project status are untouched. Requests already in a terminal state
// refuse the transition.
func (s *Service) RejectQuote(ctx context.Context, p auth.Principal, quoteID uuid.UUID) error {
	_, request, _, err := s.quoteContext(ctx, p, quoteID)
	if err != nil {
		return err
	}
	if !s.states.CanTransition(request.Status, RequestStatusRejected) {
		return ErrRequestClosed
	}
	return s.repo.UpdateRequestStatus(ctx, request.ID, RequestStatusRejected)
}
