package projects

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles all database operations for the project lifecycle
type Repository interface {
	CreateProject(ctx context.Context, project *Project) error
	ProjectByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	ListProjectsByKunde(ctx context.Context, kundeID uuid.UUID) ([]Project, error)
	SaveProject(ctx context.Context, project *Project) error

	CreateEvidence(ctx context.Context, evidence *ProjectEvidence) error
	ListEvidences(ctx context.Context, projectID uuid.UUID) ([]ProjectEvidence, error)
	EvidenceByID(ctx context.Context, projectID, evidenceID uuid.UUID) (*ProjectEvidence, error)
	DeleteEvidence(ctx context.Context, evidence *ProjectEvidence) error

	RequestByID(ctx context.Context, id uuid.UUID) (*ExpertRequest, error)
	RequestExists(ctx context.Context, projectID, experteID uuid.UUID) (bool, error)
	CreateRequests(ctx context.Context, requests []*ExpertRequest) error
	ListRequestsByKunde(ctx context.Context, kundeID uuid.UUID) ([]ExpertRequest, error)
	ListRequestsByExperte(ctx context.Context, experteID uuid.UUID) ([]ExpertRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID uuid.UUID, status RequestStatus) error

	QuoteByID(ctx context.Context, id uuid.UUID) (*ExpertQuote, error)
	SubmitQuote(ctx context.Context, request *ExpertRequest, quote *ExpertQuote) error
	AcceptQuote(ctx context.Context, request *ExpertRequest, project *Project) error

	ExpireRequests(ctx context.Context, olderThan time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new lifecycle repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateProject(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// evidencesNewestFirst orders embedded evidences the same way everywhere a
// project is returned.
func evidencesNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func (r *gormRepository) ProjectByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).
		Preload("Evidences", evidencesNewestFirst).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *gormRepository) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Preload("Evidences", evidencesNewestFirst).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *gormRepository) ListProjectsByKunde(ctx context.Context, kundeID uuid.UUID) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Preload("Evidences", evidencesNewestFirst).
		Where("kunde_id = ?", kundeID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *gormRepository) SaveProject(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Omit("Evidences", "Requests").Save(project).Error
}

func (r *gormRepository) CreateEvidence(ctx context.Context, evidence *ProjectEvidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

func (r *gormRepository) ListEvidences(ctx context.Context, projectID uuid.UUID) ([]ProjectEvidence, error) {
	var evidences []ProjectEvidence
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&evidences).Error
	return evidences, err
}

func (r *gormRepository) EvidenceByID(ctx context.Context, projectID, evidenceID uuid.UUID) (*ProjectEvidence, error) {
	var evidence ProjectEvidence
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", evidenceID, projectID).
		First(&evidence).Error
	if err != nil {
		return nil, err
	}
	return &evidence, nil
}

func (r *gormRepository) DeleteEvidence(ctx context.Context, evidence *ProjectEvidence) error {
	return r.db.WithContext(ctx).Delete(evidence).Error
}

func (r *gormRepository) RequestByID(ctx context.Context, id uuid.UUID) (*ExpertRequest, error) {
	var request ExpertRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormRepository) RequestExists(ctx context.Context, projectID, experteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ExpertRequest{}).
		Where("project_id = ? AND experte_id = ?", projectID, experteID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CreateRequests(ctx context.Context, requests []*ExpertRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, request := range requests {
			if err := tx.Create(request).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) ListRequestsByKunde(ctx context.Context, kundeID uuid.UUID) ([]ExpertRequest, error) {
	var requests []ExpertRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = expert_requests.project_id").
		Where("projects.kunde_id = ?", kundeID).
		Order("expert_requests.created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *gormRepository) ListRequestsByExperte(ctx context.Context, experteID uuid.UUID) ([]ExpertRequest, error) {
	var requests []ExpertRequest
	err := r.db.WithContext(ctx).
		Where("experte_id = ?", experteID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *gormRepository) UpdateRequestStatus(ctx context.Context, requestID uuid.UUID, status RequestStatus) error {
	return r.db.WithContext(ctx).Model(&ExpertRequest{}).
		Where("id = ?", requestID).
		Update("status", status).Error
}

func (r *gormRepository) QuoteByID(ctx context.Context, id uuid.UUID) (*ExpertQuote, error) {
	var quote ExpertQuote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// SubmitQuote stores the quote and advances the request status in one
// transaction.
func (r *gormRepository) SubmitQuote(ctx context.Context, request *ExpertRequest, quote *ExpertQuote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if request.Status == RequestStatusRequested {
			if err := tx.Model(&ExpertRequest{}).
				Where("id = ?", request.ID).
				Update("status", RequestStatusResponded).Error; err != nil {
				return err
			}
			request.Status = RequestStatusResponded
		}
		return tx.Create(quote).Error
	})
}

// lockProject takes the project's row lock. Concurrent accepts on the same
// project serialize on it, so the accepted-sibling count below always sees a
// committed winner.
func lockProject(tx *gorm.DB, projectID uuid.UUID) *gorm.DB {
	var project Project
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", projectID)
}

// AcceptQuote performs the three-part acceptance as a single transaction:
// the request becomes accepted, every sibling request of the project becomes
// rejected, and the project moves to "ausf". The project row lock serializes
// concurrent accepts; the loser then sees the accepted sibling and fails
// with ErrProjectDecided.
func (r *gormRepository) AcceptQuote(ctx context.Context, request *ExpertRequest, project *Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx, project.ID).Error; err != nil {
			return err
		}
		var decided int64
		if err := tx.Model(&ExpertRequest{}).
			Where("project_id = ? AND status = ?", project.ID, RequestStatusAccepted).
			Count(&decided).Error; err != nil {
			return err
		}
		if decided > 0 {
			return ErrProjectDecided
		}
		if err := tx.Model(&ExpertRequest{}).
			Where("id = ?", request.ID).
			Update("status", RequestStatusAccepted).Error; err != nil {
			return err
		}
		if err := tx.Model(&ExpertRequest{}).
			Where("project_id = ? AND id <> ?", project.ID, request.ID).
			Update("status", RequestStatusRejected).Error; err != nil {
			return err
		}
		return tx.Model(&Project{}).
			Where("id = ?", project.ID).
			Update("status", ProjektStatusAusf).Error
	})
}

func (r *gormRepository) ExpireRequests(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&ExpertRequest{}).
		Where("status = ? AND created_at < ?", RequestStatusRequested, olderThan).
		Update("status", RequestStatusExpired)
	return result.RowsAffected, result.Error
}
