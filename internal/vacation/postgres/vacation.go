package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/vacation-management/internal"
	vacationDatamodel "github.com/frahmantamala/vacation-management/internal/core/datamodel/vacation"
	"github.com/frahmantamala/vacation-management/internal/vacation"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// exclusionViolation is raised by the no-overlap constraint on
// vacation_requests.
const exclusionViolation = "23P01"

type VacationRepository struct {
	db *gorm.DB
}

func NewVacationRepository(db *gorm.DB) vacation.Repository {
	return &VacationRepository{db: db}
}

func (r *VacationRepository) Create(ctx context.Context, req *vacationDatamodel.VacationRequest) error {
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

// GetByID returns nil without error when the request does not exist.
func (r *VacationRepository) GetByID(ctx context.Context, id int64) (*vacationDatamodel.VacationRequest, error) {
	var req vacationDatamodel.VacationRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *VacationRepository) List(ctx context.Context) ([]*vacationDatamodel.VacationRequest, error) {
	var requests []*vacationDatamodel.VacationRequest
	err := r.db.WithContext(ctx).Order("id ASC").Find(&requests).Error
	return requests, err
}

func (r *VacationRepository) ListByUser(ctx context.Context, userID int64) ([]*vacationDatamodel.VacationRequest, error) {
	var requests []*vacationDatamodel.VacationRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&requests).Error
	return requests, err
}

func (r *VacationRepository) ListByUsers(ctx context.Context, userIDs []int64) ([]*vacationDatamodel.VacationRequest, error) {
	requests := []*vacationDatamodel.VacationRequest{}
	if len(userIDs) == 0 {
		return requests, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("id ASC").
		Find(&requests).Error
	return requests, err
}

// Update writes the mutable fields only; owner and status are left alone.
func (r *VacationRepository) Update(ctx context.Context, req *vacationDatamodel.VacationRequest) error {
	err := r.db.WithContext(ctx).
		Model(&vacationDatamodel.VacationRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"start_date":  req.StartDate,
			"end_date":    req.EndDate,
			"description": req.Description,
			"updated_at":  time.Now(),
		}).Error
	return translate(err)
}

func (r *VacationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	err := r.db.WithContext(ctx).
		Model(&vacationDatamodel.VacationRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
	return translate(err)
}

func (r *VacationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&vacationDatamodel.VacationRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// translate turns a no-overlap constraint violation into the overlap error
// the service layer reports for the same condition.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return internal.ErrOverlappingDates.WithCause(err)
	}
	return err
}
