package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssbops/ssb-build-server/pkg/database/models"
	"github.com/ssbops/ssb-build-server/pkg/database/pagination"
)

type BuildRepository struct {
	db *gorm.DB
}

func NewBuildRepository(db *gorm.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

func (r *BuildRepository) Create(build *models.Build) error {
	if build == nil {
		return errors.New("build cannot be nil")
	}
	return r.db.Create(build).Error
}

func (r *BuildRepository) GetByID(id uuid.UUID) (*models.Build, error) {
	var build models.Build
	err := r.db.Where("id = ?", id).First(&build).Error
	if err != nil {
		return nil, err
	}
	return &build, nil
}

func (r *BuildRepository) GetByBranch(branch string) ([]models.Build, error) {
	var builds []models.Build
	err := r.db.Where("branch = ?", branch).Order("created_at DESC").Find(&builds).Error
	return builds, err
}

func (r *BuildRepository) List() ([]models.Build, error) {
	var builds []models.Build
	err := r.db.Order("created_at DESC").Find(&builds).Error
	return builds, err
}

// ListPage returns one page of builds. The sort order is validated against
// the build column whitelist; limit and offset are clamped to safe bounds.
func (r *BuildRepository) ListPage(limit, offset int, sortOrder string) ([]models.Build, error) {
	limit, offset = pagination.ClampPaginationParams(limit, offset)
	order := pagination.SanitizeSortOrder(sortOrder, pagination.BuildSortColumns, "created_at DESC")

	var builds []models.Build
	err := r.db.Limit(limit).Offset(offset).Order(order).Find(&builds).Error
	return builds, err
}

// Count returns the total number of builds.
func (r *BuildRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Build{}).Count(&count).Error
	return count, err
}

func (r *BuildRepository) UpdateStatus(id uuid.UUID, status string) error {
	return r.db.Model(&models.Build{}).Where("id = ?", id).Update("status", status).Error
}

// SetPlanOutput records the result of a plan run along with the new status.
func (r *BuildRepository) SetPlanOutput(id uuid.UUID, status, output string) error {
	return r.db.Model(&models.Build{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"plan_output": output,
	}).Error
}

// SetApplyOutput records the result of an apply run along with the new status.
func (r *BuildRepository) SetApplyOutput(id uuid.UUID, status, output string) error {
	return r.db.Model(&models.Build{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"apply_output": output,
	}).Error
}

func (r *BuildRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Build{}).Error
}
