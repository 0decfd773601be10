package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Build statuses. A build moves pending -> planning -> planned -> applying
// -> applied; any step can land in failed.
const (
	StatusPending  = "pending"
	StatusPlanning = "planning"
	StatusPlanned  = "planned"
	StatusApplying = "applying"
	StatusApplied  = "applied"
	StatusFailed   = "failed"
)

// Build is one VM build request and its plan/apply history.
type Build struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	VMName         string         `gorm:"not null" json:"vm_name"`
	Branch         string         `gorm:"index" json:"branch"`
	Status         string         `gorm:"not null" json:"status"`
	NumCPUs        int            `gorm:"check:num_cpus > 0" json:"num_cpus"`
	MemoryMB       int            `gorm:"check:memory_mb > 0" json:"memory_mb"`
	DiskSizeGB     int            `json:"disk_size_gb"`
	ResourcePoolID string         `json:"resource_pool_id"`
	DatastoreID    string         `json:"datastore_id"`
	NetworkID      string         `json:"network_id"`
	TemplateUUID   string         `json:"template_uuid"`
	ConfigPath     string         `json:"config_path"`
	PlanOutput     string         `gorm:"type:text" json:"plan_output,omitempty"`
	ApplyOutput    string         `gorm:"type:text" json:"apply_output,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (b *Build) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
