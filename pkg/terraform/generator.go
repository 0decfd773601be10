// Package terraform turns validated VM build requests into Terraform
// variable files in the directory Atlantis plans from.
package terraform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
	"github.com/ssbops/ssb-build-server/pkg/validator"
)

// VMConfig is the generated Terraform variable set for one VM build.
type VMConfig struct {
	Name            string `json:"vm_name"`
	NumCPUs         int    `json:"num_cpus"`
	MemoryMB        int    `json:"memory"`
	DiskSizeGB      int    `json:"disk_size"`
	AdditionalDisks []int  `json:"additional_disk_sizes,omitempty"`
	ResourcePoolID  string `json:"resource_pool_id"`
	DatastoreID     string `json:"datastore_id"`
	NetworkID       string `json:"network_id"`
	TemplateUUID    string `json:"template_uuid"`
}

// Generator produces VM configs, running resource validation first.
type Generator struct {
	logger *zap.Logger
}

func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate validates the request against cat and produces the tfvars
// config. A nil catalog bypasses validation and the build proceeds
// unvalidated; a request that fails validation returns the
// *validator.ValidationError unwrapped so callers can surface the
// per-check messages.
func (g *Generator) Generate(cat *catalog.Catalog, req *catalog.VMRequest) (*VMConfig, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("request has no VM name")
	}
	if cat == nil {
		g.logger.Warn("no catalog snapshot available, skipping resource validation",
			zap.String("vm", req.Name))
	} else if err := validator.Ensure(cat, req); err != nil {
		return nil, err
	}
	if req.Selection == nil {
		return nil, fmt.Errorf("request for %q has no resource selection", req.Name)
	}

	cfg := &VMConfig{
		Name:           req.Name,
		NumCPUs:        req.NumCPUs,
		MemoryMB:       req.MemoryMB,
		DiskSizeGB:     req.DiskSizeGB,
		ResourcePoolID: req.Selection.ResourcePoolID,
		DatastoreID:    req.Selection.DatastoreID,
		NetworkID:      req.Selection.NetworkID,
		TemplateUUID:   req.Selection.TemplateUUID,
	}
	for _, d := range req.AdditionalDisks {
		cfg.AdditionalDisks = append(cfg.AdditionalDisks, d.SizeGB)
	}
	return cfg, nil
}
