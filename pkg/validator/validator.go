// Package validator checks VM build requests against a catalog snapshot
// before any Terraform configuration is generated.
//
// Existence checks are hard failures: a build that references a resource ID
// the catalog cannot resolve must not proceed. Capacity checks are advisory
// only; they surface warnings to the caller but never block. A capacity
// check is silently skipped when the pool or datastore record lacks the
// numeric fields it needs, or when the selected ID does not resolve at all.
// That asymmetry with the existence checker is deliberate and covered by
// tests; callers that want hard failures on unresolved IDs must run
// VerifyResourcesExist as well.
package validator

import (
	"fmt"
	"strings"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
)

// Check names used as keys in error and warning maps.
const (
	CheckGeneral      = "general"
	CheckResourcePool = "resource_pool"
	CheckDatastore    = "datastore"
	CheckNetwork      = "network"
	CheckTemplate     = "template"
	CheckCPU          = "cpu"
	CheckMemory       = "memory"
	CheckDisk         = "disk"
)

// DefaultPoolName is the name vSphere gives a cluster's root resource pool.
const DefaultPoolName = "resources"

// noSelectionMsg is recorded under CheckGeneral when the request carries no
// resource selection at all.
const noSelectionMsg = "No resource selection in request"

// VerifyResourcesExist checks that every resource ID selected in the request
// resolves in the catalog. All four kinds are always checked; the result is
// not short-circuited on the first failure. An empty ID and an ID that does
// not resolve both count as errors. The returned map is keyed by check name
// and is empty on success.
func VerifyResourcesExist(cat *catalog.Catalog, req *catalog.VMRequest) (bool, map[string]string) {
	errs := make(map[string]string)
	if req == nil || req.Selection == nil {
		errs[CheckGeneral] = noSelectionMsg
		return false, errs
	}
	sel := req.Selection

	if sel.ResourcePoolID == "" {
		errs[CheckResourcePool] = "No resource pool ID specified"
	} else if cat.FindResourcePool(sel.ResourcePoolID) == nil {
		errs[CheckResourcePool] = fmt.Sprintf("Resource pool with ID %s not found", sel.ResourcePoolID)
	}

	if sel.DatastoreID == "" {
		errs[CheckDatastore] = "No datastore ID specified"
	} else if cat.FindDatastore(sel.DatastoreID) == nil {
		errs[CheckDatastore] = fmt.Sprintf("Datastore with ID %s not found", sel.DatastoreID)
	}

	if sel.NetworkID == "" {
		errs[CheckNetwork] = "No network ID specified"
	} else if cat.FindNetwork(sel.NetworkID) == nil {
		errs[CheckNetwork] = fmt.Sprintf("Network with ID %s not found", sel.NetworkID)
	}

	if sel.TemplateUUID == "" {
		errs[CheckTemplate] = "No template ID specified"
	} else if cat.FindTemplate(sel.TemplateUUID) == nil {
		errs[CheckTemplate] = fmt.Sprintf("Template with ID %s not found", sel.TemplateUUID)
	}

	return len(errs) == 0, errs
}

// IsDefaultPool reports whether the selected resource pool is the cluster's
// default pool. The comparison is case-insensitive on the pool name. The
// returned message is advisory and never blocks a build.
func IsDefaultPool(cat *catalog.Catalog, poolID string) (bool, string) {
	pool := cat.FindResourcePool(poolID)
	if pool == nil {
		return false, fmt.Sprintf("Resource pool with ID %s not found", poolID)
	}
	if strings.ToLower(pool.Name) == DefaultPoolName {
		return true, ""
	}
	return false, fmt.Sprintf("Warning: Selected resource pool %q is not the default pool", pool.Name)
}

// CheckCapacity compares the requested sizing against the availability
// recorded for the selected pool and datastore. It aggregates advisory
// warnings and never fails hard: a pool or datastore that cannot be located,
// or a record missing the relevant metric fields, skips that check.
func CheckCapacity(cat *catalog.Catalog, req *catalog.VMRequest) (bool, map[string]string) {
	warnings := make(map[string]string)
	if req == nil || req.Selection == nil {
		warnings[CheckGeneral] = noSelectionMsg
		return false, warnings
	}

	if pool := cat.FindResourcePool(req.Selection.ResourcePoolID); pool != nil {
		if pool.CPULimit != nil && pool.CPUUsage != nil {
			available := *pool.CPULimit - *pool.CPUUsage
			if int64(req.NumCPUs) > available {
				warnings[CheckCPU] = fmt.Sprintf("Requested %d CPUs exceeds available %d", req.NumCPUs, available)
			}
		}
		if pool.MemoryLimit != nil && pool.MemoryUsage != nil {
			// Pool memory figures are in KiB; the request is in MB.
			availableMB := (*pool.MemoryLimit - *pool.MemoryUsage) / 1024
			if int64(req.MemoryMB) > availableMB {
				warnings[CheckMemory] = fmt.Sprintf("Requested %d MB memory exceeds available %d MB", req.MemoryMB, availableMB)
			}
		}
	}

	if ds := cat.FindDatastore(req.Selection.DatastoreID); ds != nil {
		if ds.Capacity != nil && ds.FreeSpace != nil {
			availableGB := float64(*ds.FreeSpace) / (1 << 30)
			requestedGB := req.TotalDiskGB()
			if float64(requestedGB) > availableGB {
				warnings[CheckDisk] = fmt.Sprintf("Requested %d GB disk exceeds available %.2f GB", requestedGB, availableGB)
			}
		}
	}

	return len(warnings) == 0, warnings
}
