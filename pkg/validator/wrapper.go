package validator

import (
	"sort"
	"strings"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
)

// ValidationError is returned when a build request references resources that
// do not resolve in the catalog. It carries the per-check error map so API
// handlers can report every failing check, not just the first.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Errors[k])
	}
	return "resource validation failed: " + strings.Join(parts, "; ")
}

// Ensure runs the existence checks against the catalog and returns a
// *ValidationError when any fail. A nil catalog bypasses validation
// entirely and returns nil; callers are expected to log a warning and
// proceed unvalidated.
func Ensure(cat *catalog.Catalog, req *catalog.VMRequest) error {
	if cat == nil {
		return nil
	}
	if ok, errs := VerifyResourcesExist(cat, req); !ok {
		return &ValidationError{Errors: errs}
	}
	return nil
}
