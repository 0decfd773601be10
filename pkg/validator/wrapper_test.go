package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
)

func TestEnsure(t *testing.T) {
	t.Run("nil catalog bypasses validation", func(t *testing.T) {
		err := Ensure(nil, &catalog.VMRequest{Name: "vm1"})
		assert.NoError(t, err)
	})

	t.Run("valid request passes", func(t *testing.T) {
		req := &catalog.VMRequest{Name: "vm1", Selection: validSelection()}
		assert.NoError(t, Ensure(testCatalog(), req))
	})

	t.Run("failure carries the per-check error map", func(t *testing.T) {
		sel := validSelection()
		sel.NetworkID = ""
		sel.DatastoreID = "datastore-99"
		req := &catalog.VMRequest{Name: "vm1", Selection: sel}

		err := Ensure(testCatalog(), req)
		require.Error(t, err)

		var valErr *ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Len(t, valErr.Errors, 2)
		assert.Equal(t, "No network ID specified", valErr.Errors[CheckNetwork])
	})

	t.Run("message joins checks deterministically", func(t *testing.T) {
		err := &ValidationError{Errors: map[string]string{
			CheckNetwork:   "No network ID specified",
			CheckDatastore: "Datastore with ID datastore-99 not found",
		}}
		assert.Equal(t,
			"resource validation failed: datastore: Datastore with ID datastore-99 not found; network: No network ID specified",
			err.Error())
	})
}
