package terraform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
	"github.com/ssbops/ssb-build-server/pkg/validator"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		ResourcePools: []catalog.ResourcePool{{ID: "resgroup-10", Name: "Resources"}},
		Datastores:    []catalog.Datastore{{ID: "datastore-1", Name: "vsanDatastore"}},
		Networks:      []catalog.Network{{ID: "network-5", Name: "VM Network"}},
		Templates:     []catalog.Template{{UUID: "uuid-1", Name: "rhel9-template"}},
	}
}

func testVMRequest() *catalog.VMRequest {
	return &catalog.VMRequest{
		Name:            "web01",
		NumCPUs:         4,
		MemoryMB:        8192,
		DiskSizeGB:      40,
		AdditionalDisks: []catalog.Disk{{SizeGB: 100}},
		Selection: &catalog.ResourceSelection{
			ResourcePoolID: "resgroup-10",
			DatastoreID:    "datastore-1",
			NetworkID:      "network-5",
			TemplateUUID:   "uuid-1",
		},
	}
}

func TestGeneratorGenerate(t *testing.T) {
	gen := NewGenerator(zap.NewNop())

	t.Run("valid request produces tfvars config", func(t *testing.T) {
		cfg, err := gen.Generate(testCatalog(), testVMRequest())
		require.NoError(t, err)

		assert.Equal(t, "web01", cfg.Name)
		assert.Equal(t, 4, cfg.NumCPUs)
		assert.Equal(t, 8192, cfg.MemoryMB)
		assert.Equal(t, 40, cfg.DiskSizeGB)
		assert.Equal(t, []int{100}, cfg.AdditionalDisks)
		assert.Equal(t, "resgroup-10", cfg.ResourcePoolID)
		assert.Equal(t, "uuid-1", cfg.TemplateUUID)
	})

	t.Run("validation failure surfaces the error map", func(t *testing.T) {
		req := testVMRequest()
		req.Selection.NetworkID = "network-99"

		_, err := gen.Generate(testCatalog(), req)
		require.Error(t, err)

		var valErr *validator.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Contains(t, valErr.Errors, validator.CheckNetwork)
	})

	t.Run("nil catalog bypasses validation", func(t *testing.T) {
		req := testVMRequest()
		req.Selection.NetworkID = "network-99"

		cfg, err := gen.Generate(nil, req)
		require.NoError(t, err)
		assert.Equal(t, "network-99", cfg.NetworkID)
	})

	t.Run("unnamed request is rejected", func(t *testing.T) {
		req := testVMRequest()
		req.Name = ""
		_, err := gen.Generate(testCatalog(), req)
		assert.Error(t, err)
	})
}
