package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
)

func i64(v int64) *int64 {
	return &v
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		ResourcePools: []catalog.ResourcePool{
			{
				ID:          "resgroup-10",
				Name:        "Resources",
				CPULimit:    i64(16),
				CPUUsage:    i64(4),
				MemoryLimit: i64(32 * 1024 * 1024), // KiB
				MemoryUsage: i64(8 * 1024 * 1024),
			},
			{ID: "resgroup-20", Name: "dev-pool"},
		},
		Datastores: []catalog.Datastore{
			{
				ID:        "datastore-1",
				Name:      "vsanDatastore",
				Capacity:  i64(1073741824000),
				FreeSpace: i64(10737418240), // 10 GiB
			},
			{ID: "datastore-2", Name: "local-ssd"},
		},
		Networks: []catalog.Network{
			{ID: "network-5", Name: "VM Network"},
		},
		Templates: []catalog.Template{
			{UUID: "423f0c1e-6f7a-4b21-9d5c-8a19c1e6b777", Name: "rhel9-template"},
		},
	}
}

func validSelection() *catalog.ResourceSelection {
	return &catalog.ResourceSelection{
		ResourcePoolID: "resgroup-10",
		DatastoreID:    "datastore-1",
		NetworkID:      "network-5",
		TemplateUUID:   "423f0c1e-6f7a-4b21-9d5c-8a19c1e6b777",
	}
}

func TestVerifyResourcesExist(t *testing.T) {
	cat := testCatalog()

	t.Run("all IDs resolve", func(t *testing.T) {
		req := &catalog.VMRequest{Name: "vm1", Selection: validSelection()}
		ok, errs := VerifyResourcesExist(cat, req)
		assert.True(t, ok)
		assert.Empty(t, errs)
	})

	t.Run("nil selection fails with a single general error", func(t *testing.T) {
		req := &catalog.VMRequest{Name: "vm1"}
		ok, errs := VerifyResourcesExist(cat, req)
		assert.False(t, ok)
		require.Len(t, errs, 1)
		assert.Contains(t, errs, CheckGeneral)
	})

	t.Run("empty network ID reports exactly the network check", func(t *testing.T) {
		sel := validSelection()
		sel.NetworkID = ""
		req := &catalog.VMRequest{Name: "vm1", Selection: sel}
		ok, errs := VerifyResourcesExist(cat, req)
		assert.False(t, ok)
		require.Len(t, errs, 1)
		assert.Equal(t, "No network ID specified", errs[CheckNetwork])
	})

	t.Run("empty pool ID errors regardless of catalog contents", func(t *testing.T) {
		sel := validSelection()
		sel.ResourcePoolID = ""
		req := &catalog.VMRequest{Name: "vm1", Selection: sel}
		ok, errs := VerifyResourcesExist(cat, req)
		assert.False(t, ok)
		assert.Equal(t, map[string]string{
			CheckResourcePool: "No resource pool ID specified",
		}, errs)
	})

	t.Run("unresolved IDs report not-found per kind", func(t *testing.T) {
		req := &catalog.VMRequest{
			Name: "vm1",
			Selection: &catalog.ResourceSelection{
				ResourcePoolID: "resgroup-99",
				DatastoreID:    "datastore-99",
				NetworkID:      "network-99",
				TemplateUUID:   "not-a-template",
			},
		}
		ok, errs := VerifyResourcesExist(cat, req)
		assert.False(t, ok)
		assert.Len(t, errs, 4)
		assert.Equal(t, "Resource pool with ID resgroup-99 not found", errs[CheckResourcePool])
		assert.Equal(t, "Datastore with ID datastore-99 not found", errs[CheckDatastore])
		assert.Equal(t, "Network with ID network-99 not found", errs[CheckNetwork])
		assert.Equal(t, "Template with ID not-a-template not found", errs[CheckTemplate])
	})

	t.Run("all checks run, no short circuit", func(t *testing.T) {
		req := &catalog.VMRequest{
			Name: "vm1",
			Selection: &catalog.ResourceSelection{
				ResourcePoolID: "",
				DatastoreID:    "datastore-1",
				NetworkID:      "",
				TemplateUUID:   "423f0c1e-6f7a-4b21-9d5c-8a19c1e6b777",
			},
		}
		ok, errs := VerifyResourcesExist(cat, req)
		assert.False(t, ok)
		assert.Len(t, errs, 2)
		assert.Contains(t, errs, CheckResourcePool)
		assert.Contains(t, errs, CheckNetwork)
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		req := &catalog.VMRequest{Name: "vm1", Selection: validSelection()}
		before := *req.Selection
		_, _ = VerifyResourcesExist(cat, req)
		assert.Equal(t, before, *req.Selection)
	})
}

func TestIsDefaultPool(t *testing.T) {
	t.Run("name comparison is case-insensitive", func(t *testing.T) {
		for _, name := range []string{"resources", "Resources", "RESOURCES"} {
			cat := &catalog.Catalog{
				ResourcePools: []catalog.ResourcePool{{ID: "resgroup-10", Name: name}},
			}
			isDefault, msg := IsDefaultPool(cat, "resgroup-10")
			assert.True(t, isDefault, "pool named %q", name)
			assert.Empty(t, msg)
		}
	})

	t.Run("non-default pool warns without blocking", func(t *testing.T) {
		isDefault, msg := IsDefaultPool(testCatalog(), "resgroup-20")
		assert.False(t, isDefault)
		assert.Equal(t, `Warning: Selected resource pool "dev-pool" is not the default pool`, msg)
	})

	t.Run("unknown pool reports not found", func(t *testing.T) {
		isDefault, msg := IsDefaultPool(testCatalog(), "resgroup-99")
		assert.False(t, isDefault)
		assert.Equal(t, "Resource pool with ID resgroup-99 not found", msg)
	})
}

func TestCheckCapacity(t *testing.T) {
	t.Run("fits within availability", func(t *testing.T) {
		req := &catalog.VMRequest{
			Name:       "vm1",
			NumCPUs:    4,
			MemoryMB:   4096,
			DiskSizeGB: 5,
			Selection:  validSelection(),
		}
		ok, warnings := CheckCapacity(testCatalog(), req)
		assert.True(t, ok)
		assert.Empty(t, warnings)
	})

	t.Run("nil selection fails with a single general warning", func(t *testing.T) {
		ok, warnings := CheckCapacity(testCatalog(), &catalog.VMRequest{Name: "vm1"})
		assert.False(t, ok)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings, CheckGeneral)
	})

	t.Run("cpu over limit warns with both numbers", func(t *testing.T) {
		req := &catalog.VMRequest{Name: "vm1", NumCPUs: 24, Selection: validSelection()}
		ok, warnings := CheckCapacity(testCatalog(), req)
		assert.False(t, ok)
		assert.Equal(t, "Requested 24 CPUs exceeds available 12", warnings[CheckCPU])
	})

	t.Run("memory over limit converts pool KiB to MB", func(t *testing.T) {
		// 32 GiB limit, 8 GiB used -> 24576 MB available
		req := &catalog.VMRequest{Name: "vm1", MemoryMB: 30000, Selection: validSelection()}
		ok, warnings := CheckCapacity(testCatalog(), req)
		assert.False(t, ok)
		assert.Equal(t, "Requested 30000 MB memory exceeds available 24576 MB", warnings[CheckMemory])
	})

	t.Run("disk total includes additional disks", func(t *testing.T) {
		// 10 GiB free, 5 + 8 = 13 GB requested
		req := &catalog.VMRequest{
			Name:            "vm1",
			DiskSizeGB:      5,
			AdditionalDisks: []catalog.Disk{{SizeGB: 8}},
			Selection:       validSelection(),
		}
		ok, warnings := CheckCapacity(testCatalog(), req)
		assert.False(t, ok)
		assert.Equal(t, "Requested 13 GB disk exceeds available 10.00 GB", warnings[CheckDisk])
	})

	t.Run("pool without cpu metrics never warns on cpu", func(t *testing.T) {
		sel := validSelection()
		sel.ResourcePoolID = "resgroup-20"
		req := &catalog.VMRequest{Name: "vm1", NumCPUs: 1 << 20, Selection: sel}
		_, warnings := CheckCapacity(testCatalog(), req)
		assert.NotContains(t, warnings, CheckCPU)
		assert.NotContains(t, warnings, CheckMemory)
	})

	t.Run("datastore without space metrics never warns on disk", func(t *testing.T) {
		sel := validSelection()
		sel.DatastoreID = "datastore-2"
		req := &catalog.VMRequest{Name: "vm1", DiskSizeGB: 1 << 20, Selection: sel}
		ok, warnings := CheckCapacity(testCatalog(), req)
		assert.True(t, ok)
		assert.Empty(t, warnings)
	})

	// The existence checker treats an unresolved ID as a hard error; the
	// capacity checker tolerates the same situation and skips the check.
	// Both behaviors are part of the validated contract.
	t.Run("unresolved pool and datastore IDs skip silently", func(t *testing.T) {
		req := &catalog.VMRequest{
			Name:       "vm1",
			NumCPUs:    1 << 20,
			DiskSizeGB: 1 << 20,
			Selection: &catalog.ResourceSelection{
				ResourcePoolID: "resgroup-99",
				DatastoreID:    "datastore-99",
			},
		}
		ok, warnings := CheckCapacity(testCatalog(), req)
		assert.True(t, ok)
		assert.Empty(t, warnings)
	})
}
