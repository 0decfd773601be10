package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ssbops/ssb-build-server/pkg/database/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Build{}))
	return db
}

func testBuild() *models.Build {
	return &models.Build{
		VMName:         "web01",
		Branch:         "master",
		Status:         models.StatusPlanning,
		NumCPUs:        4,
		MemoryMB:       8192,
		DiskSizeGB:     140,
		ResourcePoolID: "resgroup-10",
		DatastoreID:    "datastore-1",
		NetworkID:      "network-5",
		TemplateUUID:   "uuid-1",
		ConfigPath:     "configs/web01.tfvars.json",
	}
}

func TestBuildRepositoryCreate(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	build := testBuild()
	require.NoError(t, repo.Create(build))
	assert.NotEqual(t, uuid.Nil, build.ID)

	assert.Error(t, repo.Create(nil))
}

func TestBuildRepositoryGetByID(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	build := testBuild()
	require.NoError(t, repo.Create(build))

	got, err := repo.GetByID(build.ID)
	require.NoError(t, err)
	assert.Equal(t, "web01", got.VMName)
	assert.Equal(t, models.StatusPlanning, got.Status)

	_, err = repo.GetByID(uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBuildRepositoryGetByBranch(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	master := testBuild()
	require.NoError(t, repo.Create(master))

	dev := testBuild()
	dev.VMName = "web02"
	dev.Branch = "dev"
	require.NoError(t, repo.Create(dev))

	builds, err := repo.GetByBranch("master")
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "web01", builds[0].VMName)

	builds, err = repo.GetByBranch("nope")
	require.NoError(t, err)
	assert.Empty(t, builds)
}

func TestBuildRepositoryList(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	for _, name := range []string{"web01", "web02", "db01"} {
		build := testBuild()
		build.VMName = name
		require.NoError(t, repo.Create(build))
	}

	builds, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, builds, 3)
}

func TestBuildRepositoryListPage(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	for _, name := range []string{"web02", "db01", "web01"} {
		build := testBuild()
		build.VMName = name
		require.NoError(t, repo.Create(build))
	}

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	builds, err := repo.ListPage(2, 0, "vm_name")
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "db01", builds[0].VMName)
	assert.Equal(t, "web01", builds[1].VMName)

	builds, err = repo.ListPage(2, 2, "vm_name")
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "web02", builds[0].VMName)

	// An unknown sort column falls back to the default order instead of
	// reaching the database.
	builds, err = repo.ListPage(10, 0, "password; DROP TABLE builds")
	require.NoError(t, err)
	assert.Len(t, builds, 3)
}

func TestBuildRepositoryUpdateStatus(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	build := testBuild()
	require.NoError(t, repo.Create(build))

	require.NoError(t, repo.UpdateStatus(build.ID, models.StatusApplying))

	got, err := repo.GetByID(build.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplying, got.Status)
}

func TestBuildRepositorySetPlanOutput(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	build := testBuild()
	require.NoError(t, repo.Create(build))

	require.NoError(t, repo.SetPlanOutput(build.ID, models.StatusPlanned, "Plan: 1 to add"))

	got, err := repo.GetByID(build.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, got.Status)
	assert.Equal(t, "Plan: 1 to add", got.PlanOutput)
}

func TestBuildRepositorySetApplyOutput(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	build := testBuild()
	build.Status = models.StatusApplying
	require.NoError(t, repo.Create(build))

	require.NoError(t, repo.SetApplyOutput(build.ID, models.StatusApplied, "Apply complete"))

	got, err := repo.GetByID(build.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, got.Status)
	assert.Equal(t, "Apply complete", got.ApplyOutput)
}

func TestBuildRepositoryDelete(t *testing.T) {
	repo := NewBuildRepository(setupTestDB(t))

	build := testBuild()
	require.NoError(t, repo.Create(build))

	require.NoError(t, repo.Delete(build.ID))

	_, err := repo.GetByID(build.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
