package inventory

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	store := NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func mustCreateAsset(t *testing.T, store *Store, hostname, ip string) *Asset {
	t.Helper()
	asset, err := store.CreateAsset(AssetCreate{Hostname: hostname, IP: ip})
	require.NoError(t, err)
	return asset
}

func mustCreateService(t *testing.T, store *Store, name string, assetID int64) *Service {
	t.Helper()
	service, err := store.CreateService(ServiceCreate{Name: name, AssetID: assetID})
	require.NoError(t, err)
	return service
}

func TestCreateAsset_AppliesDefaults(t *testing.T) {
	store := setupTestStore(t)

	asset, err := store.CreateAsset(AssetCreate{Hostname: "node-01", IP: "10.0.0.11"})
	require.NoError(t, err)

	assert.NotZero(t, asset.ID)
	assert.Equal(t, "prod", asset.Environment)
	assert.Equal(t, "linux", asset.OS)
	assert.Equal(t, "active", asset.Status)
	assert.Empty(t, asset.Owner)
	assert.False(t, asset.CreatedAt.IsZero())
}

func TestCreateAsset_RequiredFields(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateAsset(AssetCreate{IP: "10.0.0.11"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.CreateAsset(AssetCreate{Hostname: "node-01"})
	assert.ErrorIs(t, err, ErrInvalid)

	// Whitespace-only counts as missing.
	_, err = store.CreateAsset(AssetCreate{Hostname: "   ", IP: "10.0.0.11"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCreateAsset_DuplicateLeavesStoreUnchanged(t *testing.T) {
	store := setupTestStore(t)
	mustCreateAsset(t, store, "node-01", "10.0.0.11")

	_, err := store.CreateAsset(AssetCreate{Hostname: "node-01", IP: "10.0.0.12"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.CreateAsset(AssetCreate{Hostname: "node-02", IP: "10.0.0.11"})
	assert.ErrorIs(t, err, ErrConflict)

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.AssetCount)
}

func TestListAssets_FilterAndOrder(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateAsset(AssetCreate{Hostname: "web-01", IP: "10.0.0.1", Owner: "ops"})
	require.NoError(t, err)
	_, err = store.CreateAsset(AssetCreate{Hostname: "web-02", IP: "10.0.0.2", Owner: "platform", Status: "retired"})
	require.NoError(t, err)
	_, err = store.CreateAsset(AssetCreate{Hostname: "db-01", IP: "10.0.1.1", Owner: "ops"})
	require.NoError(t, err)

	all, err := store.ListAssets(AssetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "db-01", all[0].Hostname)
	assert.Equal(t, "web-01", all[2].Hostname)

	byQ, err := store.ListAssets(AssetFilter{Q: "web"})
	require.NoError(t, err)
	assert.Len(t, byQ, 2)

	byOwner, err := store.ListAssets(AssetFilter{Q: "platform"})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, "web-02", byOwner[0].Hostname)

	byStatus, err := store.ListAssets(AssetFilter{Status: "retired"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "web-02", byStatus[0].Hostname)
}

func TestGetAsset_NotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetAsset(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAsset_PartialUpdate(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")

	owner := "platform"
	updated, err := store.UpdateAsset(asset.ID, AssetPatch{Owner: &owner})
	require.NoError(t, err)

	assert.Equal(t, "platform", updated.Owner)
	assert.Equal(t, "node-01", updated.Hostname)
	assert.Equal(t, "10.0.0.11", updated.IP)
	assert.Equal(t, "active", updated.Status)
}

func TestUpdateAsset_NotFound(t *testing.T) {
	store := setupTestStore(t)
	owner := "x"
	_, err := store.UpdateAsset(99, AssetPatch{Owner: &owner})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAsset_BlankRequiredField(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")

	blank := "  "
	_, err := store.UpdateAsset(asset.ID, AssetPatch{Hostname: &blank})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateAsset_UniquenessRechecked(t *testing.T) {
	store := setupTestStore(t)
	mustCreateAsset(t, store, "node-01", "10.0.0.11")
	other := mustCreateAsset(t, store, "node-02", "10.0.0.12")

	taken := "node-01"
	_, err := store.UpdateAsset(other.ID, AssetPatch{Hostname: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	takenIP := "10.0.0.11"
	_, err = store.UpdateAsset(other.ID, AssetPatch{IP: &takenIP})
	assert.ErrorIs(t, err, ErrConflict)

	// Re-writing the record's own values is not a conflict.
	own := "node-02"
	_, err = store.UpdateAsset(other.ID, AssetPatch{Hostname: &own})
	assert.NoError(t, err)
}

func TestCreateService_ParentMustExist(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateService(ServiceCreate{Name: "billing-api", AssetID: 42})
	assert.ErrorIs(t, err, ErrNotFound)

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Zero(t, overview.ServiceCount)
}

func TestCreateService_ParentCheckBeforeUniqueness(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	mustCreateService(t, store, "billing-api", asset.ID)

	// Missing parent and duplicate name together: the parent check wins.
	_, err := store.CreateService(ServiceCreate{Name: "billing-api", AssetID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.CreateService(ServiceCreate{Name: "billing-api", AssetID: asset.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateService_AppliesDefaults(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")

	service := mustCreateService(t, store, "billing-api", asset.ID)
	assert.Equal(t, "ansible", service.DeployMethod)
	assert.Equal(t, "running", service.Status)
}

func TestUpdateService_MoveToMissingAssetFails(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	service := mustCreateService(t, store, "billing-api", asset.ID)

	missing := int64(999)
	_, err := store.UpdateService(service.ID, ServicePatch{AssetID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	// The service still points at the original asset.
	reloaded, err := store.GetService(service.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, reloaded.AssetID)
}

func TestUpdateService_MoveToExistingAsset(t *testing.T) {
	store := setupTestStore(t)
	first := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	second := mustCreateAsset(t, store, "node-02", "10.0.0.12")
	service := mustCreateService(t, store, "billing-api", first.ID)

	updated, err := store.UpdateService(service.ID, ServicePatch{AssetID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.AssetID)
}

func TestUpdateService_NameUniquenessRechecked(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	mustCreateService(t, store, "billing-api", asset.ID)
	other := mustCreateService(t, store, "search-api", asset.ID)

	taken := "billing-api"
	_, err := store.UpdateService(other.ID, ServicePatch{Name: &taken})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateChange_ParentMustExist(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateChange(ChangeCreate{Title: "deploy v1", ServiceID: 42})
	assert.ErrorIs(t, err, ErrNotFound)

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Zero(t, overview.ChangeCount)
}

func TestCreateChange_AppliesDefaults(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	service := mustCreateService(t, store, "billing-api", asset.ID)

	change, err := store.CreateChange(ChangeCreate{Title: "deploy billing v1.0.1", ServiceID: service.ID})
	require.NoError(t, err)
	assert.Equal(t, "medium", change.RiskLevel)
	assert.Equal(t, "pending", change.Status)
}

func TestUpdateChange_Partial(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	service := mustCreateService(t, store, "billing-api", asset.ID)
	change, err := store.CreateChange(ChangeCreate{Title: "deploy billing v1.0.1", ServiceID: service.ID})
	require.NoError(t, err)

	status := "approved"
	updated, err := store.UpdateChange(change.ID, ChangePatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "approved", updated.Status)
	assert.Equal(t, "deploy billing v1.0.1", updated.Title)
	assert.Equal(t, "medium", updated.RiskLevel)
}

func TestUpdateChange_MoveToMissingServiceFails(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	service := mustCreateService(t, store, "billing-api", asset.ID)
	change, err := store.CreateChange(ChangeCreate{Title: "deploy", ServiceID: service.ID})
	require.NoError(t, err)

	missing := int64(999)
	_, err = store.UpdateChange(change.ID, ChangePatch{ServiceID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAsset_CascadesTransitively(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	other := mustCreateAsset(t, store, "node-02", "10.0.0.12")

	svc1 := mustCreateService(t, store, "billing-api", asset.ID)
	svc2 := mustCreateService(t, store, "search-api", asset.ID)
	kept := mustCreateService(t, store, "kept-api", other.ID)

	_, err := store.CreateChange(ChangeCreate{Title: "deploy billing", ServiceID: svc1.ID})
	require.NoError(t, err)
	_, err = store.CreateChange(ChangeCreate{Title: "deploy search", ServiceID: svc2.ID})
	require.NoError(t, err)
	_, err = store.CreateChange(ChangeCreate{Title: "deploy kept", ServiceID: kept.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteAsset(asset.ID))

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.AssetCount)
	assert.Equal(t, int64(1), overview.ServiceCount)
	assert.Equal(t, int64(1), overview.ChangeCount)

	// The unrelated asset's subtree survives.
	_, err = store.GetService(kept.ID)
	assert.NoError(t, err)
}

func TestDeleteService_CascadesChanges(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	service := mustCreateService(t, store, "billing-api", asset.ID)
	_, err := store.CreateChange(ChangeCreate{Title: "deploy", ServiceID: service.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteService(service.ID))

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Zero(t, overview.ServiceCount)
	assert.Zero(t, overview.ChangeCount)

	// The owning asset is untouched.
	_, err = store.GetAsset(asset.ID)
	assert.NoError(t, err)
}

func TestDelete_RepeatedDeleteIsNotFound(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")

	require.NoError(t, store.DeleteAsset(asset.ID))
	assert.ErrorIs(t, store.DeleteAsset(asset.ID), ErrNotFound)

	assert.ErrorIs(t, store.DeleteService(1), ErrNotFound)
	assert.ErrorIs(t, store.DeleteChange(1), ErrNotFound)
}

func TestCounts(t *testing.T) {
	store := setupTestStore(t)
	asset := mustCreateAsset(t, store, "node-01", "10.0.0.11")
	service := mustCreateService(t, store, "billing-api", asset.ID)
	_, err := store.CreateChange(ChangeCreate{Title: "deploy", ServiceID: service.ID})
	require.NoError(t, err)

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.AssetCount)
	assert.Equal(t, int64(1), overview.ServiceCount)
	assert.Equal(t, int64(1), overview.ChangeCount)
}
