package inventory

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store provides database operations for assets, services, and change
// records. Uniqueness and parent-existence pre-checks produce friendly
// errors; the table's unique indexes remain the authoritative backstop, so
// the database must be opened with gorm.Config.TranslateError enabled.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the inventory tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Asset{}); err != nil {
		return fmt.Errorf("auto-migrate assets: %w", err)
	}
	if err := s.db.AutoMigrate(&Service{}); err != nil {
		return fmt.Errorf("auto-migrate services: %w", err)
	}
	if err := s.db.AutoMigrate(&ChangeRecord{}); err != nil {
		return fmt.Errorf("auto-migrate changes: %w", err)
	}
	return nil
}

// translateWriteErr maps a late unique-constraint violation from the storage
// engine to ErrConflict. The advisory pre-checks usually catch duplicates
// first, but concurrent writers can race past them.
func translateWriteErr(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s %w", what, ErrConflict)
	}
	return err
}

// AssetFilter narrows ListAssets. Q is a substring match over hostname, ip,
// and owner; Status is an exact match.
type AssetFilter struct {
	Q      string
	Status string
}

// ListAssets returns assets matching the filter, newest first.
func (s *Store) ListAssets(filter AssetFilter) ([]Asset, error) {
	query := s.db.Model(&Asset{})
	if filter.Q != "" {
		pattern := "%" + filter.Q + "%"
		query = query.Where("hostname LIKE ? OR ip LIKE ? OR owner LIKE ?", pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var assets []Asset
	if err := query.Order("id DESC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

// GetAsset retrieves an asset by ID.
func (s *Store) GetAsset(id int64) (*Asset, error) {
	var asset Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("asset %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return &asset, nil
}

// CreateAsset validates the payload and persists a new asset. Hostname and
// IP must be unused; a collision returns ErrConflict and leaves the store
// unchanged.
func (s *Store) CreateAsset(payload AssetCreate) (*Asset, error) {
	if err := payload.validate(); err != nil {
		return nil, err
	}
	payload.applyDefaults()

	asset := Asset{
		Hostname:    payload.Hostname,
		IP:          payload.IP,
		Environment: payload.Environment,
		OS:          payload.OS,
		Owner:       payload.Owner,
		Status:      payload.Status,
		Note:        payload.Note,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Asset{}).
			Where("hostname = ? OR ip = ?", payload.Hostname, payload.IP).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check asset uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("hostname or ip %w", ErrConflict)
		}
		if err := tx.Create(&asset).Error; err != nil {
			return translateWriteErr(err, "hostname or ip")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateAsset applies a partial update. Only non-nil patch fields are
// written; a patched hostname or ip is re-checked for uniqueness.
func (s *Store) UpdateAsset(id int64, patch AssetPatch) (*Asset, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var asset Asset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&asset, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("asset %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load asset: %w", err)
		}

		updates := map[string]any{}
		if patch.Hostname != nil && *patch.Hostname != asset.Hostname {
			if err := checkUnused(tx, &Asset{}, "hostname", *patch.Hostname, id); err != nil {
				return err
			}
			updates["hostname"] = *patch.Hostname
		}
		if patch.IP != nil && *patch.IP != asset.IP {
			if err := checkUnused(tx, &Asset{}, "ip", *patch.IP, id); err != nil {
				return err
			}
			updates["ip"] = *patch.IP
		}
		if patch.Environment != nil {
			updates["environment"] = *patch.Environment
		}
		if patch.OS != nil {
			updates["os"] = *patch.OS
		}
		if patch.Owner != nil {
			updates["owner"] = *patch.Owner
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.Note != nil {
			updates["note"] = *patch.Note
		}

		if len(updates) > 0 {
			if err := tx.Model(&asset).Updates(updates).Error; err != nil {
				return translateWriteErr(err, "hostname or ip")
			}
		}
		return tx.First(&asset, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// DeleteAsset removes an asset along with its services and, transitively,
// their change records. The cascade runs explicitly inside one transaction
// so it does not depend on engine-level foreign-key enforcement.
func (s *Store) DeleteAsset(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var asset Asset
		if err := tx.First(&asset, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("asset %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load asset: %w", err)
		}

		var serviceIDs []int64
		if err := tx.Model(&Service{}).Where("asset_id = ?", id).Pluck("id", &serviceIDs).Error; err != nil {
			return fmt.Errorf("collect owned services: %w", err)
		}
		if len(serviceIDs) > 0 {
			if err := tx.Where("service_id IN ?", serviceIDs).Delete(&ChangeRecord{}).Error; err != nil {
				return fmt.Errorf("cascade delete changes: %w", err)
			}
			if err := tx.Where("asset_id = ?", id).Delete(&Service{}).Error; err != nil {
				return fmt.Errorf("cascade delete services: %w", err)
			}
		}
		if err := tx.Delete(&Asset{}, id).Error; err != nil {
			return fmt.Errorf("delete asset: %w", err)
		}
		return nil
	})
}

// ListServices returns all services, newest first.
func (s *Store) ListServices() ([]Service, error) {
	var services []Service
	if err := s.db.Order("id DESC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// GetService retrieves a service by ID.
func (s *Store) GetService(id int64) (*Service, error) {
	var service Service
	if err := s.db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &service, nil
}

// CreateService validates the payload and persists a new service. The
// referenced asset must exist (checked before name uniqueness) and the name
// must be unused.
func (s *Store) CreateService(payload ServiceCreate) (*Service, error) {
	if err := payload.validate(); err != nil {
		return nil, err
	}
	payload.applyDefaults()

	service := Service{
		Name:         payload.Name,
		AssetID:      payload.AssetID,
		RepoURL:      payload.RepoURL,
		DeployMethod: payload.DeployMethod,
		Owner:        payload.Owner,
		Status:       payload.Status,
		Note:         payload.Note,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkExists(tx, &Asset{}, "asset", payload.AssetID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&Service{}).Where("name = ?", payload.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("check service uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("service name %w", ErrConflict)
		}
		if err := tx.Create(&service).Error; err != nil {
			return translateWriteErr(err, "service name")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// UpdateService applies a partial update. Moving the service to another
// asset re-validates that the new asset exists; a patched name is re-checked
// for uniqueness.
func (s *Store) UpdateService(id int64, patch ServicePatch) (*Service, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var service Service
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&service, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("service %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load service: %w", err)
		}

		updates := map[string]any{}
		if patch.Name != nil && *patch.Name != service.Name {
			if err := checkUnused(tx, &Service{}, "name", *patch.Name, id); err != nil {
				return err
			}
			updates["name"] = *patch.Name
		}
		if patch.AssetID != nil && *patch.AssetID != service.AssetID {
			if err := checkExists(tx, &Asset{}, "asset", *patch.AssetID); err != nil {
				return err
			}
			updates["asset_id"] = *patch.AssetID
		}
		if patch.RepoURL != nil {
			updates["repo_url"] = *patch.RepoURL
		}
		if patch.DeployMethod != nil {
			updates["deploy_method"] = *patch.DeployMethod
		}
		if patch.Owner != nil {
			updates["owner"] = *patch.Owner
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.Note != nil {
			updates["note"] = *patch.Note
		}

		if len(updates) > 0 {
			if err := tx.Model(&service).Updates(updates).Error; err != nil {
				return translateWriteErr(err, "service name")
			}
		}
		return tx.First(&service, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// DeleteService removes a service and cascades deletion of its change
// records.
func (s *Store) DeleteService(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var service Service
		if err := tx.First(&service, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("service %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load service: %w", err)
		}
		if err := tx.Where("service_id = ?", id).Delete(&ChangeRecord{}).Error; err != nil {
			return fmt.Errorf("cascade delete changes: %w", err)
		}
		if err := tx.Delete(&Service{}, id).Error; err != nil {
			return fmt.Errorf("delete service: %w", err)
		}
		return nil
	})
}

// ListChanges returns all change records, newest first.
func (s *Store) ListChanges() ([]ChangeRecord, error) {
	var changes []ChangeRecord
	if err := s.db.Order("id DESC").Find(&changes).Error; err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	return changes, nil
}

// GetChange retrieves a change record by ID.
func (s *Store) GetChange(id int64) (*ChangeRecord, error) {
	var change ChangeRecord
	if err := s.db.First(&change, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("change %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get change: %w", err)
	}
	return &change, nil
}

// CreateChange validates the payload and persists a new change record. The
// referenced service must exist.
func (s *Store) CreateChange(payload ChangeCreate) (*ChangeRecord, error) {
	if err := payload.validate(); err != nil {
		return nil, err
	}
	payload.applyDefaults()

	change := ChangeRecord{
		Title:        payload.Title,
		ServiceID:    payload.ServiceID,
		RiskLevel:    payload.RiskLevel,
		ChangeWindow: payload.ChangeWindow,
		Executor:     payload.Executor,
		Approver:     payload.Approver,
		Status:       payload.Status,
		RollbackPlan: payload.RollbackPlan,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkExists(tx, &Service{}, "service", payload.ServiceID); err != nil {
			return err
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("create change: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// UpdateChange applies a partial update. Moving the change to another
// service re-validates that the new service exists.
func (s *Store) UpdateChange(id int64, patch ChangePatch) (*ChangeRecord, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var change ChangeRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&change, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("change %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load change: %w", err)
		}

		updates := map[string]any{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.ServiceID != nil && *patch.ServiceID != change.ServiceID {
			if err := checkExists(tx, &Service{}, "service", *patch.ServiceID); err != nil {
				return err
			}
			updates["service_id"] = *patch.ServiceID
		}
		if patch.RiskLevel != nil {
			updates["risk_level"] = *patch.RiskLevel
		}
		if patch.ChangeWindow != nil {
			updates["change_window"] = *patch.ChangeWindow
		}
		if patch.Executor != nil {
			updates["executor"] = *patch.Executor
		}
		if patch.Approver != nil {
			updates["approver"] = *patch.Approver
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.RollbackPlan != nil {
			updates["rollback_plan"] = *patch.RollbackPlan
		}

		if len(updates) > 0 {
			if err := tx.Model(&change).Updates(updates).Error; err != nil {
				return fmt.Errorf("update change: %w", err)
			}
		}
		return tx.First(&change, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// DeleteChange removes a change record. Changes are leaf entities, so there
// is no further cascade.
func (s *Store) DeleteChange(id int64) error {
	result := s.db.Delete(&ChangeRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete change: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("change %d: %w", id, ErrNotFound)
	}
	return nil
}

// Counts returns record counts for the overview endpoint.
func (s *Store) Counts() (*Overview, error) {
	var overview Overview
	if err := s.db.Model(&Asset{}).Count(&overview.AssetCount).Error; err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}
	if err := s.db.Model(&Service{}).Count(&overview.ServiceCount).Error; err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	if err := s.db.Model(&ChangeRecord{}).Count(&overview.ChangeCount).Error; err != nil {
		return nil, fmt.Errorf("count changes: %w", err)
	}
	return &overview, nil
}

// checkUnused verifies no other row of model holds value in column.
func checkUnused(tx *gorm.DB, model any, column, value string, excludeID int64) error {
	var count int64
	if err := tx.Model(model).
		Where(column+" = ? AND id <> ?", value, excludeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check %s uniqueness: %w", column, err)
	}
	if count > 0 {
		return fmt.Errorf("%s %w", column, ErrConflict)
	}
	return nil
}

// checkExists verifies the referenced parent row exists.
func checkExists(tx *gorm.DB, model any, what string, id int64) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check %s exists: %w", what, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
