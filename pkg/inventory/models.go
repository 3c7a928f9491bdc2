package inventory

import (
	"time"
)

// Asset is the GORM model for a managed host.
type Asset struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Hostname    string    `gorm:"column:hostname;type:varchar(100);uniqueIndex:idx_asset_hostname;not null" json:"hostname"`
	IP          string    `gorm:"column:ip;type:varchar(50);uniqueIndex:idx_asset_ip;not null" json:"ip"`
	Environment string    `gorm:"column:environment;type:varchar(50);default:prod" json:"environment"`
	OS          string    `gorm:"column:os;type:varchar(100);default:linux" json:"os"`
	Owner       string    `gorm:"column:owner;type:varchar(100)" json:"owner"`
	Status      string    `gorm:"column:status;type:varchar(30);default:active" json:"status"`
	Note        string    `gorm:"column:note;type:text" json:"note"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName returns the GORM table name.
func (Asset) TableName() string { return "assets" }

// Service is the GORM model for a deployable unit running on exactly one asset.
type Service struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name         string    `gorm:"column:name;type:varchar(100);uniqueIndex:idx_service_name;not null" json:"name"`
	AssetID      int64     `gorm:"column:asset_id;index:idx_service_asset;not null" json:"asset_id"`
	RepoURL      string    `gorm:"column:repo_url;type:varchar(300)" json:"repo_url"`
	DeployMethod string    `gorm:"column:deploy_method;type:varchar(100);default:ansible" json:"deploy_method"`
	Owner        string    `gorm:"column:owner;type:varchar(100)" json:"owner"`
	Status       string    `gorm:"column:status;type:varchar(30);default:running" json:"status"`
	Note         string    `gorm:"column:note;type:text" json:"note"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`

	Asset *Asset `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the GORM table name.
func (Service) TableName() string { return "services" }

// ChangeRecord is the GORM model for an operational change applied to a service.
type ChangeRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title        string    `gorm:"column:title;type:varchar(150);index:idx_change_title;not null" json:"title"`
	ServiceID    int64     `gorm:"column:service_id;index:idx_change_service;not null" json:"service_id"`
	RiskLevel    string    `gorm:"column:risk_level;type:varchar(20);default:medium" json:"risk_level"`
	ChangeWindow string    `gorm:"column:change_window;type:varchar(100)" json:"change_window"`
	Executor     string    `gorm:"column:executor;type:varchar(100)" json:"executor"`
	Approver     string    `gorm:"column:approver;type:varchar(100)" json:"approver"`
	Status       string    `gorm:"column:status;type:varchar(30);default:pending" json:"status"`
	RollbackPlan string    `gorm:"column:rollback_plan;type:text" json:"rollback_plan"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`

	Service *Service `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the GORM table name.
func (ChangeRecord) TableName() string { return "changes" }

// Overview holds record counts across the three tables.
type Overview struct {
	AssetCount   int64 `json:"asset_count"`
	ServiceCount int64 `json:"service_count"`
	ChangeCount  int64 `json:"change_count"`
}
