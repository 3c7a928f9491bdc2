package inventory

import (
	"fmt"
	"strings"
)

// AssetCreate is the payload for creating an asset. Hostname and IP are
// required; the remaining fields fall back to their documented defaults.
type AssetCreate struct {
	Hostname    string `json:"hostname"`
	IP          string `json:"ip"`
	Environment string `json:"environment"`
	OS          string `json:"os"`
	Owner       string `json:"owner"`
	Status      string `json:"status"`
	Note        string `json:"note"`
}

func (p *AssetCreate) validate() error {
	p.Hostname = strings.TrimSpace(p.Hostname)
	p.IP = strings.TrimSpace(p.IP)
	if p.Hostname == "" {
		return fmt.Errorf("%w: hostname is required", ErrInvalid)
	}
	if p.IP == "" {
		return fmt.Errorf("%w: ip is required", ErrInvalid)
	}
	return nil
}

func (p *AssetCreate) applyDefaults() {
	if p.Environment == "" {
		p.Environment = "prod"
	}
	if p.OS == "" {
		p.OS = "linux"
	}
	if p.Status == "" {
		p.Status = "active"
	}
}

// ServiceCreate is the payload for creating a service. Name and AssetID are
// required; AssetID must reference an existing asset.
type ServiceCreate struct {
	Name         string `json:"name"`
	AssetID      int64  `json:"asset_id"`
	RepoURL      string `json:"repo_url"`
	DeployMethod string `json:"deploy_method"`
	Owner        string `json:"owner"`
	Status       string `json:"status"`
	Note         string `json:"note"`
}

func (p *ServiceCreate) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.AssetID <= 0 {
		return fmt.Errorf("%w: asset_id is required", ErrInvalid)
	}
	return nil
}

func (p *ServiceCreate) applyDefaults() {
	if p.DeployMethod == "" {
		p.DeployMethod = "ansible"
	}
	if p.Status == "" {
		p.Status = "running"
	}
}

// ChangeCreate is the payload for creating a change record. Title and
// ServiceID are required; ServiceID must reference an existing service.
type ChangeCreate struct {
	Title        string `json:"title"`
	ServiceID    int64  `json:"service_id"`
	RiskLevel    string `json:"risk_level"`
	ChangeWindow string `json:"change_window"`
	Executor     string `json:"executor"`
	Approver     string `json:"approver"`
	Status       string `json:"status"`
	RollbackPlan string `json:"rollback_plan"`
}

func (p *ChangeCreate) validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if p.ServiceID <= 0 {
		return fmt.Errorf("%w: service_id is required", ErrInvalid)
	}
	return nil
}

func (p *ChangeCreate) applyDefaults() {
	if p.RiskLevel == "" {
		p.RiskLevel = "medium"
	}
	if p.Status == "" {
		p.Status = "pending"
	}
}

// AssetPatch is a partial update for an asset. Nil fields are left
// untouched; only fields present in the request body are applied.
type AssetPatch struct {
	Hostname    *string `json:"hostname"`
	IP          *string `json:"ip"`
	Environment *string `json:"environment"`
	OS          *string `json:"os"`
	Owner       *string `json:"owner"`
	Status      *string `json:"status"`
	Note        *string `json:"note"`
}

func (p *AssetPatch) validate() error {
	if p.Hostname != nil {
		*p.Hostname = strings.TrimSpace(*p.Hostname)
		if *p.Hostname == "" {
			return fmt.Errorf("%w: hostname cannot be blank", ErrInvalid)
		}
	}
	if p.IP != nil {
		*p.IP = strings.TrimSpace(*p.IP)
		if *p.IP == "" {
			return fmt.Errorf("%w: ip cannot be blank", ErrInvalid)
		}
	}
	return nil
}

// ServicePatch is a partial update for a service. A non-nil AssetID moves the
// service to another asset, which must exist.
type ServicePatch struct {
	Name         *string `json:"name"`
	AssetID      *int64  `json:"asset_id"`
	RepoURL      *string `json:"repo_url"`
	DeployMethod *string `json:"deploy_method"`
	Owner        *string `json:"owner"`
	Status       *string `json:"status"`
	Note         *string `json:"note"`
}

func (p *ServicePatch) validate() error {
	if p.Name != nil {
		*p.Name = strings.TrimSpace(*p.Name)
		if *p.Name == "" {
			return fmt.Errorf("%w: name cannot be blank", ErrInvalid)
		}
	}
	if p.AssetID != nil && *p.AssetID <= 0 {
		return fmt.Errorf("%w: asset_id must be positive", ErrInvalid)
	}
	return nil
}

// ChangePatch is a partial update for a change record.
type ChangePatch struct {
	Title        *string `json:"title"`
	ServiceID    *int64  `json:"service_id"`
	RiskLevel    *string `json:"risk_level"`
	ChangeWindow *string `json:"change_window"`
	Executor     *string `json:"executor"`
	Approver     *string `json:"approver"`
	Status       *string `json:"status"`
	RollbackPlan *string `json:"rollback_plan"`
}

func (p *ChangePatch) validate() error {
	if p.Title != nil {
		*p.Title = strings.TrimSpace(*p.Title)
		if *p.Title == "" {
			return fmt.Errorf("%w: title cannot be blank", ErrInvalid)
		}
	}
	if p.ServiceID != nil && *p.ServiceID <= 0 {
		return fmt.Errorf("%w: service_id must be positive", ErrInvalid)
	}
	return nil
}
