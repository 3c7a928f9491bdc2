package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsforge/cmdb/pkg/inventory"
)

// CreateAsset handles POST /assets (form-encoded). Redirects to the listing
// on success; duplicate hostname/ip or missing required fields return 400.
func (ui *UI) CreateAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	payload := inventory.AssetCreate{
		Hostname:    r.PostFormValue("hostname"),
		IP:          r.PostFormValue("ip"),
		Environment: r.PostFormValue("environment"),
		OS:          r.PostFormValue("os"),
		Owner:       r.PostFormValue("owner"),
		Status:      r.PostFormValue("status"),
		Note:        r.PostFormValue("note"),
	}

	if _, err := ui.store.CreateAsset(payload); err != nil {
		ui.formError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CreateService handles POST /services (form-encoded). The referenced asset
// must exist (404 otherwise) and the name must be unused (400).
func (ui *UI) CreateService(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	assetID, err := strconv.ParseInt(r.PostFormValue("asset_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid asset_id", http.StatusBadRequest)
		return
	}

	payload := inventory.ServiceCreate{
		Name:         r.PostFormValue("name"),
		AssetID:      assetID,
		RepoURL:      r.PostFormValue("repo_url"),
		DeployMethod: r.PostFormValue("deploy_method"),
		Owner:        r.PostFormValue("owner"),
		Status:       r.PostFormValue("status"),
		Note:         r.PostFormValue("note"),
	}

	if _, err := ui.store.CreateService(payload); err != nil {
		ui.formError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CreateChange handles POST /changes (form-encoded). The referenced service
// must exist (404 otherwise).
func (ui *UI) CreateChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	serviceID, err := strconv.ParseInt(r.PostFormValue("service_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}

	payload := inventory.ChangeCreate{
		Title:        r.PostFormValue("title"),
		ServiceID:    serviceID,
		RiskLevel:    r.PostFormValue("risk_level"),
		ChangeWindow: r.PostFormValue("change_window"),
		Executor:     r.PostFormValue("executor"),
		Approver:     r.PostFormValue("approver"),
		Status:       r.PostFormValue("status"),
		RollbackPlan: r.PostFormValue("rollback_plan"),
	}

	if _, err := ui.store.CreateChange(payload); err != nil {
		ui.formError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteAsset handles POST /assets/{id}/delete. Deleting an asset cascades
// to its services and their change records.
func (ui *UI) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := ui.pathID(w, r)
	if !ok {
		return
	}
	if err := ui.store.DeleteAsset(id); err != nil {
		ui.formError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteService handles POST /services/{id}/delete.
func (ui *UI) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := ui.pathID(w, r)
	if !ok {
		return
	}
	if err := ui.store.DeleteService(id); err != nil {
		ui.formError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteChange handles POST /changes/{id}/delete.
func (ui *UI) DeleteChange(w http.ResponseWriter, r *http.Request) {
	id, ok := ui.pathID(w, r)
	if !ok {
		return
	}
	if err := ui.store.DeleteChange(id); err != nil {
		ui.formError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (ui *UI) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// formError reports a store failure on the browsing surface as plain text,
// using the same status mapping as the JSON API.
func (ui *UI) formError(w http.ResponseWriter, err error) {
	status := inventory.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		ui.logger.Error("form request failed", "error", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
