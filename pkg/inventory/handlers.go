package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// OverviewHandler handles GET /api/overview.
func OverviewHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := store.Counts()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to count records: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

// ListAssetsHandler handles GET /api/assets.
// Query params: q (substring over hostname/ip/owner), status (exact match).
func ListAssetsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := AssetFilter{
			Q:      r.URL.Query().Get("q"),
			Status: r.URL.Query().Get("status"),
		}
		assets, err := store.ListAssets(filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list assets: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, assets)
	}
}

// GetAssetHandler handles GET /api/assets/{id}.
func GetAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		asset, err := store.GetAsset(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}

// CreateAssetHandler handles POST /api/assets.
func CreateAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload AssetCreate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		asset, err := store.CreateAsset(payload)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

// UpdateAssetHandler handles PUT /api/assets/{id}. Only fields present in
// the request body are applied.
func UpdateAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var patch AssetPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		asset, err := store.UpdateAsset(id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}

// DeleteAssetHandler handles DELETE /api/assets/{id}.
func DeleteAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := store.DeleteAsset(id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ListServicesHandler handles GET /api/services.
func ListServicesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := store.ListServices()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list services: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

// GetServiceHandler handles GET /api/services/{id}.
func GetServiceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		service, err := store.GetService(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service)
	}
}

// CreateServiceHandler handles POST /api/services.
func CreateServiceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ServiceCreate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		service, err := store.CreateService(payload)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, service)
	}
}

// UpdateServiceHandler handles PUT /api/services/{id}.
func UpdateServiceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var patch ServicePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		service, err := store.UpdateService(id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service)
	}
}

// DeleteServiceHandler handles DELETE /api/services/{id}.
func DeleteServiceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := store.DeleteService(id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ListChangesHandler handles GET /api/changes.
func ListChangesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changes, err := store.ListChanges()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list changes: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, changes)
	}
}

// GetChangeHandler handles GET /api/changes/{id}.
func GetChangeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		change, err := store.GetChange(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, change)
	}
}

// CreateChangeHandler handles POST /api/changes.
func CreateChangeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ChangeCreate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		change, err := store.CreateChange(payload)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, change)
	}
}

// UpdateChangeHandler handles PUT /api/changes/{id}.
func UpdateChangeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var patch ChangePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		change, err := store.UpdateChange(id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, change)
	}
}

// DeleteChangeHandler handles DELETE /api/changes/{id}.
func DeleteChangeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := store.DeleteChange(id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid id %q", raw))
		return 0, false
	}
	return id, true
}

// HTTPStatus maps a store error to its HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	writeError(w, HTTPStatus(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
