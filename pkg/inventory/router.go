package inventory

import (
	"github.com/go-chi/chi/v5"
)

// Router creates a chi.Router for the inventory JSON API. Session
// enforcement is the caller's concern; mount this behind the API gate.
func Router(store *Store) chi.Router {
	r := chi.NewRouter()

	r.Get("/overview", OverviewHandler(store))

	r.Get("/assets", ListAssetsHandler(store))
	r.Post("/assets", CreateAssetHandler(store))
	r.Get("/assets/{id}", GetAssetHandler(store))
	r.Put("/assets/{id}", UpdateAssetHandler(store))
	r.Delete("/assets/{id}", DeleteAssetHandler(store))

	r.Get("/services", ListServicesHandler(store))
	r.Post("/services", CreateServiceHandler(store))
	r.Get("/services/{id}", GetServiceHandler(store))
	r.Put("/services/{id}", UpdateServiceHandler(store))
	r.Delete("/services/{id}", DeleteServiceHandler(store))

	r.Get("/changes", ListChangesHandler(store))
	r.Post("/changes", CreateChangeHandler(store))
	r.Get("/changes/{id}", GetChangeHandler(store))
	r.Put("/changes/{id}", UpdateChangeHandler(store))
	r.Delete("/changes/{id}", DeleteChangeHandler(store))

	return r
}
