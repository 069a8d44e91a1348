package handler

import (
	"net/http"

	"memoria-server/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouterFromContainer builds handlers out of the container and wires
// the router. Used by the server entrypoint; tests inject handlers
// through NewRouter directly.
func NewRouterFromContainer(container *config.Container) http.Handler {
	logger := container.GetLogger()
	return NewRouter(
		NewFuneralHandler(container.GetFuneralService(), logger),
		NewBrochureHandler(container.GetBrochureService(), logger),
		NewCondolenceHandler(container.GetCondolenceService(), logger),
		NewDonationHandler(container.GetDonationService(), logger),
		NewViewerHandler(container.GetLoader(), logger),
		AuthMiddleware(container.GetSupabaseClient(), logger),
	)
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	funeralHandler *FuneralHandler,
	brochureHandler *BrochureHandler,
	condolenceHandler *CondolenceHandler,
	donationHandler *DonationHandler,
	viewerHandler *ViewerHandler,
	authMiddleware func(http.Handler) http.Handler,
) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"memoria-server"}`))
	}).Methods("GET")

	// Public routes (no auth; memorial pages are open to visitors)
	api.HandleFunc("/funerals", funeralHandler.ListFunerals).Methods("GET")
	api.HandleFunc("/funerals/{id}", funeralHandler.GetFuneral).Methods("GET")
	api.HandleFunc("/funerals/{funeralId}/brochures", brochureHandler.GetBrochures).Methods("GET")
	api.HandleFunc("/funerals/{funeralId}/condolences", condolenceHandler.ListApproved).Methods("GET")
	api.HandleFunc("/funerals/{funeralId}/condolences", condolenceHandler.SubmitCondolence).Methods("POST")
	api.HandleFunc("/funerals/{funeralId}/donations", donationHandler.RecordDonation).Methods("POST")
	api.HandleFunc("/funerals/{funeralId}/donations/total", donationHandler.GetDonationTotal).Methods("GET")

	// Viewer routes (public; render what public brochure URLs point to)
	api.HandleFunc("/viewer/info", viewerHandler.GetDocumentInfo).Methods("GET")
	api.HandleFunc("/viewer/spread", viewerHandler.GetSpread).Methods("GET")
	api.HandleFunc("/viewer/page", viewerHandler.RenderPage).Methods("GET")
	api.HandleFunc("/viewer/thumbnails", viewerHandler.GetThumbnails).Methods("GET")

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	// Funeral management (protected)
	protected.HandleFunc("/funerals", funeralHandler.CreateFuneral).Methods("POST")
	protected.HandleFunc("/funerals/{id}", funeralHandler.UpdateFuneral).Methods("PUT")
	protected.HandleFunc("/funerals/{id}", funeralHandler.DeleteFuneral).Methods("DELETE")

	// Brochure management (protected)
	protected.HandleFunc("/funerals/{funeralId}/brochures", brochureHandler.UploadBrochure).Methods("POST")
	protected.HandleFunc("/brochures/{id}", brochureHandler.UpdateBrochure).Methods("PUT")
	protected.HandleFunc("/brochures/{id}", brochureHandler.DeleteBrochure).Methods("DELETE")
	protected.HandleFunc("/brochures/{id}/active", brochureHandler.ToggleBrochure).Methods("PUT")
	protected.HandleFunc("/brochures/{id}/order", brochureHandler.ReorderBrochure).Methods("PUT")

	// Donation detail listing (protected)
	protected.HandleFunc("/funerals/{funeralId}/donations", donationHandler.ListDonations).Methods("GET")

	// Moderation (protected)
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/condolences/pending", condolenceHandler.ListPending).Methods("GET")
	admin.HandleFunc("/condolences/{id}/status", condolenceHandler.ModerateCondolence).Methods("PUT")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // SvelteKit dev server
			"http://localhost:4173", // SvelteKit preview
			"http://localhost:3000", // Alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
