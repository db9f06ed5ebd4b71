package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/liorazi/email2location/internal/handler"
)

// SetupRoutes configures all v1 API routes
// This function is called by the main router to setup /v1/* endpoints
//
// Parameters:
//   - locateHandler: the email location handler
//
// Returns:
//   - chi.Router: configured v1 router
func SetupRoutes(locateHandler *handler.LocateHandler) chi.Router {
	r := chi.NewRouter()

	// Email location endpoint
	// GET /v1/locate?email=<email>
	r.Get("/locate", locateHandler.Locate)

	// Future v1 endpoints can be added here:
	// r.Get("/batch-locate", locateHandler.BatchLocate)

	return r
}
