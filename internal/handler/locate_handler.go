package handler

import (
	"encoding/json"
	"net/http"

	"github.com/liorazi/email2location/internal/models"
	"github.com/liorazi/email2location/internal/service"
)

// LocateHandler handles HTTP requests for email location lookups
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Parse HTTP requests (query parameters)
//   - Call service methods
//   - Format HTTP responses (JSON)
//   - Set appropriate status codes
//   - NO business logic (that's in the service layer)
type LocateHandler struct {
	service *service.LocatorService
}

// NewLocateHandler creates a new locate handler with the given service
func NewLocateHandler(service *service.LocatorService) *LocateHandler {
	return &LocateHandler{
		service: service,
	}
}

// Locate handles GET /v1/locate?email=<email>
// @Summary      Locate an email address
// @Description  Guess the geographic location (city and country) behind an email address's domain
// @Tags         Email Lookup
// @Accept       json
// @Produce      json
// @Param        email  query      string  true  "Email address"  example(joan@whoop.go)
// @Success      200    {object}   models.Resolution
// @Failure      400    {object}   models.ErrorResponse  "Invalid email format"
// @Failure      429    {object}   models.ErrorResponse  "Rate limit exceeded"
// @Failure      500    {object}   models.ErrorResponse  "Internal server error"
// @Router       /v1/locate [get]
func (h *LocateHandler) Locate(w http.ResponseWriter, r *http.Request) {
	// Step 1: Parse query parameter
	email := r.URL.Query().Get("email")

	if email == "" {
		h.respondError(w, http.StatusBadRequest, "Missing 'email' query parameter")
		return
	}

	// Step 2: Call service layer
	// The service handles validation and runs the resolution stages
	resolution, err := h.service.ResolveLocation(r.Context(), email)
	if err != nil {
		if err.Error() == "invalid email address format" {
			h.respondError(w, http.StatusBadRequest, err.Error())
		} else {
			// Any other error is an internal server error
			h.respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	// Step 3: Return success response
	h.respondJSON(w, http.StatusOK, resolution)
}

// respondJSON writes a JSON response with the given status code
func (h *LocateHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, we can't change the status code since headers are already sent
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func (h *LocateHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
