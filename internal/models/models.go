package models

// Resolution sources, in the order the chain consults them.
const (
	SourceExact    = "exact"
	SourceSuffix   = "suffix"
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Resolution is the outcome of resolving one email address.
// Location is free-form text ("City, Country" by convention) and is never
// parsed downstream. Source records which stage of the chain answered.
type Resolution struct {
	Email    string `json:"-"`        // The email address (not included in JSON response)
	Location string `json:"location"` // Resolved location string
	Source   string `json:"source"`   // Which stage answered: exact, suffix, model or fallback
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"` // Error message
}
