package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/liorazi/email2location/internal/llm"
	"github.com/liorazi/email2location/internal/logger"
	"github.com/liorazi/email2location/internal/metrics"
	"github.com/liorazi/email2location/internal/models"
	"github.com/liorazi/email2location/internal/tables"
)

// basePrompt is the fixed instruction template for the model stage.
// The single substitution point is the domain.
const basePrompt = `I need help guessing the location of an email domain.
The domain is: %s

Rules:
- If the domain contains the name of a company, return the location of the company's headquarters.
- If the domain contains the name of a city, return that city.
- Do NOT return obscure towns that coincidentally share the same name.
- If unsure, choose the most globally well-known location that matches the name.
- Output ONLY the city and country. No explanation.`

// LocatorService resolves email addresses to location strings
// This is the service layer - it sits between handlers and the table/model
// clients and runs the resolution chain:
//
//	1. Exact domain table (case-sensitive)
//	2. Ordered suffix rules (first declared match wins)
//	3. Model query (failures are logged and absorbed)
//	4. Random fallback (always answers)
//
// A later stage is consulted only when every earlier stage produced nothing,
// so past validation a resolution can never fail.
type LocatorService struct {
	tables    *tables.Tables      // Static resolution tables
	completer llm.Completer       // Model client (optional, can be nil)
	validator *validator.Validate // Validator for input validation
	metrics   *metrics.Metrics    // Metrics collector
	logger    *logger.Logger      // Structured logger

	// rng drives the fallback pick; the mutex guards it because resolutions
	// run concurrently under the HTTP server
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocatorService creates a new locator service
//
// Parameters:
//   - tbl: the resolution tables (required)
//   - completer: the model client (optional, can be nil - the model stage is skipped)
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
//
// Returns:
//   - *LocatorService: pointer to the created service
func NewLocatorService(tbl *tables.Tables, completer llm.Completer, m *metrics.Metrics, log *logger.Logger) *LocatorService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &LocatorService{
		tables:    tbl,
		completer: completer,
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("LocatorService"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the random source behind the fallback pick.
// Pass a seeded source for deterministic tests; nil resets to a time-seeded one.
func (s *LocatorService) SetRand(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.rng = r
}

// ResolveLocation resolves an email address to a location string
// This is the main business logic method
//
// Flow:
//  1. Validate the email format
//  2. Extract the domain (everything after the first '@')
//  3. Run the resolution chain until a stage answers
//
// Parameters:
//   - ctx: carries cancellation into the model query
//   - email: the email address to resolve
//
// Returns:
//   - *models.Resolution: the location and the stage that answered
//   - error: only for invalid input; a valid email always resolves
func (s *LocatorService) ResolveLocation(ctx context.Context, email string) (*models.Resolution, error) {
	// Step 1: Validate the email format
	err := s.validator.Var(email, "required,email")
	if err != nil {
		s.logger.Warn().Str("email", email).Msg("Invalid email address format")
		if s.metrics != nil {
			s.metrics.ResolutionErrors.WithLabelValues("validation").Inc()
		}
		return nil, fmt.Errorf("invalid email address format")
	}

	// Step 2: Extract the domain. Validation guarantees an '@' is present.
	domain := email[strings.Index(email, "@")+1:]
	log := s.logger.WithDomain(domain)

	// Step 3: Exact table lookup, case-sensitive
	if location, ok := s.tables.ExactLookup(domain); ok {
		log.Debug().Str("location", location).Msg("Domain resolved from exact table")
		return s.resolved(email, location, models.SourceExact), nil
	}

	// Step 4: Ordered suffix rules, first declared match wins
	if location, ok := s.tables.SuffixLookup(domain); ok {
		log.Debug().Str("location", location).Msg("Domain resolved from suffix rules")
		return s.resolved(email, location, models.SourceSuffix), nil
	}

	// Step 5: Ask the model. Failures and empty answers fall through.
	if location := s.queryModel(ctx, domain, log); location != "" {
		return s.resolved(email, location, models.SourceModel), nil
	}

	// Step 6: Random fallback, the stage of last resort
	location := s.pickFallback()
	log.Info().Str("location", location).Msg("Domain resolved from random fallback")
	return s.resolved(email, location, models.SourceFallback), nil
}

// resolved assembles the result and counts it
func (s *LocatorService) resolved(email, location, source string) *models.Resolution {
	if s.metrics != nil {
		s.metrics.ResolutionsTotal.WithLabelValues(source).Inc()
	}
	return &models.Resolution{
		Email:    email,
		Location: location,
		Source:   source,
	}
}

// queryModel runs the model stage: one prompt, one answer, no retry.
// It returns "" whenever the model cannot answer - on errors (logged at warn)
// and on empty or whitespace-only responses alike - so the chain falls
// through to the fallback stage.
func (s *LocatorService) queryModel(ctx context.Context, domain string, log *logger.Logger) string {
	if s.completer == nil {
		return ""
	}

	prompt := fmt.Sprintf(basePrompt, domain)

	start := time.Now()
	text, err := s.completer.Complete(ctx, prompt)
	if s.metrics != nil {
		s.metrics.ModelQueryDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		log.Warn().Err(err).Msg("Model query failed")
		if s.metrics != nil {
			s.metrics.ModelQueriesTotal.WithLabelValues("error").Inc()
		}
		return ""
	}

	// An all-whitespace answer counts as no answer, not as an error
	text = strings.TrimSpace(text)
	if text == "" {
		log.Debug().Msg("Model returned no answer")
		if s.metrics != nil {
			s.metrics.ModelQueriesTotal.WithLabelValues("empty").Inc()
		}
		return ""
	}

	log.Debug().Str("location", text).Msg("Model answered")
	if s.metrics != nil {
		s.metrics.ModelQueriesTotal.WithLabelValues("success").Inc()
	}
	return text
}

// pickFallback draws one location uniformly from the fallback pool
func (s *LocatorService) pickFallback() string {
	fallbacks := s.tables.Fallbacks()

	s.mu.Lock()
	idx := s.rng.Intn(len(fallbacks))
	s.mu.Unlock()

	return fallbacks[idx]
}
