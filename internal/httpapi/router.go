// Package httpapi exposes a read/delete HTTP surface over persisted
// companies and matches: list and fetch either resource, and delete a
// match by id. There is no create or update endpoint — records only
// enter the store through the matching pipeline's sinks.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/entity-resolver/internal/store"
)

// maxPageSize mirrors the page-size cap the original matching service
// enforced on its list endpoints.
const maxPageSize = 100

// RouterOptions configures cross-cutting behavior of the HTTP surface.
type RouterOptions struct {
	// RateLimit is the sustained requests-per-second budget shared across
	// all callers. Zero or negative falls back to DefaultRouterOptions.
	RateLimit float64
	// RateLimitBurst is the token bucket size backing RateLimit.
	RateLimitBurst int
}

// DefaultRouterOptions returns the rate limit this surface runs under when
// the caller doesn't load one from config.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{RateLimit: 10, RateLimitBurst: 20}
}

// NewRouter builds the chi router backing the companies/matches surface.
func NewRouter(st store.Store, opts RouterOptions) http.Handler {
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRouterOptions().RateLimit
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = DefaultRouterOptions().RateLimitBurst
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "DELETE"},
	}))
	r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimitBurst)))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := st.Ping(req.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/companies", func(r chi.Router) {
		r.Get("/", listCompanies(st))
		r.Get("/{id}", getCompany(st))
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", listMatches(st))
		r.Get("/{id}", getMatch(st))
		r.Delete("/{id}", deleteMatch(st))
	})

	return r
}

func listCompanies(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		page := queryInt(req, "page", 0)
		limit := cappedLimit(queryInt(req, "limit", maxPageSize))

		companies, err := st.ListCompanies(req.Context(), limit, page*limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, companies)
	}
}

func getCompany(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := pathID(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		company, err := st.GetCompany(req.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if company == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, company)
	}
}

func listMatches(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		page := queryInt(req, "page", 0)
		limit := cappedLimit(queryInt(req, "limit", maxPageSize))

		filter := store.MatchFilter{Limit: limit, Offset: page * limit}
		if raw := req.URL.Query().Get("company"); raw != "" {
			companyID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, eris.Wrap(err, "httpapi: parse company filter"))
				return
			}
			filter.CompanyID = &companyID
		}

		matches, err := st.ListMatches(req.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func getMatch(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := pathID(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		match, err := st.GetMatch(req.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if match == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

func deleteMatch(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := pathID(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		match, err := st.GetMatch(req.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if match == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}

		if err := st.DeleteMatch(req.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

// rateLimitMiddleware enforces a single shared token bucket across every
// request to this surface. /health is exempt so liveness probes never
// trip it.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path == "/health" {
				next.ServeHTTP(w, req)
				return
			}
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, eris.New("httpapi: rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func pathID(req *http.Request) (int64, error) {
	raw := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "httpapi: invalid id %q", raw)
	}
	return id, nil
}

func queryInt(req *http.Request, key string, fallback int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func cappedLimit(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("httpapi: encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Error("httpapi: request failed", zap.Error(err), zap.Int("status", status))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
