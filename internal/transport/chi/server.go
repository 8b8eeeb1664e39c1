package chi

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetsearch/internal/domain"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
	logpkg "github.com/kailas-cloud/facetsearch/internal/logger"
	"github.com/kailas-cloud/facetsearch/internal/route"
	"github.com/kailas-cloud/facetsearch/internal/version"
	"github.com/kailas-cloud/facetsearch/internal/view"
	healthuc "github.com/kailas-cloud/facetsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/facetsearch/internal/usecase/search"
)

// Searcher runs a faceted search for a demand.
type Searcher interface {
	Search(ctx context.Context, d demand.Demand, page int) (searchuc.Outcome, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// Server serves the HTML search front end and the operational endpoints.
type Server struct {
	search        Searcher
	health        HealthChecker
	pages         view.Renderer
	links         *view.LinkBuilder
	urls          route.Generator
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server.
func NewServer(
	search Searcher,
	health HealthChecker,
	pages view.Renderer,
	urls route.Generator,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		health: health,
		pages:  pages,
		links:  view.NewLinkBuilder(urls),
		urls:   urls,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		s.sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, "invalid search request"),
		s.sentinelHandler(domain.ErrIndexNotFound, http.StatusBadGateway, "search index unavailable"),
	}
	return s
}

// Routes registers the handlers on r. searchPath is the path registered for route.Search.
// When apiKeys is non-empty, /metrics requires one of them as a bearer token.
func (s *Server) Routes(r chi.Router, searchPath string, apiKeys []string) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, searchPath, http.StatusFound)
	})
	r.Get(searchPath, s.SearchPage)
	r.Get("/health", s.HealthCheck)
	r.With(BearerAuthMiddleware(apiKeys)).Handle("/metrics", promhttp.Handler())
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorPage(w, r, http.StatusNotFound, "page not found")
	})
}

// SearchPage handles GET /search.
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := decodeSearchRequest(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx = logpkg.With(ctx,
		zap.String("q", req.Demand.Query()),
		zap.Int("page", req.Page),
		zap.Int("filter_categories", len(req.Demand.Filters())),
	)

	out, err := s.search.Search(ctx, req.Demand, req.Page)
	if err != nil {
		s.handleDomainError(w, r.WithContext(ctx), err)
		return
	}

	page, err := s.searchPage(req, out)
	if err != nil {
		s.handleDomainError(w, r.WithContext(ctx), err)
		return
	}

	html, err := s.pages.Render(view.PageSearch, page)
	if err != nil {
		s.handleDomainError(w, r.WithContext(ctx), err)
		return
	}

	writeHTML(w, http.StatusOK, html)
}

func (s *Server) searchPage(req searchRequest, out searchuc.Outcome) (view.SearchPage, error) {
	action, err := s.urls.Generate(route.Search, route.Params{})
	if err != nil {
		return view.SearchPage{}, err
	}

	page := view.SearchPage{
		ActionURL: action,
		Demand:    req.Demand,
		Raw:       req.Raw,
		Result:    out.Page,
		Facets:    out.Facets,
	}
	if out.Page.HasPrev() {
		if page.PrevURL, err = s.links.PageLink(req.Demand, out.Page.Number-1); err != nil {
			return view.SearchPage{}, err
		}
	}
	if out.Page.HasNext() {
		if page.NextURL, err = s.links.PageLink(req.Demand, out.Page.Number+1); err != nil {
			return view.SearchPage{}, err
		}
	}
	return page, nil
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, status int, html template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

// writeErrorPage renders the error page; if that fails too, a plain-text body is sent.
func (s *Server) writeErrorPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	html, err := s.pages.Render(view.PageError, view.ErrorPage{
		Status:    status,
		Message:   msg,
		RequestID: chiMiddleware.GetReqID(r.Context()),
	})
	if err != nil {
		logpkg.FromContext(r.Context()).Error("render error page", zap.Error(err))
		http.Error(w, msg, status)
		return
	}
	writeHTML(w, status, html)
}

func (s *Server) sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		s.writeErrorPage(w, r, status, msg)
		return true
	}
}

// handleDomainError maps err to an error page. Unmapped errors, including
// malformed buckets and unknown routes hit while rendering, are logged at error level.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, r, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	s.writeErrorPage(w, r, http.StatusInternalServerError, "internal error")
}
