package httpserver

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/psucalc/internal/adapters/spreadsheet"
	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
	"github.com/phenrril/psucalc/internal/usecase"
	"github.com/phenrril/psucalc/internal/validator"
)

const maxBody = 1 << 20

type Options struct {
	// RateLimitRPS is the per-IP request rate; 0 disables limiting.
	RateLimitRPS int
	// AdminToken guards catalog writes and /admin routes when set.
	AdminToken string
	// Ping reports database health for /health.
	Ping func(ctx context.Context) error
}

type Server struct {
	mux       *http.ServeMux
	catalog   *usecase.CatalogUC
	estimates *usecase.EstimateUC
	configs   *usecase.ConfigUC
	valid     *validator.Validator

	adminToken []byte
	ping       func(ctx context.Context) error
}

func New(c *usecase.CatalogUC, e *usecase.EstimateUC, cfg *usecase.ConfigUC, opts Options) http.Handler {
	s := &Server{
		mux:       http.NewServeMux(),
		catalog:   c,
		estimates: e,
		configs:   cfg,
		valid:     validator.New(),
		ping:      opts.Ping,
	}
	if opts.AdminToken != "" {
		s.adminToken = []byte(opts.AdminToken)
	}

	s.routes()
	return Chain(s.mux,
		RateLimit(opts.RateLimitRPS),
		SecurityHeaders,
		Gzip,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /estimate", s.apiEstimate)

	s.mux.HandleFunc("GET /configs", s.apiConfigs)
	s.mux.HandleFunc("POST /configs", s.apiConfigCreate)
	s.mux.HandleFunc("GET /configs/{id}", s.apiConfigGet)
	s.mux.HandleFunc("PATCH /configs/{id}", s.apiConfigRename)
	s.mux.HandleFunc("DELETE /configs/{id}", s.apiConfigDelete)

	s.mux.HandleFunc("GET /admin/export.xlsx", s.adminOnly(s.handleExportXLSX))
	s.mux.HandleFunc("POST /admin/import", s.adminOnly(s.handleImportXLSX))
	s.mux.HandleFunc("POST /admin/enrich", s.adminOnly(s.handleEnrich))

	// component names may contain slashes ("DVD-RW/CD")
	s.mux.HandleFunc("GET /{category}/{$}", s.apiComponents)
	s.mux.HandleFunc("POST /{category}/{$}", s.admin(s.apiComponentCreate))
	s.mux.HandleFunc("GET /{category}/{name...}", s.apiComponentSearch)
	s.mux.HandleFunc("PUT /{category}/{name...}", s.admin(s.apiComponentUpdate))
	s.mux.HandleFunc("DELETE /{category}/{name...}", s.admin(s.apiComponentDelete))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{
		"service":    "psucalc",
		"categories": domain.Categories,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			log.Error().Err(err).Msg("health check")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "disconnected"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}

func (s *Server) category(w http.ResponseWriter, r *http.Request) (domain.Category, bool) {
	raw := r.PathValue("category")
	cat, ok := domain.ParseCategory(raw)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown category %q", raw), nil)
	}
	return cat, ok
}

func (s *Server) apiComponents(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.category(w, r)
	if !ok {
		return
	}
	list, err := s.catalog.List(r.Context(), cat)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Component{}
	}
	writeOK(w, http.StatusOK, list)
}

type componentBody struct {
	Name        string  `json:"name"`
	Consumption *string `json:"consumption"`
	Wattage     *string `json:"wattage"`
	Type        *string `json:"type"`
}

// power picks whichever power attribute was sent; numbers are accepted too.
func (b componentBody) power() *string {
	if b.Wattage != nil {
		return b.Wattage
	}
	return b.Consumption
}

func decodeComponent(r *http.Request) (componentBody, error) {
	var raw map[string]any
	if err := decodeJSON(r, &raw); err != nil {
		return componentBody{}, err
	}
	var b componentBody
	b.Name = power.Stringify(raw["name"])
	for key, dst := range map[string]**string{"consumption": &b.Consumption, "wattage": &b.Wattage, "type": &b.Type} {
		if v, ok := raw[key]; ok && v != nil {
			str := power.Stringify(v)
			*dst = &str
		}
	}
	return b, nil
}

func (s *Server) apiComponentCreate(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.category(w, r)
	if !ok {
		return
	}
	body, err := decodeComponent(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	c := &domain.Component{Category: cat, Name: body.Name}
	if p := body.power(); p != nil {
		c.Power = *p
	}
	if body.Type != nil {
		c.Type = *body.Type
	}
	if err := s.catalog.Create(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, c)
}

func (s *Server) apiComponentSearch(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.category(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	list, err := s.catalog.Search(r.Context(), cat, name)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s matching %q", cat, name), nil)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, list)
}

func (s *Server) apiComponentUpdate(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.category(w, r)
	if !ok {
		return
	}
	body, err := decodeComponent(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	c, err := s.catalog.Update(r.Context(), cat, r.PathValue("name"), body.power(), body.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, c)
}

func (s *Server) apiComponentDelete(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.category(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if err := s.catalog.Delete(r.Context(), cat, name); err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]string{"deleted": name})
}

type estimateResponse struct {
	power.Result
	Message string              `json:"message,omitempty"`
	Config  *domain.SavedConfig `json:"config,omitempty"`
}

const noPSUMessage = "no PSU in catalog meets the requirement"

func (s *Server) apiEstimate(w http.ResponseWriter, r *http.Request) {
	var req domain.EstimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if err := s.valid.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}
	sel := req.Selection()

	var (
		resp estimateResponse
		err  error
	)
	if req.Save {
		resp.Result, resp.Config, err = s.estimates.EstimateAndSave(r.Context(), sel, req.Name)
	} else {
		resp.Result, err = s.estimates.Estimate(r.Context(), sel)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !resp.HasPSU() {
		resp.Message = noPSUMessage
	}
	writeOK(w, http.StatusOK, resp)
}

func (s *Server) apiConfigs(w http.ResponseWriter, r *http.Request) {
	list, err := s.configs.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []domain.SavedConfig{}
	}
	writeOK(w, http.StatusOK, list)
}

func (s *Server) apiConfigCreate(w http.ResponseWriter, r *http.Request) {
	var c domain.SavedConfig
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	c.ID = uuid.Nil
	c.CreatedAt = time.Time{}
	if c.PSUs == nil {
		c.PSUs = []power.PSU{}
	}
	if err := s.configs.Save(r.Context(), &c); err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, c)
}

func configID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) apiConfigGet(w http.ResponseWriter, r *http.Request) {
	id, ok := configID(w, r)
	if !ok {
		return
	}
	c, err := s.configs.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, c)
}

func (s *Server) apiConfigRename(w http.ResponseWriter, r *http.Request) {
	id, ok := configID(w, r)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	c, err := s.configs.Rename(r.Context(), id, body.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, c)
}

func (s *Server) apiConfigDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := configID(w, r)
	if !ok {
		return
	}
	if err := s.configs.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.Export(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, list); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=catalog.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImportXLSX(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form expected", err.Error())
		return
	}
	fh := r.MultipartForm.File["file"]
	if len(fh) == 0 {
		writeError(w, http.StatusBadRequest, "file missing", nil)
		return
	}
	f, err := fh[0].Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "file unreadable", err.Error())
		return
	}
	defer f.Close()

	rows, skipped, err := spreadsheet.Read(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workbook", err.Error())
		return
	}
	rep, err := s.catalog.Import(r.Context(), rows)
	rep.Skipped += skipped
	if err != nil {
		s.fail(w, r, err)
		return
	}
	log.Info().Int("created", rep.Created).Int("updated", rep.Updated).Int("skipped", rep.Skipped).Msg("catalog import")
	writeOK(w, http.StatusOK, rep)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
		Name     string `json:"name"`
		URL      string `json:"url"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	cat, ok := domain.ParseCategory(body.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", body.Category), nil)
		return
	}
	c, err := s.catalog.Enrich(r.Context(), cat, body.Name, body.URL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, c)
}

// admin guards catalog writes with the configured token, sent as a bearer
// token or in X-Admin-Token. Without a token every caller is admitted; the
// server then only listens on loopback.
func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.adminToken) == 0 {
			h(w, r)
			return
		}
		if !s.authorized(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		h(w, r)
	}
}

// adminOnly guards /admin routes. They stay closed until a token is
// configured: enrich fetches caller-supplied URLs.
func (s *Server) adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.adminToken) == 0 {
			writeError(w, http.StatusForbidden, "admin routes disabled: ADMIN_TOKEN not set", nil)
			return
		}
		if !s.authorized(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		h(w, r)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	tok := strings.TrimPrefix(auth, "Bearer ")
	if tok == "" || tok == auth {
		tok = r.Header.Get("X-Admin-Token")
	}
	return subtle.ConstantTimeCompare([]byte(tok), s.adminToken) == 1
}

// fail maps domain errors to status codes. Unknown errors are logged and
// reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", RequestIDFrom(r.Context())).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeOK(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code int, msg string, details any) {
	writeJSON(w, code, envelope{Success: false, Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	return dec.Decode(v)
}
