package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/viniciushammett/go-audit-trail/internal/audit"
	"github.com/viniciushammett/go-audit-trail/internal/export"
	"github.com/viniciushammett/go-audit-trail/internal/ingest"
	"github.com/viniciushammett/go-audit-trail/internal/logger"
	"github.com/viniciushammett/go-audit-trail/internal/metrics"
	"github.com/viniciushammett/go-audit-trail/internal/settings"
)

type Deps struct {
	Log       *logger.Logger
	Trail     *audit.Trail
	Proc      *ingest.Processor
	Settings  *settings.Service
	AuthToken string
}
type Config struct {
	Addr        string
	CORSOrigins []string
}

type Server struct {
	d Deps
	c Config
}

func NewServer(d Deps, c Config) *Server { return &Server{d: d, c: c} }

func (s *Server) Run(ctx context.Context) error {
	r := chi.NewRouter()
	if len(s.c.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.c.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Actor"},
		}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { metrics.Handler().ServeHTTP(w, r) })
	r.Post("/v1/audit", s.handleAppend)
	r.Get("/v1/audit", s.handleRecent)
	r.Get("/v1/audit/verify", s.handleVerify)
	r.Get("/v1/audit/export.csv", s.handleCSV)
	r.Get("/v1/settings", s.handleListSettings)
	r.Get("/v1/settings/{key}", s.handleGetSetting)
	r.Put("/v1/settings/{key}", s.handlePutSetting)

	srv := &http.Server{Addr: s.c.Addr, Handler: s.d.Log.HTTP(r)}
	go func() { <-ctx.Done(); _ = srv.Shutdown(context.Background()) }()
	s.d.Log.Info().Str("addr", s.c.Addr).Msg("http listening")
	return srv.ListenAndServe()
}

func (s *Server) auth(r *http.Request) bool {
	if s.d.AuthToken == "" {
		return true
	}
	got := r.Header.Get("Authorization")
	return strings.HasPrefix(got, "Bearer ") && strings.TrimPrefix(got, "Bearer ") == s.d.AuthToken
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var in ingest.Incoming
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	e, err := s.d.Proc.Handle(in)
	if err != nil {
		if errors.Is(err, audit.ErrCorruptTail) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(e)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evs, err := s.d.Trail.ReadRecent(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(evs)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	metrics.VerifyRuns.Inc()
	rep, err := s.d.Trail.VerifyCurrent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Path string `json:"path"`
		audit.Report
	}{s.d.Trail.CurrentPath(), rep})
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evs, err := s.d.Trail.ReadRecent(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=audit.csv")
	_ = export.WriteCSV(w, evs)
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	out, err := s.d.Settings.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	set, err := s.d.Settings.Get(chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var in struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "anonymous"
	}
	set, err := s.d.Settings.Update(chi.URLParam(r, "key"), in.Value, actor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}
