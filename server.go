package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akl7777777/avi-intl/internal/model"
)

// Lookuper is the part of *lookup.Service the server needs.
type Lookuper interface {
	Lookup(ctx context.Context, transport string, req model.AddressRequest) (*model.Result, error)
	Stats() *model.StatsResponse
}

// Server is the HTTP server.
type Server struct {
	service Lookuper
	authKey string
	mux     *http.ServeMux
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(svc Lookuper, authKey string, metrics http.Handler) *Server {
	s := &Server{
		service: svc,
		authKey: authKey,
		mux:     http.NewServeMux(),
	}
	s.routes(metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) {
	s.mux.HandleFunc("/api/v1/address", s.handleAddress)
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/stats", s.handleStats)
	if metrics != nil {
		s.mux.Handle("/metrics", metrics)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Auth check (skip for health endpoint)
	if s.authKey != "" && r.URL.Path != "/api/v1/health" {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == "" || token == auth {
			// No Bearer prefix, try raw value
			token = auth
		}
		if token != s.authKey {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			log.Printf("[http] %s %s 401 unauthorized %s", r.Method, r.URL.Path, time.Since(start))
			return
		}
	}

	s.mux.ServeHTTP(w, r)

	log.Printf("[http] %s %s %s", r.Method, r.URL.Path, time.Since(start))
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	transport := strings.ToLower(strings.TrimSpace(q.Get("transport")))
	switch transport {
	case "", "rest", "soap":
	default:
		writeError(w, http.StatusBadRequest, "transport must be rest or soap")
		return
	}

	lang, err := model.ParseOutputLanguage(q.Get("OutputLanguage"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := model.AddressRequest{
		Address1:           q.Get("Address1"),
		Address2:           q.Get("Address2"),
		Address3:           q.Get("Address3"),
		Address4:           q.Get("Address4"),
		Address5:           q.Get("Address5"),
		Locality:           q.Get("Locality"),
		AdministrativeArea: q.Get("AdministrativeArea"),
		PostalCode:         q.Get("PostalCode"),
		Country:            q.Get("Country"),
		OutputLanguage:     lang,
	}
	if v := q.Get("timeout"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			writeError(w, http.StatusBadRequest, "timeout must be a non-negative number of seconds")
			return
		}
		req.TimeoutSeconds = secs
	}

	res, err := s.service.Lookup(r.Context(), transport, req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Stats())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &model.ErrorResponse{
		Error: msg,
		Code:  status,
	})
}
