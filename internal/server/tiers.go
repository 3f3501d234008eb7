package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"
	"eagler-tiers/internal/registry"

	"github.com/rs/zerolog"
)

type TierServer struct {
	registry *registry.Service
	catalog  domain.Enumeration
	logger   zerolog.Logger
}

func NewTierServer(registry *registry.Service, catalog domain.Enumeration, logger zerolog.Logger) *TierServer {
	return &TierServer{registry: registry, catalog: catalog, logger: logger}
}

type successResponse struct {
	Success bool `json:"success"`
}

type removeResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetTiers handles GET /tiers. Game modes and tiers are listed in catalog order.
func (s *TierServer) GetTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := s.registry.Tiers(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to load tiers")
		return
	}
	s.writeJSON(w, r, http.StatusOK, domain.Ordered{Tiers: tiers, Order: s.catalog})
}

// SetTier handles POST /setTier.
func (s *TierServer) SetTier(w http.ResponseWriter, r *http.Request) {
	var req domain.SetTierRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.registry.SetTier(r.Context(), req); err != nil {
		s.writeError(w, r, err, "failed to update tiers")
		return
	}
	s.writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}

// RemoveTier handles POST /removeTier.
func (s *TierServer) RemoveTier(w http.ResponseWriter, r *http.Request) {
	var req domain.RemoveTierRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.registry.RemoveTier(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, "failed to update tiers")
		return
	}
	s.writeJSON(w, r, http.StatusOK, removeResponse{Success: true, Removed: res.Removed})
}

func (s *TierServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("failed to decode request body")
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *TierServer) writeError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, domain.ErrConsistencyViolation):
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "tier registry is inconsistent"})
	default:
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: internalMsg})
	}
}

func (s *TierServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode response")
	}
}
