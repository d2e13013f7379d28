package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/trip-trio/trip-planner-api/internal/ports/out/tripregistry"
)

// The legacy stub surface predates the planner API: unauthenticated, its own
// flat {"error": "..."} shape, and a registry keyed only by trip id.

type stubError struct {
	Error string `json:"error"`
}

type stubTripResponse struct {
	Message string              `json:"message"`
	Trip    tripregistry.Record `json:"trip"`
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("TripTrio backend is live!"))
}

func (s *Server) handleStubSignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.log.Info("stub sign-up",
		zap.String("name", req.Name),
		zap.String("email", string(req.Email)),
	)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "sign-up received"})
}

func (s *Server) handleStubCreateTrip(w http.ResponseWriter, r *http.Request) {
	var rec tripregistry.Record
	if !decodeJSON(w, r, &rec) {
		return
	}

	id, ok := rec["id"].(string)
	if !ok || id == "" {
		writeJSON(w, http.StatusBadRequest, stubError{Error: "Trip must have an id"})
		return
	}

	if err := s.Registry.Put(r.Context(), id, rec); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stubTripResponse{Message: "Trip created successfully", Trip: rec})
}

func (s *Server) handleStubUpdateTrip(w http.ResponseWriter, r *http.Request) {
	var fields tripregistry.Record
	if !decodeJSON(w, r, &fields) {
		return
	}

	id, ok := fields["id"].(string)
	if !ok || id == "" {
		writeJSON(w, http.StatusBadRequest, stubError{Error: "Trip ID is required"})
		return
	}

	merged, err := s.Registry.Merge(r.Context(), id, fields)
	if errors.Is(err, tripregistry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, stubError{Error: "Trip not found"})
		return
	}
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stubTripResponse{Message: "Trip updated successfully", Trip: merged})
}
