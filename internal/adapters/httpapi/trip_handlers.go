package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"

	"github.com/trip-trio/trip-planner-api/internal/app/trips"
	"github.com/trip-trio/trip-planner-api/internal/domain"
)

type createTripRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type joinTripRequest struct {
	Code string `json:"code"`
}

type selectTripRequest struct {
	TripID domain.TripID `json:"tripId"`
}

type updateTripRequest struct {
	Name        nullable.Nullable[string] `json:"name,omitempty"`
	Description nullable.Nullable[string] `json:"description,omitempty"`
}

type proposeOptionRequest struct {
	Value string `json:"value"`
}

type addPackingItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	IsEssential bool   `json:"isEssential"`
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

type tripListResponse struct {
	Data []domain.Trip `json:"data"`
}

func toOptional[T any](n nullable.Nullable[T]) trips.Optional[T] {
	if !n.IsSpecified() {
		return trips.Unspecified[T]()
	}
	if n.IsNull() {
		return trips.Null[T]()
	}
	return trips.Some(n.MustGet())
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	all, err := s.Trips.ListTrips(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripListResponse{Data: all})
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	var req createTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.Trips.CreateTrip(r.Context(), actor, trips.CreateTripInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

func (s *Server) handleJoinTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	var req joinTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.Trips.JoinTrip(r.Context(), actor, req.Code)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleCurrentTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok, err := s.Trips.CurrentTrip(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "NO_CURRENT_TRIP", "no trip selected", nil)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleSelectTrip(w http.ResponseWriter, r *http.Request) {
	var req selectTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.Trips.SelectTrip(r.Context(), req.TripID); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.Trips.GetTrip(r.Context(), domain.TripID(chi.URLParam(r, "tripID")))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req updateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.Trips.UpdateTrip(r.Context(), domain.TripID(chi.URLParam(r, "tripID")), trips.UpdateTripInput{
		Name:        toOptional(req.Name),
		Description: toOptional(req.Description),
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.Trips.DeleteTrip(r.Context(), domain.TripID(chi.URLParam(r, "tripID"))); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProposeOption(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	kind, err := domain.ParseOptionKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown option kind", map[string]any{"kind": chi.URLParam(r, "kind")})
		return
	}

	var req proposeOptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.Trips.ProposeOption(r.Context(), actor, domain.TripID(chi.URLParam(r, "tripID")), kind, req.Value)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

func (s *Server) handleVoteOption(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	kind, err := domain.ParseOptionKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown option kind", map[string]any{"kind": chi.URLParam(r, "kind")})
		return
	}

	trip, err := s.Trips.VoteOption(r.Context(), actor,
		domain.TripID(chi.URLParam(r, "tripID")), kind,
		domain.OptionID(chi.URLParam(r, "optionID")))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleAddPackingItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	var req addPackingItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := domain.ParsePackingCategory(req.Category)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown packing category", map[string]any{"category": req.Category})
		return
	}

	trip, err := s.Trips.AddPackingItem(r.Context(), actor, domain.TripID(chi.URLParam(r, "tripID")), trips.AddPackingItemInput{
		Name:        req.Name,
		Category:    category,
		IsEssential: req.IsEssential,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

func (s *Server) handleTogglePinItem(w http.ResponseWriter, r *http.Request) {
	trip, err := s.Trips.TogglePinItem(r.Context(),
		domain.TripID(chi.URLParam(r, "tripID")),
		domain.ItemID(chi.URLParam(r, "itemID")))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.Trips.AssignRole(r.Context(),
		domain.TripID(chi.URLParam(r, "tripID")),
		domain.UserID(chi.URLParam(r, "userID")),
		req.Role)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
