package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter constructs the API HTTP router.
//
// Two surfaces share it: the planner API under /auth and /trips, which
// requires a bearer session token, and the legacy unauthenticated stub
// endpoints (GET /, /sign-up, /create-trip, /update-trip) kept for older
// clients.
func NewRouter(s *Server, log *zap.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(NewRequestLogger(log))
	if len(corsOrigins) > 0 {
		r.Use(NewCORSHandler(corsOrigins))
	}

	// Health endpoint is deliberately out-of-spec (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Legacy stub surface.
	r.Get("/", s.handleLiveness)
	r.Post("/sign-up", s.handleStubSignUp)
	r.Post("/create-trip", s.handleStubCreateTrip)
	r.Post("/update-trip", s.handleStubUpdateTrip)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/signup", s.handleSignup)
		r.Group(func(r chi.Router) {
			r.Use(NewAuthMiddleware(s.Auth))
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})
	})

	r.Route("/trips", func(r chi.Router) {
		r.Use(NewAuthMiddleware(s.Auth))
		r.Use(NewIdempotencyMiddleware(s.Idem, s.clk))
		r.Get("/", s.handleListTrips)
		r.Post("/", s.handleCreateTrip)
		r.Post("/join", s.handleJoinTrip)
		r.Get("/current", s.handleCurrentTrip)
		r.Put("/current", s.handleSelectTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.handleGetTrip)
			r.Patch("/", s.handleUpdateTrip)
			r.Delete("/", s.handleDeleteTrip)
			r.Post("/options/{kind}", s.handleProposeOption)
			r.Post("/options/{kind}/{optionID}/votes", s.handleVoteOption)
			r.Post("/packing-items", s.handleAddPackingItem)
			r.Post("/packing-items/{itemID}/pin", s.handleTogglePinItem)
			r.Put("/members/{userID}/role", s.handleAssignRole)
		})
	})

	return r
}
