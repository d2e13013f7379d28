package auth

import "github.com/trip-trio/trip-planner-api/internal/domain"

type LoginInput struct {
	Email    string
	Password string
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Session is the result of a successful login or signup: the authenticated
// user plus a bearer token for subsequent requests.
type Session struct {
	User  domain.User
	Token string
}
