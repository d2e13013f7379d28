package domain

// User is the session identity fabricated at login/signup. It is immutable
// for the session lifetime and destroyed on logout.
type User struct {
	ID     UserID  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}
