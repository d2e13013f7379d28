package domain

import "math/rand/v2"

// inviteCodeAlphabet matches the code space shown to users on trip creation.
const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// InviteCodeLength is the fixed length of generated invite codes.
const InviteCodeLength = 6

// NewInviteCode produces a short shareable token of InviteCodeLength
// characters drawn uniformly from [A-Z0-9]. It makes no uniqueness
// guarantee; callers that need uniqueness must check for collisions.
// Not a cryptographic generator.
func NewInviteCode() string {
	b := make([]byte, InviteCodeLength)
	for i := range b {
		b[i] = inviteCodeAlphabet[rand.IntN(len(inviteCodeAlphabet))]
	}
	return string(b)
}
