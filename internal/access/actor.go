package access

import "github.com/google/uuid"

// Actor is an authenticated staff member as supplied by the identity
// provider: an identity, a role profile, and the centres the actor is
// attached to. The engine trusts this value as-is.
type Actor struct {
	ID      uuid.UUID   `json:"id"`
	Role    Role        `json:"role"`
	Centres []uuid.UUID `json:"centres"`
}

// Anonymous is the zero actor used for unauthenticated requests.
var Anonymous = Actor{}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != uuid.Nil
}

// HasProfile reports whether the actor has a role profile. An actor without
// one resolves to deny-all for every resource type.
func (a Actor) HasProfile() bool {
	return a.Role.Valid()
}

// MemberOf reports whether the actor is attached to the given centre.
func (a Actor) MemberOf(centreID uuid.UUID) bool {
	for _, c := range a.Centres {
		if c == centreID {
			return true
		}
	}
	return false
}
