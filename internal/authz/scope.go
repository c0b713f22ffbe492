package authz

import "github.com/google/uuid"

// UserScope is the set of accounts a principal may see when listing or
// retrieving users. It filters results; it never denies.
type UserScope struct {
	All  bool
	Self uuid.UUID
}

func ScopeFor(p Principal) UserScope {
	if p.IsAdmin() {
		return UserScope{All: true}
	}

	return UserScope{Self: p.UserID}
}

func (s UserScope) Includes(id uuid.UUID) bool {
	return s.All || s.Self == id
}
