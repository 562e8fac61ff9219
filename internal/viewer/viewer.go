// Package viewer carries the identity of the caller of an operation. Services
// take an Identity as an explicit argument; nothing is stored globally.
package viewer

// Identity is the authenticated caller, or anonymous when UserID is zero.
type Identity struct {
	UserID uint
}

// Anonymous is the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// User returns the identity of the user with the given id.
func User(id uint) Identity {
	return Identity{UserID: id}
}

// Authenticated reports whether the identity names a user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}
