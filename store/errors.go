package store

import "errors"

var (
	// ErrSessionExpired is returned after the backend rejected the session's
	// token. The store has already been reset when a caller sees it.
	ErrSessionExpired     = errors.New("store: session expired")
	ErrSuperseded         = errors.New("store: superseded by a newer fetch")
	ErrNotSignedIn        = errors.New("store: not signed in")
	ErrForbidden          = errors.New("store: not allowed for this user")
	ErrInvalidTransition  = errors.New("store: status change not allowed")
	ErrNotificationAbsent = errors.New("store: notification not found")
)

// Failure messages shown to the user. The underlying error text stays in the
// slice's Error field.
const (
	msgLoadEquipment   = "Could not load equipment, please try again"
	msgSaveEquipment   = "Saving equipment failed"
	msgDeleteEquipment = "Deleting equipment failed"
	msgLoadRequests    = "Could not load borrow requests, please try again"
	msgSubmitRequest   = "Sending the borrow request failed"
	msgUpdateRequest   = "Updating the request failed"
	msgDeleteRequest   = "Deleting the request failed"
	msgLoadReadState   = "Could not load notifications, please try again"
	msgLoginFailed     = "Sign in failed, please check your username and password"
	msgNotAdmin        = "This account does not have administrator access"
)
