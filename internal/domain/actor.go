package domain

import "github.com/google/uuid"

// Actor is the identity performing a command. It is always passed
// explicitly; nothing in the core reads it from ambient state.
type Actor struct {
	ID   uuid.UUID
	Role string
}
