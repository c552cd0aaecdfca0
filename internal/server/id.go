package server

import "github.com/google/uuid"

// IDProvider issues identifiers for sessions and server-minted operations.
type IDProvider interface {
	NewID() string
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues random UUIDs.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() string {
	return uuid.NewString()
}
