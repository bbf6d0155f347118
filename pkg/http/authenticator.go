package http

import (
	"net/http"
)

// Authenticator can be used to grant or deny access to an HTTP
// service. Errors are returned as gRPC status errors, typically using
// code Unauthenticated.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

type allowAuthenticator struct{}

func (a allowAuthenticator) Authenticate(r *http.Request) error {
	return nil
}

// AllowAuthenticator is an implementation of Authenticator that simply
// permits all incoming requests.
var AllowAuthenticator Authenticator = allowAuthenticator{}
