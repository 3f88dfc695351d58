package httpclient

import "net/http"

// Authenticator decorates an outgoing request with credentials.
type Authenticator interface {
	Authenticate(req *http.Request)
}

// AuthFunc adapts a plain function to Authenticator.
type AuthFunc func(req *http.Request)

func (f AuthFunc) Authenticate(req *http.Request) { f(req) }

// BasicAuth is the scheme Eureka servers behind Spring Security expect.
func BasicAuth(username, password string) Authenticator {
	return AuthFunc(func(req *http.Request) { req.SetBasicAuth(username, password) })
}

// BearerAuth suits registries published behind a token-checking gateway.
func BearerAuth(token string) Authenticator {
	return AuthFunc(func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) })
}
