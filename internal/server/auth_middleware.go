package server

import (
	"crypto/subtle"
	"net/http"
)

// Authenticator vets a feed connection before the websocket upgrade.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// TokenAuth accepts requests carrying the shared token in the "token" query
// parameter or an "Authorization: Bearer" header. An empty Token accepts
// everything.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Authenticate(r *http.Request) error {
	if a.Token == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
			token = h[7:]
		}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
