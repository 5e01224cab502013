package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/svintus/svintus/internal/auth"
)

const authCookieName = "auth_token"

// EnsureMember resolves the member identity for an incoming connection from
// its session cookie, minting a fresh identity (and cookie) when none is
// present or verification fails. Must run before the WebSocket upgrade so the
// cookie can ride the handshake response.
//
// A reconnect with a valid cookie reuses the uuid, but never an old Member:
// the disconnect already removed it, so the next create/join seats a brand
// new one.
func EnsureMember(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie(authCookieName); err == nil {
		if sub, err := auth.AuthenticateJWT(cookie.Value); err == nil {
			if id, err := uuid.Parse(sub); err == nil {
				return id, nil
			}
		}
	}

	id := uuid.New()
	token, err := auth.CreateJWT(id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session JWT: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return id, nil
}
