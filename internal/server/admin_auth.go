package server

import (
	"errors"
	"net/http"

	"github.com/huntworks/trailhunt/internal/game"
)

type adminSession struct {
	AdminID string
	Email   string
}

var errNoAdminSession = errors.New("no valid admin session")

const adminCookieName = "admin_session"

// adminFromRequest reads the admin_session cookie and resolves the admin
// it belongs to.
func adminFromRequest(r *http.Request, store game.Store) (adminSession, error) {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return adminSession{}, errNoAdminSession
	}

	id, email, err := store.AdminBySession(r.Context(), cookie.Value)
	if errors.Is(err, game.ErrNotFound) {
		return adminSession{}, errNoAdminSession
	}
	if err != nil {
		return adminSession{}, err
	}
	return adminSession{AdminID: id, Email: email}, nil
}
