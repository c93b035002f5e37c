package session

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	cookieName = "assetvault_ui"
	keySID     = "sid"
)

// Flash is a one-shot alert shown on the next page render.
type Flash struct {
	Kind    string
	Message string
}

// Cookies keeps the browser session id and flashes in a signed cookie.
type Cookies struct {
	store *sessions.CookieStore
}

func NewCookies(secret []byte, secure bool, maxAge int) *Cookies {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: cs}
}

// SessionID returns the id stored in the cookie, minting a new one when
// the cookie is missing or fails verification.
func (c *Cookies) SessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := c.store.Get(r, cookieName)
	if id, ok := sess.Values[keySID].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[keySID] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Cookies) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	sess, _ := c.store.Get(r, cookieName)
	sess.AddFlash(kind + "|" + msg)
	return sess.Save(r, w)
}

// Flashes drains pending flashes.
func (c *Cookies) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, _ := c.store.Get(r, cookieName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, "|")
		if !found {
			kind, msg = "info", s
		}
		out = append(out, Flash{Kind: kind, Message: msg})
	}
	return out
}
