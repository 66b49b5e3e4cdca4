package inkwell

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// Draft preview handlers. Drafts never appear in the static output; the
// preview server renders them on the fly through their layouts, behind a
// session cookie set by a rate-limited, password-only login.

func (s *Site) handleDrafts(c echo.Context) error {
	if !isAuthed(c) {
		if s.Views.DraftLogin == nil {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return Render(c, s.Views.DraftLogin(false, CsrfToken(c)))
	}
	drafts, err := s.cache.Drafts()
	if err != nil {
		return err
	}
	if s.Views.DraftList == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return Render(c, s.Views.DraftList(s.Config, drafts, CsrfToken(c)))
}

func (s *Site) handleDraft(c echo.Context) error {
	if !isAuthed(c) {
		return c.Redirect(http.StatusSeeOther, "/drafts/")
	}
	slug := c.Param("slug")
	doc, ok, err := s.cache.Get(slug)
	if err != nil {
		return err
	}
	if !ok || !doc.Front.Draft {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	layout, err := s.resolveLayout(doc)
	if err != nil {
		return err
	}
	docs, err := s.cache.Documents()
	if err != nil {
		return err
	}
	page := s.newPage(doc, publishedPosts(docs))
	if err := s.renderPage(&page, layout); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, page.HTML)
}

func (s *Site) handleDraftLogin(c echo.Context) error {
	if !s.limiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(s.Config.PreviewPassword)) == 1 {
		if err := setDraftSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/drafts/")
	}
	if s.Views.DraftLogin == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return Render(c, s.Views.DraftLogin(true, CsrfToken(c)))
}

func handleDraftLogout(c echo.Context) error {
	if err := clearDraftSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/drafts/")
}

func isAuthed(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

func setDraftSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	return sess.Save(c.Request(), c.Response())
}

func clearDraftSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
