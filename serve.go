package inkwell

import (
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const sessionName = "draft_session"

// Serve runs the preview server: the built site from OutputDir, plus a
// password-gated /drafts/ area when a preview password is configured. It
// builds once up front, then watches the content and static trees and
// rebuilds on change. Serve blocks until the server exits.
func (s *Site) Serve() error {
	if _, err := s.Build(); err != nil {
		return err
	}

	if s.draftsEnabled() {
		if s.Config.SessionSecret == "" {
			return &ConfigError{Field: "sessionSecret", Reason: "required when a preview password is set"}
		}
		s.limiter = newAttemptLimiter(5, time.Minute)
		defer s.limiter.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	s.setupMiddleware(e)
	s.setupRoutes(e)

	stop := make(chan struct{})
	defer close(stop)
	go s.watch(stop)

	if err := e.Start(s.Config.PreviewAddr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Site) draftsEnabled() bool {
	return s.Config.PreviewPassword != ""
}

func (s *Site) setupMiddleware(e *echo.Echo) {
	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = s.httpErrorHandler(e)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
	}))

	if s.draftsEnabled() {
		e.Use(session.Middleware(s.newSessionStore()))
		e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
			TokenLookup:    "header:X-CSRF-Token,form:_csrf",
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieSameSite: http.SameSiteLaxMode,
			CookieSecure:   s.Config.CookieSecure,
			ErrorHandler: func(err error, c echo.Context) error {
				return c.String(http.StatusForbidden, "Forbidden")
			},
		}))
	}

	e.Use(cacheControlMiddleware)
}

func (s *Site) setupRoutes(e *echo.Echo) {
	if s.draftsEnabled() {
		e.GET("/drafts/", s.handleDrafts)
		e.POST("/drafts/login/", s.handleDraftLogin)
		e.POST("/drafts/logout/", handleDraftLogout)
		e.GET("/drafts/:slug/", s.handleDraft)
	}
	e.Static("/", s.Config.OutputDir)
}

func (s *Site) httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		he, ok := err.(*echo.HTTPError)
		if ok && he.Code == http.StatusNotFound && s.Views.NotFound != nil {
			_ = RenderStatus(c, http.StatusNotFound, s.Views.NotFound(s.Config))
			return
		}
		if ok && he.Code < 500 {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		s.log.Error("server error", "err", err)
		e.DefaultHTTPErrorHandler(err, c)
	}
}

// cacheControlMiddleware sets Cache-Control headers by path class. Preview
// responses stay short-lived; drafts are never cached.
func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/drafts"):
			c.Response().Header().Set("Cache-Control", "no-store")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		default:
			c.Response().Header().Set("Cache-Control", "no-cache")
		}
		return next(c)
	}
}

func (s *Site) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(s.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Config.CookieSecure,
	}
	return store
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
