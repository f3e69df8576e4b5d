// Package web serves the public recruiting site and the admin dashboard as
// server-rendered pages. It talks to the recruiting API through apiclient.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"lifewood/internal/apiclient"
	"lifewood/internal/blob"
	"lifewood/internal/catalog"
	"lifewood/internal/config"
	"lifewood/internal/dashboard"
	"lifewood/internal/featureflags"
	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/registration"
	"lifewood/internal/viewport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookie   = "lifewood_session"
	sessionLifetime = 24 * time.Hour
)

// Option configures a Server.
type Option func(*Server)

// WithHTTPClient sets the client used for API calls.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Server) { s.httpClient = h }
}

// WithStorage replaces the session storage.
func WithStorage(st fiber.Storage) Option {
	return func(s *Server) { s.storage = st }
}

// Server holds the web front's dependencies.
type Server struct {
	config     *config.Config
	apiBase    string
	httpClient *http.Client
	public     *apiclient.Client
	storage    fiber.Storage
	sessions   *session.Store
	blobs      *blob.Registry
	flags      *featureflags.Manager
	projects   *catalog.Catalog
	states     *stateStore
	app        *fiber.App
}

// NewServer builds the web front. redisClient may be nil, in which case
// sessions are kept in memory.
func NewServer(cfg *config.Config, redisClient *redis.Client, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	s := &Server{
		config:     cfg,
		apiBase:    cfg.APIBaseURL,
		httpClient: &http.Client{},
		blobs:      blob.NewRegistry(0),
		flags:      featureflags.NewManager(cfg.FeatureFlags),
		projects:   catalog.Default(),
		states:     newStateStore(sessionLifetime),
	}
	if redisClient != nil {
		s.storage = NewRedisStorage(redisClient, "lifewood:web:")
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}

	s.public = apiclient.New(s.apiBase, nil, apiclient.WithHTTPClient(s.httpClient))
	s.sessions = session.New(session.Config{
		Storage:        s.storage,
		Expiration:     sessionLifetime,
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.IsProduction(),
	})
	return s, nil
}

// cookieKey derives the cookie encryption key from SESSION_SECRET. Without
// a secret a random key is used and sessions end with the process.
func (s *Server) cookieKey() string {
	if s.config.SessionSecret == "" {
		return encryptcookie.GenerateKey()
	}
	sum := sha256.Sum256([]byte(s.config.SessionSecret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// NewApp builds the fiber app with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Lifewood Web",
		Views:        newViews(),
		BodyLimit:    int(6 * 1024 * 1024),
		ErrorHandler: s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-src 'self' blob:; object-src 'self'",
	}))
	app.Use(middleware.StructuredLogger())
	app.Use(encryptcookie.New(encryptcookie.Config{Key: s.cookieKey()}))
	app.Use(withSession(s.sessions))
	app.Use(viewport.AcceptCH())

	s.SetupRoutes(app)
	return app
}

// SetupRoutes registers every page.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Home)
	app.Get("/about", s.About)
	app.Get("/projects", s.Projects)

	app.Get("/register", s.RegisterPage)
	app.Post("/register", s.RegisterPost)

	app.Get("/login", func(c *fiber.Ctx) error { return c.Redirect("/admin/login", fiber.StatusMovedPermanently) })
	app.Get("/admin/login", s.LoginPage)
	app.Post("/admin/login", s.LoginPost)

	admin := app.Group("/admin", s.requireAdmin)
	admin.Get("/dashboard", s.DashboardPage)
	admin.Get("/dashboard/export", s.ExportCSV)
	admin.Post("/applicants", s.SaveApplicant)
	admin.Post("/applicants/:id", s.SaveApplicant)
	admin.Post("/applicants/:id/approve", s.ApproveApplicant)
	admin.Post("/applicants/:id/decline", s.DeclineApplicant)
	admin.Post("/applicants/:id/status", s.SetApplicantStatus)
	admin.Post("/applicants/:id/delete", s.DeleteApplicant)
	admin.Post("/applicants/:id/preview", s.OpenPreview)
	admin.Post("/preview/close", s.ClosePreview)
	admin.Post("/logout", s.Logout)

	app.Get(blob.URLPrefix+":id", s.blobs.Handler())
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		// fasthttp refuses an oversized upload before any handler runs.
		if code == fiber.StatusRequestEntityTooLarge && c.Method() == fiber.MethodPost && c.Path() == "/register" {
			return c.Redirect(resumeRejectedURL, fiber.StatusSeeOther)
		}
	} else {
		middleware.Logger.ErrorContext(c.UserContext(), "web handler failed", slog.String("error", err.Error()))
	}
	c.Status(code)
	return c.Render("error", s.page(c, "Something went wrong", "", fiber.Map{
		"Status":  code,
		"Message": http.StatusText(code),
	}))
}

// tokensFor is the token store of the request's session.
func (s *Server) tokensFor(c *fiber.Ctx) apiclient.TokenStore {
	return NewSessionTokenStore(s.storage, currentSession(c).ID(), sessionLifetime)
}

// adminClient is an API client carrying the session's admin token.
func (s *Server) adminClient(c *fiber.Ctx) *apiclient.Client {
	return apiclient.New(s.apiBase, s.tokensFor(c), apiclient.WithHTTPClient(s.httpClient))
}

func (s *Server) state(c *fiber.Ctx) *sessionState {
	return s.states.get(currentSession(c).ID())
}

// draftFor returns the session's registration draft, creating it with the
// project hint on first use.
func (s *Server) draftFor(c *fiber.Ctx, projectHint string) *registration.Draft {
	st := s.state(c)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.draft == nil {
		sid := currentSession(c).ID()
		st.draft = registration.NewDraft(s.public, s.flags, s.blobs, sid, projectHint)
	}
	return st.draft
}

// resetDraft discards the session's draft.
func (s *Server) resetDraft(c *fiber.Ctx) {
	st := s.state(c)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.draft != nil {
		st.draft.Close()
		st.draft = nil
	}
}

// dashboardFor returns the session's dashboard.
func (s *Server) dashboardFor(c *fiber.Ctx) *dashboard.Dashboard {
	st := s.state(c)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.dash == nil {
		tokens := s.tokensFor(c)
		client := apiclient.New(s.apiBase, tokens, apiclient.WithHTTPClient(s.httpClient))
		st.dash = dashboard.New(client, tokens, s.blobs)
	}
	return st.dash
}

// requireAdmin sends visitors without a stored token to the login page.
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if c.Path() == "/admin/login" {
		return c.Next()
	}
	token, err := s.tokensFor(c).Token(c.UserContext())
	if err != nil || token == "" {
		return c.Redirect("/admin/login")
	}
	return c.Next()
}

// projectList fetches the catalog from the API and falls back to the
// embedded copy.
func (s *Server) projectList(ctx context.Context) []catalog.Project {
	projects, err := apiclient.Decode[[]catalog.Project](s.public.ListProjects(ctx))
	if err != nil || len(projects) == 0 {
		if err != nil {
			middleware.Logger.WarnContext(ctx, "project list unavailable, using embedded catalog",
				slog.String("error", err.Error()))
		}
		return s.projects.List()
	}
	return projects
}

// Page is the data every template receives.
type Page struct {
	Title    string
	Path     string
	Mobile   bool
	Tablet   bool
	Notice   string
	Error    string
	SignedIn bool
	Admin    *models.Admin
	Data     fiber.Map
}

func (s *Server) page(c *fiber.Ctx, title, errMsg string, data fiber.Map) Page {
	vp := viewport.FromCtx(c)
	notice, flashErr := popFlash(c)
	if errMsg == "" {
		errMsg = flashErr
	}
	p := Page{
		Title:  title,
		Path:   c.Path(),
		Mobile: vp.IsMobile(),
		Tablet: vp.IsTablet(),
		Notice: notice,
		Error:  errMsg,
		Data:   data,
	}
	if sess := currentSession(c); sess != nil {
		tokens := s.tokensFor(c)
		if token, err := tokens.Token(c.UserContext()); err == nil && token != "" {
			p.SignedIn = true
			p.Admin, _ = tokens.Admin(c.UserContext())
		}
	}
	return p
}

// Start listens on the web port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("web server starting", slog.String("port", s.config.WebPort))
	return s.app.Listen(":" + s.config.WebPort)
}

// Shutdown stops the listener and releases every session's previews.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.app != nil {
		err = s.app.ShutdownWithContext(ctx)
	}
	s.states.closeAll()
	s.blobs.Close()
	return err
}
