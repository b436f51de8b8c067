package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/passdesk/passdesk/internal/api/handlers"
	"github.com/passdesk/passdesk/internal/api/middleware"
	"github.com/passdesk/passdesk/internal/appointment"
	"github.com/passdesk/passdesk/internal/artifact"
	"github.com/passdesk/passdesk/internal/audit"
	"github.com/passdesk/passdesk/internal/auth"
	"github.com/passdesk/passdesk/internal/authz"
	"github.com/passdesk/passdesk/internal/cache"
	"github.com/passdesk/passdesk/internal/config"
	"github.com/passdesk/passdesk/internal/identity"
	"github.com/passdesk/passdesk/internal/org"
	"github.com/passdesk/passdesk/internal/pass"
	"github.com/passdesk/passdesk/internal/queue"
	"github.com/passdesk/passdesk/internal/store"
	"github.com/passdesk/passdesk/internal/user"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	authn *auth.Middleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		authn: auth.NewMiddleware(tokens),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Stores
	orgStore := store.NewOrgStore(rt.db)
	userStore := store.NewUserStore(rt.db)
	visitorStore := store.NewVisitorStore(rt.db)
	apptStore := store.NewAppointmentStore(rt.db)
	passStore := store.NewPassStore(rt.db)

	// Services
	tokens := auth.NewTokenService(rt.cfg.Auth.JWTSecret, rt.cfg.Auth.TokenTTL)
	auditSvc := audit.NewService(rt.db)
	az := authz.New(userStore, visitorStore)
	storage := artifact.NewLocalStorage(rt.cfg.Uploads.Dir, rt.cfg.Uploads.PublicBaseURL)
	queueClient := queue.NewClient(rt.cfg.Redis)

	identitySvc := identity.NewService(orgStore, userStore, visitorStore, tokens, auditSvc)
	orgSvc := org.NewService(orgStore, cache.NewCache(rt.redis))
	userSvc := user.NewService(userStore, auditSvc)
	apptSvc := appointment.NewService(apptStore, visitorStore)
	passSvc := pass.NewService(passStore, visitorStore, apptStore, orgStore, userStore, az, queueClient, storage, auditSvc)

	authH := handlers.NewAuthHandler(identitySvc, orgSvc)
	userH := handlers.NewUserHandler(userSvc)
	apptH := handlers.NewAppointmentHandler(apptSvc)
	passH := handlers.NewPassHandler(passSvc)

	// Rendered artifacts are also reachable as plain files.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(storage.Root())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth and registration surface
		r.Post("/auth/register-org", authH.RegisterOrg)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/visitor-login", authH.VisitorLogin)
		r.Post("/auth/register-visitor", authH.RegisterVisitor)
		r.Post("/auth/register-account", authH.RegisterAccount)
		r.Post("/auth/account-login", authH.AccountLogin)
		r.Post("/auth/register-user", authH.RegisterUserDeprecated)
		r.Get("/auth/public-orgs", authH.PublicOrgs)

		// Everything below requires a resolved principal
		r.Group(func(r chi.Router) {
			r.Use(rt.authn.Authenticate)

			r.Get("/auth/me", authH.Me)
			r.Get("/auth/my-orgs", authH.MyOrgs)

			// Account cross-org views
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(auth.RoleAccount))
				r.Get("/auth/account-organizations", passH.MyOrganizations)
				r.Get("/auth/account-passes", passH.AccountPasses)
			})

			// Passes: service-level checks decide per-kind visibility
			r.Route("/passes", func(r chi.Router) {
				r.Get("/", passH.List)
				r.Get("/{id}", passH.Get)
				r.Get("/{id}/qr.png", passH.QR)
				r.Get("/{id}/badge.pdf", passH.Badge)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRoles(auth.RoleAdmin, auth.RoleSecurity, auth.RoleHost))
					r.Post("/issue", passH.Issue)
					r.Post("/{id}/revoke", passH.Revoke)
				})
			})

			// Staff scheduling
			r.Route("/appointments", func(r chi.Router) {
				r.Use(auth.RequireRoles(auth.RoleAdmin, auth.RoleSecurity, auth.RoleHost))
				r.Post("/", apptH.Create)
				r.Get("/", apptH.List)
			})

			// Admin staff management
			r.Route("/users", func(r chi.Router) {
				r.Use(auth.RequireRoles(auth.RoleAdmin))
				r.Get("/", userH.List)
				r.Post("/", userH.Create)
				r.Get("/{id}", userH.Get)
				r.Put("/{id}", userH.Update)
				r.Delete("/{id}", userH.Delete)
			})
		})
	})

	return r
}
