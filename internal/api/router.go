package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/talentpool/resume-indexer/internal/api/handlers"
	"github.com/talentpool/resume-indexer/internal/api/middleware"
	"github.com/talentpool/resume-indexer/internal/auth"
	"github.com/talentpool/resume-indexer/internal/cache"
	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/config"
	"github.com/talentpool/resume-indexer/internal/extraction"
	"github.com/talentpool/resume-indexer/internal/indexer"
	"github.com/talentpool/resume-indexer/internal/queue"
	"github.com/talentpool/resume-indexer/internal/runs"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	queue *queue.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, qc *queue.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		queue: qc,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() (http.Handler, error) {
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

	// Initialize services
	store := candidate.NewPostgresStore(rt.db)
	extractor, err := extraction.New(rt.cfg.Extraction)
	if err != nil {
		return nil, err
	}
	ix := indexer.New(store, extractor)
	orch := indexer.NewOrchestrator(store, ix, rt.cfg.Indexing.BatchSize,
		indexer.WithEligibility(indexer.NeedsIndexing(rt.cfg.Indexing.StaleAfter)),
	)
	runsSvc := runs.NewService(rt.db)
	cacheSvc := cache.NewCache(rt.redis)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		resumeH := handlers.NewResumeHandler(store, ix, cacheSvc)
		r.Post("/resumes/index", resumeH.Index)
		r.Get("/candidates/{id}/index", resumeH.IndexStatus)

		adminH := handlers.NewAdminHandler(orch, runsSvc, cacheSvc, rt.queue, rt.cfg.Indexing.LockTTL)
		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.jwt.RequireRole(rt.cfg.Auth.AdminRole))
			r.Post("/reindex", adminH.Reindex)
			r.Post("/reindex/async", adminH.ReindexAsync)
			r.Get("/reindex/runs", adminH.ListRuns)
		})
	})

	return r, nil
}
