package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"cascade/internal/access"
	accessHandler "cascade/internal/access/handler"
	accessMetrics "cascade/internal/access/metrics"
	"cascade/internal/history"
	historyMetrics "cascade/internal/history/metrics"
	historyService "cascade/internal/history/service"
	historyStore "cascade/internal/history/store/history"
	historyWorker "cascade/internal/history/worker"
	jwttoken "cascade/internal/jwt_token"
	"cascade/internal/member"
	memberService "cascade/internal/member/service"
	memberStore "cascade/internal/member/store/member"
	"cascade/internal/permission"
	permissionService "cascade/internal/permission/service"
	permissionStore "cascade/internal/permission/store/permission"
	"cascade/internal/platform/config"
	"cascade/internal/platform/httpserver"
	"cascade/internal/platform/kafka"
	"cascade/internal/platform/logger"
	platformMetrics "cascade/internal/platform/metrics"
	"cascade/internal/platform/middleware"
	"cascade/internal/platform/postgres"
	"cascade/internal/policy"
	policyService "cascade/internal/policy/service"
	policyStore "cascade/internal/policy/store/policy"
	"cascade/internal/project"
	projectMetrics "cascade/internal/project/metrics"
	projectService "cascade/internal/project/service"
	projectStore "cascade/internal/project/store/project"
	"cascade/internal/role"
	roleService "cascade/internal/role/service"
	roleStore "cascade/internal/role/store/role"
)

// version is stamped at build time via -ldflags.
var version = "dev"

const (
	jwtIssuer   = "cascade"
	jwtAudience = "cascade-api"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat, version)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	stores := buildStores(db)

	var txRunner project.StoreTx
	if db != nil {
		txRunner = newProjectPostgresTx(db)
	} else {
		txRunner = project.NewShardedTx()
	}

	gate := project.NewGate(stores.projects)
	historyMetricsInst := historyMetrics.New()

	historySvc := history.NewService(stores.history,
		historyService.WithLogger(log),
		historyService.WithMetrics(historyMetricsInst),
	)
	permissionSvc := permission.NewService(stores.permissions, gate,
		permissionService.WithLogger(log),
	)
	roleSvc := role.NewService(stores.roles, stores.policies, stores.members, gate, txRunner,
		roleService.WithLogger(log),
	)
	policySvc := policy.NewService(stores.policies, stores.permissions, stores.roles, gate, txRunner,
		policyService.WithLogger(log),
	)
	memberSvc := member.NewService(stores.members, stores.roles, gate, historySvc, txRunner,
		memberService.WithLogger(log),
	)
	projectSvc := project.NewService(stores.projects, stores.members, roleSvc, permissionSvc, historySvc, txRunner,
		projectService.WithLogger(log),
		projectService.WithMetrics(projectMetrics.New()),
	)

	accessMetricsInst := accessMetrics.New()
	resolver := access.NewResolver(stores.projects, stores.members, stores.roles, stores.policies, stores.permissions,
		access.WithResolverLogger(log),
		access.WithResolverMetrics(accessMetricsInst),
	)
	batch := access.NewBatch(resolver,
		access.WithBatchLogger(log),
		access.WithBatchMetrics(accessMetricsInst),
		access.WithBatchConcurrency(cfg.BatchConcurrency),
	)

	publisher, err := kafka.NewPublisher(ctx, cfg.KafkaSeeds, cfg.KafkaTopic, log)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.LatencyMiddleware(platformMetrics.New()))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := postgres.Health(r.Context(), db); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(validator, log))

		project.NewHandler(projectSvc, log).Register(api)
		member.NewHandler(memberSvc, log).Register(api)
		role.NewHandler(roleSvc, log).Register(api)
		policy.NewHandler(policySvc, log).Register(api)
		permission.NewHandler(permissionSvc, log).Register(api)
		history.NewHandler(historySvc, gate, log).Register(api)
		accessHandler.New(batch, log).Register(api)
	})

	srv := httpserver.New(cfg.HTTPAddr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening",
			"addr", cfg.HTTPAddr,
			"backend", cfg.StoreBackend,
			"version", version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if publisher != nil {
		outbox := historyWorker.New(stores.history, publisher,
			historyWorker.WithInterval(cfg.OutboxInterval),
			historyWorker.WithLogger(log),
			historyWorker.WithMetrics(historyMetricsInst),
		)
		g.Go(func() error {
			if err := outbox.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "grace", cfg.ShutdownGrace)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Store surfaces union every consumer-side interface one backend must satisfy,
// so a drifting store method fails to compile here instead of deep in wiring.

type projectStoreSurface interface {
	projectService.Store
	projectService.GateStore
	access.ProjectStore
}

type memberStoreSurface interface {
	memberService.Store
	projectService.MembershipRemover
	roleService.MemberCounter
	access.MembershipStore
}

type roleStoreSurface interface {
	roleService.Store
	memberService.RoleStore
	policyService.RoleCounter
	access.RoleStore
}

type policyStoreSurface interface {
	policyService.Store
	roleService.PolicyStore
	access.PolicyStore
}

type permissionStoreSurface interface {
	permissionService.Store
	policyService.PermissionStore
	access.PermissionStore
}

type historyStoreSurface interface {
	historyService.Store
	historyWorker.OutboxStore
}

// storeSet groups one backend's store implementations.
type storeSet struct {
	projects    projectStoreSurface
	members     memberStoreSurface
	roles       roleStoreSurface
	policies    policyStoreSurface
	permissions permissionStoreSurface
	history     historyStoreSurface
}

func buildStores(db *sql.DB) storeSet {
	if db == nil {
		return storeSet{
			projects:    projectStore.NewInMemory(),
			members:     memberStore.NewInMemory(),
			roles:       roleStore.NewInMemory(),
			policies:    policyStore.NewInMemory(),
			permissions: permissionStore.NewInMemory(),
			history:     historyStore.NewInMemory(),
		}
	}
	return storeSet{
		projects:    projectStore.NewPostgres(db),
		members:     memberStore.NewPostgres(db),
		roles:       roleStore.NewPostgres(db),
		policies:    policyStore.NewPostgres(db),
		permissions: permissionStore.NewPostgres(db),
		history:     historyStore.NewPostgres(db),
	}
}
