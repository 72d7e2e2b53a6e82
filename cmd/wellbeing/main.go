// Package main is the entry point of the Student Wellbeing Hub.
//
// On start it connects to PostgreSQL, applies pending migrations, creates the
// default staff accounts when none exist and wires the store, analytics and
// access policy. It then prints one report as JSON:
//
//	wellbeing                                   system overview
//	wellbeing -user wellbeing -student 7        a student's report
//	wellbeing -user admin -evaluate-alerts      raise alerts for every student
//	wellbeing -user director -export-attendance attendance dump
//	wellbeing -rollback                         revert the latest migration
//
// The password is read from WELLBEING_PASSWORD when -password is omitted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuscare/wellbeing-hub/config"
	"github.com/campuscare/wellbeing-hub/internal/application/access"
	"github.com/campuscare/wellbeing-hub/internal/application/analytics"
	"github.com/campuscare/wellbeing-hub/internal/application/command"
	"github.com/campuscare/wellbeing-hub/internal/application/query"
	"github.com/campuscare/wellbeing-hub/internal/application/store"
	"github.com/campuscare/wellbeing-hub/internal/infrastructure/persistence/postgres"
	"github.com/campuscare/wellbeing-hub/internal/infrastructure/persistence/redis"
	"github.com/campuscare/wellbeing-hub/internal/infrastructure/security"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
	"github.com/campuscare/wellbeing-hub/pkg/retry"
)

type options struct {
	studentID        int64
	username         string
	password         string
	evaluateAlerts   bool
	exportAttendance bool
	rollback         bool
}

func parseFlags() options {
	var o options
	flag.Int64Var(&o.studentID, "student", 0, "print the report of this student")
	flag.StringVar(&o.username, "user", "", "staff username to log in as")
	flag.StringVar(&o.password, "password", "", "password (defaults to $WELLBEING_PASSWORD)")
	flag.BoolVar(&o.evaluateAlerts, "evaluate-alerts", false, "scan records and raise alerts")
	flag.BoolVar(&o.exportAttendance, "export-attendance", false, "print every attendance record")
	flag.BoolVar(&o.rollback, "rollback", false, "revert the latest migration and exit")
	flag.Parse()

	if o.password == "" {
		o.password = os.Getenv("WELLBEING_PASSWORD")
	}
	return o
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, parseFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stderr,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    cfg.Observability.LogFormat,
		AddCaller: cfg.App.Debug,
		Service:   cfg.App.Name,
	})
	defer func() { _ = log.Sync() }()
	ctx = logger.WithContext(ctx, log)

	log.Info("starting wellbeing hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Feature flags and Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	flags := config.LoadFeatureFlags()

	var summaries *redis.SummaryCache
	if !cfg.Redis.Disabled && flags.IsEnabled(config.FeatureSummaryCache, 0) {
		cache, err := redis.NewCache(ctx, redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("redis unavailable, summary caching disabled", logger.Err(err))
		} else {
			defer cache.Close()
			summaries = redis.NewSummaryCache(cache, cfg.Analytics.SummaryCacheTTL, log)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Schema
	// ─────────────────────────────────────────────────────────────────────────
	migrator := postgres.NewMigrator(conn)
	if opts.rollback {
		version, err := migrator.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		log.Info("migration rolled back", logger.Int("version", version))
		if version > 0 {
			dropSummaries(ctx, summaries, log)
		}
		return nil
	}

	applied, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date", logger.Int("applied", applied))
	if applied > 0 {
		dropSummaries(ctx, summaries, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Application wiring
	// ─────────────────────────────────────────────────────────────────────────
	hasher, err := security.NewHasher(cfg.Security.PasswordSalt)
	if err != nil {
		return err
	}

	var storeOpts []store.Option
	engineOpts := []analytics.Option{
		analytics.WithThreshold(cfg.Analytics.HighStressThreshold),
		analytics.WithLogger(log),
	}
	if summaries != nil {
		storeOpts = append(storeOpts, store.WithInvalidator(summaries))
		engineOpts = append(engineOpts, analytics.WithCache(summaries))
	}

	st := store.New(store.Repositories{
		Students:   postgres.NewStudentRepository(conn),
		Attendance: postgres.NewAttendanceRepository(conn),
		Wellbeing:  postgres.NewWellbeingRepository(conn),
		Coursework: postgres.NewCourseworkRepository(conn),
		Users:      postgres.NewUserRepository(conn),
		Alerts:     postgres.NewAlertRepository(conn),
		Audit:      postgres.NewAuditRepository(conn),
	}, log, storeOpts...)
	engine := analytics.NewEngine(st, engineOpts...)
	policy := access.NewPolicy(st, hasher, log)

	if cfg.Seed.Enabled {
		accounts := access.DefaultAccounts(cfg.Seed.AdminPassword, cfg.Seed.OfficerPassword, cfg.Seed.DirectorPassword)
		if _, err := access.SeedDefaultUsers(ctx, st, hasher, accounts, log); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Report
	// ─────────────────────────────────────────────────────────────────────────
	needsSession := opts.studentID > 0 || opts.evaluateAlerts || opts.exportAttendance
	if !needsSession {
		return printJSON(engine.Overview(ctx))
	}

	if opts.username == "" {
		return errors.New("-user is required for this report")
	}
	session, err := policy.Login(ctx, opts.username, opts.password)
	if err != nil {
		return err
	}
	defer policy.Logout(context.WithoutCancel(ctx))

	switch {
	case opts.evaluateAlerts:
		h := command.NewEvaluateAlertsHandler(st, policy, command.EvaluateAlertsConfig{
			HighStressThreshold: engine.Threshold(),
			PassMark:            cfg.Analytics.PassMark,
			SkipWellbeing:       !flags.IsEnabled(config.FeatureAlertsWellbeing, session.UserID),
			SkipAttendance:      !flags.IsEnabled(config.FeatureAlertsAttendance, session.UserID),
			SkipAcademic:        !flags.IsEnabled(config.FeatureAlertsAcademic, session.UserID),
		}, log)
		res, err := h.Handle(ctx, command.EvaluateAlertsCommand{StudentID: opts.studentID})
		if err != nil {
			return err
		}
		return printJSON(res)

	case opts.exportAttendance:
		rows, err := query.NewExportAttendanceHandler(policy, st, st, log).Handle(ctx)
		if err != nil {
			return err
		}
		return printJSON(rows)

	default:
		h := query.NewGetStudentReportHandler(policy, st, engine, st, log)
		dto, err := h.Handle(ctx, query.GetStudentReportQuery{StudentID: opts.studentID})
		if err != nil {
			return err
		}
		return printJSON(dto)
	}
}

// dropSummaries clears cached summaries after a schema change, since they
// were computed against the old tables.
func dropSummaries(ctx context.Context, summaries *redis.SummaryCache, log *logger.Logger) {
	if summaries == nil {
		return
	}
	if err := summaries.InvalidateAll(ctx); err != nil {
		log.Warn("failed to clear cached summaries", logger.Err(err))
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*postgres.Connection, error) {
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = cfg.Database.MaxConns
	pgCfg.MinConns = cfg.Database.MinConns
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	r := retry.New(
		retry.WithMaxAttempts(cfg.Database.ConnectAttempts),
		retry.WithInitialDelay(500*time.Millisecond),
		retry.WithMaxDelay(10*time.Second),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("database not ready, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)

	conn, err := retry.DoWithData(ctx, r, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnection(ctx, pgCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")
	return conn, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
