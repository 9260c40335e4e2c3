package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/accounts"
	"github.com/clinicdesk/clinicdesk/internal/domain/booking"
	"github.com/clinicdesk/clinicdesk/internal/domain/prescription"
	"github.com/clinicdesk/clinicdesk/internal/platform/attachments"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
	"github.com/clinicdesk/clinicdesk/internal/platform/middleware"
	"github.com/clinicdesk/clinicdesk/internal/platform/notify"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicdesk-server",
		Short: "Clinic front-desk API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the front-desk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-30s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			displayName, _ := cmd.Flags().GetString("display-name")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StorageBackend != "postgres" {
				return fmt.Errorf("user add requires the postgres backend")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := accounts.NewService(accounts.NewRepoPG(pool),
				[]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
			u, err := svc.Create(ctx, username, password, role, displayName)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s account %q (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	addCmd.Flags().String("username", "", "Login name")
	addCmd.Flags().String("password", "", "Password (min 8 characters)")
	addCmd.Flags().String("role", auth.RoleReceptionist, "Role: admin, doctor, receptionist or patient")
	addCmd.Flags().String("display-name", "", "Display name")
	cmd.AddCommand(addCmd)

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the appointment book to a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, cleanup, err := buildBookingService(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := svc.ExportToFile(context.Background(), out)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d record(s) to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().String("out", "appointments_export.xlsx", "Output file path")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import appointments from a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			if in == "" {
				return fmt.Errorf("--in is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, cleanup, err := buildBookingService(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := svc.ImportFromFile(context.Background(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d record(s) from %s\n", n, in)
			return nil
		},
	}
	cmd.Flags().String("in", "", "Input spreadsheet path")
	return cmd
}

// buildBookingService wires a booking service against the configured
// backend without the HTTP surface, for CLI commands.
func buildBookingService(cfg *config.Config) (*booking.Service, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, err := attachments.NewFSStore(cfg.AttachmentDir)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var repo booking.AppointmentRepository
	var pool *pgxpool.Pool
	if cfg.StorageBackend == "postgres" {
		pool, err = db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		cleanup = pool.Close
		repo = booking.NewRepoPG(pool)
	} else {
		repo = booking.NewRepoSheet(cfg.SheetPath)
	}

	svc := booking.NewService(repo, store, notify.NewTemplateEngine(),
		booking.DefaultPolicy(), cfg.ClinicName)
	if pool != nil {
		svc.UseTxRunner(func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		})
	}
	return svc, cleanup, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Storage backend
	ctx := context.Background()
	var (
		apptRepo booking.AppointmentRepository
		userRepo accounts.UserRepository
		pool     *pgxpool.Pool
	)
	if cfg.StorageBackend == "postgres" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
		apptRepo = booking.NewRepoPG(pool)
		userRepo = accounts.NewRepoPG(pool)
	} else {
		logger.Info().Str("path", cfg.SheetPath).Msg("using spreadsheet backend")
		apptRepo = booking.NewRepoSheet(cfg.SheetPath)
		userRepo = seededUserRepo(logger)
	}

	// Attachments
	fileStore, err := attachments.NewFSStore(cfg.AttachmentDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open attachment store")
	}

	// Services
	templates := notify.NewTemplateEngine()
	apptSvc := booking.NewService(apptRepo, fileStore, templates,
		booking.DefaultPolicy(), cfg.ClinicName)
	if pool != nil {
		apptSvc.UseTxRunner(func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		})
	}
	accountSvc := accounts.NewService(userRepo, []byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLHours)*time.Hour)
	rxSvc := prescription.NewService(apptSvc, fileStore, prescription.ClinicInfo{
		Name:    cfg.ClinicName,
		Address: cfg.ClinicAddress,
	})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	// Login stays outside the session middleware.
	accountHandler := accounts.NewHandler(accountSvc)
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	accountHandler.RegisterPublicRoutes(public)

	// Authenticated API
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.Middleware([]byte(cfg.JWTSecret)))
	}

	booking.NewHandler(apptSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(rxSvc).RegisterRoutes(apiV1)
	accountHandler.RegisterRoutes(apiV1)
	attachments.NewHandler(fileStore).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// seededUserRepo backs the spreadsheet deployment mode, where there is no
// users table. Accounts come from ADMIN_USERNAME/ADMIN_PASSWORD and live
// for the process lifetime.
func seededUserRepo(logger zerolog.Logger) accounts.UserRepository {
	repo := accounts.NewRepoMem()
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		logger.Warn().Msg("no ADMIN_USERNAME/ADMIN_PASSWORD set; login is unavailable on the sheet backend")
		return repo
	}

	svc := accounts.NewService(repo, nil, time.Hour)
	if _, err := svc.Create(context.Background(), username, password, auth.RoleAdmin, "Administrator"); err != nil {
		logger.Error().Err(err).Msg("failed to seed admin account")
	}
	return repo
}
