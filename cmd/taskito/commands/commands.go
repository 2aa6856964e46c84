package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/taskito/core/internal/adapters/connectivity"
	"github.com/taskito/core/internal/adapters/localstore"
	"github.com/taskito/core/internal/adapters/notify"
	"github.com/taskito/core/internal/adapters/remote"
	"github.com/taskito/core/internal/adapters/repository"
	"github.com/taskito/core/internal/application/services"
	"github.com/taskito/core/internal/infrastructure/config"
	"github.com/taskito/core/internal/infrastructure/database"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/infrastructure/server"
	"github.com/taskito/core/internal/ports"
)

// NewAgentCommand creates the agent command
func NewAgentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run the local organizer agent",
		Long:  "Run the local organizer agent: loads the on-disk snapshot, scans for due reminders and syncs with the backend when a session and network are available",
		Run: func(cmd *cobra.Command, args []string) {
			runAgent()
		},
	}
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Taskito sync backend",
		Long:  "Start the Taskito sync backend with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up", 0)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down", 0)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewSessionsCommand creates the sessions maintenance command
func NewSessionsCommand() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance commands",
		Long:  "Maintain the server-side session table",
	}

	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired sessions",
		Run: func(cmd *cobra.Command, args []string) {
			cleanupSessions()
		},
	})

	return sessionsCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Taskito version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Taskito Core v1.0.0")
		},
	}
}

func runAgent() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	store, err := localstore.New(afero.NewOsFs(), cfg.Agent.DataDir, appLogger.WithComponent("localstore"))
	if err != nil {
		appLogger.Fatal("Failed to open local store", "error", err, "dir", cfg.Agent.DataDir)
	}

	state := services.NewState(store)

	client := remote.NewClient(cfg.Agent.BackendURL, cfg.Agent.ProbeTimeout, appLogger.WithComponent("remote"))
	monitor := connectivity.NewMonitor(cfg.Agent.BackendURL, cfg.Agent.ProbeInterval, cfg.Agent.ProbeTimeout, appLogger.WithComponent("connectivity"))
	syncMgr := services.NewSyncManager(state, client, monitor, appLogger.WithComponent("sync"))

	notifier := notify.NewConsole(appLogger.WithComponent("notify"))
	scanner := services.NewReminderScanner(state, notifier, cfg.Agent.ScanInterval, appLogger.WithComponent("reminders"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor.OnOnline(func() {
		syncMgr.HandleOnline(ctx)
	})

	client.OnAuthStateChange(func(authState ports.AuthState, session *ports.Session) {
		switch authState {
		case ports.AuthStateSignedIn:
			if err := syncMgr.HandleSignIn(ctx, session); err != nil {
				appLogger.Error("Sign-in handling failed", "error", err)
			}
		case ports.AuthStateSignedOut:
			if err := syncMgr.HandleSignOut(ctx); err != nil {
				appLogger.Error("Sign-out handling failed", "error", err)
			}
		}
	})

	go monitor.Run(ctx)
	go scanner.Run(ctx)

	appLogger.Info("Agent started",
		"data_dir", cfg.Agent.DataDir,
		"backend_url", cfg.Agent.BackendURL,
		"scan_interval", cfg.Agent.ScanInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Agent shutting down")
	cancel()
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting Taskito sync backend",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatal("Server failed to start", "error", err)
	}
}

func runMigration(direction string, steps int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func newMigrator(db *database.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
}

func cleanupSessions() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepository(db.DB)
	if err := sessionRepo.CleanupExpired(context.Background()); err != nil {
		log.Fatalf("Failed to clean up sessions: %v", err)
	}

	fmt.Println("Expired sessions removed")
}
