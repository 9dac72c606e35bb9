package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/plightick/kursovaya/internal/handlers"
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/repository"
	"github.com/plightick/kursovaya/internal/repository/db"
	"github.com/plightick/kursovaya/internal/server"
	"github.com/plightick/kursovaya/internal/service"

	"github.com/spf13/viper"
)

func main() {
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	auditDB, err := openAuditDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := auditDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(auditDB, storageRoot(), ratesPath(), log)
	if err := repos.Users.EnsureRoot(); err != nil {
		log.Fatalw("failed to init user storage", "err", err)
	}
	services := service.NewService(repos, serviceConfig(), log)
	apiHandler := handlers.NewHandler(services, log)

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func storageRoot() string {
	if root := viper.GetString("storage.users"); root != "" {
		return root
	}
	return filepath.Join("data", "users")
}

func ratesPath() string {
	if path := viper.GetString("storage.rates"); path != "" {
		return path
	}
	return filepath.Join("data", "rates.txt")
}

func serviceConfig() service.Config {
	return service.Config{
		SigningKey:  viper.GetString("auth.signing_key"),
		TokenTTL:    viper.GetDuration("auth.token_ttl"),
		ReceiptsDir: viper.GetString("storage.receipts"),
	}
}

// openAuditDB initializes the audit SQLite database using configuration.
func openAuditDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "audit.db")
		dbPath = "audit.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks on termination signals and stops the server.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
