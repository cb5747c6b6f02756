// Command create-user provisions an account directly in the database, for
// seeding environments where the register endpoint is not reachable.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/platform/postgres"
	"github.com/phrazzld/task-tracker-api/internal/service"
	"github.com/phrazzld/task-tracker-api/internal/service/auth"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

func main() {
	email := flag.String("email", "", "email address of the new user (required)")
	password := flag.String("password", "", "password of the new user (required)")
	name := flag.String("name", "", "full name of the new user")
	flag.Parse()

	if err := run(*email, *password, *name); err != nil {
		fmt.Fprintf(os.Stderr, "create-user: %v\n", err)
		os.Exit(1)
	}
}

func run(email, password, name string) error {
	if email == "" || password == "" {
		flag.Usage()
		return errors.New("-email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("create-user requires the postgres driver, got %q", cfg.Database.Driver)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	users, err := service.NewUserService(postgres.NewPostgresUserStore(db, log), hasher, hasher, log)
	if err != nil {
		return err
	}

	var fullName *string
	if name != "" {
		fullName = &name
	}

	user, err := users.Register(ctx, email, password, fullName)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return fmt.Errorf("a user with email %s already exists", email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
	return nil
}
