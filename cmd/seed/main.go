// Command seed fills an empty users table with demo managers and members so
// the team endpoints have a directory to validate against. It refuses to run
// against a non-empty table.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kvnlft/team-service/internal/config"
	"github.com/kvnlft/team-service/internal/database"
	"github.com/kvnlft/team-service/internal/user"
)

const demoPassword = "Hello01@"

var managerNames = []string{"Alice", "Victor", "Priya", "Tomasz", "Ingrid"}
var memberNames = []string{"Bob", "Lena", "Marco", "Yuki", "Sam", "Dana", "Olu", "Petra", "Ravi", "Mia"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var count int
	err = db.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		slog.Error("failed to count users", "error", err)
		os.Exit(1)
	}
	if count > 0 {
		slog.Info("users table is not empty, skipping seeding", "count", count)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash demo password", "error", err)
		os.Exit(1)
	}

	seeded := 0
	for _, name := range managerNames {
		if err := insertUser(ctx, db, name, user.RoleManager, string(hash)); err != nil {
			slog.Error("failed to seed user", "username", name, "error", err)
			os.Exit(1)
		}
		seeded++
	}
	for _, name := range memberNames {
		if err := insertUser(ctx, db, name, user.RoleMember, string(hash)); err != nil {
			slog.Error("failed to seed user", "username", name, "error", err)
			os.Exit(1)
		}
		seeded++
	}

	slog.Info("seed data inserted", "users", seeded)
}

func insertUser(ctx context.Context, db *database.DB, username, role, passwordHash string) error {
	id := uuid.New()
	email := fmt.Sprintf("%s-%s@example.com", username, id.String()[:8])

	_, err := db.Pool().Exec(ctx, `
		INSERT INTO users (user_id, username, email, password, role)
		VALUES ($1, $2, $3, $4, $5)`,
		id, username, email, passwordHash, role)
	return err
}
