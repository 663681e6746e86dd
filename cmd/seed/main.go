package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/auth"
	"github.com/smartdept/budget/internal/budget"
	budgetStore "github.com/smartdept/budget/internal/budget/store"
	"github.com/smartdept/budget/internal/config"
	"github.com/smartdept/budget/internal/database"
	"github.com/smartdept/budget/internal/user"
	userStore "github.com/smartdept/budget/internal/user/store"
)

const defaultPassword = "password123"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := seedUsers(ctx, userStore.New(db)); err != nil {
		slog.Error("failed to seed users", "error", err)
		os.Exit(1)
	}

	if err := seedBudget(ctx, budget.NewService(budgetStore.New(db))); err != nil {
		slog.Error("failed to seed budget", "error", err)
		os.Exit(1)
	}

	slog.Info("seeding completed")
}

func seedUsers(ctx context.Context, store *userStore.Store) error {
	hash, err := auth.HashPassword(defaultPassword)
	if err != nil {
		return err
	}

	users := []user.User{
		{
			Name:         "Admin User",
			Email:        "admin@college.edu",
			PasswordHash: hash,
			Role:         user.RoleAdmin,
			Department:   "Administration",
		},
		{
			Name:         "Dr. John Doe",
			Email:        "hod@college.edu",
			PasswordHash: hash,
			Role:         user.RoleHOD,
			Department:   "Computer Science",
		},
		{
			Name:         "Prof. Smith",
			Email:        "staff@college.edu",
			PasswordHash: hash,
			Role:         user.RoleStaff,
			Department:   "Computer Science",
		},
	}

	for i := range users {
		if err := store.CreateUser(ctx, &users[i]); err != nil {
			return err
		}

		slog.Info("seeded user", "email", users[i].Email, "role", users[i].Role)
	}

	return nil
}

func seedBudget(ctx context.Context, svc *budget.Service) error {
	// An existing active budget means seeding already ran.
	if _, err := svc.Active(ctx); err == nil {
		slog.Info("active budget already present, skipping")
		return nil
	} else if !errors.Is(err, budget.ErrNoActiveBudget) {
		return err
	}

	b, err := svc.Create(ctx, budget.CreateParams{
		AcademicYear: "2023-2024",
		TotalAmount:  decimal.NewFromInt(5_000_000),
		StartDate:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return err
	}

	categories := []struct {
		name      string
		allocated int64
	}{
		{"Laboratory Equipment", 2_000_000},
		{"Software Licenses", 1_000_000},
		{"Events & Workshops", 800_000},
		{"Travel & Allowance", 500_000},
		{"Stationery", 500_000},
	}

	for _, c := range categories {
		if _, err := svc.AddCategory(ctx, b.ID, c.name, decimal.NewFromInt(c.allocated)); err != nil {
			return err
		}
	}

	if err := svc.Activate(ctx, b.ID); err != nil {
		return err
	}

	slog.Info("seeded budget", "academic_year", b.AcademicYear)

	return nil
}
