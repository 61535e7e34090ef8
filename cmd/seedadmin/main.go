// Command seedadmin creates the bootstrap administrator account. The first
// admin cannot come out of the elevation workflow, because approving a
// request already requires an admin.
//
// The password is prompted interactively and hashed under the same policy as
// regular registrations, with the pepper taken from the PEPPER environment
// variable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"siams/internal/dbx"
	"siams/internal/randx"
	"siams/internal/server/models"
	"siams/internal/server/passwords"
	"siams/internal/server/repositories/repomanager"
	"siams/internal/shared"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seedadmin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {

	_ = godotenv.Load()

	var dsn, username, email string
	flag.StringVar(&dsn, "d", os.Getenv("DATABASE_DSN"), "postgres dsn")
	flag.StringVar(&username, "u", "admin", "admin username")
	flag.StringVar(&email, "e", "", "admin email address")
	flag.Parse()

	if dsn == "" {
		return errors.New("database dsn is required (-d or DATABASE_DSN)")
	}
	if email == "" {
		return errors.New("admin email is required (-e)")
	}

	pepper := os.Getenv("PEPPER")
	if pepper == "" {
		return errors.New("PEPPER environment variable is required")
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	ctx := context.Background()

	rm, err := repomanager.NewPostgresRepositoryManager(dsn)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer rm.Conn().Close()

	if err := rm.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	hasher := passwords.NewHasher(pepper, passwords.DefaultParams())
	hash, salt, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:               uuid.New().String(),
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		Salt:             salt,
		Role:             models.RoleAdmin,
		IsEmailConfirmed: true,
	}

	err = dbx.WithTx(ctx, rm.Conn(), nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := rm.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return rm.AuditLog(tx).Append(ctx, &models.LogEntry{
			Action:      fmt.Sprintf("User '%s' was created as a bootstrap administrator.", username),
			PerformedBy: "system",
			UserID:      &user.ID,
		})
	})
	if err != nil {
		if errors.Is(err, shared.ErrorUsernameTaken) || errors.Is(err, shared.ErrorEmailTaken) {
			return fmt.Errorf("an account with that username or email already exists")
		}
		return err
	}

	fmt.Printf("administrator %q created\n", username)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	defer randx.WipeByteArray(first)

	if err := passwords.ValidatePolicy(string(first)); err != nil {
		return "", fmt.Errorf("password does not meet the policy: " +
			"at least 8 characters with upper, lower, digit, and symbol")
	}

	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	defer randx.WipeByteArray(second)

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}

	return string(first), nil
}
