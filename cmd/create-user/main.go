// CLI tool to create a user with a bcrypt-hashed password and the default
// number of streak freeze credits.
// Usage: go run ./cmd/create-user (from the repo root)
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
	"github.com/thitiph0n/second-brain-sub001/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DEFAULT_FREEZE_CREDITS", 2)

	ctx := context.Background()
	pool, err := store.Connect(ctx, v.GetString("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	users := store.New(pool, zap.NewNop()).Users()
	u, err := users.Create(ctx, store.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		FreezeCredits: v.GetInt("DEFAULT_FREEZE_CREDITS"),
		CreatedAt:     time.Now().UTC(),
	})
	if errors.Is(err, nutrition.ErrConflict) {
		fmt.Fprintln(os.Stderr, "Username or email is already taken")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:             %s\n", u.ID)
	fmt.Printf("  Username:       %s\n", u.Username)
	fmt.Printf("  Freeze credits: %d\n", u.FreezeCredits)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
