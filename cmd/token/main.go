// Command token mints a bearer token for a user, signed with the configured
// secret. It is meant for local development and smoke tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userFlag := fs.String("user", "", "user ID to embed (a new random ID if empty)")
	configDir := fs.String("config", "", "directory containing config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = parsed
	}

	var (
		cfg *config.Config
		err error
	)
	if *configDir == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(*configDir)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "user_id=%s\ntoken=%s\n", userID, token)
	return err
}
