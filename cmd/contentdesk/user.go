package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/eringen/contentdesk"
	"github.com/eringen/contentdesk/auth"
	"github.com/eringen/contentdesk/logger"
)

// runUserAdd creates an account directly in the configured database, for
// bootstrapping the first user while sign-up is disabled.
func runUserAdd(args []string) error {
	fs := pflag.NewFlagSet("user add", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "optional config file (yaml, toml or json)")
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", "", "account password")
	first := fs.String("first-name", "", "first name")
	last := fs.String("last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := contentdesk.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	app := contentdesk.New(cfg, contentdesk.WithLogger(logger.NewNop()))
	defer app.Close()
	if err := app.Init(context.Background()); err != nil {
		return err
	}

	u, err := app.Auth.SignUp(context.Background(), auth.Registration{
		FirstName:       *first,
		LastName:        *last,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
		Terms:           true,
	})
	var ferrs auth.FieldErrors
	if errors.As(err, &ferrs) {
		for field, msg := range ferrs {
			fmt.Printf("  %s: %s\n", field, msg)
		}
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (%s)\n", u.Email, u.ID)
	return nil
}
