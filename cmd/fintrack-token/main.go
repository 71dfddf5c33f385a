// Command fintrack-token issues a bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()

	user := flag.String("user", "", "user id to embed as the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: fintrack-token -user <id> [-ttl 24h]")
		os.Exit(2)
	}

	a, err := auth.NewAuthenticator(os.Getenv("JWT_SECRET"), *ttl, logger)
	if err != nil {
		logger.Error("Failed to initialize authenticator", log.FieldError, err)
		os.Exit(1)
	}
	token, err := a.IssueToken(core.UserID(*user))
	if err != nil {
		logger.Error("Failed to issue token", log.FieldUser, *user, log.FieldError, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
