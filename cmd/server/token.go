package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/middleware"
)

// runToken implements `server token`: it signs a bearer token with the
// configured JWT secret and writes it to out.
func runToken(secret string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	subject := fs.String("sub", "ops", "token subject")
	role := fs.String("role", "operator", "role claim")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", *ttl)
	}

	token, err := middleware.IssueToken(secret, *subject, *role, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
