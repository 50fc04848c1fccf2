package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jengzang/firewatch-backend-go/internal/middleware"
)

func TestRunToken(t *testing.T) {
	var out bytes.Buffer
	if err := runToken("cli-secret", []string{"-sub", "alice", "-role", "admin", "-ttl", "1h"}, &out); err != nil {
		t.Fatalf("runToken: %v", err)
	}

	claims, err := middleware.ParseToken("cli-secret", strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != "admin" {
		t.Errorf("claims = %+v, want alice/admin", claims)
	}
}

func TestRunTokenRejects(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		args   []string
	}{
		{"empty secret", "", nil},
		{"negative ttl", "s", []string{"-ttl", "-1h"}},
		{"unknown flag", "s", []string{"-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runToken(tt.secret, tt.args, &out); err == nil {
				t.Errorf("runToken(%v) succeeded, want error", tt.args)
			}
		})
	}
}
