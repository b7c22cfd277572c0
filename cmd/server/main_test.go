// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
	"github.com/tomtom215/assesslink/internal/supervisor"
)

const testConfig = `
server:
  port: 3999
  host: 127.0.0.1
  public_base_url: https://assess.example.org
storage:
  backend: memory
security:
  jwt_secret: 9fT2kQ7vLx4mW8nR3pZ6yB1cH5jD0sGe
  bcrypt_cost: 4
  rate_limit_disabled: true
  admin_username: operator
  admin_password: Quartz-Heron-8814!
links:
  sweep_interval: 1s
logging:
  level: error
`

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return cfg
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{name: "defaults", args: nil, want: options{}},
		{name: "config path", args: []string{"--config", "/etc/assesslink/prod.yaml"}, want: options{configPath: "/etc/assesslink/prod.yaml"}},
		{name: "verify", args: []string{"--verify-indexes"}, want: options{verifyIndexes: true}},
		{name: "repair", args: []string{"--repair-indexes"}, want: options{repairIndexes: true}},
		{name: "both index modes", args: []string{"--verify-indexes", "--repair-indexes"}, wantErr: true},
		{name: "positional argument", args: []string{"serve"}, wantErr: true},
		{name: "unknown flag", args: []string{"--port=80"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseFlags(%v) succeeded, want error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags(%v): %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("parseFlags(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestCheckIndexes(t *testing.T) {
	db := database.NewMemory()
	defer db.Close()

	ctx := context.Background()
	if err := db.Accounts.Create(ctx, &models.Account{
		ID:       database.NewID("usr"),
		Username: "river",
		Email:    "river@example.org",
		Role:     models.RoleUser,
		Status:   models.AccountActive,
	}); err != nil {
		t.Fatal(err)
	}

	for _, repair := range []bool{false, true} {
		var out bytes.Buffer
		if err := checkIndexes(ctx, db, repair, &out); err != nil {
			t.Fatalf("checkIndexes(repair=%v): %v", repair, err)
		}
		var reports map[string]store.IndexReport
		if err := json.Unmarshal(out.Bytes(), &reports); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out.String())
		}
		if len(reports) == 0 {
			t.Fatalf("no collections reported")
		}
		for name, r := range reports {
			if !r.Clean() {
				t.Errorf("collection %s not clean: %+v", name, r)
			}
		}
	}
}

func TestNewApp_BootstrapAndServe(t *testing.T) {
	cfg := loadTestConfig(t)
	db, err := database.Open(&cfg.Storage)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	a, err := newApp(cfg, db)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if a.svc.Payments != nil {
		t.Error("payments wired while payment is disabled")
	}

	ctx := context.Background()
	for range 2 {
		if err := a.bootstrap(ctx); err != nil {
			t.Fatalf("bootstrap: %v", err)
		}
	}
	admin, err := db.Accounts.GetByUsername(ctx, "operator")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("admin role = %q", admin.Role)
	}
	if n, _ := db.Accounts.Count(ctx); n != 1 {
		t.Errorf("account count = %d after two bootstraps, want 1", n)
	}

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/health/live = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payment/create", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST /api/payment/create with payment disabled = %d, want 404", rec.Code)
	}
}

func TestApp_SuperviseStartsAndStops(t *testing.T) {
	cfg := loadTestConfig(t)
	db, err := database.Open(&cfg.Storage)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	a, err := newApp(cfg, db)
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()
	a.server.Addr = "127.0.0.1:0"

	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.DefaultTreeConfig())
	if err != nil {
		t.Fatal(err)
	}
	a.supervise(tree)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-a.bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("event router did not start")
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(15 * time.Second):
		t.Fatal("supervisor tree did not stop")
	}
}
