//go:build conntest

package conntest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/avibot-labs/pgdata/internal/db"
	"github.com/avibot-labs/pgdata/internal/testinfra"
	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

var container *testinfra.PostgresContainer

func TestMain(m *testing.M) {
	ctx := context.Background()

	ctr, err := testinfra.StartPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		os.Exit(1)
	}
	container = ctr

	code := m.Run()

	container.Terminate(ctx) //nolint:errcheck
	os.Exit(code)
}

func containerConfig() *pgdata.ConnectionConfig {
	return &pgdata.ConnectionConfig{
		Host:     container.Host,
		Port:     container.Port,
		Username: testinfra.PostgresUser,
		Password: testinfra.PostgresPassword,
		Database: testinfra.PostgresDB,
		SSLMode:  "disable",
	}
}

func startedManager(t *testing.T) *db.Manager {
	t.Helper()

	mgr, err := db.NewManager(containerConfig())
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}
