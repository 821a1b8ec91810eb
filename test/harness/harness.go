// Package harness runs end-to-end tests: the real challenge engine talking
// to a real in-process t45-sync server over HTTP.
package harness

import (
	"net/http/httptest"
	"testing"

	"github.com/marcus/t45/internal/api"
	"github.com/marcus/t45/internal/challenge"
	"github.com/marcus/t45/internal/models"
	"github.com/marcus/t45/internal/remote"
	"github.com/marcus/t45/internal/serverdb"
	"github.com/marcus/t45/internal/snapshot"
)

// Env is an in-process sync server plus a controllable clock shared by
// every device attached to it.
type Env struct {
	t      *testing.T
	Store  *serverdb.ServerDB
	Server *httptest.Server
	Today  string
}

// NewEnv starts an in-memory server. The clock starts at 2024-01-08.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	store, err := serverdb.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv, err := api.NewServer(api.LoadConfig(), store)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	return &Env{t: t, Store: store, Server: hs, Today: "2024-01-08"}
}

// NewKey registers a user and mints an API key for it.
func (e *Env) NewKey(email string) string {
	e.t.Helper()
	u, err := e.Store.CreateUser(email)
	if err != nil {
		e.t.Fatalf("create user: %v", err)
	}
	key, _, err := e.Store.GenerateAPIKey(u.ID, "e2e")
	if err != nil {
		e.t.Fatalf("generate key: %v", err)
	}
	return key
}

// Device is one install of the client: its own snapshot slot and engine,
// sharing the env's clock.
type Device struct {
	Engine *challenge.Engine
	Snap   *snapshot.Store
	Warns  []string
}

// NewDevice creates a device with an empty snapshot slot. The device is
// signed out until SignIn is called.
func (e *Env) NewDevice() *Device {
	e.t.Helper()
	d := &Device{Snap: snapshot.New(e.t.TempDir())}
	d.Engine = challenge.New(d.Snap,
		challenge.WithTodayFunc(func() string { return e.Today }),
		challenge.WithWarnFunc(func(format string, args ...any) {
			d.Warns = append(d.Warns, format)
		}),
	)
	return d
}

// Client returns a remote client for the env's server with the given key.
func (e *Env) Client(key string) *remote.Client {
	return remote.New(e.Server.URL, key)
}

// completedTasks returns the six tasks with every completion rule satisfied.
func completedTasks() []models.Task {
	tasks := models.DefaultTasks()
	for i := range tasks {
		switch tasks[i].Kind {
		case models.KindTimer:
			tasks[i].Value = models.NumberValue(15)
		case models.KindCounter:
			tasks[i].Value = models.NumberValue(tasks[i].MaxValue)
		case models.KindText:
			tasks[i].Value = models.TextValue("done")
		}
		tasks[i].Completed = true
	}
	return tasks
}
