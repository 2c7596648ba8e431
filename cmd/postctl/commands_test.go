package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postboard/internal/migrate"
	"postboard/internal/post"
	"postboard/internal/shared/db"
	"postboard/internal/shared/httpx"
	"postboard/internal/upload"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	lazy, err := db.NewLazy(fmt.Sprintf("file:%s?mode=memory", t.Name()), db.WithOnConnect(migrate.Hook(false)))
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	protect := httpx.AuthMiddleware("")
	post.RegisterRoutes(mux, post.NewHandler(post.NewService(post.NewRepository(lazy, lazy.Driver()), nil)), protect)
	upload.RegisterRoutes(mux, upload.NewHandler(upload.NewDisk(t.TempDir())), protect)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreateListEditDelete(t *testing.T) {
	srv := newServer(t)

	img := filepath.Join(t.TempDir(), "cat.png")
	if err := os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nfake"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, srv, "create", "--title", "Hello", "--description", "World",
		"--status", "active", "--date", "2024-01-01", "--image", img)
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 post") || !strings.Contains(out, "/uploads/") {
		t.Fatalf("create output:\n%s", out)
	}

	out, err = run(t, srv, "list", "--status", "inactive")
	if err != nil || !strings.Contains(out, "0 posts") {
		t.Fatalf("list inactive: %v\n%s", err, out)
	}

	out, err = run(t, srv, "list", "--status", "active", "--from", "2024-01-01", "--to", "2024-01-01")
	if err != nil || !strings.Contains(out, "Hello") {
		t.Fatalf("list active: %v\n%s", err, out)
	}
	id := lastRowID(out)

	out, err = run(t, srv, "edit", id, "--status", "inactive")
	if err != nil || !strings.Contains(out, "Inactive") || !strings.Contains(out, "/uploads/") {
		t.Fatalf("edit: %v\n%s", err, out)
	}

	out, err = run(t, srv, "get", id)
	if err != nil || !strings.Contains(out, "Hello") || !strings.Contains(out, "Inactive") {
		t.Fatalf("get: %v\n%s", err, out)
	}

	out, err = run(t, srv, "delete", id)
	if err != nil || !strings.Contains(out, "0 posts") {
		t.Fatalf("delete: %v\n%s", err, out)
	}
}

func TestCreateValidationError(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "create", "--title", "Hello")
	if err == nil {
		t.Fatalf("want validation error\n%s", out)
	}
	if !strings.Contains(err.Error(), "Description is required") {
		t.Fatalf("err = %v", err)
	}
}

// lastRowID returns the first column of the last rendered row.
func lastRowID(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.Fields(lines[len(lines)-1])[0]
}
