package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postboard/internal/migrate"
	"postboard/internal/post"
	"postboard/internal/shared/db"
	"postboard/internal/shared/httpx"
	"postboard/internal/upload"
)

// newServer runs the real API over an in-memory SQLite store.
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

func TestClientCRUD(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	created, err := c.Create(ctx, post.Input{Title: "Hello", Description: "World", Status: post.StatusActive, Date: "2024-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.ImageURL != "" || post.FormatDate(created.Date) != "2024-01-01" {
		t.Fatalf("created = %+v", created)
	}

	items, err := c.List(ctx, post.Filter{Status: post.StatusActive})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("items = %+v", items)
	}
	items, err = c.List(ctx, post.Filter{Status: post.StatusInactive})
	if err != nil || len(items) != 0 {
		t.Fatalf("inactive items = %+v, %v", items, err)
	}

	title := "Changed"
	updated, err := c.Update(ctx, created.ID, post.UpdateReq{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated == nil || updated.Title != "Changed" || updated.Description != "World" {
		t.Fatalf("updated = %+v", updated)
	}

	missing, err := c.Update(ctx, "missing", post.UpdateReq{Title: &title})
	if err != nil || missing != nil {
		t.Fatalf("update missing = %+v, %v", missing, err)
	}

	for i := 0; i < 2; i++ {
		if err := c.Delete(ctx, created.ID); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	got, err := c.Get(ctx, created.ID)
	if err != nil || got != nil {
		t.Fatalf("get after delete = %+v, %v", got, err)
	}
}

func TestClientUpload(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL)

	u, err := c.Upload(context.Background(), "cat.PNG", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "/uploads/") || !strings.HasSuffix(u, ".png") {
		t.Fatalf("url = %q", u)
	}

	resp, err := http.Get(srv.URL + u)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch stored file: %d", resp.StatusCode)
	}

	_, err = c.Upload(context.Background(), "cat.gif", "image/gif", strings.NewReader("gif"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(apiErr.Message, "invalid file type") {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestClientSendsToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		httpx.WriteJSON(w, map[string]string{"message": "Deleted"}, http.StatusOK)
	}))
	defer srv.Close()

	if err := New(srv.URL, WithToken("tok")).Delete(context.Background(), "a/b"); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer tok" {
		t.Fatalf("authorization = %q", auth)
	}
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).List(context.Background(), post.Filter{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Fatalf("err = %#v", err)
	}
}
