package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(""); err == nil {
		t.Error("NewClient with empty baseURL should fail")
	}
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/users/7" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":7,"name":"Ada","surname":"Lovelace","salary":1500.5}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	got, err := c.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	if !strings.HasPrefix(got, "```\n") || !strings.HasSuffix(got, "```\n") {
		t.Errorf("output not a code block: %q", got)
	}
	for _, line := range []string{"  id: 7\n", "  name: Ada\n", "  surname: Lovelace\n", "  salary: 1500.5\n"} {
		if !strings.Contains(got, line) {
			t.Errorf("output missing %q:\n%s", line, got)
		}
	}
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"User not found"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, err := c.GetUser(context.Background(), 404)
	if err == nil {
		t.Fatal("GetUser should fail on 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "User not found") {
		t.Errorf("err = %v, want status code and body", err)
	}
}

func TestSearchUsers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/search" {
			t.Errorf("path = %s, want /v1/users/search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("name") != "john" || q.Get("gender") != "male" {
			t.Errorf("query = %v, want name=john gender=male", q)
		}
		if q.Has("surname") || q.Has("email") {
			t.Errorf("empty criteria must be omitted, got %v", q)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"id":1,"name":"John"},{"id":2,"name":"Johnny"}]`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	got, err := c.SearchUsers(context.Background(), SearchQuery{Name: "john", Gender: "male"})
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}

	if strings.Count(got, "```\n") != 4 {
		t.Errorf("want two code blocks, got:\n%s", got)
	}
	if !strings.Contains(got, "  name: John\n") || !strings.Contains(got, "  name: Johnny\n") {
		t.Errorf("output missing users:\n%s", got)
	}
}

func TestSearchUsersEmptyResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	got, err := c.SearchUsers(context.Background(), SearchQuery{Name: "nobody"})
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if got != "\n" {
		t.Errorf("got = %q, want just trailing newline for no matches", got)
	}
}

func TestAddUser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if payload["name"] != "Ada" || payload["email"] != "ada@example.com" {
			t.Errorf("payload = %v", payload)
		}
		if _, ok := payload["phone"]; ok {
			t.Error("absent optional fields must be omitted from the body")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"name":"Ada"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	got, err := c.AddUser(context.Background(), UserCreate{
		Name:    "Ada",
		Surname: "Lovelace",
		Email:   "ada@example.com",
		AboutMe: "mathematician",
	})
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if !strings.HasPrefix(got, "User successfully added:") || !strings.Contains(got, `"id":42`) {
		t.Errorf("got = %q", got)
	}
}

func TestAddUserConflict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"email already exists"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.AddUser(context.Background(), UserCreate{Name: "Dup"}); err == nil {
		t.Fatal("AddUser should fail on conflict")
	}
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/users/7" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if len(payload) != 1 || payload["company"] != "Acme" {
			t.Errorf("payload = %v, want only company", payload)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"company":"Acme"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	got, err := c.UpdateUser(context.Background(), 7, UserUpdate{Company: "Acme"})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if !strings.HasPrefix(got, "User successfully updated:") {
		t.Errorf("got = %q", got)
	}
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/users/7" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	got, err := c.DeleteUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if got != "User successfully deleted" {
		t.Errorf("got = %q", got)
	}
}

func TestFormatUserNestedObject(t *testing.T) {
	t.Parallel()

	got := formatUser(map[string]any{
		"id":      float64(1),
		"address": map[string]any{"city": "London"},
	})
	if !strings.Contains(got, `  address: {"city":"London"}`) {
		t.Errorf("nested object not rendered as JSON:\n%s", got)
	}
}
