package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestResponseDataJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"id":1}`)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.Get(context.Background(), "/item")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected decoded JSON map, got %T", resp.Data)
	}
	if data["id"] != float64(1) {
		t.Errorf("Expected id=1, got %v", data["id"])
	}
}

func TestResponseDataText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	if resp.Data != "ok" {
		t.Errorf("Expected Data == \"ok\", got %#v", resp.Data)
	}
}

func TestResponseDataBinary(t *testing.T) {
	payload := []byte{0x1f, 0x8b, 0x08}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := w.Write(payload); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.Get(context.Background(), "/blob")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}

	data, ok := resp.Data.([]byte)
	if !ok {
		t.Fatalf("Expected raw bytes, got %T", resp.Data)
	}
	if !reflect.DeepEqual(data, payload) {
		t.Errorf("Expected %v, got %v", payload, data)
	}
}

type testUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func TestGetJSON(t *testing.T) {
	expected := testUser{ID: 123, Name: "John Doe", Email: "john@example.com"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(expected); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	var user testUser
	if err := client.GetJSON(context.Background(), "/users/123", &user); err != nil {
		t.Fatalf("GetJSON() returned error: %v", err)
	}
	if user != expected {
		t.Errorf("Expected %+v, got %+v", expected, user)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		var in testUser
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		in.ID = 456
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(in); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	var created testUser
	err := client.PostJSON(context.Background(), "/users", testUser{Name: "Jane"}, &created)
	if err != nil {
		t.Fatalf("PostJSON() returned error: %v", err)
	}
	if created.ID != 456 || created.Name != "Jane" {
		t.Errorf("Unexpected decoded response: %+v", created)
	}
}

func TestGetTypedReturnsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"id":789,"name":"Ada","email":"ada@example.com"}`)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	var user testUser
	resp, err := client.GetTyped(context.Background(), "/users/789", &user)
	if err != nil {
		t.Fatalf("GetTyped() returned error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Status)
	}
	if user.ID != 789 || user.Name != "Ada" {
		t.Errorf("Unexpected decoded user: %+v", user)
	}
}

func TestInto(t *testing.T) {
	resp := &Response{Body: []byte(`{"id":7,"name":"Grace","email":"g@example.com"}`)}

	user, err := Into[testUser](resp)
	if err != nil {
		t.Fatalf("Into() returned error: %v", err)
	}
	if user.ID != 7 || user.Name != "Grace" {
		t.Errorf("Unexpected decoded user: %+v", user)
	}

	_, err = Into[testUser](&Response{Body: []byte("not json")})
	if err == nil {
		t.Error("Expected decode error for malformed body")
	}
}
