package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRejectsMalformedKey(t *testing.T) {
	for _, key := range []string{"", "sk ant", "sk-ant\n"} {
		if _, err := NewClient("", key, 0); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("NewClient(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
	if _, err := NewClient("", "sk-ant-123", 0); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
			return
		}
		if r.Header.Get("anthropic-version") != APIVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		w.Write([]byte(`{"data":[{"id":"claude-test","display_name":"Test"}],"has_more":false}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "sk-good", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].ID != "claude-test" {
		t.Fatalf("models = %+v", models)
	}

	bad, _ := NewClient(srv.URL, "sk-bad", 0)
	_, err = bad.ListModels(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ListModels with bad key = %v, want *APIError", err)
	}
	if !apiErr.Unauthorized() || apiErr.Type != "authentication_error" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}
