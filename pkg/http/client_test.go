package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGetJSONResolvesBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kpi/kpis" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing accept header")
		}
		_, _ = w.Write([]byte(`{"status":200,"message":"OK","data":{"n":3}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL + "/"))
	var out struct {
		Status int `json:"status"`
		Data   struct {
			N int `json:"n"`
		} `json:"data"`
	}
	if err := c.GetJSON(context.Background(), "/kpi/kpis", map[string][]string{"limit": {"5"}}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != 200 || out.Data.N != 3 {
		t.Fatalf("unexpected body %+v", out)
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	err := NewClient().GetJSON(context.Background(), srv.URL, nil, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable || se.Body != "down" {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
}
