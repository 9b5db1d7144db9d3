package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func renderError(t *testing.T, method, path string, err error) (int, AppError) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, path, nil), rec)

	errorHandler(err, c)

	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	if body.Status != rec.Code || len(body.Data) != 1 {
		t.Fatalf("unexpected envelope %s", rec.Body.String())
	}
	return rec.Code, body.Data[0]
}

func TestErrorHandlerFrameworkErrors(t *testing.T) {
	status, appErr := renderError(t, http.MethodGet, "/nope", echo.ErrNotFound)
	if status != http.StatusNotFound || appErr.Code != "ERR_NOT_FOUND" || appErr.Params["path"] != "/nope" {
		t.Fatalf("not found: %d %+v", status, appErr)
	}

	status, appErr = renderError(t, http.MethodDelete, "/kpi/kpis", echo.ErrMethodNotAllowed)
	if status != http.StatusMethodNotAllowed || appErr.Code != "ERR_METHOD_NOT_ALLOWED" || appErr.Params["method"] != http.MethodDelete {
		t.Fatalf("method not allowed: %d %+v", status, appErr)
	}

	status, appErr = renderError(t, http.MethodGet, "/", echo.NewHTTPError(http.StatusBadRequest, "bad body"))
	if status != http.StatusBadRequest || appErr.Code != "ERR_BAD_REQUEST" || appErr.Message != "bad body" {
		t.Fatalf("bad request: %d %+v", status, appErr)
	}

	status, appErr = renderError(t, http.MethodGet, "/", echo.NewHTTPError(http.StatusTeapot, "tea"))
	if status != http.StatusTeapot || appErr.Code != "ERR_HTTP" {
		t.Fatalf("other: %d %+v", status, appErr)
	}
}

func TestErrorHandlerAppErrors(t *testing.T) {
	status, appErr := renderError(t, http.MethodGet, "/", UnavailableError("not yet").WithError(errors.New("empty")))
	if status != http.StatusServiceUnavailable || appErr.Code != "ERR_UNAVAILABLE" {
		t.Fatalf("app error: %d %+v", status, appErr)
	}

	status, appErr = renderError(t, http.MethodGet, "/", errors.New("boom"))
	if status != http.StatusInternalServerError || appErr.Code != "ERR_INTERNAL" {
		t.Fatalf("plain error: %d %+v", status, appErr)
	}
}
