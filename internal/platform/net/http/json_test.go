package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "agora/internal/platform/errors"
)

type editDTO struct {
	Wikitext string `json:"wikitext" validate:"required"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestJSONHandler(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, in editDTO) (any, error) {
		if in.Wikitext == "new" {
			return Created(in), nil
		}
		return in, nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"wikitext":"fixed"}`)))
	if rec.Code != http.StatusOK || decode(t, rec).Data.(map[string]any)["wikitext"] != "fixed" {
		t.Fatalf("plain value: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"wikitext":"new"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("response passthrough: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	if env := decode(t, rec); rec.Code != http.StatusBadRequest || env.Field != "wikitext" {
		t.Fatalf("validation: %d %+v", rec.Code, env)
	}
}

func TestCallHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	CallHandler(func(*http.Request) (any, error) {
		return nil, perr.New(perr.ErrorCodeNotFound, "comment not found")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("error path: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	CallHandler(func(*http.Request) (any, error) { return NoContent(), nil })(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("no content: %d", rec.Code)
	}
}
