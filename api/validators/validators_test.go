package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
)

type assignBody struct {
	StaffID string `json:"staffId" validate:"required,uuid"`
	Note    string `json:"note,omitempty" validate:"omitempty,max=5"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest assignBody
	id := uuid.NewString()
	if err := DecodeJSONBody(post(`{"staffId":"`+id+`"}`), &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.StaffID != id {
		t.Fatalf("unexpected staff id %q", dest.StaffID)
	}
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"malformed":     `{"staffId":`,
		"unknown field": `{"staffId":"x","extra":1}`,
		"trailing data": `{"staffId":"` + uuid.NewString() + `"}{"staffId":"y"}`,
	}
	for name, body := range cases {
		var dest assignBody
		err := DecodeJSONBody(post(body), &dest)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	var dest assignBody
	err := DecodeJSONBody(post(`{"staffId":"nope","note":"far too long"}`), &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["staffId"] != "must be a valid id" || details["note"] != "must be at most 5" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestQueryIntBounds(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=500&page=abc", nil)
	if _, err := QueryInt(r, "limit", 10, 1, 100); err == nil {
		t.Fatalf("expected range error")
	}
	if _, err := QueryInt(r, "page", 1, 1, 10); err == nil {
		t.Fatalf("expected numeric error")
	}
	if got, err := QueryInt(r, "missing", 7, 1, 10); err != nil || got != 7 {
		t.Fatalf("expected default 7, got %d %v", got, err)
	}
}

func TestQueryStringTrimsAndCuts(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?search=%20%20plumbing%20repair%20", nil)
	if got := QueryString(r, "search", 8); got != "plumbing" {
		t.Fatalf("unexpected value %q", got)
	}
}

func withParams(kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathHelpers(t *testing.T) {
	id := uuid.New()
	got, err := PathUUID(withParams("id", id.String()), "id", "Booking not found")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s %v", id, got, err)
	}

	_, err = PathUUID(withParams("id", "not-a-uuid"), "id", "Booking not found")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("malformed id should be not found, got %v", err)
	}

	if _, err := PathString(withParams("userId", "  "), "userId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("blank param should fail validation, got %v", err)
	}

	if n, err := PathInt(withParams("quantity", "3"), "quantity"); err != nil || n != 3 {
		t.Fatalf("expected 3, got %d %v", n, err)
	}
}
