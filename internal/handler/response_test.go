package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/sakif/bazaar/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "validation maps to 400",
			err:        apperror.ValidationFailed("uid", "uid is required"),
			wantStatus: 400,
			wantType:   "validation_error",
		},
		{
			name:       "duplicate follow maps to 400",
			err:        apperror.Duplicate("Already following this user"),
			wantStatus: 400,
			wantType:   "duplicate",
		},
		{
			name:       "unauthorized maps to 401",
			err:        apperror.Unauthorized("invalid token"),
			wantStatus: 401,
			wantType:   "unauthorized",
		},
		{
			name:       "forbidden maps to 403",
			err:        apperror.Forbidden("Unauthorized: User does not own the post"),
			wantStatus: 403,
			wantType:   "forbidden",
		},
		{
			name:       "not found maps to 404",
			err:        apperror.NotFound("Post", "abc"),
			wantStatus: 404,
			wantType:   "not_found",
		},
		{
			name:       "registration conflict maps to 409",
			err:        apperror.Conflict("User already exists"),
			wantStatus: 409,
			wantType:   "conflict",
		},
		{
			name:       "wrapped errors still map",
			err:        fmt.Errorf("creating follow edge: %w", apperror.Duplicate("Already following this user")),
			wantStatus: 400,
			wantType:   "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body.Error != tt.wantType {
				t.Errorf("error type = %q, want %q", body.Error, tt.wantType)
			}
		})
	}
}

func TestWriteError_UnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("mongo: connection reset"))

	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	// Internal details never leak to the client.
	if body.Message != "An internal error occurred" {
		t.Errorf("message = %q, want %q", body.Message, "An internal error occurred")
	}
}

func TestWriteJSON_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, 200, map[string]string{"ok": "yes"})

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}
