package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("Post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("uid", "uid is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("User already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Duplicate wraps ErrDuplicate",
			err:       Duplicate("Already following this user"),
			target:    ErrDuplicate,
			wantMatch: true,
		},
		{
			name:      "Duplicate does NOT match ErrConflict",
			err:       Duplicate("User has already liked the post"),
			target:    ErrConflict,
			wantMatch: false,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("Unauthorized: User does not own the post"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid token"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Offer", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap repository errors with %w; the sentinel must survive.
	err := fmt.Errorf("creating follow edge: %w", Duplicate("Already following this user"))

	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("errors.Is through fmt.Errorf wrap = false, want true")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("errors.As failed to extract *AppError")
	}
	if appErr.Message != "Already following this user" {
		t.Errorf("Message = %q, want %q", appErr.Message, "Already following this user")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("Post", "abc123"),
			wantMessage: "Post not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("discountPercentage", "discountPercentage must be between 0 and 100"),
			wantMessage: "discountPercentage must be between 0 and 100",
		},
		{
			name:        "Conflict uses custom message",
			err:         Conflict("User already exists"),
			wantMessage: "User already exists",
		},
		{
			name:        "Duplicate uses custom message",
			err:         Duplicate("Not following this user"),
			wantMessage: "Not following this user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("Cart", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("rating", "rating must be between 1 and 5")
	if err.Field != "rating" {
		t.Errorf("Field = %q, want %q", err.Field, "rating")
	}
}
