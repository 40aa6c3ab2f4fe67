package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/mlm-api/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapCode(t *testing.T) {
	tests := map[string]Code{
		"23505": UniqueViolation,
		"23503": ForeignKeyViolation,
		"23502": NotNullViolation,
		"23514": CheckViolation,
		"08006": ConnectionFailure,
		"57014": QueryCanceled,
		"42P01": Other,
		"":      Other,
	}
	for state, want := range tests {
		if got := MapCode(state); got != want {
			t.Errorf("MapCode(%q) = %q, want %q", state, got, want)
		}
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name: "unique violation with key constraint",
			err: &pgconn.PgError{
				Code: "23505", Severity: "ERROR", TableName: "products",
				ConstraintName: "products_sku_key",
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "PRODUCT_ALREADY_EXISTS",
			wantMessage: "A Product with this Sku already exists",
		},
		{
			name: "foreign key violation",
			err: &pgconn.PgError{
				Code: "23503", Severity: "ERROR", TableName: "wishlists", ColumnName: "product_id",
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "WISHLIST_NOT_FOUND",
			wantMessage: "The referenced Product does not exist",
		},
		{
			name: "not null violation",
			err: &pgconn.PgError{
				Code: "23502", Severity: "ERROR", TableName: "bank_details", ColumnName: "account_number",
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BANK_DETAIL_REQUIRED",
			wantMessage: "The Account Number is required",
		},
		{
			name:       "unknown server error",
			err:        &pgconn.PgError{Code: "42P01", Severity: "ERROR"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
		{
			name:       "connection failure",
			err:        &pgconn.PgError{Code: "08006", Severity: "FATAL"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:        "no rows",
			err:         fmt.Errorf("select image: %w", pgx.ErrNoRows),
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "Resource not found",
		},
		{
			name:        "no rows tagged with table",
			err:         fmt.Errorf("table:products: %w", pgx.ErrNoRows),
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "Product not found",
		},
		{
			name:       "cancelled context",
			err:        fmt.Errorf("query: %w", context.Canceled),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			if !errors.As(HandleError(tt.err), &httpErr) {
				t.Fatal("HandleError() should return *errs.HTTPError")
			}
			if httpErr.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", httpErr.Status, tt.wantStatus)
			}
			if httpErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", httpErr.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && httpErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", httpErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewNotFoundError("Image not found", true, nil)
	if got := HandleError(original); got != original {
		t.Fatalf("HandleError() = %v, want the same *HTTPError", got)
	}
}

func TestErrCode(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", ConvertPgError(&pgconn.PgError{Code: "23505"}))
	if got := ErrCode(wrapped); got != UniqueViolation {
		t.Fatalf("ErrCode() = %q, want %q", got, UniqueViolation)
	}
	if got := ErrCode(errors.New("x")); got != Other {
		t.Fatalf("ErrCode() = %q, want %q", got, Other)
	}
}
