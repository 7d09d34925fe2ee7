package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"domain error", &Error{Code: ENOTFOUND, Message: "Order not found"}, ENOTFOUND},
		{"wrapped domain error", fmt.Errorf("handler: %w", &Error{Code: EINVALID}), EINVALID},
		{"stock error", &StockError{Available: 3, Requested: 5}, ECONFLICT},
		{"validation error", NewValidationError("order.create", "quantity", "must be positive"), EINVALID},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage_HidesInternalDetails(t *testing.T) {
	err := Internal(errors.New("dial tcp 10.0.0.5:5432: connection refused"), "order.create", "failed to save order")

	got := ErrorMessage(err)
	want := "An internal error occurred. Please try again later."
	if got != want {
		t.Errorf("ErrorMessage() = %q, want %q", got, want)
	}
}

func TestErrorMessage_PlainErrorHidden(t *testing.T) {
	got := ErrorMessage(errors.New("secret detail"))
	want := "An internal error occurred. Please try again later."
	if got != want {
		t.Errorf("ErrorMessage() = %q, want %q", got, want)
	}
}

func TestError_ErrorFormatting(t *testing.T) {
	inner := errors.New("row not found")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", &Error{Message: "Order not found"}, "Order not found"},
		{"op and message", &Error{Op: "order.get", Message: "Order not found"}, "order.get: Order not found"},
		{"op, message and err", &Error{Op: "order.get", Message: "Order not found", Err: inner}, "order.get: Order not found: row not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapError_PreservesSentinel(t *testing.T) {
	err := WrapError(ErrOrderNotFound, ENOTFOUND, "order.transition", "order lookup failed")

	if !errors.Is(err, ErrOrderNotFound) {
		t.Error("wrapped error should match sentinel via errors.Is")
	}
	if ErrorCode(err) != ENOTFOUND {
		t.Errorf("ErrorCode() = %q, want %q", ErrorCode(err), ENOTFOUND)
	}
}

func TestStockError_Detail(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("order.create: %w", &StockError{ProductID: id, ProductName: "Walnut Desk", Available: 3, Requested: 5})

	se, ok := IsStockError(err)
	if !ok {
		t.Fatal("IsStockError should unwrap a StockError")
	}
	if se.Available != 3 || se.Requested != 5 {
		t.Errorf("got available=%d requested=%d, want 3/5", se.Available, se.Requested)
	}
	if se.ProductID != id {
		t.Errorf("ProductID = %s, want %s", se.ProductID, id)
	}
}

func TestValidationError_Fields(t *testing.T) {
	err := NewValidationError("product.create", "name", "name is required")
	err = AddFieldError(err, "price", "price must be positive")

	if !IsValidationError(err) {
		t.Fatal("expected a ValidationError")
	}

	fields := GetValidationFields(err)
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields["price"] != "price must be positive" {
		t.Errorf("fields[price] = %q", fields["price"])
	}
}
