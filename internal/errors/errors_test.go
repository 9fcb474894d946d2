package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestTallyError_Error(t *testing.T) {
	err := &TallyError{
		Code:    ErrMissingDate,
		Kind:    KindValidation,
		Message: "missing date",
	}

	expected := "MISSING_DATE: missing date"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewEmptyDescription(t *testing.T) {
	err := NewEmptyDescription("todo")

	if err.Code != ErrEmptyDescription {
		t.Errorf("Code = %q, want %q", err.Code, ErrEmptyDescription)
	}
	if err.Kind != KindValidation {
		t.Errorf("Kind = %q, want %q", err.Kind, KindValidation)
	}
	if !strings.Contains(err.Message, "todo") {
		t.Errorf("Message = %q, want it to name the task type", err.Message)
	}
}

func TestNewIndexOutOfRange(t *testing.T) {
	t.Run("non-empty list", func(t *testing.T) {
		err := NewIndexOutOfRange(99, 3)

		if err.Code != ErrIndexOutOfRange {
			t.Errorf("Code = %q, want %q", err.Code, ErrIndexOutOfRange)
		}
		if err.Details["number"] != 99 {
			t.Errorf("Details[number] = %v, want 99", err.Details["number"])
		}
		if err.Details["size"] != 3 {
			t.Errorf("Details[size] = %v, want 3", err.Details["size"])
		}
		if !strings.Contains(err.Message, "task 99") {
			t.Errorf("Message = %q, want 1-based task number", err.Message)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		err := NewIndexOutOfRange(1, 0)
		if !strings.Contains(err.Message, "empty") {
			t.Errorf("Message = %q, want mention of empty list", err.Message)
		}
	})

	t.Run("number too large for int", func(t *testing.T) {
		err := NewNumberOutOfRange("99999999999999999999", 2)
		if err.Code != ErrIndexOutOfRange {
			t.Errorf("Code = %q, want %q", err.Code, ErrIndexOutOfRange)
		}
		if !strings.Contains(err.Message, "task 99999999999999999999 does not exist") {
			t.Errorf("Message = %q, want the number as typed", err.Message)
		}
		if err.Details["value"] != "99999999999999999999" {
			t.Errorf("Details[value] = %v", err.Details["value"])
		}
	})
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("description", "must not contain a line break")

	if err.Code != ErrInvalidInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidInput)
	}
	if !err.Recoverable() {
		t.Error("invalid input should be recoverable")
	}
	if err.Message != "description must not contain a line break" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["field"] != "description" {
		t.Errorf("Details[field] = %v, want description", err.Details["field"])
	}
}

func TestNewUnknownCommand(t *testing.T) {
	accepted := []string{"todo", "deadline", "event", "list", "mark", "unmark", "delete"}
	err := NewUnknownCommand("blah", accepted)

	if err.Code != ErrUnknownCommand {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnknownCommand)
	}
	for _, word := range accepted {
		if !strings.Contains(err.Message, word) {
			t.Errorf("Message = %q, missing accepted command %q", err.Message, word)
		}
	}
}

func TestNewBadDateFormat(t *testing.T) {
	err := NewBadDateFormat("tomorrow", "YYYY-MM-DD HH:MM", KindFormat)

	if err.Code != ErrBadDateFormat {
		t.Errorf("Code = %q, want %q", err.Code, ErrBadDateFormat)
	}
	if err.Kind != KindFormat {
		t.Errorf("Kind = %q, want %q", err.Kind, KindFormat)
	}
	if !strings.Contains(err.Message, "YYYY-MM-DD HH:MM") {
		t.Errorf("Message = %q, want expected pattern", err.Message)
	}
}

func TestAtLine(t *testing.T) {
	err := AtLine(NewUnrecognizedFormat("garbage"), 4)

	tErr, ok := As(err)
	if !ok {
		t.Fatalf("AtLine returned %T, want *TallyError", err)
	}
	if tErr.Code != ErrUnrecognizedFormat {
		t.Errorf("Code = %q, want %q", tErr.Code, ErrUnrecognizedFormat)
	}
	if tErr.Details["line_no"] != 4 {
		t.Errorf("Details[line_no] = %v, want 4", tErr.Details["line_no"])
	}
	if tErr.Details["line"] != "garbage" {
		t.Errorf("Details[line] = %v, want %q", tErr.Details["line"], "garbage")
	}
	if !strings.HasPrefix(tErr.Message, "line 4: ") {
		t.Errorf("Message = %q, want line prefix", tErr.Message)
	}

	plain := fmt.Errorf("plain")
	if AtLine(plain, 1) != plain {
		t.Error("AtLine should pass through non-TallyError values")
	}
}

func TestNewStorage(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewStorage("save", cause)

	if err.Kind != KindStorage {
		t.Errorf("Kind = %q, want %q", err.Kind, KindStorage)
	}
	if !err.Recoverable() {
		t.Error("storage errors should be recoverable")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("boom"))

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want generic message", err.Message)
		}
		if err.Details["internal_error"] != "boom" {
			t.Errorf("Details[internal_error] = %v, want %q", err.Details["internal_error"], "boom")
		}
		if err.Recoverable() {
			t.Error("internal errors should not be recoverable")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewMissingDate(), ErrMissingDate) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewMissingDate(), ErrMissingIndex) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("load: %w", NewUnrecognizedFormat("x"))
		if !Is(err, ErrUnrecognizedFormat) {
			t.Error("Is() = false for wrapped error, want true")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if Is(fmt.Errorf("plain"), ErrInternal) {
			t.Error("Is() = true for plain error, want false")
		}
	})
}
