package errors

import (
	stderrors "errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New("TEST_001", "something broke")
	expected := "[TEST_001] something broke"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestAppError_ErrorWithCause(t *testing.T) {
	cause := stderrors.New("underlying failure")
	err := New("TEST_002", "wrapper", cause)

	if err.Cause != cause {
		t.Error("cause not stored")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to unwrap cause")
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("db locked")
	err := Wrap(cause, "MEMORY_002", "save failed")

	if err.Code != "MEMORY_002" {
		t.Errorf("expected code MEMORY_002, got %s", err.Code)
	}
	if stderrors.Unwrap(err) != cause {
		t.Error("Unwrap did not return cause")
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(ErrSkillTimeout) {
		t.Error("sentinel should be an AppError")
	}
	if IsAppError(stderrors.New("plain")) {
		t.Error("plain error should not be an AppError")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"skill validation", ErrSkillValidation, "SKILL_001"},
		{"skill timeout", ErrSkillTimeout, "SKILL_003"},
		{"skill missing", ErrSkillMissing, "SKILL_006"},
		{"plain error", stderrors.New("x"), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
