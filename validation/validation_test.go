package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidatorRequired(t *testing.T) {
	v := New().Required("name", "")
	if !v.HasErrors() {
		t.Fatal("expected error for empty value")
	}

	v = New().Required("name", "payments")
	if v.HasErrors() {
		t.Fatal("unexpected error for non-empty value")
	}
}

func TestValidatorRequiredUUID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", uuid.NewString(), false},
		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"nil uuid", uuid.Nil.String(), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().RequiredUUID("call_id", tc.value)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("HasErrors() = %v, want %v", v.HasErrors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorNumericChecks(t *testing.T) {
	v := New().
		Min("max_attempts", 0, 1).
		Max("burst", 200, 100).
		Range("threshold", 15, 1, 10).
		Ratio("jitter", 1.5)
	if len(v.Errors()) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(v.Errors()), v.Errors())
	}

	v = New().
		Min("max_attempts", 3, 1).
		Max("burst", 50, 100).
		Range("threshold", 5, 1, 10).
		Ratio("jitter", 0.2)
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
}

func TestValidatorDurations(t *testing.T) {
	v := New().
		NonNegativeDuration("initial_backoff", -time.Second).
		PositiveDuration("break_duration", 0)
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}

	v = New().
		NonNegativeDuration("initial_backoff", 0).
		PositiveDuration("break_duration", time.Second)
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New().OneOf("environment", "qa", []string{"development", "staging", "production"})
	if !v.HasErrors() {
		t.Fatal("expected error for disallowed value")
	}

	v = New().OneOf("environment", "staging", []string{"development", "staging", "production"})
	if v.HasErrors() {
		t.Fatal("unexpected error for allowed value")
	}

	// Empty values are skipped.
	v = New().OneOf("environment", "", []string{"development"})
	if v.HasErrors() {
		t.Fatal("unexpected error for empty value")
	}
}

func TestValidatorValidateBuildsAppError(t *testing.T) {
	appErr := New().
		Required("name", "").
		Min("max_attempts", 0, 1).
		Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if !strings.Contains(appErr.Message, "name") || !strings.Contains(appErr.Message, "max_attempts") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
	if appErr.Details["fields"] == nil {
		t.Error("expected fields detail")
	}

	if New().Required("name", "ok").Validate() != nil {
		t.Error("expected nil for valid input")
	}
}

type sampleSettings struct {
	Name        string  `mapstructure:"name" validate:"required"`
	MaxAttempts int     `mapstructure:"max_attempts" validate:"min=1"`
	Jitter      float64 `mapstructure:"jitter" validate:"min=0,max=1"`
}

func TestValidateStruct(t *testing.T) {
	err := Validate(sampleSettings{Name: "payments", MaxAttempts: 3, Jitter: 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = Validate(sampleSettings{MaxAttempts: 0, Jitter: 2})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"name", "max_attempts", "jitter"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in error, got %q", want, msg)
		}
	}
}

func TestValidateUUID(t *testing.T) {
	id := uuid.NewString()
	parsed, err := ValidateUUID("call_id", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.String() != id {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := ValidateUUID("call_id", ""); err == nil {
		t.Error("expected error for empty value")
	}
	if _, err := ValidateUUID("call_id", "nope"); err == nil {
		t.Error("expected error for invalid value")
	}
}
