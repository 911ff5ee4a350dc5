package usecase

import (
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
)

func TestParseDeadline(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	deadline, err := ParseDeadline("11.03.2025", now)
	if err != nil {
		t.Fatalf("tomorrow must be accepted: %v", err)
	}
	if deadline.Day() != 11 || deadline.Month() != time.March {
		t.Fatalf("unexpected deadline %v", deadline)
	}

	if _, err := ParseDeadline("10.03.2025", now); !domainErrors.IsValidation(err) {
		t.Fatalf("today must be rejected, got %v", err)
	}
	if _, err := ParseDeadline("09.03.2025", now); !domainErrors.IsValidation(err) {
		t.Fatalf("past date must be rejected, got %v", err)
	}
	if _, err := ParseDeadline("2025-03-11", now); !domainErrors.IsValidation(err) {
		t.Fatalf("wrong format must be rejected, got %v", err)
	}
	if _, err := ParseDeadline("31.02.2025", now); !domainErrors.IsValidation(err) {
		t.Fatalf("impossible date must be rejected, got %v", err)
	}
}

func TestParseBudget(t *testing.T) {
	if amount, err := ParseBudget("350", 200); err != nil || amount != 350 {
		t.Fatalf("expected 350, got %v, %v", amount, err)
	}
	if amount, err := ParseBudget("350,50", 200); err != nil || amount != 350.5 {
		t.Fatalf("comma decimal separator must be accepted, got %v, %v", amount, err)
	}
	if _, err := ParseBudget("199", 200); !errors.Is(err, domainErrors.ErrBudgetTooLow) {
		t.Fatalf("expected ErrBudgetTooLow, got %v", err)
	}
	if _, err := ParseBudget("-5", 200); !domainErrors.IsValidation(err) {
		t.Fatalf("negative amount must be rejected, got %v", err)
	}
	if _, err := ParseBudget("abc", 200); !domainErrors.IsValidation(err) {
		t.Fatalf("non-numeric amount must be rejected, got %v", err)
	}
}

func TestParsePercent(t *testing.T) {
	for input, expected := range map[string]int{"0": 0, "100": 100, "85%": 85, " 70 ": 70} {
		percent, err := ParsePercent(input)
		if err != nil || percent != expected {
			t.Fatalf("input %q: expected %d, got %d, %v", input, expected, percent, err)
		}
	}
	for _, input := range []string{"-1", "101", "x"} {
		if _, err := ParsePercent(input); !domainErrors.IsValidation(err) {
			t.Fatalf("input %q must be rejected, got %v", input, err)
		}
	}
}

func TestValidateFileName(t *testing.T) {
	for _, name := range []string{"task.pdf", "photo.JPG", "archive.zip", "notes.txt"} {
		if err := ValidateFileName(name); err != nil {
			t.Fatalf("%q must be allowed: %v", name, err)
		}
	}
	for _, name := range []string{"run.exe", "script.sh", "noext"} {
		if err := ValidateFileName(name); !errors.Is(err, domainErrors.ErrFileTypeNotAllowed) {
			t.Fatalf("%q must be rejected, got %v", name, err)
		}
	}
}

func TestValidateDescription(t *testing.T) {
	if err := ValidateDescription("short", 10); err != nil {
		t.Fatalf("short text must pass: %v", err)
	}
	long := make([]rune, 11)
	for i := range long {
		long[i] = 'ю'
	}
	if err := ValidateDescription(string(long), 10); !domainErrors.IsValidation(err) {
		t.Fatalf("length limit counts runes, got %v", err)
	}
}
