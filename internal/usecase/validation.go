package usecase

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
)

// DeadlineLayout is the accepted deadline input format.
const DeadlineLayout = "02.01.2006"

// maxCustomWorkLen bounds the free-text work type entered when the catalog
// offers no fitting option.
const maxCustomWorkLen = 100

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".txt":  {},
	".zip":  {},
	".rar":  {},
	".7z":   {},
}

// ParseDeadline parses a DD.MM.YYYY deadline and requires it to be strictly
// after today's date.
func ParseDeadline(input string, now time.Time) (time.Time, error) {
	deadline, err := time.Parse(DeadlineLayout, strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, domainErrors.NewValidation("deadline", "expected format DD.MM.YYYY")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !deadline.After(today) {
		return time.Time{}, domainErrors.NewValidation("deadline", "must be a future date")
	}
	return deadline, nil
}

// ParseBudget parses a positive amount not below the configured minimum.
func ParseBudget(input string, min float64) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(input, ",", ".")), 64)
	if err != nil {
		return 0, domainErrors.NewValidation("budget", "expected a number")
	}
	if amount <= 0 {
		return 0, domainErrors.NewValidation("budget", "must be positive")
	}
	if amount < min {
		return 0, domainErrors.ErrBudgetTooLow
	}
	return amount, nil
}

// ParsePercent parses an originality threshold in the range 0..100.
func ParsePercent(input string) (int, error) {
	percent, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), "%")))
	if err != nil {
		return 0, domainErrors.NewValidation("percent", "expected an integer")
	}
	if percent < 0 || percent > 100 {
		return 0, domainErrors.NewValidation("percent", "must be between 0 and 100")
	}
	return percent, nil
}

// ValidateDescription limits free-form text length.
func ValidateDescription(text string, maxLen int) error {
	if len([]rune(text)) > maxLen {
		return domainErrors.NewValidation("description", "exceeds maximum length")
	}
	return nil
}

// ValidateFileName checks the attachment extension against the allow-list.
func ValidateFileName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return domainErrors.ErrFileTypeNotAllowed
	}
	return nil
}
