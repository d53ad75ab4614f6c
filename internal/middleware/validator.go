package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Input validation and sanitization utilities

// date range lebih panjang dari ini hampir pasti salah ketik tahun
const maxRangeDays = 5 * 365

// ValidateDateRange checks a start..end pair for an analysis request
func ValidateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return fmt.Errorf("date range exceeds %d days", maxRangeDays)
	}
	return nil
}

// ValidateModelIDs checks the model id list for shape problems
func ValidateModelIDs(ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one model id is required")
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("invalid model id: %d", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate model id: %d", id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateRequestID validates analysis request ID format (UUID)
func ValidateRequestID(id string) error {
	if id == "" {
		return fmt.Errorf("request ID cannot be empty")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(id))
	if !matched {
		return fmt.Errorf("invalid request ID format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
