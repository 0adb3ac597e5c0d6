package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateDomainType checks the audit domain type against the known tags
func ValidateDomainType(domainType string) error {
	allowed := map[string]bool{
		"cloud": true,
		"isms":  true,
		"ai":    true,
	}

	if !allowed[strings.ToLower(domainType)] {
		return fmt.Errorf("invalid domain type: %s (allowed: Cloud, ISMS, AI)", domainType)
	}
	return nil
}

// ValidateComplianceStatus checks a submitted compliance status value
func ValidateComplianceStatus(status string) error {
	allowed := map[string]bool{
		"not answered":   true,
		"yes":            true,
		"partial":        true,
		"no":             true,
		"not applicable": true,
	}

	if !allowed[strings.ToLower(status)] {
		return fmt.Errorf("invalid compliance status: %s (allowed: Not Answered, Yes, Partial, No, Not Applicable)", status)
	}
	return nil
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateAuditID validates audit ID format (UUID)
func ValidateAuditID(auditID string) error {
	if auditID == "" {
		return fmt.Errorf("audit ID cannot be empty")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, auditID)
	if !matched {
		return fmt.Errorf("invalid audit ID format")
	}

	return nil
}

// ValidateEvidenceFilename rejects path traversal and shell metacharacters in
// uploaded evidence names
func ValidateEvidenceFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	dangerous := []string{"../", "..", "/", "\\", "$(", "`", "&", "|", ";", "\n", "\r", "\x00"}
	for _, d := range dangerous {
		if strings.Contains(name, d) {
			return fmt.Errorf("invalid characters in filename")
		}
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

// ValidatePageSize validates pagination page size
func ValidatePageSize(size int) int {
	if size <= 0 {
		return 20 // default
	}
	if size > 100 {
		return 100 // max
	}
	return size
}

// ValidatePage validates pagination page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
