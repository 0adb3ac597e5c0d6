package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDomainType(t *testing.T) {
	assert.NoError(t, ValidateDomainType("Cloud"))
	assert.NoError(t, ValidateDomainType("isms"))
	assert.NoError(t, ValidateDomainType("AI"))
	assert.Error(t, ValidateDomainType("mainframe"))
	assert.Error(t, ValidateDomainType(""))
}

func TestValidateComplianceStatus(t *testing.T) {
	assert.NoError(t, ValidateComplianceStatus("Yes"))
	assert.NoError(t, ValidateComplianceStatus("not applicable"))
	assert.Error(t, ValidateComplianceStatus("maybe"))
}

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme-corp_01"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("acme corp"))
	assert.Error(t, ValidateTenantID("../etc"))
}

func TestValidateAuditID(t *testing.T) {
	assert.NoError(t, ValidateAuditID("a3bb189e-8bf9-3888-9912-ace4e6543002"))
	assert.Error(t, ValidateAuditID("not-a-uuid"))
	assert.Error(t, ValidateAuditID(""))
}

func TestValidateEvidenceFilename(t *testing.T) {
	assert.NoError(t, ValidateEvidenceFilename("evidence.pdf"))
	assert.Error(t, ValidateEvidenceFilename(""))
	assert.Error(t, ValidateEvidenceFilename("../../etc/passwd"))
	assert.Error(t, ValidateEvidenceFilename("a|b.pdf"))
	assert.Error(t, ValidateEvidenceFilename("dir/evidence.pdf"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("hello\x00"))
	assert.Equal(t, "a b", SanitizeString("  a b  "))
	assert.Equal(t, "ab", SanitizeString("a\x01b"))
}

func TestPaginationBounds(t *testing.T) {
	assert.Equal(t, 20, ValidatePageSize(0))
	assert.Equal(t, 100, ValidatePageSize(500))
	assert.Equal(t, 25, ValidatePageSize(25))
	assert.Equal(t, 1, ValidatePage(-3))
	assert.Equal(t, 2, ValidatePage(2))
}
