package identity_test

import (
	"testing"
	"time"

	"college-erp/internal/identity"

	"github.com/stretchr/testify/assert"
)

func TestFormatStudentID(t *testing.T) {
	assert.Equal(t, "BA-25-001", identity.FormatStudentID("BA", 2025, 1))
	assert.Equal(t, "BSC-99-042", identity.FormatStudentID("bsc", 1999, 42))
	assert.Equal(t, "BCOM-07-123", identity.FormatStudentID("BCOM", 2007, 123))

	assert.Regexp(t, identity.StudentIDRegexp, identity.FormatStudentID("BA", 2025, 1))
	assert.Regexp(t, identity.StudentIDRegexp, identity.FormatStudentID("MBACHRO", 2031, 999))
}

func TestFormatInvoiceNumber(t *testing.T) {
	instant := time.Date(2025, 8, 29, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "INV202508290001", identity.FormatInvoiceNumber(instant, 1))
	assert.Equal(t, "INV202508291234", identity.FormatInvoiceNumber(instant, 1234))
	assert.Regexp(t, identity.InvoiceNumberRegexp, identity.FormatInvoiceNumber(instant, 7))
}

func TestMaxStudentSuffix(t *testing.T) {
	assert.Equal(t, 0, identity.MaxStudentSuffix(nil))
	assert.Equal(t, 3, identity.MaxStudentSuffix([]string{"BA-25-001", "BA-25-003", "BA-25-002"}))

	// malformed entries are skipped, not fatal
	assert.Equal(t, 7, identity.MaxStudentSuffix([]string{"BA-25-007", "garbage", "BA-25-x"}))

	// gaps do not get refilled: the next ID comes after the max
	assert.Equal(t, 9, identity.MaxStudentSuffix([]string{"BA-25-009", "BA-25-001"}))
}

func TestMintedIDsDistinctAcrossOffsets(t *testing.T) {
	seen := map[string]bool{}
	for offset := 0; offset < identity.MaxMintRetries; offset++ {
		id := identity.FormatStudentID("BA", 2025, 4+offset)
		assert.False(t, seen[id])
		assert.Regexp(t, identity.StudentIDRegexp, id)
		seen[id] = true
	}
}
