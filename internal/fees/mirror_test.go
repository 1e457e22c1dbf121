package fees

import (
	"testing"

	"college-erp/internal/student"

	"github.com/stretchr/testify/assert"
)

func TestEnumFromFlagsInvertsMirrorStatus(t *testing.T) {
	statuses := []string{
		student.ScholarshipNotApplied,
		student.ScholarshipApplied,
		student.ScholarshipApproved,
		student.ScholarshipGranted,
	}
	for _, status := range statuses {
		applied, approved, granted := mirrorStatus(status)
		assert.Equal(t, status, enumFromFlags(applied, approved, granted, status), status)
	}
}

func TestEnumFromFlagsPreservesRejected(t *testing.T) {
	// Rejection clears all flags; all-false must not silently reset it.
	assert.Equal(t, student.ScholarshipRejected,
		enumFromFlags(false, false, false, student.ScholarshipRejected))

	// A fresh grant overrides a stored rejection.
	assert.Equal(t, student.ScholarshipGranted,
		enumFromFlags(true, true, true, student.ScholarshipRejected))

	assert.Equal(t, student.ScholarshipNotApplied,
		enumFromFlags(false, false, false, student.ScholarshipNotApplied))
}
