package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreThreeSubjects(t *testing.T) {
	e := &Exam{
		Subject1Name: "History", Subject1Max: 100, Subject1Obtained: 85,
		Subject2Name: "Economics", Subject2Max: 100, Subject2Obtained: 72,
		Subject3Name: "Hindi Literature", Subject3Max: 100, Subject3Obtained: 40,
	}
	e.Score()

	assert.Equal(t, 300, e.TotalMaxMarks)
	assert.Equal(t, 197, e.TotalObtainedMarks)
	assert.Equal(t, "65.67", e.Percentage.StringFixed(2))
	assert.Equal(t, "B", e.Grade)
	assert.Equal(t, StatusPass, e.OverallStatus)
}

func TestScoreFailing(t *testing.T) {
	e := &Exam{
		Subject1Name: "History", Subject1Max: 100, Subject1Obtained: 20,
		Subject2Name: "Economics", Subject2Max: 100, Subject2Obtained: 30,
	}
	e.Score()

	assert.Equal(t, "25.00", e.Percentage.StringFixed(2))
	assert.Equal(t, "F", e.Grade)
	assert.Equal(t, StatusFail, e.OverallStatus)
}

func TestScoreIgnoresEmptySubjectSlots(t *testing.T) {
	e := &Exam{
		Subject1Name: "History", Subject1Max: 100, Subject1Obtained: 90,
		// Unused slots keep the default max of 100 but carry no name.
		Subject2Max: 100,
		Subject3Max: 100,
	}
	e.Score()

	assert.Equal(t, 100, e.TotalMaxMarks)
	assert.Equal(t, 90, e.TotalObtainedMarks)
	assert.Equal(t, "A+", e.Grade)
}

func TestScoreNoSubjects(t *testing.T) {
	e := &Exam{}
	e.Score()

	assert.Equal(t, 0, e.TotalMaxMarks)
	assert.True(t, e.Percentage.IsZero())
	assert.Equal(t, "F", e.Grade)
	assert.Equal(t, StatusFail, e.OverallStatus)
}

func TestScorePassBoundary(t *testing.T) {
	e := &Exam{Subject1Name: "History", Subject1Max: 100, Subject1Obtained: 40}
	e.Score()
	assert.Equal(t, "C", e.Grade)
	assert.Equal(t, StatusPass, e.OverallStatus)

	e.Subject1Obtained = 39
	e.Score()
	assert.Equal(t, "F", e.Grade)
	assert.Equal(t, StatusFail, e.OverallStatus)
}

func TestNextOffering(t *testing.T) {
	progression := []string{
		"Bachelor of Arts First Year",
		"Bachelor of Arts Second Year",
		"Bachelor of Arts Final Year",
	}

	assert.Equal(t, "Bachelor of Arts Second Year", nextOffering(progression, "Bachelor of Arts First Year"))
	assert.Equal(t, "Bachelor of Arts Final Year", nextOffering(progression, "Bachelor of Arts Second Year"))
	assert.Equal(t, "", nextOffering(progression, "Bachelor of Arts Final Year"))
	assert.Equal(t, "", nextOffering(progression, "Bachelor of Science First Year"))
	assert.Equal(t, "", nextOffering(nil, "anything"))
}
