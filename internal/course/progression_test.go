package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYearSemester(t *testing.T) {
	cases := []struct {
		in    string
		order int
		ok    bool
	}{
		{"1st Sem", 1, true},
		{"2nd sem", 2, true},
		{"3 sem", 3, true},
		{"1st Year", 1, true},
		{"2nd Year", 2, true},
		{"4th year", 4, true},
		{"2", 2, true},
		{"FY", 1, true},
		{"sy", 2, true},
		{"TY", 3, true},
		{"final", 99, true},
		{"Final Year", 99, true},
		{"", 0, false},
		{"monsoon", 0, false},
	}

	for _, tc := range cases {
		order, ok := ParseYearSemester(tc.in)
		assert.Equal(t, tc.ok, ok, "parse %q", tc.in)
		if ok {
			assert.Equal(t, tc.order, order, "order of %q", tc.in)
		}
	}
}

func TestOrderProgression(t *testing.T) {
	details := []CourseDetail{
		{FullName: "Bachelor of Arts Final Year", YearSemester: "Final Year"},
		{FullName: "Bachelor of Arts Second Year", YearSemester: "2nd Year"},
		{FullName: "Bachelor of Arts First Year", YearSemester: "1st Year"},
		{FullName: "Bachelor of Arts Summer School", YearSemester: "monsoon"},
	}

	got := OrderProgression(details)
	assert.Equal(t, []string{
		"Bachelor of Arts First Year",
		"Bachelor of Arts Second Year",
		"Bachelor of Arts Final Year",
	}, got)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Bachelor of Arts", BaseName("Bachelor of Arts - 1st Year"))
	assert.Equal(t, "Bachelor of Arts First Year", BaseName("Bachelor of Arts First Year"))
}

func TestRecomputeTotal(t *testing.T) {
	d := CourseDetail{}
	d.TuitionFee = dec("15000")
	d.MiscFee1 = dec("500")
	d.MiscFee4 = dec("1000")
	d.RecomputeTotal()
	assert.True(t, d.TotalCourseFees.Equal(dec("16500")))
}
