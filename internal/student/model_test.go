package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateConcatenatedAddress(t *testing.T) {
	tests := []struct {
		name    string
		student Student
		want    string
	}{
		{
			name: "all parts",
			student: Student{
				Street:      "12 Station Road",
				AreaVillage: "Rampur",
				CityTehsil:  "Bhilwara",
				State:       "Rajasthan",
			},
			want: "12 Station Road, Rampur, Bhilwara, Rajasthan",
		},
		{
			name: "missing middle parts",
			student: Student{
				Street: "12 Station Road",
				State:  "Rajasthan",
			},
			want: "12 Station Road, Rajasthan",
		},
		{
			name: "whitespace-only parts are skipped",
			student: Student{
				Street:     "  ",
				CityTehsil: " Bhilwara ",
			},
			want: "Bhilwara",
		},
		{
			name:    "all empty",
			student: Student{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.student.UpdateConcatenatedAddress()
			assert.Equal(t, tt.want, tt.student.ConcatenatedAddress)
		})
	}
}

func TestUpdateConcatenatedAddressIdempotent(t *testing.T) {
	s := Student{Street: "A", State: "B"}
	s.UpdateConcatenatedAddress()
	first := s.ConcatenatedAddress
	s.UpdateConcatenatedAddress()
	assert.Equal(t, first, s.ConcatenatedAddress)
}
