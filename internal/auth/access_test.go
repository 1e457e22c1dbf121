package auth_test

import (
	"testing"

	"college-erp/internal/auth"
	"college-erp/internal/users"

	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		accessType string
		module     string
		want       bool
	}{
		{"administrator edits admin", users.RoleAdministrator, users.AccessEdit, auth.ModuleAdmin, true},
		{"administrator edits fees", users.RoleAdministrator, users.AccessEdit, auth.ModuleFees, true},
		{"administrator edits exams", users.RoleAdministrator, users.AccessEdit, auth.ModuleExams, true},
		{"manager edits students", users.RoleManager, users.AccessEdit, auth.ModuleStudents, true},
		{"manager edits courses", users.RoleManager, users.AccessEdit, auth.ModuleCourses, true},
		{"manager edits fees", users.RoleManager, users.AccessEdit, auth.ModuleFees, true},
		{"manager cannot edit admin", users.RoleManager, users.AccessEdit, auth.ModuleAdmin, false},
		{"manager cannot edit exams", users.RoleManager, users.AccessEdit, auth.ModuleExams, false},
		{"admission officer edits students", users.RoleAdmissionOfficer, users.AccessEdit, auth.ModuleStudents, true},
		{"admission officer cannot edit fees", users.RoleAdmissionOfficer, users.AccessEdit, auth.ModuleFees, false},
		{"accountant edits fees", users.RoleAccountant, users.AccessEdit, auth.ModuleFees, true},
		{"accountant cannot edit students", users.RoleAccountant, users.AccessEdit, auth.ModuleStudents, false},
		{"exam controller edits exams", users.RoleExamController, users.AccessEdit, auth.ModuleExams, true},
		{"exam controller cannot edit fees", users.RoleExamController, users.AccessEdit, auth.ModuleFees, false},
		{"read-only role never edits", users.RoleAdministrator, users.AccessRead, auth.ModuleAdmin, false},
		{"unknown role", "Librarian", users.AccessEdit, auth.ModuleStudents, false},
		{"unknown module", users.RoleAdministrator, users.AccessEdit, "reports", false},
		{"empty claims", "", "", auth.ModuleStudents, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.CanEdit(tt.role, tt.accessType, tt.module))
		})
	}
}
