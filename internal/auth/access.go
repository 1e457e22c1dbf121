package auth

import (
	"net/http"

	"college-erp/internal/httputil"
	"college-erp/internal/users"
)

// Modules gated by role.
const (
	ModuleAdmin    = "admin"
	ModuleStudents = "students"
	ModuleCourses  = "courses"
	ModuleFees     = "fees"
	ModuleExams    = "exams"
)

// moduleRoles maps each module to the roles allowed to edit it.
var moduleRoles = map[string]map[string]bool{
	ModuleAdmin: {
		users.RoleAdministrator: true,
	},
	ModuleStudents: {
		users.RoleAdministrator:    true,
		users.RoleManager:          true,
		users.RoleAdmissionOfficer: true,
	},
	ModuleCourses: {
		users.RoleAdministrator:    true,
		users.RoleManager:          true,
		users.RoleAdmissionOfficer: true,
	},
	ModuleFees: {
		users.RoleAdministrator: true,
		users.RoleManager:       true,
		users.RoleAccountant:    true,
	},
	ModuleExams: {
		users.RoleAdministrator:  true,
		users.RoleExamController: true,
	},
}

// CanEdit reports whether a role may write to a module. The role must be
// in the module's allow-list and carry Edit access.
func CanEdit(roleName, accessType, module string) bool {
	if accessType != users.AccessEdit {
		return false
	}
	allowed, ok := moduleRoles[module]
	if !ok {
		return false
	}
	return allowed[roleName]
}

// RequireEdit gates write routes on a module. It must run after
// Middleware, which puts the role claims on the context.
func RequireEdit(module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleName, _ := GetRoleName(r.Context())
			accessType, _ := GetAccessType(r.Context())
			if !CanEdit(roleName, accessType, module) {
				httputil.RespondWithError(w, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
