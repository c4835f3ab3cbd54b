package rbac

// RolePermissions is the default policy. Permissions are "resource:action"
// strings; a trailing "*" grants every action on the resource.
var RolePermissions = map[string][]string{
	"guest": {
		"courses:read",
		"lessons:read",
	},
	"student": {
		"courses:read",
		"lessons:read",
		"progress:write",
		"enrollments:write",
		"quizzes:read",
		"quizzes:submit",
	},
	"instructor": {
		"courses:*",
		"lessons:*",
		"quizzes:*",
		"enrollments:read",
		"students:read",
	},
	"admin": {
		"*", // everything
	},
}
