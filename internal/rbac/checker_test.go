package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has("student", "quizzes:submit"))
	assert.True(t, c.Has("student", "lessons:read"))
	assert.False(t, c.Has("student", "lessons:write"))
	assert.False(t, c.Has("guest", "quizzes:submit"))

	// wildcard action on a resource
	assert.True(t, c.Has("instructor", "lessons:manage"))
	assert.True(t, c.Has("instructor", "quizzes:delete"))
	assert.False(t, c.Has("instructor", "users:list"))

	// admin gets everything
	assert.True(t, c.Has("admin", "users:list"))
	assert.True(t, c.Has("admin", "anything:at-all"))

	// unknown roles have no permissions
	assert.False(t, c.Has("superuser", "courses:read"))
}

func TestCheckerExplicitPolicy(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"courses:read"}})
	assert.True(t, c.Has("auditor", "courses:read"))
	assert.False(t, c.Has("student", "courses:read"), "explicit policy replaces the default")
}

func TestCheckerAnyAll(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Any("student", "lessons:write", "lessons:read"))
	assert.False(t, c.Any("guest", "lessons:write", "quizzes:submit"))
	assert.True(t, c.All("instructor", "lessons:read", "lessons:write"))
	assert.False(t, c.All("student", "lessons:read", "lessons:write"))
}

func TestRoleContext(t *testing.T) {
	ctx := WithRole(context.Background(), "instructor")
	assert.Equal(t, "instructor", RoleFromContext(ctx))
	assert.Empty(t, RoleFromContext(context.Background()))
}
