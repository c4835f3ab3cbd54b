package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tp(t time.Time) *time.Time { return &t }

func TestAccessible(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule Rule
		role string
		at   time.Time
		want bool
	}{
		{
			name: "visible no window student",
			rule: Rule{Visible: true, Roles: []string{"student"}},
			role: "student",
			at:   now,
			want: true,
		},
		{
			name: "hidden flag overrides everything",
			rule: Rule{Visible: false, Roles: []string{"student", "instructor"}},
			role: "student",
			at:   now,
			want: false,
		},
		{
			name: "before start",
			rule: Rule{Visible: true, Start: tp(now.Add(24 * time.Hour)), Roles: []string{"student"}},
			role: "student",
			at:   now,
			want: false,
		},
		{
			name: "after end",
			rule: Rule{Visible: true, End: tp(now.Add(-time.Hour)), Roles: []string{"student"}},
			role: "student",
			at:   now,
			want: false,
		},
		{
			name: "start bound inclusive",
			rule: Rule{Visible: true, Start: tp(now), Roles: []string{"student"}},
			role: "student",
			at:   now,
			want: true,
		},
		{
			name: "end bound inclusive",
			rule: Rule{Visible: true, End: tp(now), Roles: []string{"student"}},
			role: "student",
			at:   now,
			want: true,
		},
		{
			name: "inside window",
			rule: Rule{Visible: true, Start: tp(now.Add(-time.Hour)), End: tp(now.Add(time.Hour)), Roles: []string{"student"}},
			role: "student",
			at:   now,
			want: true,
		},
		{
			name: "role not required",
			rule: Rule{Visible: true, Roles: []string{"instructor"}},
			role: "student",
			at:   now,
			want: false,
		},
		{
			name: "role checked even with open window",
			rule: Rule{Visible: true, Start: tp(now.Add(-time.Hour)), End: tp(now.Add(time.Hour)), Roles: []string{"instructor"}},
			role: "guest",
			at:   now,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Accessible(tt.role, tt.at))
		})
	}
}

func TestAccessibleMonotonicInsideWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour)
	rule := Rule{Visible: true, Start: &start, End: &end, Roles: []string{"student"}}

	require.True(t, rule.Accessible("student", start.Add(time.Hour)))
	for d := time.Hour; d < 10*24*time.Hour; d += 13 * time.Hour {
		assert.True(t, rule.Accessible("student", start.Add(d)), "inside window at +%v", d)
	}
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	vis := true

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		orig := Rule{Visible: false, Roles: []string{"student", "instructor"}}
		got, err := Apply(orig, Patch{Visible: &vis})
		require.NoError(t, err)
		assert.True(t, got.Visible)
		assert.Equal(t, []string{"student", "instructor"}, got.Roles)
		assert.Nil(t, got.Start)
		assert.Nil(t, got.End)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		orig := Default()
		_, err := Apply(orig, Patch{Start: tp(now), End: tp(now.Add(-time.Minute))})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("equal bounds rejected", func(t *testing.T) {
		_, err := Apply(Default(), Patch{Start: tp(now), End: tp(now)})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("single bound validated against existing window", func(t *testing.T) {
		orig := Rule{Visible: true, End: tp(now), Roles: []string{"student"}}
		_, err := Apply(orig, Patch{Start: tp(now.Add(time.Hour))})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("empty roles rejected", func(t *testing.T) {
		_, err := Apply(Default(), Patch{Roles: []string{}})
		assert.ErrorIs(t, err, ErrEmptyRoles)
	})

	t.Run("failed validation leaves rule unchanged", func(t *testing.T) {
		orig := Rule{Visible: true, Start: tp(now.Add(-time.Hour)), Roles: []string{"student"}}
		got, err := Apply(orig, Patch{Visible: new(bool), Roles: []string{}})
		require.Error(t, err)
		assert.Equal(t, orig, got)
	})

	t.Run("roles replaced not merged", func(t *testing.T) {
		got, err := Apply(Default(), Patch{Roles: []string{"instructor", "admin"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"instructor", "admin"}, got.Roles)
	})
}

func TestFilterAccessiblePreservesOrder(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	type lesson struct {
		title string
		rule  Rule
	}
	items := []lesson{
		{"a", Rule{Visible: true, Roles: []string{"student"}}},
		{"b", Rule{Visible: false, Roles: []string{"student"}}},
		{"c", Rule{Visible: true, Roles: []string{"instructor"}}},
		{"d", Rule{Visible: true, Start: tp(now.Add(-time.Hour)), Roles: []string{"student"}}},
		{"e", Rule{Visible: true, Start: tp(now.Add(time.Hour)), Roles: []string{"student"}}},
	}

	got := FilterAccessible(items, func(l lesson) Rule { return l.rule }, "student", now)

	titles := make([]string, 0, len(got))
	for _, l := range got {
		titles = append(titles, l.title)
	}
	assert.Equal(t, []string{"a", "d"}, titles)
}
