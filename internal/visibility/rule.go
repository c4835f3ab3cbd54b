package visibility

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange is returned when an update would leave the visibility
	// window with a start at or after its end.
	ErrInvalidRange = errors.New("visibility end must be after start")
	// ErrEmptyRoles is returned when an update would leave no required roles.
	ErrEmptyRoles = errors.New("at least one required role must be specified")
)

// Rule gates whether a lesson is shown to a requesting role at a point in
// time. The zero value hides the lesson; use Default for new lessons.
type Rule struct {
	Visible bool       `json:"is_visible"`
	Start   *time.Time `json:"visibility_start,omitempty"`
	End     *time.Time `json:"visibility_end,omitempty"`
	Roles   []string   `json:"required_roles"`
}

// Default is the rule attached to newly created lessons: visible, no time
// window, students only.
func Default() Rule {
	return Rule{Visible: true, Roles: []string{"student"}}
}

// Accessible reports whether content gated by r is open to role at now.
// Checks short-circuit in order: visible flag, start bound, end bound, role
// membership. Both window bounds are inclusive. now is always supplied by the
// caller so decisions stay reproducible under test.
func (r Rule) Accessible(role string, now time.Time) bool {
	if !r.Visible {
		return false
	}
	if r.Start != nil && now.Before(*r.Start) {
		return false
	}
	if r.End != nil && now.After(*r.End) {
		return false
	}
	for _, want := range r.Roles {
		if want == role {
			return true
		}
	}
	return false
}

// Patch is a partial update to a Rule. Nil fields keep their prior value; a
// non-nil empty Roles slice is rejected rather than clearing the role list.
type Patch struct {
	Visible *bool      `json:"is_visible"`
	Start   *time.Time `json:"visibility_start"`
	End     *time.Time `json:"visibility_end"`
	Roles   []string   `json:"required_roles"`
}

// Apply merges p into r, validating before any field is written. On failure
// the returned rule equals r. The window check runs against the post-merge
// bounds, so a patch cannot invert the window by supplying only one side.
func Apply(r Rule, p Patch) (Rule, error) {
	start, end := r.Start, r.End
	if p.Start != nil {
		start = p.Start
	}
	if p.End != nil {
		end = p.End
	}
	if start != nil && end != nil && !start.Before(*end) {
		return r, ErrInvalidRange
	}
	if p.Roles != nil && len(p.Roles) == 0 {
		return r, ErrEmptyRoles
	}

	out := r
	if p.Visible != nil {
		out.Visible = *p.Visible
	}
	out.Start = start
	out.End = end
	if p.Roles != nil {
		out.Roles = append([]string(nil), p.Roles...)
	}
	return out, nil
}

// FilterAccessible returns the subsequence of items whose rule admits role at
// now, preserving input order. Paging is left to the caller.
func FilterAccessible[T any](items []T, rule func(T) Rule, role string, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if rule(it).Accessible(role, now) {
			out = append(out, it)
		}
	}
	return out
}
