// Package access answers team permission questions from the role hierarchy.
package access

import "planner/internal/model"

// Allowed grants when both roles are recognised and role ranks at least required.
func Allowed(role, required model.Role) bool {
	return role.Known() && required.Known() && role >= required
}

// Check looks up the user's membership in team. A missing team, user or
// membership is a denial.
func Check(team *model.Team, user *model.User, required model.Role) bool {
	if team == nil || user == nil {
		return false
	}
	m, ok := team.Member(user.ID)
	if !ok {
		return false
	}
	return Allowed(m.Role, required)
}

// RoleOf returns the user's role in team, or RoleBelowMinimum.
func RoleOf(team *model.Team, user *model.User) model.Role {
	if team == nil || user == nil {
		return model.RoleBelowMinimum
	}
	m, ok := team.Member(user.ID)
	if !ok {
		return model.RoleBelowMinimum
	}
	return m.Role
}
