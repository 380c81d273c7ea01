package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is a team membership level. The zero value sorts below every real role.
type Role int

const (
	RoleBelowMinimum Role = iota
	RoleViewer
	RoleMember
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleViewer: "viewer",
	RoleMember: "member",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

// ParseRole maps a role name to its level; unknown names yield RoleBelowMinimum.
func ParseRole(s string) Role {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == name {
			return r
		}
	}
	return RoleBelowMinimum
}

func (r Role) Known() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// MarshalJSON writes the role name; levels without one encode as "unknown".
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON never fails on an unrecognised name; the role becomes RoleBelowMinimum.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

type Team struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Members   []TeamMember `json:"members"`
}

type TeamMember struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	TeamID    int       `json:"team_id"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	UserEmail string    `json:"user_email"`
}

// Member returns the membership record of a user.
func (t Team) Member(userID int) (TeamMember, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return TeamMember{}, false
}

func (t Team) Clone() Team {
	c := t
	if t.Members != nil {
		c.Members = append([]TeamMember(nil), t.Members...)
	}
	return c
}

type TeamCreate struct {
	Name string `json:"name" binding:"required"`
}

type MemberCreate struct {
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role"`
}
