package model

import (
	"encoding/json"
	"fmt"
	"tle_zone_dashboard/internal/common"
)

type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleOwner  MemberRole = "owner"
)

func (r MemberRole) IsValid() bool {
	return r == RoleMember || r == RoleOwner
}

func ParseMemberRole(v string) (MemberRole, error) {
	r := MemberRole(v)
	if !r.IsValid() {
		return "", fmt.Errorf("member role %q: %w", v, common.ErrInvalidEnumValue)
	}
	return r, nil
}

func (r *MemberRole) UnmarshalText(text []byte) error {
	v, err := ParseMemberRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Member is a dashboard team member. Username is the natural key.
type Member struct {
	Name           string     `json:"name"`
	Username       string     `json:"username"`
	Role           MemberRole `json:"role"`
	Avatar         Avatar     `json:"avatar"`
	HashedPassword string     `json:"-"`
}

func (m Member) Validate() error {
	if m.Username == "" {
		return fieldErr("member", "username", common.ErrMissingRequiredField)
	}
	if !m.Role.IsValid() {
		return fieldErr("member", "role", fmt.Errorf("%q: %w", m.Role, common.ErrInvalidEnumValue))
	}
	return nil
}

type memberWire struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Avatar   *Avatar `json:"avatar"`
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var w memberWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("member", err)
	}
	if err := requireFields("member",
		has("name", w.Name != nil),
		has("username", w.Username != nil),
		has("role", w.Role != nil),
		has("avatar", w.Avatar != nil),
	); err != nil {
		return err
	}

	v := Member{
		Name:     *w.Name,
		Username: *w.Username,
		Role:     MemberRole(*w.Role),
		Avatar:   *w.Avatar,
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*m = v
	return nil
}
