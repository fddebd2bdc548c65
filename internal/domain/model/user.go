package model

import (
	"encoding/json"
	"fmt"
	"tle_zone_dashboard/internal/common"
)

type UserStatus string

const (
	UserStatusSubscribed   UserStatus = "subscribed"
	UserStatusUnsubscribed UserStatus = "unsubscribed"
	UserStatusBounced      UserStatus = "bounced"
)

// UserStatuses lists the closed set in display order.
var UserStatuses = []UserStatus{UserStatusSubscribed, UserStatusUnsubscribed, UserStatusBounced}

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusSubscribed, UserStatusUnsubscribed, UserStatusBounced:
		return true
	}
	return false
}

func ParseUserStatus(v string) (UserStatus, error) {
	s := UserStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("user status %q: %w", v, common.ErrInvalidEnumValue)
	}
	return s, nil
}

func (s *UserStatus) UnmarshalText(text []byte) error {
	v, err := ParseUserStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// User is a customer of the platform. Mails and notifications embed a copy of it.
type User struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"` // not format-checked
	Avatar   *Avatar    `json:"avatar,omitempty"`
	Status   UserStatus `json:"status"`
	Location string     `json:"location"`
}

func (u User) Validate() error {
	if !u.Status.IsValid() {
		return fieldErr("user", "status", fmt.Errorf("%q: %w", u.Status, common.ErrInvalidEnumValue))
	}
	return nil
}

type userWire struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Avatar   *Avatar `json:"avatar"`
	Status   *string `json:"status"`
	Location *string `json:"location"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("user", err)
	}
	if err := requireFields("user",
		has("id", w.ID != nil),
		has("name", w.Name != nil),
		has("email", w.Email != nil),
		has("status", w.Status != nil),
		has("location", w.Location != nil),
	); err != nil {
		return err
	}

	v := User{
		ID:       *w.ID,
		Name:     *w.Name,
		Email:    *w.Email,
		Avatar:   w.Avatar,
		Status:   UserStatus(*w.Status),
		Location: *w.Location,
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*u = v
	return nil
}
