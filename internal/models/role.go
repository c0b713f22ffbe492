package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is the closed set of account roles.
type Role int

const (
	RoleClient Role = iota
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "client":
		return RoleClient, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleClient, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleClient:
		return "client"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleAdmin, RoleClient:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

// Value stores the role as its text form.
func (r Role) Value() (driver.Value, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}

	return string(text), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}
