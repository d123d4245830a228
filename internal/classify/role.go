// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RoleNone marks a class without client fields in its hierarchy.
	RoleNone Role = iota
	// RoleProducer marks a class holding a producer client.
	RoleProducer
	// RoleConsumer marks a class holding a consumer client.
	RoleConsumer
)

// ErrInvalidRole is returned by ParseRole.
var ErrInvalidRole = errors.New("invalid role")

// Role is the messaging role of a class.
type Role int

// String returns the lower-case role name.
func (r Role) String() string {
	switch r {
	case RoleProducer:
		return "producer"
	case RoleConsumer:
		return "consumer"
	default:
		return "none"
	}
}

// Suffix is the class-name suffix that identifies the role, empty for RoleNone.
func (r Role) Suffix() string {
	switch r {
	case RoleProducer:
		return "Producer"
	case RoleConsumer:
		return "Consumer"
	default:
		return ""
	}
}

// ParseRole accepts the String form, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "producer":
		return RoleProducer, nil
	case "consumer":
		return RoleConsumer, nil
	case "none", "":
		return RoleNone, nil
	}
	return RoleNone, fmt.Errorf("%w: %q (want producer, consumer or none)", ErrInvalidRole, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
