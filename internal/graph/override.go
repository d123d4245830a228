// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/topomap/topomap/internal/classify"
)

const (
	// ActionAdd adds the service to the relation.
	ActionAdd Action = "add"
	// ActionRemove removes the service from the relation.
	ActionRemove Action = "remove"
)

var (
	// ErrInvalidAction is returned for an unknown override action.
	ErrInvalidAction = errors.New("invalid override action")
	// ErrInvalidOverride is returned by Override.Validate.
	ErrInvalidOverride = errors.New("invalid override")
)

type (
	// Action is what an Override does.
	Action string

	// Override corrects an inferred relation by hand.
	Override struct {
		Channel string        `json:"channel" mapstructure:"channel"`
		Service string        `json:"service" mapstructure:"service"`
		Role    classify.Role `json:"role" mapstructure:"role"`
		Action  Action        `json:"action" mapstructure:"action"`
	}
)

// ParseAction accepts "add" and "remove"; empty means add.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case "", ActionAdd:
		return ActionAdd, nil
	case ActionRemove:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Validate reports overrides that cannot apply to any relation.
func (o Override) Validate() error {
	var errs []error
	if strings.TrimSpace(o.Channel) == "" {
		errs = append(errs, errors.New("channel is required"))
	}
	if strings.TrimSpace(o.Service) == "" {
		errs = append(errs, errors.New("service is required"))
	}
	if o.Role == classify.RoleNone {
		errs = append(errs, errors.New("role must be producer or consumer"))
	}
	if _, err := ParseAction(string(o.Action)); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w for %s/%s: %w", ErrInvalidOverride, o.Channel, o.Service, errors.Join(errs...))
	}
	return nil
}

// String renders the override for diagnostics.
func (o Override) String() string {
	action, _ := ParseAction(string(o.Action))
	return fmt.Sprintf("%s %s %s on %s", action, o.Role, o.Service, o.Channel)
}

// ApplyOverrides applies overrides in order and returns those naming a
// channel the set does not contain.
func (s *Set) ApplyOverrides(overrides []Override) (unknown []Override) {
	for _, o := range overrides {
		action, err := ParseAction(string(o.Action))
		if err != nil || o.Role == classify.RoleNone {
			continue
		}
		var ok bool
		if action == ActionRemove {
			ok = s.remove(o.Channel, o.Role, o.Service)
		} else {
			ok = s.add(o.Channel, o.Role, o.Service)
		}
		if !ok {
			unknown = append(unknown, o)
		}
	}
	return unknown
}
