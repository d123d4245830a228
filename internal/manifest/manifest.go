// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/pkg/cueutil"
)

// CurrentVersion is written by New.
const CurrentVersion = "1.0.0"

var (
	//go:embed manifest_schema.cue
	schema []byte

	// supported is the accepted manifest version range.
	supported = mustConstraint("^1")

	// ErrInvalidManifest is the sentinel wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
)

type (
	// Manifest is a decoded capability manifest.
	Manifest struct {
		Version  string    `json:"version"`
		Channels []string  `json:"channels"`
		Services []Service `json:"services"`
	}

	// Service lists the role-bearing classes of one service.
	Service struct {
		Name    string  `json:"name"`
		Classes []Class `json:"classes"`
	}

	// Class is one role-bearing class.
	Class struct {
		ID       string   `json:"id"`
		Role     string   `json:"role"`
		Channels []string `json:"channels,omitempty"`
	}

	// InvalidManifestError reports a manifest that decodes but is unusable.
	InvalidManifestError struct {
		Path    string
		Reasons []error
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	msgs := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		msgs[i] = r.Error()
	}
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidManifest.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// New returns an empty manifest with the current version and channels.
func New(channels []string) *Manifest {
	return &Manifest{Version: CurrentVersion, Channels: slices.Clone(channels)}
}

// Load parses and validates the manifest file at path.
func Load(path string) (*Manifest, error) {
	res, err := cueutil.ParseFile[Manifest](schema, path, "#Manifest")
	if err != nil {
		return nil, err
	}
	if err := res.Value.validate(path); err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Parse parses and validates manifest content. filename is used in errors.
func Parse(data []byte, filename string) (*Manifest, error) {
	res, err := cueutil.ParseAndDecode[Manifest](schema, data, "#Manifest", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	if err := res.Value.validate(filename); err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Validate checks the rules the schema cannot express.
func (m *Manifest) Validate() error { return m.validate("<manifest>") }

func (m *Manifest) validate(path string) error {
	var reasons []error

	v, err := semver.NewVersion(m.Version)
	switch {
	case err != nil:
		reasons = append(reasons, fmt.Errorf("version %q: %w", m.Version, err))
	case !supported.Check(v):
		reasons = append(reasons, fmt.Errorf("version %s is not supported (want %s)", m.Version, supported))
	}

	services := make(map[string]bool, len(m.Services))
	for _, svc := range m.Services {
		if services[svc.Name] {
			reasons = append(reasons, fmt.Errorf("service %q declared twice", svc.Name))
		}
		services[svc.Name] = true

		ids := make(map[string]bool, len(svc.Classes))
		for _, c := range svc.Classes {
			if ids[c.ID] {
				reasons = append(reasons, fmt.Errorf("service %q: class %s declared twice", svc.Name, c.ID))
			}
			ids[c.ID] = true
			if role, err := classify.ParseRole(c.Role); err != nil || role == classify.RoleNone {
				reasons = append(reasons, fmt.Errorf("service %q: class %s: role %q must be producer or consumer", svc.Name, c.ID, c.Role))
			}
		}
	}

	if len(reasons) > 0 {
		return &InvalidManifestError{Path: path, Reasons: reasons}
	}
	return nil
}

// Service returns the entry named name.
func (m *Manifest) Service(name string) (*Service, bool) {
	for i := range m.Services {
		if m.Services[i].Name == name {
			return &m.Services[i], true
		}
	}
	return nil, false
}

// AddClass records a class under service, creating the service entry on first
// use. Services keep insertion order.
func (m *Manifest) AddClass(service string, c Class) {
	svc, ok := m.Service(service)
	if !ok {
		m.Services = append(m.Services, Service{Name: service})
		svc = &m.Services[len(m.Services)-1]
	}
	svc.Classes = append(svc.Classes, c)
}

// RoleOf returns the parsed role of c.
func (c Class) RoleOf() classify.Role {
	r, _ := classify.ParseRole(c.Role)
	return r
}

// Encode writes m as a CUE document that Load accepts.
func (m *Manifest) Encode(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("// topomap capability manifest\n\n")
	sb.WriteString(fmt.Sprintf("version: %q\n", m.Version))

	sb.WriteString("\nchannels: [\n")
	for _, ch := range m.Channels {
		sb.WriteString(fmt.Sprintf("\t%q,\n", ch))
	}
	sb.WriteString("]\n")

	sb.WriteString("\nservices: [\n")
	for _, svc := range m.Services {
		sb.WriteString("\t{\n")
		sb.WriteString(fmt.Sprintf("\t\tname: %q\n", svc.Name))
		sb.WriteString("\t\tclasses: [\n")
		for _, c := range svc.Classes {
			sb.WriteString(fmt.Sprintf("\t\t\t{id: %q, role: %q", c.ID, c.Role))
			if len(c.Channels) > 0 {
				quoted := make([]string, len(c.Channels))
				for i, ch := range c.Channels {
					quoted[i] = fmt.Sprintf("%q", ch)
				}
				sb.WriteString(", channels: [" + strings.Join(quoted, ", ") + "]")
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("\t\t]\n")
		sb.WriteString("\t},\n")
	}
	sb.WriteString("]\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}
