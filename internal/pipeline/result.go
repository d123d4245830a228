// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"github.com/topomap/topomap/internal/export"
	"github.com/topomap/topomap/internal/manifest"
)

// Report converts the result into its serializable form.
func (res *Result) Report() *export.Report {
	rep := &export.Report{
		RunID:       res.RunID,
		Root:        res.Root,
		Incomplete:  res.Incomplete,
		Relations:   res.Relations.Snapshot(),
		Services:    make([]export.ServiceReport, 0, len(res.Services)),
		Diagnostics: make([]export.Diagnostic, 0, len(res.Diagnostics)),
	}
	for _, svc := range res.Services {
		sr := export.ServiceReport{
			Name:    svc.Name,
			Root:    svc.Root,
			Skipped: svc.Skipped,
			Classes: make([]export.ClassReport, 0, len(svc.Classes)),
		}
		for _, c := range svc.Classes {
			channels := c.Channels
			if channels == nil {
				channels = []string{}
			}
			sr.Classes = append(sr.Classes, export.ClassReport{ID: c.ID, Role: c.Role.String(), Channels: channels})
		}
		rep.Services = append(rep.Services, sr)
	}
	for _, d := range res.Diagnostics {
		rep.Diagnostics = append(rep.Diagnostics, export.Diagnostic{
			Severity: string(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
			Service:  d.Service,
			Path:     d.Path,
		})
	}
	return rep
}

// Errors returns the diagnostics with error severity.
func (res *Result) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range res.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Manifest converts the result into a capability manifest that reproduces it.
func (res *Result) Manifest() *manifest.Manifest {
	m := manifest.New(res.Relations.Channels())
	for _, svc := range res.Services {
		if svc.Skipped {
			continue
		}
		if len(svc.Classes) == 0 {
			m.Services = append(m.Services, manifest.Service{Name: svc.Name})
			continue
		}
		for _, c := range svc.Classes {
			m.AddClass(svc.Name, manifest.Class{ID: c.ID, Role: c.Role.String(), Channels: c.Channels})
		}
	}
	return m
}
