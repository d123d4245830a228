// SPDX-License-Identifier: MPL-2.0

package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

type (
	// Scanner applies a Layout to an analysis root.
	Scanner struct {
		layout Layout
	}

	// ServiceScan is the outcome of scanning one service.
	ServiceScan struct {
		Name       string
		Root       string
		SourceRoot string
		// Markers are the marker directories found below SourceRoot.
		Markers []string
		// Classes are the qualified identifiers, contracts already removed.
		Classes []string
		// Excluded are identifiers dropped by the contract filter.
		Excluded []string
	}
)

// New returns a Scanner for layout. Empty fields take their defaults.
func New(layout Layout) *Scanner {
	return &Scanner{layout: layout.WithDefaults()}
}

// Layout returns the effective layout.
func (s *Scanner) Layout() Layout { return s.layout }

// Scan runs every step for one service.
func (s *Scanner) Scan(ctx context.Context, root, service string) (*ServiceScan, error) {
	svcRoot, err := s.LocateServiceRoot(root, service)
	if err != nil {
		return nil, err
	}
	res := &ServiceScan{
		Name:       service,
		Root:       svcRoot,
		SourceRoot: s.SourceRoot(svcRoot),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.Markers, err = s.FindMarkerSubtrees(res.SourceRoot); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.CollectClasses(res.SourceRoot, res.Markers)
	if err != nil {
		return nil, err
	}
	res.Classes, res.Excluded = FilterContracts(ids, s.layout.ContractSegment)
	return res, nil
}

// SourceRoot returns the package tree root of a service directory.
func (s *Scanner) SourceRoot(serviceRoot string) string {
	return filepath.Join(serviceRoot, filepath.FromSlash(s.layout.SourceSubpath))
}

// LocateServiceRoot returns the first immediate subdirectory of root, in
// lexicographic order, whose significant path suffix contains service.
func (s *Scanner) LocateServiceRoot(root, service string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", NewFilesystemError(root, err)
	}
	// os.ReadDir already sorts by name; keep the guarantee explicit.
	slices.SortFunc(entries, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

	for _, e := range entries {
		if !isDir(root, e) {
			continue
		}
		path := filepath.Join(root, e.Name())
		if MatchesService(s.significantSuffix(path), service) {
			return path, nil
		}
	}
	return "", &ServiceNotFoundError{Service: service, Root: root}
}

// significantSuffix is the part of path after the last RootMarker segment.
func (s *Scanner) significantSuffix(path string) string {
	slashed := filepath.ToSlash(path)
	if s.layout.RootMarker != "" {
		marker := strings.Trim(s.layout.RootMarker, "/") + "/"
		if i := strings.LastIndex(slashed, marker); i >= 0 {
			return slashed[i+len(marker):]
		}
	}
	return filepath.Base(path)
}

// MatchesService reports whether a service directory suffix names service:
// dashes become spaces and the comparison ignores case.
func MatchesService(suffix, service string) bool {
	if strings.TrimSpace(service) == "" {
		return false
	}
	normalized := strings.ToLower(strings.ReplaceAll(suffix, "-", " "))
	return strings.Contains(normalized, strings.ToLower(service))
}

// FindMarkerSubtrees walks root and returns every directory named after the
// layout marker, sorted. A matched marker is not descended into.
func (s *Scanner) FindMarkerSubtrees(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return NewFilesystemError(path, err)
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if d.Name() == s.layout.MarkerDir {
			found = append(found, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

// CollectClasses converts the source files found directly in each marker
// directory and in its immediate subdirectories. Deeper levels are ignored.
func (s *Scanner) CollectClasses(sourceRoot string, markers []string) ([]string, error) {
	seen := make(map[string]struct{})
	add := func(path string) {
		if id := s.QualifiedName(sourceRoot, path); id != "" {
			seen[id] = struct{}{}
		}
	}

	for _, marker := range markers {
		entries, err := os.ReadDir(marker)
		if err != nil {
			return nil, NewFilesystemError(marker, err)
		}
		for _, e := range entries {
			path := filepath.Join(marker, e.Name())
			if !e.IsDir() {
				add(path)
				continue
			}
			subEntries, err := os.ReadDir(path)
			if err != nil {
				return nil, NewFilesystemError(path, err)
			}
			for _, se := range subEntries {
				if !se.IsDir() {
					add(filepath.Join(path, se.Name()))
				}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// QualifiedName converts a source file path to a class identifier: the part
// from the last path segment equal to the package root up to the extension,
// with separators turned into dots. Without such a segment the whole path
// relative to sourceRoot is used. Files without the source extension yield "".
func (s *Scanner) QualifiedName(sourceRoot, path string) string {
	if !strings.HasSuffix(path, s.layout.SourceExt) {
		return ""
	}
	rel := path
	if r, err := filepath.Rel(sourceRoot, path); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		rel = r
	}
	segments := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), s.layout.SourceExt), "/")

	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == s.layout.PackageRoot {
			return strings.Join(segments[i:], ".")
		}
	}
	return strings.Join(slices.DeleteFunc(segments, func(seg string) bool { return seg == "" }), ".")
}

// FilterContracts splits ids into those kept and those whose package path
// contains segment. The simple name is not inspected. An empty segment or
// NoContractFilter keeps everything.
func FilterContracts(ids []string, segment string) (kept, excluded []string) {
	if segment == "" || segment == NoContractFilter {
		return ids, nil
	}
	for _, id := range ids {
		parts := strings.Split(id, ".")
		if slices.Contains(parts[:len(parts)-1], segment) {
			excluded = append(excluded, id)
			continue
		}
		kept = append(kept, id)
	}
	return kept, excluded
}

// isDir follows symlinks so linked service checkouts are still candidates.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}
