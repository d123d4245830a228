// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/topomap/topomap/internal/javasrc"
)

// SourceExt is the extension of indexed source files.
const SourceExt = ".java"

var (
	// ErrDuplicateType is reported when two files declare the same qualified
	// name. The first file in path order wins.
	ErrDuplicateType = errors.New("duplicate type declaration")

	// ErrSyntax is reported for files tree-sitter could only partially parse.
	// Their recovered declarations are still indexed.
	ErrSyntax = errors.New("source contains syntax errors")

	// defaultSkipDirs are build and VCS directories never worth parsing.
	defaultSkipDirs = []string{".git", ".gradle", ".idea", "build", "node_modules", "target"}
)

type (
	// Catalog maps qualified type names to their declarations.
	// It is immutable once built and safe for concurrent reads.
	Catalog struct {
		decls    map[string]*javasrc.TypeDecl
		packages map[string]struct{}
	}

	// Problem is a non-fatal issue found while indexing a file.
	Problem struct {
		Path string
		Err  error
	}

	// Option configures Build.
	Option func(*options)

	options struct {
		jobs     int
		skipDirs []string
		logger   *log.Logger
	}
)

// WithJobs bounds the number of files parsed concurrently. Values below one
// select GOMAXPROCS.
func WithJobs(n int) Option {
	return func(o *options) { o.jobs = n }
}

// WithSkipDirs replaces the directory names excluded from the walk.
func WithSkipDirs(names ...string) Option {
	return func(o *options) { o.skipDirs = names }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Error implements the error interface.
func (p Problem) Error() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// Unwrap returns the underlying error.
func (p Problem) Unwrap() error { return p.Err }

// New builds a catalog from already parsed declarations. Later duplicates are
// ignored.
func New(decls ...*javasrc.TypeDecl) *Catalog {
	c := &Catalog{
		decls:    make(map[string]*javasrc.TypeDecl, len(decls)),
		packages: make(map[string]struct{}),
	}
	for _, d := range decls {
		c.add(d)
	}
	return c
}

// Build walks every root, parses each source file and indexes the declared
// types. Files are parsed concurrently but inserted in lexicographic path order,
// so duplicate resolution does not depend on scheduling or directory listing
// order. An unreadable root is an error; everything below it is reported as a
// Problem.
func Build(ctx context.Context, roots []string, opts ...Option) (*Catalog, []Problem, error) {
	o := options{jobs: runtime.GOMAXPROCS(0), skipDirs: defaultSkipDirs, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.jobs < 1 {
		o.jobs = runtime.GOMAXPROCS(0)
	}

	paths, problems, err := collectSources(roots, o.skipDirs)
	if err != nil {
		return nil, nil, err
	}

	files := make([]*javasrc.File, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[i], errs[i] = javasrc.ParseFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c := New()
	for i, path := range paths {
		if errs[i] != nil {
			problems = append(problems, Problem{Path: path, Err: errs[i]})
			continue
		}
		f := files[i]
		if f.HasErrors {
			problems = append(problems, Problem{Path: path, Err: ErrSyntax})
		}
		for _, d := range f.Types {
			if prev, dup := c.decls[d.QualifiedName()]; dup {
				problems = append(problems, Problem{
					Path: path,
					Err:  fmt.Errorf("%w: %s already declared in %s", ErrDuplicateType, d.QualifiedName(), prev.Path),
				})
				continue
			}
			c.add(d)
		}
	}

	o.logger.Debug("catalog built", "files", len(paths), "types", c.Len(), "problems", len(problems))
	return c, problems, nil
}

func collectSources(roots []string, skipDirs []string) ([]string, []Problem, error) {
	var paths []string
	var problems []Problem
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				problems = append(problems, Problem{Path: path, Err: err})
				return nil
			}
			if d.IsDir() {
				if path != root && slices.Contains(skipDirs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), SourceExt) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("index %s: %w", root, err)
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), problems, nil
}

func (c *Catalog) add(d *javasrc.TypeDecl) {
	name := d.QualifiedName()
	if _, ok := c.decls[name]; ok {
		return
	}
	c.decls[name] = d
	c.packages[d.Package] = struct{}{}
}

// Lookup returns the declaration for a qualified name.
func (c *Catalog) Lookup(name string) (*javasrc.TypeDecl, bool) {
	d, ok := c.decls[name]
	return d, ok
}

// Has reports whether name is declared in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.decls[name]
	return ok
}

// Len returns the number of indexed types.
func (c *Catalog) Len() int { return len(c.decls) }

// Names returns every indexed qualified name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.decls))
	for n := range c.decls {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// FindBySimpleName returns the sorted qualified names whose last segment is name.
func (c *Catalog) FindBySimpleName(name string) []string {
	var out []string
	for n := range c.decls {
		if javasrc.SimpleName(n) == name {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
