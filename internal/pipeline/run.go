// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/topomap/topomap/internal/catalog"
	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/graph"
	"github.com/topomap/topomap/internal/infer"
	"github.com/topomap/topomap/internal/registry"
	"github.com/topomap/topomap/internal/scanner"
)

type (
	// ClassFinding is a role-bearing class and the channels it attached to.
	ClassFinding struct {
		ID       string
		Role     classify.Role
		Channels []string
		// Evidence is "Class.field" for source analysis, "manifest" otherwise.
		Evidence string
	}

	// ServiceResult is what one service contributed.
	ServiceResult struct {
		Name string
		Root string
		// Skipped is set when the service could not be scanned.
		Skipped bool
		Classes []ClassFinding
	}

	// Result is the outcome of a run.
	Result struct {
		RunID       string
		Root        string
		Relations   *graph.Set
		Services    []ServiceResult
		Diagnostics []Diagnostic
		// Incomplete is set when at least one service was skipped.
		Incomplete bool
		Started    time.Time
		Finished   time.Time
	}

	// runner carries the state of a single run.
	runner struct {
		opts       Options
		log        *log.Logger
		catalog    *catalog.Catalog
		scanner    *scanner.Scanner
		classifier *classify.Classifier
		inferencer *infer.Inferencer
		result     *Result
	}

	// serviceWork is the concurrent part of processing one service.
	serviceWork struct {
		service  ServiceResult
		findings []ClassFinding
		diags    []Diagnostic
		err      error
	}
)

// Run performs one analysis.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Registry.Source == "" {
		opts.Registry.Source = SourceDeclaration
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}

	r := &runner{
		opts:       opts,
		log:        opts.logger(),
		scanner:    scanner.New(opts.Layout),
		inferencer: infer.New(opts.Qualifier),
		result: &Result{
			RunID:   ulid.Make().String(),
			Root:    opts.Root,
			Started: time.Now(),
		},
	}
	r.log.Debug("analysis started", "run", r.result.RunID, "root", opts.Root, "services", len(opts.Services))

	if r.needsCatalog() {
		if err := r.buildCatalog(ctx); err != nil {
			return nil, err
		}
		r.classifier = classify.New(r.catalog, opts.Roles)
	}

	channels, err := r.channels(ctx)
	if err != nil {
		return nil, err
	}
	r.result.Relations = graph.NewSet(channels)
	opts.Metrics.Channels(r.result.Relations.Len())

	work, err := r.processServices(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.accumulate(work); err != nil {
		return nil, err
	}

	for _, ov := range r.result.Relations.ApplyOverrides(opts.Overrides) {
		r.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeOverrideUnknownChannel,
			Message:  fmt.Sprintf("override %q names an unknown channel", ov.String()),
			Service:  ov.Service,
		})
	}

	r.result.Finished = time.Now()
	opts.Metrics.RunFinished(r.result.Started, r.result.Finished)
	r.log.Info("analysis finished",
		"run", r.result.RunID,
		"channels", r.result.Relations.Len(),
		"diagnostics", len(r.result.Diagnostics),
		"elapsed", r.result.Finished.Sub(r.result.Started).Round(time.Millisecond))
	return r.result, nil
}

// Channels runs only the registry stage.
func Channels(ctx context.Context, opts Options) ([]string, []Diagnostic, error) {
	if opts.Registry.Source == "" {
		opts.Registry.Source = SourceDeclaration
	}
	r := &runner{opts: opts, log: opts.logger(), result: &Result{}}
	if opts.Registry.Source == SourceDeclaration {
		if err := r.buildCatalog(ctx); err != nil {
			return nil, nil, err
		}
	}
	channels, err := r.channels(ctx)
	if err != nil {
		return nil, nil, err
	}
	return channels, r.result.Diagnostics, nil
}

func (r *runner) needsCatalog() bool {
	return r.opts.Manifest == nil || r.opts.Registry.Source == SourceDeclaration
}

func (r *runner) buildCatalog(ctx context.Context) error {
	cat, problems, err := catalog.Build(ctx, []string{r.opts.Root}, catalog.WithJobs(r.opts.Jobs), catalog.WithLogger(r.log))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return scanner.NewFilesystemError(r.opts.Root, err)
	}
	for _, p := range problems {
		r.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeSourceProblem,
			Message:  "source file only partially indexed",
			Path:     p.Path,
			Cause:    p.Err,
		})
	}
	r.catalog = cat
	return nil
}

func (r *runner) channels(ctx context.Context) ([]string, error) {
	var src registry.Source
	switch r.opts.Registry.Source {
	case SourceList:
		src = registry.ListSource{List: r.opts.Registry.List}
	case SourceManifest:
		if r.opts.Manifest == nil {
			return nil, &registry.RegistryAccessError{Source: "manifest", Err: errors.New("no manifest loaded")}
		}
		src = registry.ListSource{List: r.opts.Manifest.Channels}
	default:
		src = registry.DeclarationSource{Types: r.catalog, Class: r.opts.Registry.Class, Marker: r.opts.Registry.Marker}
	}

	res, err := src.Channels(ctx)
	if err != nil {
		var accessErr *registry.RegistryAccessError
		if errors.As(err, &accessErr) || ctx.Err() != nil {
			return nil, err
		}
		return nil, &registry.RegistryAccessError{Source: string(r.opts.Registry.Source), Err: err}
	}
	for _, s := range res.Skipped {
		r.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeRegistryMemberSkipped,
			Message:  fmt.Sprintf("naming member %s skipped", s.Member),
			Cause:    s.Err,
		})
	}
	r.log.Debug("channel registry loaded", "source", r.opts.Registry.Source, "channels", len(res.Channels))
	return res.Channels, nil
}

func (r *runner) services() []string {
	if len(r.opts.Services) > 0 || r.opts.Manifest == nil {
		return r.opts.Services
	}
	names := make([]string, len(r.opts.Manifest.Services))
	for i, s := range r.opts.Manifest.Services {
		names[i] = s.Name
	}
	return names
}

// processServices runs scan and classification for every service, at most
// Jobs at a time. Failures are kept per service and examined in order later.
func (r *runner) processServices(ctx context.Context) ([]serviceWork, error) {
	names := r.services()
	work := make([]serviceWork, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r.opts.Manifest != nil {
				work[i] = r.fromManifest(name)
			} else {
				work[i] = r.fromSource(gctx, name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return work, ctx.Err()
}

func (r *runner) fromSource(ctx context.Context, name string) serviceWork {
	w := serviceWork{service: ServiceResult{Name: name}}

	scan, err := r.scanner.Scan(ctx, r.opts.Root, name)
	if err != nil {
		w.err = err
		return w
	}
	w.service.Root = scan.Root
	r.opts.Metrics.ClassesDiscovered(name, len(scan.Classes))
	r.log.Debug("service scanned", "service", name, "markers", len(scan.Markers), "classes", len(scan.Classes), "excluded", len(scan.Excluded))

	for _, id := range scan.Classes {
		cls, err := r.classifier.Classify(id)
		if err != nil {
			if r.opts.Strict {
				w.err = err
				return w
			}
			w.diags = append(w.diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeClassResolution,
				Message:  fmt.Sprintf("class %s skipped", id),
				Service:  name,
				Cause:    err,
			})
			continue
		}
		r.opts.Metrics.ClassClassified(name, cls.Role.String())
		if cls.Role == classify.RoleNone {
			continue
		}
		w.findings = append(w.findings, ClassFinding{
			ID:       id,
			Role:     cls.Role,
			Evidence: cls.Class + "." + cls.Field,
		})
	}
	return w
}

func (r *runner) fromManifest(name string) serviceWork {
	w := serviceWork{service: ServiceResult{Name: name}}
	svc, ok := r.opts.Manifest.Service(name)
	if !ok {
		w.err = &scanner.ServiceNotFoundError{Service: name, Root: "manifest"}
		return w
	}
	r.opts.Metrics.ClassesDiscovered(name, len(svc.Classes))
	for _, c := range svc.Classes {
		role := c.RoleOf()
		r.opts.Metrics.ClassClassified(name, role.String())
		if role == classify.RoleNone {
			continue
		}
		w.findings = append(w.findings, ClassFinding{ID: c.ID, Role: role, Channels: c.Channels, Evidence: "manifest"})
	}
	return w
}

// accumulate folds the per-service work into the relation set in order.
func (r *runner) accumulate(work []serviceWork) error {
	acc := graph.NewAccumulator(r.result.Relations, r.inferencer)

	for _, w := range work {
		if w.err != nil {
			if err := r.serviceFailed(&w); err != nil {
				return err
			}
			r.result.Services = append(r.result.Services, w.service)
			continue
		}
		for _, d := range w.diags {
			r.report(d)
		}

		svc := w.service
		for _, f := range w.findings {
			if len(f.Channels) > 0 {
				attached, unknown := acc.AttachChannels(f.Channels, f.Role, svc.Name)
				for _, ch := range unknown {
					r.report(Diagnostic{
						Severity: SeverityWarning,
						Code:     CodeUnknownChannel,
						Message:  fmt.Sprintf("class %s declares unknown channel %q", f.ID, ch),
						Service:  svc.Name,
					})
				}
				f.Channels = attached
			} else {
				if _, err := r.inferencer.Decompose(f.ID, f.Role); errors.Is(err, infer.ErrDegenerateName) {
					r.report(Diagnostic{
						Severity: SeverityWarning,
						Code:     CodeDegenerateName,
						Message:  fmt.Sprintf("class %s has no meaningful name segment and matches no channel", f.ID),
						Service:  svc.Name,
						Cause:    err,
					})
				}
				f.Channels = acc.Attach(f.ID, f.Role, svc.Name)
			}
			r.opts.Metrics.Attached(f.Role.String(), len(f.Channels))
			if len(f.Channels) == 0 {
				r.log.Debug("class matched no channel", "service", svc.Name, "class", f.ID, "role", f.Role)
			}
			svc.Classes = append(svc.Classes, f)
		}
		r.result.Services = append(r.result.Services, svc)
	}
	return nil
}

// serviceFailed applies the error policy to a service that could not be
// processed. It returns the error when the run must stop.
func (r *runner) serviceFailed(w *serviceWork) error {
	var notFound *scanner.ServiceNotFoundError
	var fsErr *scanner.FilesystemError

	switch {
	case errors.As(w.err, &notFound):
		if r.opts.Strict {
			return w.err
		}
		r.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeServiceNotFound,
			Message:  fmt.Sprintf("service %q not found, skipped", w.service.Name),
			Service:  w.service.Name,
			Path:     notFound.Root,
			Cause:    w.err,
		})
	case errors.As(w.err, &fsErr):
		if r.opts.Strict {
			return w.err
		}
		r.report(Diagnostic{
			Severity: SeverityError,
			Code:     CodeFilesystem,
			Message:  fmt.Sprintf("service %q skipped: directory cannot be listed (%s)", w.service.Name, fsErr.Kind),
			Service:  w.service.Name,
			Path:     fsErr.Path,
			Cause:    w.err,
		})
	default:
		return w.err
	}
	w.service.Skipped = true
	r.result.Incomplete = true
	return nil
}

func (r *runner) report(d Diagnostic) {
	d.log(r.log)
	r.opts.Metrics.Diagnostic(string(d.Severity), d.Code)
	r.result.Diagnostics = append(r.result.Diagnostics, d)
}
