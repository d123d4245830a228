// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/topomap/topomap/internal/classify"
	"github.com/topomap/topomap/internal/config"
	"github.com/topomap/topomap/internal/export"
	"github.com/topomap/topomap/internal/graph"
	"github.com/topomap/topomap/internal/issue"
	"github.com/topomap/topomap/internal/manifest"
	"github.com/topomap/topomap/internal/pipeline"
	"github.com/topomap/topomap/internal/registry"
	"github.com/topomap/topomap/internal/scanner"
	"github.com/topomap/topomap/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyError maps err to its exit code and the catalog entry explaining it.
// Typed failures win over the issue attached to an ActionableError, so a
// registry failure wrapped by the analyze command still exits with 3.
func classifyError(err error) (types.ExitCode, issue.Id) {
	var (
		exitErr  *ExitError
		resErr   *classify.ClassResolutionError
		actioned *issue.ActionableError
	)
	switch {
	case err == nil:
		return types.ExitOK, 0
	case errors.As(err, &exitErr):
		return exitErr.Code, 0
	case errors.Is(err, registry.ErrRegistryAccess):
		return types.ExitRegistryAccess, issue.RegistryAccessFailedId
	case errors.Is(err, scanner.ErrServiceNotFound):
		return types.ExitServiceNotFound, issue.ServiceNotFoundId
	case errors.Is(err, scanner.ErrFilesystem):
		return types.ExitFilesystem, issue.FilesystemAccessId
	case errors.As(err, &resErr), errors.Is(err, classify.ErrClassNotFound), errors.Is(err, classify.ErrHierarchyCycle):
		return types.ExitClassResolution, issue.ClassResolutionFailedId
	case errors.Is(err, export.ErrOutputWrite):
		return types.ExitOutputWrite, issue.OutputWriteFailedId
	case errors.Is(err, manifest.ErrInvalidManifest):
		return types.ExitUsage, issue.ManifestInvalidId
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, pipeline.ErrInvalidOptions),
		errors.Is(err, export.ErrInvalidFormat),
		errors.Is(err, graph.ErrInvalidOverride),
		errors.Is(err, graph.ErrInvalidAction):
		return types.ExitUsage, issue.ConfigLoadFailedId
	case errors.As(err, &actioned):
		switch actioned.Issue {
		case issue.ConfigLoadFailedId, issue.ManifestInvalidId:
			return types.ExitUsage, actioned.Issue
		}
		return types.ExitFailure, actioned.Issue
	}
	return types.ExitFailure, 0
}

// exitCodeFor returns the process exit status for err.
func exitCodeFor(err error) types.ExitCode {
	code, _ := classifyError(err)
	return code
}
