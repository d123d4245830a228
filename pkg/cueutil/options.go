// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps CUE inputs at 4 MiB. Manifests for very large
// codebases stay well below this.
const DefaultMaxFileSize int64 = 4 << 20

type (
	// Option customizes ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the filename reported in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxFileSize = n }
}

// WithConcrete controls whether validation requires every value to be
// concrete. Partial documents such as config files use WithConcrete(false).
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}
