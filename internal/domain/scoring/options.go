package scoring

import "strings"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDefaultCorrectOption sets the answer key assumed for single-choice
// questions whose catalog entry has none.
func WithDefaultCorrectOption(option string) Option {
	return func(e *Engine) {
		if o := normalizeChoice(option); o != "" {
			e.scorer.defaultCorrect = o
		}
	}
}

// WithCompositeSeparator sets the separator joining tied dominant labels.
func WithCompositeSeparator(sep string) Option {
	return func(e *Engine) {
		if sep != "" {
			e.resolver.separator = sep
		}
	}
}

// WithIndeterminateLabel sets the label reported when no dominant type
// can be determined.
func WithIndeterminateLabel(label string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(label) != "" {
			e.resolver.indeterminate = label
		}
	}
}
