package feature

import "errors"

// Transition and scan errors. Violations (duplicate identifiers, multiple
// active records) are values in the scan result, not errors, so a broken
// repository still produces a best-effort report.
var (
	ErrNotFound          = errors.New("feature not found")
	ErrConflict          = errors.New("another feature is already active")
	ErrPrecondition      = errors.New("feature has incomplete tasks")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrStaleIndex        = errors.New("repository changed since scan, rescan and retry")
	ErrAmbiguousID       = errors.New("identifier is ambiguous, repair duplicates first")
	ErrFeatureExists     = errors.New("feature file already exists")
	ErrIDRequired        = errors.New("feature ID is required")
	ErrReasonRequired    = errors.New("block reason is required")
	ErrEmptyTitle        = errors.New("title must contain at least one letter or digit")
)

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrFeaturesDirEmpty   = errors.New("features_dir cannot be empty")
	ErrFlagRequiresArg    = errors.New("flag requires an argument")
	ErrUnknownFlag        = errors.New("unknown flag")
)
