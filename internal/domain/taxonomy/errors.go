package taxonomy

import "errors"

// Sentinel kinds for taxonomy errors.
var (
	ErrInvalidTaxonomy  = errors.New("invalid taxonomy")
	ErrUnknownVersion   = errors.New("unknown taxonomy version")
	ErrDuplicateVersion = errors.New("duplicate taxonomy version")
)
