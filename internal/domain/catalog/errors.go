package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrDuplicateQuestion = errors.New("duplicate question id")
	ErrLoadCatalog       = errors.New("load catalog failed")
)
