package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrMissingParam    = errors.New("missing path parameter")
	ErrBodyTooLarge    = errors.New("request body too large")
	ErrUnsupportedType = errors.New("unsupported content type")
)

func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
