package advance

import "errors"

var (
	ErrAdvanceNotFound = errors.New("advance not found")
)
