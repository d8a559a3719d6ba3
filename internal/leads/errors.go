package leads

import "errors"

// ErrUnknownTable is returned when a write or read targets a table the intake does not own.
var ErrUnknownTable = errors.New("leads: unknown table")
