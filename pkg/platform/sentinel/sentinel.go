// Package sentinel holds store-level errors that services translate into
// domain errors.
package sentinel

import "errors"

// ErrNotFound is returned, possibly wrapped, by stores when a row is absent.
var ErrNotFound = errors.New("not found")
