package storage

import "errors"

// ErrConflict is returned when a conditional write lost a race: a version or
// status read earlier no longer matches what is stored. The caller may re-read and retry.
var ErrConflict = errors.New("concurrent modification")

// ErrTooManyItems is returned when a unit of work exceeds what one atomic write can hold.
var ErrTooManyItems = errors.New("unit of work has too many items")
