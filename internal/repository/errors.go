package repository

import "errors"

// ErrNotFound is returned by all store implementations when a point read or
// targeted write matches no record.
var ErrNotFound = errors.New("record not found")
