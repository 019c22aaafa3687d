package domain

import "errors"

// ErrConfigurationMissing means the order has no process template. Scanning
// must be refused; no default template is ever substituted.
var ErrConfigurationMissing = errors.New("order has no process configuration")

// ErrNotFound is returned by sources when the requested record does not exist.
var ErrNotFound = errors.New("not found")
