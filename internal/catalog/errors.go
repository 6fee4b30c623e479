package catalog

import "errors"

// Catalog loading error sentinels. Any of these is fatal at build time.
var (
	ErrMalformedSource = errors.New("malformed catalog source")
	ErrInvalidRecord   = errors.New("invalid catalog record")
	ErrDuplicateRepo   = errors.New("duplicate repo identifier")
	ErrDanglingRef     = errors.New("reference to unknown repo")
)
