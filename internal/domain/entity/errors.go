package entity

import "errors"

var (
	// ErrUnknownList indicates a list name other than the whitelist or
	// blacklist was requested.
	ErrUnknownList = errors.New("unknown list name")

	// ErrUnsupportedExport indicates an import envelope with a version
	// this build does not understand.
	ErrUnsupportedExport = errors.New("unsupported export version")
)
