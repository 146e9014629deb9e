package main

import "errors"

// Sentinel errors for command operations
var (
	ErrInvalidSelector   = errors.New("invalid chain selector")
	ErrInvalidEscapeChar = errors.New("escape character must be a single character")
	ErrInvalidSubpattern = errors.New("subpattern must have the form name=pattern")
	ErrNoMatch           = errors.New("no match")
)
