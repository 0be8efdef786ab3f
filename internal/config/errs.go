package config

import "errors"

var (
	// ErrDuplicateVariable is returned when more than one benchmark
	// variable is configured; a session takes zero or one.
	ErrDuplicateVariable = errors.New("config: only one benchmark variable may be configured")
	// ErrBadScan is returned for a malformed --scan or --scanl argument.
	ErrBadScan = errors.New("config: malformed scan specification")
	// ErrUnknownMeasurement is returned for a --meas token outside the
	// fixed vocabulary.
	ErrUnknownMeasurement = errors.New("config: unknown measurement")
	// ErrBadRename is returned for a malformed rename directive, and for a
	// --baseline or --baseline-name that matches no benchmark.
	ErrBadRename = errors.New("config: malformed rename")
	// ErrNoCommands is returned when no benchmark command was supplied.
	ErrNoCommands = errors.New("config: no benchmark commands given")
)
