package observability

import "go.uber.org/zap"

// Field constructors re-exported so callers log through one package.
//
//nolint:gochecknoglobals // Aliases, not mutable state
var (
	String   = zap.String
	Int      = zap.Int
	Float64  = zap.Float64
	Bool     = zap.Bool
	Duration = zap.Duration
	Any      = zap.Any
	Error    = zap.Error
)
