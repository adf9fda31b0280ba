package models

import "errors"

var (
	ErrSymbolRequired = errors.New("symbol is required")
	ErrMissingToken   = errors.New("quote API token not configured")
	ErrInvalidTicker  = errors.New("invalid ticker or no data available")
	ErrNoHistory      = errors.New("no historical data available")
	ErrUnsupported    = errors.New("operation not supported by provider")
)
