package models

import "errors"

var (
	ErrUnknownSector       = errors.New("unknown sector")
	ErrInvalidRange        = errors.New("start must be before end")
	ErrProviderUnavailable = errors.New("market data provider unavailable")
)
