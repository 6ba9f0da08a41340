package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyPrompt     = errors.New("prompt is required")
	ErrInvalidStyle    = errors.New("invalid style")
	ErrProviderFailure = errors.New("provider failure")
)
