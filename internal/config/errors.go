package config

import "errors"

var (
	ErrUnknownArchetype = errors.New("unknown archetype")
	ErrUnknownType      = errors.New("unknown hazard type")
	ErrInvalidValue     = errors.New("invalid config value")
	ErrUnknownBody      = errors.New("unknown scenario body")
)
