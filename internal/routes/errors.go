package routes

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a group or route lookup has no match.
	ErrNotFound = errors.New("API route not found")
	// ErrGroupNotFound is returned when no group carries the requested name.
	ErrGroupNotFound = fmt.Errorf("group: %w", ErrNotFound)
	// ErrRouteNotFound is returned when the group exists but has no matching path.
	ErrRouteNotFound = fmt.Errorf("route: %w", ErrNotFound)

	// ErrMalformedJSON is returned when routes configuration text is not valid JSON.
	ErrMalformedJSON = errors.New("routes configuration is not valid JSON")
	// ErrMalformedYAML is returned when a routes file is neither JSON nor valid YAML.
	ErrMalformedYAML = errors.New("routes configuration is not valid YAML")
	// ErrInvalidShape is returned when routes configuration is valid JSON of the wrong shape.
	ErrInvalidShape = errors.New("routes configuration has an invalid shape")
)
