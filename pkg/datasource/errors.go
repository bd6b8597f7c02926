package datasource

import "errors"

var (
	// ErrNotFound is returned when the provider answered but had nothing for the query
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when no request was attempted: the circuit breaker is open or
	// the rate limit wait was abandoned
	ErrUnavailable = errors.New("statistics provider unavailable")
	// ErrProvider is returned when the provider reported errors in its response envelope
	ErrProvider = errors.New("statistics provider error")
	// ErrCacheMiss is returned by Cache.Get for absent or expired keys
	ErrCacheMiss = errors.New("cache miss")
)
