// Package store contains client-side state containers which proxy the news
// backend and mirror its responses into local state.
//
// Each store exclusively owns its collection. Collections are mutated only by
// the store's own operations, network calls run outside the store's lock.
package store

import (
	"errors"
)

// ErrUnauthorized is returned when an operation requires a session and none
// is established. The check happens client-side, before any network call.
var ErrUnauthorized = errors.New("unauthorized, please log in")

// ErrTokenExpired is returned when the persisted token is a well-formed JWT
// whose expiry has passed.
var ErrTokenExpired = errors.New("session expired, please log in again")

// ErrInFlight is returned when a like or dislike is requested for a post
// whose previous like call has not settled yet.
var ErrInFlight = errors.New("previous request for this post is still in flight")

// ErrNotFound is returned when an operation references a post or notification
// missing from the local collection.
var ErrNotFound = errors.New("not found")
