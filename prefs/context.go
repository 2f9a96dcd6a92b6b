package prefs

import (
	"context"

	"github.com/teranos/graphstyle/errors"
)

type contextKey string

const storeKey contextKey = "prefs_store"

// WithStore scopes s to ctx. Request handlers find it with FromContext.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey, s)
}

// FromContext returns the store scoped to ctx, if any
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey).(*Store)
	return s, ok && s != nil
}

// MustFromContext returns the store scoped to ctx. Using the store outside
// a scope that provides one is a wiring bug, so it panics.
func MustFromContext(ctx context.Context) *Store {
	s, ok := FromContext(ctx)
	if !ok {
		panic(errors.AssertionFailedf("prefs: no preference store in context"))
	}
	return s
}
