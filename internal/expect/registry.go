// Package expect resolves request parameters into domain entities by their
// external identifier and gates handlers on their presence.
//
// A Registry maps type tags ("user", "project") to resolver functions and is
// populated once at startup. Expect walks an ordered Spec, performs exactly
// one lookup per entry, binds every result (or nil) onto a Binder such as
// *gin.Context, and fails with an apperr NotFound error when the quantifier
// is not satisfied.
//
// Example:
//
//	reg := expect.NewRegistry()
//	expect.Register(reg, "user", func(ctx context.Context, eid string) (*domain.User, error) {
//	    return repo.FindUserByEID(ctx, db, eid)
//	})
//
//	// GET /users/:id binds the user under "user"
//	_, err := expect.Expect(ctx, reg, expect.All, expect.Spec{expect.Named("id", "user")}, params, c)
package expect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// ErrUnknownType is returned when a Spec names a tag with no registered
// resolver. It signals a programming error, not a client error.
var ErrUnknownType = errors.New("expect: unknown entity type")

// ResolverFunc looks up an entity of one type by external identifier.
// It returns (nil, nil) when no entity matches.
type ResolverFunc func(ctx context.Context, eid string) (any, error)

// Registry maps type tags to resolvers. Registration happens at startup;
// lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]ResolverFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]ResolverFunc)}
}

// Add registers fn under tag, replacing any previous resolver.
func (r *Registry) Add(tag string, fn ResolverFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[tag] = fn
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resolvers[tag]
	return ok
}

// FindByEID resolves eid with the resolver registered under tag. Absence is
// reported as (nil, nil), never as an error.
func (r *Registry) FindByEID(ctx context.Context, tag, eid string) (any, error) {
	r.mu.RLock()
	fn, ok := r.resolvers[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, tag)
	}
	if eid == "" {
		return nil, nil
	}
	return fn(ctx, eid)
}

// Register adds a typed finder under tag. Record-not-found errors from the
// store are converted into absence, and a nil *T is stored as an untyped nil
// so callers can compare results against nil directly.
func Register[T any](r *Registry, tag string, find func(ctx context.Context, eid string) (*T, error)) {
	r.Add(tag, func(ctx context.Context, eid string) (any, error) {
		v, err := find(ctx, eid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		return v, nil
	})
}
