package readkit

import "evalview/internal/adapters/remotezip"

// Binder is a tiny factory that binds a domain repo to a specific archive
type Binder[T any] interface {
	Bind(*remotezip.Archive) T
}

// BindFunc lets you create a Binder from a function
type BindFunc[T any] func(*remotezip.Archive) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(a *remotezip.Archive) T { return f(a) }

// RequireArchive panics early on programmer error (nil archive)
func RequireArchive(a *remotezip.Archive) *remotezip.Archive {
	if a == nil {
		panic("readkit: nil Archive")
	}
	return a
}

// MustBind is a convenience that validates a then binds
func MustBind[T any](b Binder[T], a *remotezip.Archive) T {
	return b.Bind(RequireArchive(a))
}
