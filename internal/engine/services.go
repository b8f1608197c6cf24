package engine

import "reflect"

// Services resolves constructor parameters that are not part of a pipeline,
// such as clients and loggers, by their declared type.
type Services interface {
	Lookup(t reflect.Type) (any, bool)
}

// ServiceCollection is a map-backed Services.
type ServiceCollection struct {
	services map[reflect.Type]any
}

func NewServiceCollection() *ServiceCollection {
	return &ServiceCollection{services: make(map[reflect.Type]any)}
}

// Provide registers v as the service for type T and returns s for chaining.
func Provide[T any](s *ServiceCollection, v T) *ServiceCollection {
	s.services[reflect.TypeFor[T]()] = v
	return s
}

func (s *ServiceCollection) Lookup(t reflect.Type) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.services[t]
	return v, ok
}
