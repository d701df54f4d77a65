// Package module holds the module contract and the port lookups used to cross wire modules
package module

import (
	"reflect"
	"sync"

	phttp "agora/internal/platform/net/http"
)

// Module is a mountable unit of the API
type Module interface {
	MountRoutes(r phttp.Router)
	// Ports returns the module's exported port bundle, usually a struct of interfaces
	Ports() any
	Name() string
}

// PortsOf finds a T in m's bundle: the bundle itself or one of its exported fields
func PortsOf[T any](m Module) (T, bool) {
	return find[T](m.Ports())
}

func find[T any](bundle any) (T, bool) {
	var zero T
	if bundle == nil {
		return zero, false
	}
	if v, ok := bundle.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(bundle)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes a module's bundle under name; a later call replaces it
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// Lookup finds a T in the bundle registered under name
func Lookup[T any](name string) (T, bool) {
	mu.RLock()
	bundle, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return find[T](bundle)
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
