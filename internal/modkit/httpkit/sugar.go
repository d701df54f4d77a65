package httpkit

import "net/http"

// Get mounts fn under GET
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }

// Post mounts fn under POST
func Post(r Router, path string, fn func(*http.Request) (any, error)) { r.Post(path, Call(fn)) }

// Put mounts fn under PUT
func Put(r Router, path string, fn func(*http.Request) (any, error)) { r.Put(path, Call(fn)) }

// Patch mounts fn under PATCH
func Patch(r Router, path string, fn func(*http.Request) (any, error)) { r.Patch(path, Call(fn)) }

// Delete mounts fn under DELETE
func Delete(r Router, path string, fn func(*http.Request) (any, error)) { r.Delete(path, Call(fn)) }

// PostJSON mounts a bound T handler under POST
func PostJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Post(path, JSON(fn))
}

// PutJSON mounts a bound T handler under PUT
func PutJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Put(path, JSON(fn))
}

// PatchJSON mounts a bound T handler under PATCH
func PatchJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Patch(path, JSON(fn))
}
