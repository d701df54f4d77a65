// Package http is the server side of the API: router seam, envelope and server lifecycle
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "agora/internal/platform/errors"
	pnet "agora/internal/platform/net"
)

// Envelope wraps every response body
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return style handlers hand back
// an error Body becomes an error envelope and its status is derived from the error
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

func OK(data any) Response      { return Response{Status: stdhttp.StatusOK, Body: data} }
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }
func NoContent() Response       { return Response{Status: stdhttp.StatusNoContent} }
func Error(err error) Response  { return Response{Body: err} }

// Handle adapts a Response returning func to a Handler
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		for k, vv := range resp.Header {
			w.Header()[k] = append(w.Header()[k], vv...)
		}
		if resp.Status == stdhttp.StatusNoContent {
			w.WriteHeader(resp.Status)
			return
		}
		env := resp.envelope()
		env.RequestID = pnet.RequestID(r.Context())
		JSON(w, env.StatusCode, env)
	}
}

func (resp Response) envelope() Envelope {
	var env Envelope
	status := resp.Status
	if err, ok := resp.Body.(error); ok && err != nil {
		status = perr.HTTPStatus(err)
		wr := perr.WireFrom(err)
		env.Code, env.Error, env.Field, env.Reason = wr.Code, wr.Message, wr.Field, wr.Reason
	} else {
		env.Data = resp.Body
		if status == 0 {
			status = stdhttp.StatusOK
		}
	}
	env.StatusCode, env.Status = status, stdhttp.StatusText(status)
	return env
}
