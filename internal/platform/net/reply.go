package net

import (
	"net/http"

	perr "agora/internal/platform/errors"
)

// Wire is the error envelope middlewares write before a handler runs
// it matches the shape of the http package envelope
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code"`
	Error      string         `json:"error"`
	Field      string         `json:"field,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// Error maps err to a status and envelope
func Error(err error, reqID string) (int, Wire) {
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		Field:      w.Field,
		Reason:     w.Reason,
		RequestID:  reqID,
	}
}
