package httputils

import (
	"encoding/json"
	"net/http"

	"github.com/nvellon/hal"

	"kairosvote.io/kairos/lib/errors"
)

type HALResource interface {
	Resource() *hal.Resource
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	if h, ok := v.(HALResource); ok {
		w.Header().Set("Content-Type", "application/hal+json")
		v = h.Resource()
	} else if e, ok := v.(error); ok {
		w.Header().Set("Content-Type", "application/problem+json")
		v = NewErrorProblem(e, code)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(code)

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := w.Write(bs); err != nil {
		return err
	}

	return nil
}

// WriteJSONError writes err with the status mapped from the error code.
func WriteJSONError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusCode(err), err)
}

// NewErrorProblem wraps any error into an RFC 7807 problem document.
func NewErrorProblem(err error, code int) errors.Problem {
	if e, ok := err.(*errors.Error); ok {
		return errors.NewErrorProblem(e, code)
	}
	return errors.NewDetailedStatusProblem(code, err.Error())
}
