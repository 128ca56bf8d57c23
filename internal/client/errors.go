package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Category groups backend failures by how the caller should react.
type Category string

const (
	CategoryBusiness     Category = "business"     // 400, 409
	CategoryUnauthorized Category = "unauthorized" // 401
	CategoryForbidden    Category = "forbidden"    // 403
	CategoryNotFound     Category = "not_found"    // 404
	CategoryValidation   Category = "validation"   // 422
	CategoryServer       Category = "server"       // 5xx and anything else
)

const (
	MsgInvalidCredentials = "Usuario o contraseña incorrectos"
	MsgForbidden          = "No tienes permisos para realizar esta acción"
	MsgValidation         = "Error de validacion"
	MsgGeneric            = "Error al procesar la solicitud"
)

// Issue is one entry of a list-shaped validation detail.
type Issue struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Error is a non-2xx response decoded from the backend envelope.
type Error struct {
	Status   int
	Category Category
	Detail   string
	Fields   map[string]string
	Issues   []Issue
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Category, e.Message())
}

// Message is the text to show the user for this error.
func (e *Error) Message() string {
	switch e.Category {
	case CategoryForbidden:
		return MsgForbidden
	case CategoryUnauthorized:
		if e.Detail != "" {
			return e.Detail
		}
		return MsgInvalidCredentials
	case CategoryValidation:
		if len(e.Fields) > 0 {
			keys := make([]string, 0, len(e.Fields))
			for k := range e.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			msgs := make([]string, 0, len(keys))
			for _, k := range keys {
				msgs = append(msgs, e.Fields[k])
			}
			return strings.Join(msgs, ". ")
		}
		if len(e.Issues) > 0 {
			msgs := make([]string, 0, len(e.Issues))
			for _, is := range e.Issues {
				msgs = append(msgs, is.Msg)
			}
			return strings.Join(msgs, ". ")
		}
		if e.Detail != "" {
			return e.Detail
		}
		return MsgValidation
	}
	if e.Detail != "" {
		return e.Detail
	}
	return MsgGeneric
}

// FieldMessages returns the per-field messages, folding list-shaped issues
// under the last element of their loc.
func (e *Error) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields)+len(e.Issues))
	for k, v := range e.Fields {
		out[k] = v
	}
	for _, is := range e.Issues {
		if len(is.Loc) == 0 {
			continue
		}
		if k, ok := is.Loc[len(is.Loc)-1].(string); ok {
			if _, seen := out[k]; !seen {
				out[k] = is.Msg
			}
		}
	}
	return out
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

// CategoryOf returns the category of err, or "" for transport failures.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

func categorize(status int) Category {
	switch status {
	case http.StatusBadRequest, http.StatusConflict:
		return CategoryBusiness
	case http.StatusUnauthorized:
		return CategoryUnauthorized
	case http.StatusForbidden:
		return CategoryForbidden
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusUnprocessableEntity:
		return CategoryValidation
	}
	return CategoryServer
}

// decodeError reads the {detail, fields} envelope. detail may be a string or
// a list of {loc, msg}; unreadable bodies still yield a categorised Error.
func decodeError(resp *http.Response) *Error {
	e := &Error{Status: resp.StatusCode, Category: categorize(resp.StatusCode)}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return e
	}
	var env struct {
		Detail json.RawMessage   `json:"detail"`
		Fields map[string]string `json:"fields"`
	}
	if json.Unmarshal(raw, &env) != nil {
		return e
	}
	e.Fields = env.Fields
	if len(env.Detail) == 0 {
		return e
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		e.Detail = s
		return e
	}
	var issues []Issue
	if json.Unmarshal(env.Detail, &issues) == nil {
		e.Issues = issues
	}
	return e
}
