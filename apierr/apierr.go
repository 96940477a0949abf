// Package apierr enthält die Fehlertaxonomie des Graph-Backends.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind klassifiziert einen Fehler.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: referenzierter Datensatz existiert nicht.
	KindNotFound
	// KindValidation: strukturell ungültige Eingabe.
	KindValidation
	// KindEmptyResult: Ergebnis ist leer. Kein Fehlschlag, sondern "keine Daten".
	KindEmptyResult
	// KindPersistence: Lesen oder Schreiben im Store ist fehlgeschlagen.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindEmptyResult:
		return "empty_result"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is erlaubt errors.Is gegen Sentinels gleicher Art und gleicher Ursache.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == e.Op && errors.Is(e.Err, t.Err)
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op string, err error) *Error    { return New(KindNotFound, op, err) }
func Validation(op string, err error) *Error  { return New(KindValidation, op, err) }
func EmptyResult(op string, err error) *Error { return New(KindEmptyResult, op, err) }
func Persistence(op string, err error) *Error { return New(KindPersistence, op, err) }

// KindOf liefert die Art des ersten *Error in der Kette.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsEmptyResult(err error) bool { return KindOf(err) == KindEmptyResult }
func IsPersistence(err error) bool { return KindOf(err) == KindPersistence }

// HTTPStatus bildet die Fehlerart auf einen HTTP-Status ab.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindEmptyResult:
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
