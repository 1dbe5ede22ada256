// internal/game/errors.go
package game

import (
	"errors"
	"net/http"

	"tablehunt/internal/question"
)

// The engine reports failures as a closed set of sentinel errors. Callers
// match with errors.Is; the HTTP status mapping lives in HTTPStatus so the
// boundary maintains it in exactly one place.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room full")
	ErrAlreadyStarted = errors.New("game already started")
	ErrForbidden      = errors.New("only host can start")
	ErrValidation     = errors.New("invalid input")
	ErrCodeExhausted  = errors.New("could not generate a unique room code")
)

// HTTPStatus maps an engine error to the status code the REST surface
// responds with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrAlreadyStarted), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrCodeExhausted), errors.Is(err, question.ErrInsufficientPool):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
