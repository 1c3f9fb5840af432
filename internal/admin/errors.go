package admin

import (
	"github.com/rotisserie/eris"

	"wanderfolio/app/internal/content"
)

// Sentinel errors returned by the gateway before any store access. The HTTP
// layer maps ErrUnauthorized to 401, the rest of these to 400, and anything
// else to 500 with the raw message passed through.
var (
	ErrUnauthorized  = eris.New("Invalid passcode")
	ErrInvalidTable  = eris.New("Invalid table")
	ErrInvalidAction = eris.New("Invalid action")
	ErrMissingFile   = eris.New("No file provided")
	ErrMissingData   = eris.New("Missing data payload")
	ErrMissingID     = eris.New("Missing record id")
)

// IsBadRequest reports whether the error is a client-side request defect.
func IsBadRequest(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidTable,
		ErrInvalidAction,
		ErrMissingFile,
		ErrMissingData,
		ErrMissingID,
		content.ErrUnknownColumn,
	} {
		if eris.Is(err, sentinel) {
			return true
		}
	}
	return false
}
