package playerstats

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindServiceUnavailable ErrorKind = "ServiceUnavailable"
	KindPlayerNotFound     ErrorKind = "PlayerNotFound"
	KindInternal           ErrorKind = "InternalError"
	KindInvalidInput       ErrorKind = "InvalidInput"
)

// QueryError is the structured failure of a player query. Err carries the
// sentinel the caller maps to a transport status.
type QueryError struct {
	Kind             ErrorKind
	Message          string
	RawName          string
	AvailablePlayers []string
	Err              error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// AsQueryError extracts a QueryError from err's chain.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
