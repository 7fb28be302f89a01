package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vocdoni/trustcore/ceremony"
	"github.com/vocdoni/trustcore/ledger"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/protocol"
)

// Error is used by handler functions to wrap errors, assigning a unique error code
// and also specifying which HTTP Status should be used.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// MarshalJSON returns a JSON containing Err.Error() and Code. Field HTTPstatus is ignored.
//
// Example output: {"error":"election not found","code":40007}
func (e Error) MarshalJSON() ([]byte, error) {
	// This anon struct is needed to actually include the error string,
	// since it wouldn't be marshaled otherwise. (json.Marshal doesn't call Err.Error())
	return json.Marshal(
		struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{
			Err:  e.Err.Error(),
			Code: e.Code,
		})
}

// Error returns the message contained inside the api Error
func (e Error) Error() string {
	return e.Err.Error()
}

// Write serializes the error as JSON and sends it with its HTTP status.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	if log.Level() == log.LogLevelDebug {
		log.Debugw("API error response", "error", e.Error(), "code", e.Code, "httpStatus", e.HTTPstatus)
	}
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, string(msg), e.HTTPstatus)
}

// Withf returns a copy of Error with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, fmt.Sprintf(format, args...)),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// With returns a copy of Error with the string appended at the end of e.Err
func (e Error) With(s string) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, s),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// WithErr returns a copy of Error with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, err.Error()),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// protocolError maps the sentinel errors of the lower layers to their
// stable API error codes. Clients dispatch on the code, so the mapping
// must never change for an existing sentinel.
func protocolError(err error) Error {
	switch {
	case errors.Is(err, protocol.ErrElectionNotFound):
		return ErrElectionNotFound.WithErr(err)
	case errors.Is(err, protocol.ErrElectionNotOpen):
		return ErrElectionNotOpen.WithErr(err)
	case errors.Is(err, protocol.ErrIssuanceClosed):
		return ErrIssuanceClosed.WithErr(err)
	case errors.Is(err, protocol.ErrCredentialElectionMismatch):
		return ErrCredentialElectionMismatch.WithErr(err)
	case errors.Is(err, protocol.ErrInvalidCredentialSignature):
		return ErrInvalidCredentialSignature.WithErr(err)
	case errors.Is(err, protocol.ErrCredentialAlreadyUsed):
		return ErrCredentialAlreadyUsed.WithErr(err)
	case errors.Is(err, protocol.ErrInvalidVote):
		return ErrInvalidVote.WithErr(err)
	case errors.Is(err, protocol.ErrInvalidStatusTransition):
		return ErrInvalidStatusTransition.WithErr(err)
	case errors.Is(err, ceremony.ErrDuplicateRegistration):
		return ErrTrusteeAlreadyRegistered.WithErr(err)
	case errors.Is(err, ceremony.ErrCeremonyClosed):
		return ErrCeremonyClosed.WithErr(err)
	case errors.Is(err, ceremony.ErrUnknownTrustee):
		return ErrUnknownTrustee.WithErr(err)
	case errors.Is(err, ceremony.ErrInvalidCommitmentShape):
		return ErrInvalidCommitmentShape.WithErr(err)
	case errors.Is(err, ceremony.ErrCeremonyAlreadyFinalized):
		return ErrCeremonyAlreadyFinalized.WithErr(err)
	case errors.Is(err, ceremony.ErrNotInCommitmentPhase):
		return ErrCeremonyNotInCommitment.WithErr(err)
	case errors.Is(err, ledger.ErrInvalidPosition):
		return ErrInvalidLedgerPosition.WithErr(err)
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}
