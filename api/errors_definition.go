//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the client's fault,
// and they return HTTP Status 400 or 404, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, DON'T fill it in, that code was used in the past and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound           = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody              = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidCredentialSignature = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid credential signature")}
	ErrMalformedElectionID        = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed election ID")}
	ErrElectionNotFound           = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("election not found")}
	ErrElectionNotOpen            = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election is not open for voting")}
	ErrCredentialAlreadyUsed      = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("credential already used")}
	ErrCredentialElectionMismatch = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("credential election mismatch")}
	ErrIssuanceClosed             = Error{Code: 40011, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("credential issuance is closed")}
	ErrInvalidVote                = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid vote request")}
	ErrMalformedPosition          = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed ledger position")}
	ErrInvalidStatusTransition    = Error{Code: 40014, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("invalid election status transition")}
	ErrTrusteeAlreadyRegistered   = Error{Code: 40015, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("trustee already registered")}
	ErrCeremonyClosed             = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("ceremony registration closed")}
	ErrUnknownTrustee             = Error{Code: 40018, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("trustee not registered")}
	ErrInvalidCommitmentShape     = Error{Code: 40019, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid commitment shape")}
	ErrCeremonyAlreadyFinalized   = Error{Code: 40020, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("ceremony already finalized")}
	ErrCeremonyNotInCommitment    = Error{Code: 40021, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("ceremony not in commitment phase")}
	ErrInvalidLedgerPosition      = Error{Code: 40022, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("invalid ledger position")}
	ErrInvalidElectionParams      = Error{Code: 40023, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid election parameters")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
