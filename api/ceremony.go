package api

import (
	"encoding/json"
	"net/http"

	"github.com/vocdoni/trustcore/ceremony"
	"github.com/vocdoni/trustcore/types"
)

// TrusteeRequest is the body of POST /elections/{electionId}/trustees.
type TrusteeRequest struct {
	Name      string         `json:"name"`
	PublicKey types.HexBytes `json:"publicKey"`
}

// CommitmentRequest is the body of POST /elections/{electionId}/commitments.
type CommitmentRequest struct {
	TrusteeID      string                `json:"trusteeId"`
	CommitmentHash types.HexBytes        `json:"commitmentHash"`
	Commitments    []ceremony.Commitment `json:"commitments"`
}

// registerTrustee handles POST /elections/{electionId}/trustees.
func (a *API) registerTrustee(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	req := TrusteeRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if len(req.PublicKey) == 0 {
		ErrMalformedBody.With("missing trustee public key").Write(w)
		return
	}
	trustee, err := a.protocol.RegisterTrustee(id, req.Name, req.PublicKey)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, trustee)
}

// trustees handles GET /elections/{electionId}/trustees.
func (a *API) trustees(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	list, err := a.protocol.Trustees(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, list)
}

// submitCommitment handles POST /elections/{electionId}/commitments.
func (a *API) submitCommitment(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	req := CommitmentRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	status, err := a.protocol.SubmitCommitment(id, req.TrusteeID, req.CommitmentHash, req.Commitments)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, status)
}

// ceremonyStatus handles GET /elections/{electionId}/ceremony.
func (a *API) ceremonyStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	status, err := a.protocol.CeremonyStatus(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, status)
}
