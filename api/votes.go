package api

import (
	"encoding/json"
	"net/http"

	"github.com/vocdoni/trustcore/protocol"
	"github.com/vocdoni/trustcore/types"
)

// LedgerRootResponse is the body of GET /elections/{electionId}/root.
type LedgerRootResponse struct {
	Root      types.HexBytes `json:"root"`
	VoteCount int            `json:"voteCount"`
}

// submitVote handles POST /elections/{electionId}/votes.
func (a *API) submitVote(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	req := &protocol.VoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	receipt, err := a.protocol.SubmitVote(r.Context(), id, req)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, receipt)
}

// ledgerRoot handles GET /elections/{electionId}/root.
func (a *API) ledgerRoot(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	root, err := a.protocol.Root(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	count, err := a.protocol.VoteCount(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, LedgerRootResponse{Root: root, VoteCount: count})
}

// ledgerProof handles GET /elections/{electionId}/votes/{position}/proof.
func (a *API) ledgerProof(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	position, ok := positionParam(w, r)
	if !ok {
		return
	}
	proof, err := a.protocol.LedgerProof(id, position)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, proof)
}

// snapshot handles POST /elections/{electionId}/snapshot.
func (a *API) snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	snap, err := a.protocol.Snapshot(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, snap)
}
