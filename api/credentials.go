package api

import (
	"encoding/json"
	"net/http"
)

// CredentialRequest is the body of POST /elections/{electionId}/credentials.
// Blinded is the blinded credential message as minimal hex.
type CredentialRequest struct {
	Blinded string `json:"blinded"`
}

// authorityKey handles GET /elections/{electionId}/key.
func (a *API) authorityKey(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	pub, err := a.protocol.AuthorityPublicKey(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, pub)
}

// issueCredential handles POST /elections/{electionId}/credentials. The
// authority signs the blinded message without ever seeing the credential.
func (a *API) issueCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	req := CredentialRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if req.Blinded == "" {
		ErrMalformedBody.With("missing blinded message").Write(w)
		return
	}
	issued, err := a.protocol.IssueCredential(id, req.Blinded)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, issued)
}
