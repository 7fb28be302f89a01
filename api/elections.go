package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/trustcore/protocol"
	"github.com/vocdoni/trustcore/types"
)

// CreateElectionRequest is the body of POST /elections.
type CreateElectionRequest struct {
	OrganizationID string    `json:"organizationId"`
	Nonce          uint64    `json:"nonce"`
	ChainID        uint32    `json:"chainId"`
	Threshold      int       `json:"threshold"`
	MaxTrustees    int       `json:"maxTrustees"`
	CurveType      string    `json:"curveType,omitempty"`
	StartTime      time.Time `json:"startTime,omitempty"`
	// Duration is expressed in seconds.
	Duration int64 `json:"duration,omitempty"`
}

// ElectionListResponse is the body of GET /elections.
type ElectionListResponse struct {
	Elections []types.HexBytes `json:"elections"`
}

// createElection handles POST /elections.
func (a *API) createElection(w http.ResponseWriter, r *http.Request) {
	req := CreateElectionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if req.Threshold < 2 {
		ErrInvalidElectionParams.Withf("threshold %d", req.Threshold).Write(w)
		return
	}
	if !common.IsHexAddress(req.OrganizationID) {
		ErrInvalidElectionParams.Withf("organization %q", req.OrganizationID).Write(w)
		return
	}
	election, err := a.protocol.CreateElection(&protocol.ElectionParams{
		OrganizationID: common.HexToAddress(req.OrganizationID),
		Nonce:          req.Nonce,
		ChainID:        req.ChainID,
		Threshold:      req.Threshold,
		MaxTrustees:    req.MaxTrustees,
		CurveType:      req.CurveType,
		StartTime:      req.StartTime,
		Duration:       time.Duration(req.Duration) * time.Second,
	})
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, election)
}

// listElections handles GET /elections.
func (a *API) listElections(w http.ResponseWriter, r *http.Request) {
	ids, err := a.protocol.ListElections()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	resp := ElectionListResponse{Elections: []types.HexBytes{}}
	for _, id := range ids {
		resp.Elections = append(resp.Elections, id)
	}
	httpWriteJSON(w, resp)
}

// election handles GET /elections/{electionId}.
func (a *API) election(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	election, err := a.protocol.Election(id)
	if err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteJSON(w, election)
}

// SetStatusRequest is the body of PUT /elections/{electionId}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// setElectionStatus handles PUT /elections/{electionId}/status.
func (a *API) setElectionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := electionIDParam(w, r)
	if !ok {
		return
	}
	req := SetStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	status, err := types.ElectionStatusFromString(req.Status)
	if err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if err := a.protocol.SetElectionStatus(id, status); err != nil {
		protocolError(err).Write(w)
		return
	}
	httpWriteOK(w)
}
