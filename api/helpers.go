package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/trustcore/log"
	"github.com/vocdoni/trustcore/types"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// electionIDParam extracts and decodes the election ID URL parameter. The
// second return value is false when the ID is malformed, in which case
// the error response has already been written.
func electionIDParam(w http.ResponseWriter, r *http.Request) (types.HexBytes, bool) {
	raw := chi.URLParam(r, ElectionURLParam)
	id := types.HexBytes{}
	if err := id.SetString(raw); err != nil {
		ErrMalformedElectionID.Withf("%q", raw).Write(w)
		return nil, false
	}
	return id, true
}

// positionParam extracts the ledger position URL parameter.
func positionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, PositionURLParam)
	position, err := strconv.Atoi(raw)
	if err != nil || position < 0 {
		ErrMalformedPosition.Withf("%q", raw).Write(w)
		return 0, false
	}
	return position, true
}
