package webserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/contestclient"
)

// Body of POST /api/commit and /api/reveal
type actionRequest struct {
	UniID  string `json:"uni_id"`
	Number *int   `json:"number"`
	Nonce  string `json:"nonce"`
}

type actionResponse struct {
	Outcome    string `json:"outcome"`
	RequestID  string `json:"request_id,omitempty"`
	Preimage   string `json:"preimage,omitempty"`
	Commitment string `json:"commit,omitempty"`
	Status     int    `json:"status,omitempty"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (ws *WebServer) health(w http.ResponseWriter, r *http.Request) {
	apiReturnOk(w)
}

//
// Commit phase: build the commitment and send {uni_id, commit}
func (ws *WebServer) doCommit(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - doCommit")

	// CORS preflight handled by middleware
	if r.Method == http.MethodOptions {
		return
	}

	req, ok := decodeActionRequest(w, r)
	if !ok {
		return
	}

	client, err := ws.newContestClient()
	if err != nil {
		apiError(errors.Wrap(err, "Unable to load endpoints"), w)
		return
	}

	res, err := client.DoCommit(detachedContext(r), req.UniID, *req.Number, req.Nonce)

	out := actionResponse{
		Outcome: contestclient.Outcome(err),
	}
	if res != nil {
		out.RequestID = res.RequestID
		out.Preimage = res.Preimage
		out.Commitment = res.Commitment
		out.Status = res.StatusCode
		out.Response = res.Response
	}

	apiReturnAction(w, out, err)
}

//
// Reveal phase: send the raw {uni_id, number, nonce}
func (ws *WebServer) doReveal(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - doReveal")

	if r.Method == http.MethodOptions {
		return
	}

	req, ok := decodeActionRequest(w, r)
	if !ok {
		return
	}

	client, err := ws.newContestClient()
	if err != nil {
		apiError(errors.Wrap(err, "Unable to load endpoints"), w)
		return
	}

	res, err := client.DoReveal(detachedContext(r), req.UniID, *req.Number, req.Nonce)

	out := actionResponse{
		Outcome: contestclient.Outcome(err),
	}
	if res != nil {
		out.RequestID = res.RequestID
		out.Status = res.StatusCode
		out.Response = res.Response
	}

	apiReturnAction(w, out, err)
}

// detachedContext keeps request values but not cancellation: once sent, an
// action runs to completion or the client timeout even if the browser leaves.
func detachedContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// newContestClient resolves the endpoints for this request only; nothing is
// shared between requests.
func (ws *WebServer) newContestClient() (*contestclient.ContestClient, error) {

	endpoints, err := ws.currentEndpoints()
	if err != nil {
		return nil, err
	}

	return contestclient.NewWithTimeout(endpoints, ws.clientTimeout), nil
}

func decodeActionRequest(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {

	var req actionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiReturnAction(w, actionResponse{Outcome: contestclient.OUTCOME_VALIDATION_ERROR},
			&contestclient.ValidationError{Field: "body", Reason: "invalid request: " + err.Error()})
		return req, false
	}

	if req.Number == nil {
		apiReturnAction(w, actionResponse{Outcome: contestclient.OUTCOME_VALIDATION_ERROR},
			&contestclient.ValidationError{Field: "number", Reason: "missing required field"})
		return req, false
	}

	return req, true
}

func statusForOutcome(outcome string, err error) int {

	switch outcome {
	case contestclient.OUTCOME_SUCCESS:
		return http.StatusOK
	case contestclient.OUTCOME_VALIDATION_ERROR:
		return http.StatusBadRequest
	case contestclient.OUTCOME_CONFIGURATION_ERROR:
		return http.StatusServiceUnavailable
	}

	var netErr *contestclient.NetworkError
	if errors.As(err, &netErr) && netErr.Timeout() {
		return http.StatusGatewayTimeout
	}

	return http.StatusBadGateway
}

func apiReturnAction(w http.ResponseWriter, out actionResponse, err error) {

	if err != nil {
		out.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForOutcome(out.Outcome, err))

	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.WithError(err).Error("UI Return Encode Failure")
	}
}

func apiError(err error, w http.ResponseWriter) {

	e, _ := json.Marshal(ApiError{Error: err.Error()})
	http.Error(w, string(e), http.StatusBadRequest)
}

func apiReturnOk(w http.ResponseWriter) {

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]bool{"ok": true}); err != nil {
		log.WithError(err).Error("UI Return Encode Failure")
	}
}
