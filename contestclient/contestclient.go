package contestclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/commitment"
)

const (
	COMMIT_URL_KEY = "COMMIT_URL"
	REVEAL_URL_KEY = "REVEAL_URL"

	REQUEST_TIMEOUT = 10 * time.Second

	// Verifier replies are opaque text; cap what we hold in memory
	MAX_RESPONSE_BYTES = 1 << 20
	TRUNCATED_MARKER   = "...[truncated]"

	PHASE_COMMIT = "commit"
	PHASE_REVEAL = "reveal"
)

// Endpoints are the two verifier URLs. An empty URL disables that phase only.
type Endpoints struct {
	CommitURL string `json:"commit_url"`
	RevealURL string `json:"reveal_url"`
}

// ContestClient runs the commit and reveal phases against a remote verifier.
// It holds no per-participant state; concurrent calls are independent.
type ContestClient struct {
	endpoints Endpoints
	client    *http.Client
}

type CommitRequest struct {
	UniID  string `json:"uni_id"`
	Commit string `json:"commit"`
}

type RevealRequest struct {
	UniID  string `json:"uni_id"`
	Number int    `json:"number"`
	Nonce  string `json:"nonce"`
}

type CommitResult struct {
	RequestID  string `json:"request_id"`
	Preimage   string `json:"preimage"`
	Commitment string `json:"commit"`
	StatusCode int    `json:"status"`
	Response   string `json:"response"`
}

type RevealResult struct {
	RequestID  string `json:"request_id"`
	StatusCode int    `json:"status"`
	Response   string `json:"response"`
}

func New(endpoints Endpoints) *ContestClient {
	return NewWithTimeout(endpoints, REQUEST_TIMEOUT)
}

func NewWithTimeout(endpoints Endpoints, timeout time.Duration) *ContestClient {

	return &ContestClient{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				DisableKeepAlives:   true,
				TLSHandshakeTimeout: timeout,
			},
		},
	}
}

func (c *ContestClient) Endpoints() Endpoints {
	return c.endpoints
}

// DoCommit validates the inputs, builds the commitment and sends
// {uni_id, commit} to the commit endpoint.
//
// When the request was attempted, the returned result carries the preimage
// and commitment even if err is an *ApiError or *NetworkError, so they can
// still be shown to the participant.
func (c *ContestClient) DoCommit(ctx context.Context, identity string, number int, nonce string) (*CommitResult, error) {

	if err := validateInputs(identity, number, nonce); err != nil {
		return nil, err
	}

	if c.endpoints.CommitURL == "" {
		return nil, &ConfigurationError{Key: COMMIT_URL_KEY, Reason: "not set"}
	}

	preimage, commit := commitment.Build(identity, number, nonce)

	result := &CommitResult{
		RequestID:  uuid.NewString(),
		Preimage:   preimage,
		Commitment: commit,
	}

	logger := log.WithFields(log.Fields{
		"RequestID": result.RequestID, "Phase": PHASE_COMMIT, "UniID": identity,
	})
	logger.WithField("Commit", commit).Debug("Built commitment")

	payload := CommitRequest{
		UniID:  identity,
		Commit: commit,
	}

	statusCode, body, err := c.postJSON(ctx, COMMIT_URL_KEY, c.endpoints.CommitURL, payload)
	result.StatusCode = statusCode
	result.Response = body

	if err != nil {
		logger.WithError(err).WithField("Outcome", Outcome(err)).Error("Commit failed")
		return result, err
	}

	logger.WithField("Status", statusCode).Info("Commit sent")

	return result, nil
}

// DoReveal validates the inputs and sends the raw {uni_id, number, nonce} to
// the reveal endpoint. The verifier recomputes the commitment itself; no
// local check is made that a commit preceded this call.
func (c *ContestClient) DoReveal(ctx context.Context, identity string, number int, nonce string) (*RevealResult, error) {

	if err := validateInputs(identity, number, nonce); err != nil {
		return nil, err
	}

	if c.endpoints.RevealURL == "" {
		return nil, &ConfigurationError{Key: REVEAL_URL_KEY, Reason: "not set"}
	}

	result := &RevealResult{
		RequestID: uuid.NewString(),
	}

	logger := log.WithFields(log.Fields{
		"RequestID": result.RequestID, "Phase": PHASE_REVEAL, "UniID": identity,
	})

	payload := RevealRequest{
		UniID:  identity,
		Number: number,
		Nonce:  nonce,
	}

	statusCode, body, err := c.postJSON(ctx, REVEAL_URL_KEY, c.endpoints.RevealURL, payload)
	result.StatusCode = statusCode
	result.Response = body

	if err != nil {
		logger.WithError(err).WithField("Outcome", Outcome(err)).Error("Reveal failed")
		return result, err
	}

	logger.WithFields(log.Fields{
		"Status": statusCode, "Response": body,
	}).Info("Reveal sent")

	return result, nil
}

func validateInputs(identity string, number int, nonce string) error {

	if identity == "" {
		return &ValidationError{Field: "uni_id", Reason: "missing required field"}
	}

	if nonce == "" {
		return &ValidationError{Field: "nonce", Reason: "missing required field"}
	}

	if !commitment.ValidNumber(number) {
		return &ValidationError{Field: "number", Reason: "number must be between 0 and 100"}
	}

	return nil
}

// postJSON sends payload and classifies the reply. Status code and body are
// returned whenever a response was received.
func (c *ContestClient) postJSON(ctx context.Context, urlKey, url string, payload interface{}) (int, string, error) {

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, "", errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, "", &ConfigurationError{Key: urlKey, Reason: "is not a valid URL: " + err.Error()}
	}

	// Scheme-less or non-HTTP URLs parse fine but can never be dialed
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return 0, "", &ConfigurationError{Key: urlKey, Reason: "must be an http or https URL: " + url}
	}
	if req.URL.Host == "" {
		return 0, "", &ConfigurationError{Key: urlKey, Reason: "has no host: " + url}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")

	log.WithFields(log.Fields{
		"URL": url, "Payload": string(payloadBytes),
	}).Trace("Sending request")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", &NetworkError{Cause: errors.Wrap(err, "failed to execute request")}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, MAX_RESPONSE_BYTES+1))
	if err != nil {
		return resp.StatusCode, "", &NetworkError{Cause: errors.Wrap(err, "could not read response body")}
	}

	body := string(bodyBytes)
	if len(bodyBytes) > MAX_RESPONSE_BYTES {
		body = string(bodyBytes[:MAX_RESPONSE_BYTES]) + TRUNCATED_MARKER
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, body, &ApiError{StatusCode: resp.StatusCode, Body: body}
	}

	return resp.StatusCode, body, nil
}
