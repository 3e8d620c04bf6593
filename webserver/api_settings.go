package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/commitment"
	"beautycontest/contestclient"
)

// currentEndpoints merges the endpoint file with overrides saved from the UI.
func (ws *WebServer) currentEndpoints() (contestclient.Endpoints, error) {

	if ws.storage == nil {
		return ws.fileConfig.Endpoints(), nil
	}

	overrides, err := ws.storage.GetEndpoints()
	if err != nil {
		return contestclient.Endpoints{}, err
	}

	return ws.fileConfig.Merge(overrides).Endpoints(), nil
}

func (ws *WebServer) getSettings(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - GetSettings")

	endpoints, err := ws.currentEndpoints()
	if err != nil {
		apiError(errors.Wrap(err, "Cannot get endpoints"), w)
		return
	}

	// Lets the UI notice settings changed since it last loaded them
	revision, err := ws.settingsRevision()
	if err != nil {
		apiError(errors.Wrap(err, "Cannot get settings revision"), w)
		return
	}

	log.WithFields(log.Fields{
		"Endpoints": endpoints, "Revision": revision,
	}).Debug("API Settings Endpoints")

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"endpoints":       endpoints,
		"commitAvailable": endpoints.CommitURL != "",
		"revealAvailable": endpoints.RevealURL != "",
		"revision":        revision,
	}); err != nil {
		log.WithError(err).Error("UI Return Encode Failure")
	}
}

//
// Save endpoint overrides; an empty value clears the override and falls
// back to the endpoint file
func (ws *WebServer) saveSettings(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - SaveSettings")

	if r.Method == http.MethodOptions {
		return
	}

	if ws.storage == nil {
		apiError(errors.New("Settings storage unavailable"), w)
		return
	}

	var k map[string]string

	if err := json.NewDecoder(r.Body).Decode(&k); err != nil {
		apiError(errors.Wrap(err, "Cannot decode body for settings"), w)
		return
	}

	// All keys are validated before anything is written
	if err := ws.storage.SetEndpoints(k); err != nil {
		log.WithError(err).Error("API SaveSettings")
		apiError(errors.Wrap(err, "Cannot save endpoints"), w)

		return
	}

	revision, err := ws.settingsRevision()
	if err != nil {
		apiError(errors.Wrap(err, "Cannot get settings revision"), w)
		return
	}

	log.WithFields(log.Fields{
		"Endpoints": k, "Revision": revision,
	}).Info("Saved endpoint overrides")

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":       true,
		"revision": revision,
	}); err != nil {
		log.WithError(err).Error("UI Return Encode Failure")
	}
}

func (ws *WebServer) settingsRevision() (int, error) {

	if ws.storage == nil {
		return 0, nil
	}

	return ws.storage.GetEndpointsRevision()
}

func (ws *WebServer) suggestNonce(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - SuggestNonce")

	nonce, err := commitment.GenerateNonce()
	if err != nil {
		apiError(errors.Wrap(err, "Unable to generate nonce"), w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if err := json.NewEncoder(w).Encode(map[string]string{
		"nonce": nonce,
	}); err != nil {
		log.WithError(err).Error("UI Return Encode Failure")
	}
}
