package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"beautycontest/config"
	"beautycontest/contestclient"
)

// runOnce performs the single commit or reveal requested on the command line
// and prints the result to out.
func (s *BeautyContestServer) runOnce(ctx context.Context, fileConfig *config.Config, out io.Writer) error {

	overrides, err := s.Storage.GetEndpoints()
	if err != nil {
		log.WithError(err).Error("Unable to read endpoint overrides")
		return err
	}

	client := contestclient.New(fileConfig.Merge(overrides).Endpoints())

	switch s.phase {
	case contestclient.PHASE_COMMIT:
		res, err := client.DoCommit(ctx, s.uniID, s.number, s.nonce)
		response := ""
		if res != nil {
			fmt.Fprintf(out, "Preimage:   %s\n", res.Preimage)
			fmt.Fprintf(out, "Commitment: %s\n", res.Commitment)
			response = res.Response
		}

		return reportOutcome(out, contestclient.PHASE_COMMIT, response, err)

	case contestclient.PHASE_REVEAL:
		res, err := client.DoReveal(ctx, s.uniID, s.number, s.nonce)
		response := ""
		if res != nil {
			response = res.Response
		}

		return reportOutcome(out, contestclient.PHASE_REVEAL, response, err)
	}

	return fmt.Errorf("unknown phase %q", s.phase)
}

func reportOutcome(out io.Writer, phase, response string, err error) error {

	fmt.Fprintf(out, "Outcome:    %s\n", contestclient.Outcome(err))

	if err != nil {
		fmt.Fprintf(out, "Error:      %s\n", err)
		return err
	}

	if response != "" {
		fmt.Fprintf(out, "Response:   %s\n", response)
	}

	log.WithField("Phase", phase).Info("Done")

	return nil
}
