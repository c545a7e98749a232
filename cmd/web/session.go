package main

import (
	"encoding/gob"

	"github.com/myrjola/jigsawroom/internal/challenge"
)

func init() {
	gob.Register(challenge.Extra{}) //nolint:exhaustruct // type registration
}

const (
	agentSessionIDSessionKey = "agentSessionID"
	// selectedAgentsSessionKey holds the collaborator IDs the supervisor is told about. Absent means all.
	selectedAgentsSessionKey = "selectedAgents"
	// selectedChallengeSessionKey holds the challenge.Extra loaded as the prompt.
	selectedChallengeSessionKey = "selectedChallenge"
	// challengeKeySessionKey holds the answer key of the selected workshop challenge.
	challengeKeySessionKey = "challengeKey"
	// flashSessionKey holds the verdict of the last answer until it has been shown.
	flashSessionKey = "flash"
)
