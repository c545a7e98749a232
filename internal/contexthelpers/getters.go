package contexthelpers

import (
	"context"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

// AgentSessionID is the id of the conversation with the agents, shared by every target.
func AgentSessionID(ctx context.Context) string {
	sessionID, ok := ctx.Value(agentSessionIDContextKey).(string)
	if !ok {
		return ""
	}

	return sessionID
}
