// Package admin exposes the thin operator surface over the orchestrator
// core. Authorization is the caller's concern.
package admin

import (
	"fmt"
	"strings"

	"gpt-commenter/internal/orchestrator"
)

type Handler struct {
	orch *orchestrator.Orchestrator
}

func NewHandler(o *orchestrator.Orchestrator) *Handler {
	return &Handler{orch: o}
}

// Execute parses one admin command line and returns the operator-facing
// result. Unknown commands return the help text.
func (h *Handler) Execute(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return h.help()
	}

	switch strings.ToLower(fields[0]) {
	case "status":
		s := h.orch.Status()
		return fmt.Sprintf("requests: total=%d success=%d failed=%d unique_users=%d",
			s.Total, s.Success, s.Failed, s.UniqueUsers)
	case "reload":
		if err := h.orch.Reload(); err != nil {
			return "Error reloading configuration: " + err.Error()
		}
		return "Configuration reloaded successfully!"
	case "reset":
		if len(fields) < 2 {
			return "Usage: reset <user>"
		}
		user := fields[1]
		h.orch.ResetHistory(user)
		h.orch.ResetRateLimit(user)
		return "Chat history and rate limits have been reset for " + user + "."
	default:
		return h.help()
	}
}

func (h *Handler) help() string {
	return strings.Join([]string{
		"Available commands:",
		"  status        - show request counters",
		"  reload        - reload configuration and rebuild the completion client",
		"  reset <user>  - reset a user's chat history and rate limits",
		"  help          - show this help message",
	}, "\n")
}
