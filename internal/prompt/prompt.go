// Package prompt assembles completion prompts from ambient world facts
// and conversation history. Everything here is pure: no I/O, no shared
// state, same inputs always produce the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"gpt-commenter/internal/gameevent"
	"gpt-commenter/internal/history"
)

// Prompt carries the assembled system context and the user message. The
// user message passes through unchanged. Prompts are ephemeral and never
// retained after the request completes.
type Prompt struct {
	SystemContext string
	UserMessage   string
}

const noHistory = "No previous messages."

// Chat builds the context-enriched prompt for a conversational message.
func Chat(ev gameevent.Event, msgs []history.Message) Prompt {
	f := ev.Facts
	timeOfDay := "night"
	if f.IsDay {
		timeOfDay = "day"
	}
	system := fmt.Sprintf(
		"You are a helpful AI assistant inside a Minecraft server. "+
			"You're conversing with %s. "+
			"Current server details: %d players online, running %s. "+
			"World '%s' is currently experiencing %s time. "+
			"Player is in %s biome. "+
			"Player's inventory: %s. "+
			"Recent conversation: %s "+
			"Be concise, funny, and helpful.",
		ev.DisplayName, f.OnlinePlayers, f.ServerVersion, f.WorldName, timeOfDay, f.Biome,
		InventorySummary(f.Inventory), HistorySummary(msgs),
	)
	return Prompt{SystemContext: system, UserMessage: ev.Payload}
}

// Simple wraps a raw command prompt with no system context.
func Simple(text string) Prompt {
	return Prompt{UserMessage: text}
}

func Join(displayName string) Prompt {
	return Simple(fmt.Sprintf(
		"Generate a short greeting of the player %s on the Minecraft server.",
		displayName,
	))
}

func Death(displayName, cause string) Prompt {
	return Simple(fmt.Sprintf(
		"Generate a funny short message about the death of %s on the Minecraft server. Player died because %s.",
		displayName, cause,
	))
}

func Advancement(displayName, advancement string) Prompt {
	return Simple(fmt.Sprintf(
		"Generate a short message congratulating %s for earning the advancement %s on the Minecraft server.",
		displayName, advancement,
	))
}

// InventorySummary aggregates occupied slots into "<count> <name>"
// entries joined by ", ", with item names lowercased and underscores
// replaced by spaces. Stacks of the same item are summed; names appear
// in first-seen order. An empty inventory renders as "empty".
func InventorySummary(items []gameevent.ItemStack) string {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		if it.Type == "" || it.Count <= 0 {
			continue
		}
		name := strings.ReplaceAll(strings.ToLower(it.Type), "_", " ")
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name] += it.Count
	}
	if len(order) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[name], name))
	}
	return strings.Join(parts, ", ")
}

// HistorySummary renders a history snapshot as "sender: content" lines
// joined by " | ", or a fixed sentinel when there is no history.
func HistorySummary(msgs []history.Message) string {
	if len(msgs) == 0 {
		return noHistory
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Sender+": "+m.Content)
	}
	return strings.Join(parts, " | ")
}
