package gameevent

// Kind tags an inbound server event.
type Kind string

const (
	KindJoin        Kind = "join"
	KindDeath       Kind = "death"
	KindAdvancement Kind = "advancement"
	KindChat        Kind = "chat"
	KindCommand     Kind = "command"
	KindQuit        Kind = "quit"
	KindAdmin       Kind = "admin"
)

// ItemStack is one occupied inventory slot.
type ItemStack struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Facts are read-only world/server details captured when the event fired.
// They only enrich prompts and are never written back to the server.
type Facts struct {
	WorldName     string      `json:"world_name"`
	OnlinePlayers int         `json:"online_players"`
	ServerVersion string      `json:"server_version"`
	IsDay         bool        `json:"is_day"`
	Biome         string      `json:"biome"`
	Inventory     []ItemStack `json:"inventory"`
}

// Event is the shared envelope for all event kinds. Payload depends on
// the kind: raw chat text, death cause, advancement key, command text,
// or an admin subcommand line.
type Event struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Kind        Kind   `json:"kind"`
	Payload     string `json:"payload"`
	Facts       Facts  `json:"facts"`
}
