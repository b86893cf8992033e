package messaging

// ============================================================================
// Messaging Types
// ============================================================================

// Message is one unit of inter-agent communication. It is the only entity this
// system creates; after creation only the read flag is ever mutated.
type Message struct {
	ID               string   `json:"id"`
	FromLobeID       string   `json:"from_lobe_id"`
	FromName         string   `json:"from_name"`
	FromGlyph        string   `json:"from_glyph,omitempty"`
	FromSubstrate    string   `json:"from_substrate"`
	FromNodeType     string   `json:"from_node_type"`
	ToLobeID         string   `json:"to_lobe_id"`
	Message          string   `json:"message"`
	Channel          string   `json:"channel"`
	Timestamp        string   `json:"timestamp"`
	SessionID        string   `json:"session_id"`
	ContextMemoryIDs []string `json:"context_memory_ids"`
	ReplyToID        *string  `json:"reply_to_id"`
	Read             bool     `json:"read"`
	// CoherenceMarker is written by an external producer; this system only
	// passes it through.
	CoherenceMarker string `json:"coherence_marker,omitempty"`
}

// SendInput carries the fields accepted by Send. FromLobeID, FromName,
// ToLobeID and Message are required; the rest default per the messaging
// contract.
type SendInput struct {
	FromLobeID       string   `json:"from_lobe_id"`
	FromName         string   `json:"from_name"`
	FromGlyph        string   `json:"from_glyph"`
	FromSubstrate    string   `json:"from_substrate"`
	FromNodeType     string   `json:"from_node_type"`
	ToLobeID         string   `json:"to_lobe_id"`
	Message          string   `json:"message"`
	Channel          string   `json:"channel"`
	SessionID        string   `json:"session_id"`
	ContextMemoryIDs []string `json:"context_memory_ids"`
	ReplyToID        string   `json:"reply_to_id"`
}

// SendResult is returned by Send: the generated id and creation timestamp.
type SendResult struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

// ChannelInfo summarizes one implicit channel (a distinct channel value).
type ChannelInfo struct {
	Channel      string `json:"channel"`
	MessageCount int64  `json:"message_count"`
	LastActivity string `json:"last_activity"`
}

// SessionInfo summarizes one implicit session grouping.
type SessionInfo struct {
	SessionID    string `json:"session_id"`
	Channel      string `json:"channel"`
	MessageCount int64  `json:"message_count"`
	StartedAt    string `json:"started_at"`
	LastActivity string `json:"last_activity"`
}

// LobeActivity summarizes one sender's messaging activity.
type LobeActivity struct {
	LobeID       string `json:"lobe_id"`
	Name         string `json:"name"`
	Substrate    string `json:"substrate"`
	MessageCount int64  `json:"message_count"`
	LastActivity string `json:"last_activity"`
}

// Stats is the messaging statistics rollup. The aggregate counts and the lobe
// activity list come from two separate queries with no transactional coupling,
// so a concurrent send can make them momentarily inconsistent.
type Stats struct {
	TotalMessages int64          `json:"total_messages"`
	ChannelCount  int64          `json:"channel_count"`
	SessionCount  int64          `json:"session_count"`
	LobeCount     int64          `json:"lobe_count"`
	UnreadCount   int64          `json:"unread_count"`
	Lobes         []LobeActivity `json:"lobes"`
}
