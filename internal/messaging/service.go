package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"neurograph/pkg/errors"
	"neurograph/pkg/logger"
)

// QueryRunner is the slice of the graph store client the messaging component
// depends on.
type QueryRunner interface {
	Run(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error)
}

// Service creates, enumerates and mutates message records and computes the
// derived channel/session/lobe aggregates.
type Service struct {
	store  QueryRunner
	logger *zap.Logger
}

// NewService creates a messaging service over a graph store client.
func NewService(store QueryRunner) *Service {
	return &Service{
		store:  store,
		logger: logger.Get(),
	}
}

const (
	defaultChannel   = "general"
	defaultSubstrate = "carbon"
	defaultNodeType  = "human"
	defaultListLimit = 50
	sessionListCap   = 20
)

// messageReturn is the shared RETURN clause for message queries.
const messageReturn = `
	RETURN m.id AS id, m.from_lobe_id AS from_lobe_id, m.from_name AS from_name,
	       m.from_glyph AS from_glyph, m.from_substrate AS from_substrate,
	       m.from_node_type AS from_node_type, m.to_lobe_id AS to_lobe_id,
	       m.message AS message, m.channel AS channel, m.timestamp AS timestamp,
	       m.session_id AS session_id, m.context_memory_ids AS context_memory_ids,
	       m.reply_to_id AS reply_to_id, coalesce(m.read, false) AS read,
	       m.coherence_marker AS coherence_marker
`

// ListChannels returns every distinct channel with its message count and most
// recent timestamp, ordered by most recent activity first.
func (s *Service) ListChannels(ctx context.Context) ([]ChannelInfo, error) {
	query := `
		MATCH (m:CorpusMessage)
		RETURN m.channel AS channel, count(m) AS message_count, max(m.timestamp) AS last_activity
		ORDER BY last_activity DESC
	`

	records, err := s.store.Run(ctx, query, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list channels", err)
	}

	channels := make([]ChannelInfo, 0, len(records))
	for _, record := range records {
		channels = append(channels, ChannelInfo{
			Channel:      recordString(record, "channel"),
			MessageCount: recordInt64(record, "message_count"),
			LastActivity: recordString(record, "last_activity"),
		})
	}
	return channels, nil
}

// ListMessages returns messages in a channel ordered by timestamp descending.
// An empty channel defaults to "general", a non-positive limit to 50. When
// unreadOnly is set only messages with read = false are returned.
func (s *Service) ListMessages(ctx context.Context, channel string, limit int, unreadOnly bool) ([]Message, error) {
	if channel == "" {
		channel = defaultChannel
	}
	if limit < 1 {
		limit = defaultListLimit
	}

	query := `
		MATCH (m:CorpusMessage {channel: $channel})
		WHERE $unreadOnly = false OR coalesce(m.read, false) = false
	` + messageReturn + `
		ORDER BY timestamp DESC
		LIMIT $limit
	`

	records, err := s.store.Run(ctx, query, map[string]interface{}{
		"channel":    channel,
		"unreadOnly": unreadOnly,
		"limit":      limit,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list messages", err)
	}

	return messagesFromRecords(records), nil
}

// ListSessions returns up to 20 session groupings ordered by last activity
// descending. The cap is fixed.
func (s *Service) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	query := `
		MATCH (m:CorpusMessage)
		WHERE m.session_id IS NOT NULL
		RETURN m.session_id AS session_id, head(collect(m.channel)) AS channel,
		       count(m) AS message_count, min(m.timestamp) AS started_at,
		       max(m.timestamp) AS last_activity
		ORDER BY last_activity DESC
		LIMIT $limit
	`

	records, err := s.store.Run(ctx, query, map[string]interface{}{
		"limit": sessionListCap,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list sessions", err)
	}

	sessions := make([]SessionInfo, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, SessionInfo{
			SessionID:    recordString(record, "session_id"),
			Channel:      recordString(record, "channel"),
			MessageCount: recordInt64(record, "message_count"),
			StartedAt:    recordString(record, "started_at"),
			LastActivity: recordString(record, "last_activity"),
		})
	}
	return sessions, nil
}

// Send validates the input, applies defaults, and creates a message with a
// generated id and current timestamp. It is the only creation path into the
// message entity.
func (s *Service) Send(ctx context.Context, input SendInput) (*SendResult, error) {
	if strings.TrimSpace(input.FromLobeID) == "" {
		return nil, errors.NewValidation("from_lobe_id", "required")
	}
	if strings.TrimSpace(input.FromName) == "" {
		return nil, errors.NewValidation("from_name", "required")
	}
	if strings.TrimSpace(input.ToLobeID) == "" {
		return nil, errors.NewValidation("to_lobe_id", "required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, errors.NewValidation("message", "required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339)
	id := newMessageID(now)

	substrate := input.FromSubstrate
	if substrate == "" {
		substrate = defaultSubstrate
	}
	nodeType := input.FromNodeType
	if nodeType == "" {
		nodeType = defaultNodeType
	}
	channel := input.Channel
	if channel == "" {
		channel = defaultChannel
	}
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d", now.UnixMilli())
	}

	contextIDs := input.ContextMemoryIDs
	if contextIDs == nil {
		contextIDs = []string{}
	}
	serializedContext, err := json.Marshal(contextIDs)
	if err != nil {
		return nil, errors.NewValidation("context_memory_ids", "not serializable")
	}

	// A null property value is simply not stored, so an absent reply_to_id
	// leaves the message a thread root.
	var replyToID interface{}
	if input.ReplyToID != "" {
		replyToID = input.ReplyToID
	}

	query := `
		CREATE (m:CorpusMessage {
			id: $id,
			from_lobe_id: $fromLobeID,
			from_name: $fromName,
			from_glyph: $fromGlyph,
			from_substrate: $fromSubstrate,
			from_node_type: $fromNodeType,
			to_lobe_id: $toLobeID,
			message: $message,
			channel: $channel,
			timestamp: $timestamp,
			session_id: $sessionID,
			context_memory_ids: $contextMemoryIDs,
			reply_to_id: $replyToID,
			read: false
		})
		RETURN m.id AS id
	`

	_, err = s.store.Run(ctx, query, map[string]interface{}{
		"id":               id,
		"fromLobeID":       input.FromLobeID,
		"fromName":         input.FromName,
		"fromGlyph":        input.FromGlyph,
		"fromSubstrate":    substrate,
		"fromNodeType":     nodeType,
		"toLobeID":         input.ToLobeID,
		"message":          input.Message,
		"channel":          channel,
		"timestamp":        timestamp,
		"sessionID":        sessionID,
		"contextMemoryIDs": string(serializedContext),
		"replyToID":        replyToID,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("send message", err)
	}

	s.logger.Info("Message sent",
		zap.String("id", id),
		zap.String("channel", channel),
		zap.String("from", input.FromLobeID),
		zap.String("to", input.ToLobeID),
	)

	return &SendResult{ID: id, Timestamp: timestamp}, nil
}

// GetThread returns the direct replies to a message, oldest first. Replies of
// replies are not followed.
func (s *Service) GetThread(ctx context.Context, messageID string) ([]Message, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, errors.NewValidation("message_id", "required")
	}

	query := `
		MATCH (m:CorpusMessage {reply_to_id: $messageID})
	` + messageReturn + `
		ORDER BY timestamp ASC
	`

	records, err := s.store.Run(ctx, query, map[string]interface{}{
		"messageID": messageID,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("get thread", err)
	}

	return messagesFromRecords(records), nil
}

// MarkRead sets read = true on every message whose id is in ids and returns
// the number of messages actually updated. Ids that match nothing are silently
// ignored.
func (s *Service) MarkRead(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.NewValidation("message_ids", "must be a non-empty list")
	}

	query := `
		MATCH (m:CorpusMessage)
		WHERE m.id IN $ids
		SET m.read = true
		RETURN count(m) AS updated
	`

	records, err := s.store.Run(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return 0, errors.NewGraphQueryFailed("mark read", err)
	}

	var updated int64
	if len(records) > 0 {
		updated = recordInt64(records[0], "updated")
	}

	s.logger.Info("Messages marked read",
		zap.Int("requested", len(ids)),
		zap.Int64("updated", updated),
	)
	return updated, nil
}

// MessagingStats computes the aggregate counts and the per-lobe activity list.
// The two queries are not transactionally coupled.
func (s *Service) MessagingStats(ctx context.Context) (*Stats, error) {
	aggregateQuery := `
		MATCH (m:CorpusMessage)
		RETURN count(m) AS total_messages,
		       count(DISTINCT m.channel) AS channel_count,
		       count(DISTINCT m.session_id) AS session_count,
		       count(DISTINCT m.from_lobe_id) AS lobe_count,
		       sum(CASE WHEN coalesce(m.read, false) = false THEN 1 ELSE 0 END) AS unread_count
	`

	records, err := s.store.Run(ctx, aggregateQuery, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("messaging stats", err)
	}

	stats := &Stats{Lobes: []LobeActivity{}}
	if len(records) > 0 {
		record := records[0]
		stats.TotalMessages = recordInt64(record, "total_messages")
		stats.ChannelCount = recordInt64(record, "channel_count")
		stats.SessionCount = recordInt64(record, "session_count")
		stats.LobeCount = recordInt64(record, "lobe_count")
		stats.UnreadCount = recordInt64(record, "unread_count")
	}

	lobeQuery := `
		MATCH (m:CorpusMessage)
		RETURN m.from_lobe_id AS lobe_id, head(collect(m.from_name)) AS name,
		       head(collect(m.from_substrate)) AS substrate,
		       count(m) AS message_count, max(m.timestamp) AS last_activity
		ORDER BY message_count DESC
	`

	lobeRecords, err := s.store.Run(ctx, lobeQuery, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("lobe activity", err)
	}

	for _, record := range lobeRecords {
		stats.Lobes = append(stats.Lobes, LobeActivity{
			LobeID:       recordString(record, "lobe_id"),
			Name:         recordString(record, "name"),
			Substrate:    recordString(record, "substrate"),
			MessageCount: recordInt64(record, "message_count"),
			LastActivity: recordString(record, "last_activity"),
		})
	}
	return stats, nil
}

// newMessageID builds a timestamp-plus-random token, unique across repeated
// calls within the same millisecond via the random suffix.
func newMessageID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("msg_%d_%s", now.UnixMilli(), suffix)
}

// messagesFromRecords shapes query records into Message entities, resolving
// absent optional fields to their defaults.
func messagesFromRecords(records []*neo4j.Record) []Message {
	messages := make([]Message, 0, len(records))
	for _, record := range records {
		messages = append(messages, messageFromRecord(record))
	}
	return messages
}

func messageFromRecord(record *neo4j.Record) Message {
	m := Message{
		ID:               recordString(record, "id"),
		FromLobeID:       recordString(record, "from_lobe_id"),
		FromName:         recordString(record, "from_name"),
		FromGlyph:        recordString(record, "from_glyph"),
		FromSubstrate:    recordString(record, "from_substrate"),
		FromNodeType:     recordString(record, "from_node_type"),
		ToLobeID:         recordString(record, "to_lobe_id"),
		Message:          recordString(record, "message"),
		Channel:          recordString(record, "channel"),
		Timestamp:        recordString(record, "timestamp"),
		SessionID:        recordString(record, "session_id"),
		ContextMemoryIDs: []string{},
		Read:             recordBool(record, "read"),
		CoherenceMarker:  recordString(record, "coherence_marker"),
	}

	if serialized := recordString(record, "context_memory_ids"); serialized != "" {
		var ids []string
		if err := json.Unmarshal([]byte(serialized), &ids); err == nil && ids != nil {
			m.ContextMemoryIDs = ids
		}
	}

	if replyTo := recordString(record, "reply_to_id"); replyTo != "" {
		m.ReplyToID = &replyTo
	}
	return m
}

// Record shaping helpers

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func recordInt64(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func recordBool(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}
