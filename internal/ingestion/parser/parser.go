package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
)

// ParseError indicates the export payload has neither of the accepted
// shapes. It is the only fatal error in the pipeline: nothing downstream
// can proceed without parsed conversations.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse export: %s", e.Reason)
}

// rawNode is one entry of a conversation tree mapping.
type rawNode struct {
	Message  *rawMessage `json:"message"`
	Parent   string      `json:"parent"`
	Children []string    `json:"children"`
}

type rawMessage struct {
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	Content struct {
		Parts []json.RawMessage `json:"parts"`
	} `json:"content"`
	CreateTime float64 `json:"create_time"`
}

type rawConversation struct {
	ID          string             `json:"id"`
	ConvID      string             `json:"conversation_id"`
	Title       string             `json:"title"`
	CreateTime  float64            `json:"create_time"`
	UpdateTime  float64            `json:"update_time"`
	Mapping     map[string]rawNode `json:"mapping"`
	CurrentNode string             `json:"current_node"`
}

type rawExport struct {
	Conversations []rawConversation `json:"conversations"`
	Data          []rawConversation `json:"data"`
}

type Parser struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Parser {
	return &Parser{log: log.With("component", "ConversationParser")}
}

// ParseExport accepts either a bare array of conversation trees or an object
// wrapping one under "conversations" or "data".
func (p *Parser) ParseExport(raw []byte) ([]*types.ParsedConversation, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, &ParseError{Reason: "empty payload"}
	}

	var convs []rawConversation
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &convs); err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("decode array: %v", err)}
		}
	} else {
		var wrapper rawExport
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("decode object: %v", err)}
		}
		switch {
		case wrapper.Conversations != nil:
			convs = wrapper.Conversations
		case wrapper.Data != nil:
			convs = wrapper.Data
		default:
			return nil, &ParseError{Reason: "no conversation array found"}
		}
	}

	out := make([]*types.ParsedConversation, 0, len(convs))
	for i := range convs {
		pc := p.reconstructThread(&convs[i], i)
		if pc == nil || len(pc.Messages) == 0 {
			continue
		}
		out = append(out, pc)
	}
	return out, nil
}

// reconstructThread walks parent links backward from the current leaf,
// prepending each message so the result reads root-to-leaf. A cycle or a
// dangling parent reference truncates the walk instead of looping.
func (p *Parser) reconstructThread(conv *rawConversation, index int) *types.ParsedConversation {
	if conv == nil || len(conv.Mapping) == 0 {
		return nil
	}

	current := strings.TrimSpace(conv.CurrentNode)
	if current == "" {
		current = findLeafNode(conv.Mapping)
	}
	if current == "" {
		return nil
	}

	visited := make(map[string]bool, len(conv.Mapping))
	var messages []types.Message
	for nodeID := current; nodeID != ""; {
		if visited[nodeID] {
			p.log.Warn("cycle detected in conversation tree; truncating walk",
				"conversation_id", conv.id(), "node_id", nodeID)
			break
		}
		visited[nodeID] = true

		node, ok := conv.Mapping[nodeID]
		if !ok {
			break
		}
		if msg := renderMessage(node.Message); msg != nil {
			messages = append([]types.Message{*msg}, messages...)
		}
		nodeID = strings.TrimSpace(node.Parent)
	}

	if len(messages) == 0 {
		return nil
	}

	id := conv.id()
	if id == "" {
		id = fmt.Sprintf("conversation-%d", index)
	}
	title := strings.TrimSpace(conv.Title)
	if title == "" {
		title = "Untitled"
	}

	pc := &types.ParsedConversation{
		ID:           id,
		Title:        title,
		Created:      timeFromUnix(conv.CreateTime),
		Updated:      timeFromUnix(conv.UpdateTime),
		Messages:     messages,
		MessageCount: len(messages),
	}
	pc.FullText = RenderFullText(messages)
	return pc
}

func (c *rawConversation) id() string {
	if v := strings.TrimSpace(c.ID); v != "" {
		return v
	}
	return strings.TrimSpace(c.ConvID)
}

// renderMessage returns nil for roles other than user/assistant and for
// messages whose rendered text is empty.
func renderMessage(m *rawMessage) *types.Message {
	if m == nil {
		return nil
	}
	role := strings.ToLower(strings.TrimSpace(m.Author.Role))
	if role != "user" && role != "assistant" {
		return nil
	}

	var sb strings.Builder
	for _, part := range m.Content.Parts {
		var s string
		if err := json.Unmarshal(part, &s); err != nil {
			// Non-text parts (images, tool payloads) are skipped.
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return nil
	}

	return &types.Message{
		Role:      role,
		Content:   content,
		Timestamp: timeFromUnix(m.CreateTime),
	}
}

// RenderFullText is the deterministic rendering of a message sequence used
// for relevance filtering, chunk budgeting, and extraction input.
func RenderFullText(messages []types.Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.ToUpper(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// findLeafNode picks a node that no other node names as parent. Sorted
// iteration keeps the fallback deterministic for malformed exports that
// omit current_node.
func findLeafNode(mapping map[string]rawNode) string {
	isParent := make(map[string]bool, len(mapping))
	for _, node := range mapping {
		if p := strings.TrimSpace(node.Parent); p != "" {
			isParent[p] = true
		}
	}
	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !isParent[id] && len(mapping[id].Children) == 0 {
			return id
		}
	}
	return ""
}

func timeFromUnix(ts float64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
