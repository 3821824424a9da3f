package parser

import (
	"fmt"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

// CharsPerToken is the approximation used for chunk budgeting and cost
// estimation: one token per four characters of text.
const CharsPerToken = 4

// Chunk splits a conversation into token-bounded pieces. Messages are
// accumulated greedily until adding the next one would exceed the character
// budget. A conversation under budget comes back as exactly one chunk equal
// to the original. Chunking is lossless: concatenating the chunks' messages
// in order reproduces the original sequence.
func Chunk(conv *types.ParsedConversation, maxTokens int) []*types.ParsedConversation {
	if conv == nil {
		return nil
	}
	if maxTokens <= 0 || len(conv.FullText) <= maxTokens*CharsPerToken {
		return []*types.ParsedConversation{conv}
	}

	budget := maxTokens * CharsPerToken
	var groups [][]types.Message
	var current []types.Message
	currentChars := 0

	for _, msg := range conv.Messages {
		msgChars := len(msg.Content)
		if len(current) > 0 && currentChars+msgChars > budget {
			groups = append(groups, current)
			current = nil
			currentChars = 0
		}
		current = append(current, msg)
		currentChars += msgChars
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	if len(groups) <= 1 {
		return []*types.ParsedConversation{conv}
	}

	chunks := make([]*types.ParsedConversation, 0, len(groups))
	for i, msgs := range groups {
		part := i + 1
		chunk := &types.ParsedConversation{
			ID:           fmt.Sprintf("%s-part%d", conv.ID, part),
			Title:        fmt.Sprintf("%s (Part %d)", conv.Title, part),
			Created:      conv.Created,
			Updated:      conv.Updated,
			Messages:     msgs,
			FullText:     RenderFullText(msgs),
			MessageCount: len(msgs),
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ChunkAll flattens Chunk over a conversation list.
func ChunkAll(conversations []*types.ParsedConversation, maxTokens int) []*types.ParsedConversation {
	var out []*types.ParsedConversation
	for _, conv := range conversations {
		out = append(out, Chunk(conv, maxTokens)...)
	}
	return out
}
