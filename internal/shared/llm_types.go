package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// MetaRecorder receives AgentMeta as agents finish. Implementations must be
// safe for concurrent use; meal slots report from parallel goroutines.
type MetaRecorder interface {
	RecordMeta(meta AgentMeta) error
}

// DiscardMeta is a MetaRecorder that drops everything.
type DiscardMeta struct{}

// RecordMeta implements MetaRecorder.
func (DiscardMeta) RecordMeta(AgentMeta) error { return nil }
