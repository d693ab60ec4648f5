package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-kitchen/internal/shared"

	"github.com/go-playground/validator/v10"
)

// ErrSchemaMismatch is matched by every SchemaError.
var ErrSchemaMismatch = errors.New("response does not match schema")

// SchemaError reports a model response that could not be decoded into, or
// failed validation against, the expected shape.
type SchemaError struct {
	Agent  string
	Reason string
	Raw    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s. Response: %s", e.Agent, ErrSchemaMismatch, e.Reason, truncate(e.Raw, 500))
}

// Is makes errors.Is(err, ErrSchemaMismatch) true for any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// NewSchemaError builds a SchemaError for checks made after decoding.
func NewSchemaError(agent, reason, raw string) *SchemaError {
	return &SchemaError{Agent: agent, Reason: reason, Raw: raw}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct tag validation used for model output. It is
// exported so inputs can share the same rules.
func Validate(v any) error {
	return validate.Struct(v)
}

// DecodeJSON asks gen for a JSON answer and decodes it into T. Decode and
// validation failures come back as *SchemaError; provider failures are
// wrapped as-is. The returned meta is filled whenever the provider answered.
func DecodeJSON[T any](ctx context.Context, gen TextGenerator, req Request, agent string) (T, shared.AgentMeta, error) {
	var out T
	start := time.Now()

	req.JSON = true
	resp, err := gen.GenerateContent(ctx, req)
	if err != nil {
		return out, shared.AgentMeta{AgentName: agent}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	meta := shared.AgentMeta{
		AgentName: agent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	raw := stripCodeFence(resp.Content)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, meta, NewSchemaError(agent, err.Error(), resp.Content)
	}
	if err := Validate(out); err != nil {
		return out, meta, NewSchemaError(agent, err.Error(), resp.Content)
	}

	return out, meta, nil
}

// stripCodeFence removes a surrounding ```json fence some models add even
// when asked for raw JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
