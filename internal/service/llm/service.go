// Package llm wraps the model behind the one boundary the pipeline needs:
// text in, text out. Everything model-specific (provider, chain wiring,
// timeouts, transient-failure retries) stays on this side of the line.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

// Completer is the opaque text-completion boundary consumed by the analysis
// pipeline.
type Completer interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// ServiceError marks a failure of the completion service itself (timeout,
// network, quota). These are the only errors eligible for retry.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Config bounds every completion call.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int           // transient retries after the first attempt
	RetryBackoff time.Duration // base backoff, multiplied per attempt
}

const systemPrompt = "You are the analysis engine behind a two-player conversation game. " +
	"Each request carries its own response contract; follow it exactly and output nothing besides the requested JSON."

// Service implements Completer over an eino chat chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	cfg   Config
}

// NewService compiles the completion chain over the supplied chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}

	return &Service{chain: runnable, cfg: cfg}, nil
}

// Complete runs one prompt with a per-attempt timeout and a bounded number
// of retries with backoff. Retries cover transport failures only; malformed
// content is not visible at this layer and is never retried here.
func (s *Service) Complete(ctx context.Context, promptText string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.cfg.RetryBackoff
			log.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).Msg("llm completion retry")
			select {
			case <-ctx.Done():
				return "", &ServiceError{Op: "complete", Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		content, err := s.invoke(ctx, promptText)
		if err == nil {
			return content, nil
		}
		lastErr = err

		// The caller giving up is not a transient service condition.
		if ctx.Err() != nil {
			break
		}
	}

	return "", &ServiceError{Op: "complete", Err: lastErr}
}

func (s *Service) invoke(ctx context.Context, promptText string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	msg, err := s.chain.Invoke(callCtx, map[string]any{"query": promptText})
	if err != nil {
		return "", err
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errors.New("empty completion")
	}
	return msg.Content, nil
}
