// Package analysis runs the two-stage compatibility pipeline: per-card
// prompts through the completion boundary into typed summaries, then one
// synthesis pass over the aggregated digest.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/duetlabs/duet/backend/internal/analysis/tone"
	analysismodel "github.com/duetlabs/duet/backend/internal/model/analysis"
	"github.com/duetlabs/duet/backend/internal/model/game"
	"github.com/duetlabs/duet/backend/internal/service/llm"
	"github.com/duetlabs/duet/backend/internal/service/prompt"
)

var (
	ErrCardIncomplete   = errors.New("card is missing an answer")
	ErrNoCompletedCards = errors.New("session has no completed cards")
	ErrAllCardsFailed   = errors.New("every card analysis failed")
)

// Config carries the explicit pipeline settings; nothing here hides behind
// a package default.
type Config struct {
	ModelVersion string
	// Reprompt allows exactly one fresh completion when the first response
	// fails to parse. Transport failures are retried inside the llm
	// service instead and never re-enter here.
	Reprompt bool
	// MaxConcurrentCards bounds the stage-1 fan-out.
	MaxConcurrentCards int
}

// Progress describes one observable pipeline step, consumed by the SSE and
// websocket surfaces.
type Progress struct {
	Stage     string                     `json:"stage"` // card | card_failed | synthesis | done
	CardIndex int                        `json:"cardIndex,omitempty"`
	Total     int                        `json:"total,omitempty"`
	Summary   *analysismodel.CardSummary `json:"summary,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

// SessionReport is the complete output of a session run: every per-card
// summary, the cards whose analysis was unavailable, and the synthesis.
type SessionReport struct {
	Summaries        []analysismodel.CardSummary `json:"summaries"`
	UnavailableCards []int                       `json:"unavailableCards,omitempty"`
	Synthesis        analysismodel.Result        `json:"synthesis"`
}

// Service orchestrates prompt construction, completion and parsing.
type Service struct {
	completer llm.Completer
	builder   *prompt.Builder
	parser    *Parser
	cfg       Config
}

// NewService wires the pipeline over the completion boundary.
func NewService(completer llm.Completer, builder *prompt.Builder, cfg Config) *Service {
	if cfg.MaxConcurrentCards <= 0 {
		cfg.MaxConcurrentCards = 3
	}
	return &Service{
		completer: completer,
		builder:   builder,
		parser:    NewParser(),
		cfg:       cfg,
	}
}

// Analyze runs a one-shot full analysis (individual, comparative, session
// or category).
func (s *Service) Analyze(ctx context.Context, req prompt.Request) (analysismodel.Result, error) {
	promptText, err := s.builder.Build(req)
	if err != nil {
		return analysismodel.Result{}, err
	}

	start := time.Now()
	content, result, err := s.completeResult(ctx, promptText)
	if err != nil {
		return analysismodel.Result{}, err
	}

	if result.Tone == "" {
		result.Tone = analysismodel.ToneNeutral
	}
	result.Metadata = analysismodel.Metadata{
		Prompt:       promptText,
		RawResponse:  content,
		Duration:     time.Since(start),
		ModelVersion: s.cfg.ModelVersion,
		Type:         req.Type,
		Category:     req.Category,
		InputLength:  len([]rune(promptText)),
		Seed:         req.Seed,
	}
	return result, nil
}

// AnalyzeCard runs stage 1 for one completed card.
func (s *Service) AnalyzeCard(ctx context.Context, card game.CardAnswers) (analysismodel.CardSummary, error) {
	if !card.IsComplete() {
		return analysismodel.CardSummary{}, ErrCardIncomplete
	}

	answer1 := card.Answers[0].Text
	answer2 := card.Answers[1].Text
	promptText, err := s.builder.BuildCard(card.Question, card.Category, answer1, answer2)
	if err != nil {
		return analysismodel.CardSummary{}, err
	}

	summary, err := s.completeCard(ctx, promptText, card)
	if err != nil {
		return analysismodel.CardSummary{}, err
	}

	// The model may omit tone; read it locally rather than invent a score.
	if summary.Tone == "" {
		summary.Tone = analysismodel.Tone(tone.Analyze(answer1, answer2).Tone)
	}
	return summary, nil
}

// AnalyzeSession runs the full two-stage pipeline: concurrent stage-1 over
// every completed card, then synthesis once the aggregator reports
// completeness. A failed card is reported unavailable and excluded from the
// digest; it never aborts the session.
func (s *Service) AnalyzeSession(ctx context.Context, session game.GameSession, seed *int64, onProgress func(Progress)) (*SessionReport, error) {
	cards := completedCards(session)
	if len(cards) == 0 {
		return nil, ErrNoCompletedCards
	}
	notify := func(p Progress) {
		if onProgress != nil {
			p.Total = len(cards)
			onProgress(p)
		}
	}

	agg := NewAggregator(len(cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentCards)

	for i, card := range cards {
		g.Go(func() error {
			summary, err := s.AnalyzeCard(gctx, card)
			if err != nil {
				log.Warn().Err(err).Int("card", i).Str("session", session.ID).Msg("card analysis unavailable")
				if markErr := agg.MarkUnavailable(i); markErr != nil {
					return markErr
				}
				notify(Progress{Stage: "card_failed", CardIndex: i, Error: err.Error()})
				return nil
			}
			if putErr := agg.Put(i, summary); putErr != nil {
				return putErr
			}
			notify(Progress{Stage: "card", CardIndex: i, Summary: &summary})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Hard ordering dependency: synthesis only runs over a decided roster.
	if !agg.Complete() {
		return nil, fmt.Errorf("aggregator incomplete after stage 1")
	}
	if agg.Count() == 0 {
		return nil, ErrAllCardsFailed
	}

	promptText, err := s.builder.BuildSynthesis(agg.Digest(), agg.Count(), seed)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, synthesis, err := s.completeResult(ctx, promptText)
	if err != nil {
		return nil, err
	}
	if synthesis.Tone == "" {
		synthesis.Tone = analysismodel.ToneNeutral
	}
	synthesis.Metadata = analysismodel.Metadata{
		Prompt:       promptText,
		RawResponse:  content,
		Duration:     time.Since(start),
		ModelVersion: s.cfg.ModelVersion,
		Type:         analysismodel.TypeSynthesis,
		InputLength:  len([]rune(promptText)),
		Seed:         seed,
	}
	notify(Progress{Stage: "synthesis"})

	report := &SessionReport{
		Summaries:        agg.Summaries(),
		UnavailableCards: agg.Unavailable(),
		Synthesis:        synthesis,
	}
	notify(Progress{Stage: "done"})
	return report, nil
}

// completeResult runs one completion and parses it as a full result, with
// at most one re-prompt when the content fails to parse.
func (s *Service) completeResult(ctx context.Context, promptText string) (string, analysismodel.Result, error) {
	content, err := s.completer.Complete(ctx, promptText)
	if err != nil {
		return "", analysismodel.Result{}, err
	}

	result, parseErr := s.parser.ParseResult(content)
	if parseErr == nil {
		return content, result, nil
	}
	if !s.shouldReprompt(parseErr) {
		return content, analysismodel.Result{}, parseErr
	}

	log.Warn().Err(parseErr).Msg("unparseable completion, re-prompting once")
	content, err = s.completer.Complete(ctx, promptText)
	if err != nil {
		return "", analysismodel.Result{}, err
	}
	result, parseErr = s.parser.ParseResult(content)
	if parseErr != nil {
		return content, analysismodel.Result{}, parseErr
	}
	return content, result, nil
}

func (s *Service) completeCard(ctx context.Context, promptText string, card game.CardAnswers) (analysismodel.CardSummary, error) {
	content, err := s.completer.Complete(ctx, promptText)
	if err != nil {
		return analysismodel.CardSummary{}, err
	}

	summary, parseErr := s.parser.ParseCardSummary(content, card.Question, card.Category)
	if parseErr == nil {
		return summary, nil
	}
	if !s.shouldReprompt(parseErr) {
		return analysismodel.CardSummary{}, parseErr
	}

	log.Warn().Err(parseErr).Msg("unparseable card completion, re-prompting once")
	content, err = s.completer.Complete(ctx, promptText)
	if err != nil {
		return analysismodel.CardSummary{}, err
	}
	return s.parser.ParseCardSummary(content, card.Question, card.Category)
}

func (s *Service) shouldReprompt(err error) bool {
	return s.cfg.Reprompt && (errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrInsufficientData))
}

func completedCards(session game.GameSession) []game.CardAnswers {
	out := make([]game.CardAnswers, 0, len(session.Cards))
	for _, card := range session.Cards {
		if card.IsComplete() {
			out = append(out, card)
		}
	}
	return out
}
