// File path: internal/insights/pipeline.go

// Package insights runs one property question through normalization,
// classification, context fetching and synthesis.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nicodishanthj/propinsight/internal/classify"
	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/common/telemetry"
	"github.com/nicodishanthj/propinsight/internal/fetch"
	"github.com/nicodishanthj/propinsight/internal/llm"
	"github.com/nicodishanthj/propinsight/internal/property"
	"github.com/nicodishanthj/propinsight/internal/synth"
)

// ErrEmptyQuestion rejects a request without a question. It wraps
// property.ErrInvalidPayload so callers treat it as a bad request.
var ErrEmptyQuestion = fmt.Errorf("%w: question is required", property.ErrInvalidPayload)

// Stage is a step of the per-request state machine.
type Stage string

const (
	StageReceived       Stage = "Received"
	StageNormalized     Stage = "Normalized"
	StageClassified     Stage = "Classified"
	StageContextFetched Stage = "ContextFetched"
	StageSynthesized    Stage = "Synthesized"
	StageCompleted      Stage = "Completed"
	StageFailed         Stage = "Failed"
)

// StageError reports the last stage reached before the pipeline failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", strings.ToLower(string(e.Stage)), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Request is one inbound question. PropertyData is any payload accepted by
// property.Normalize.
type Request struct {
	Question     string
	PropertyData any
}

type ContextSummary struct {
	DataTypes   []string `json:"dataTypes"`
	RecordsUsed int      `json:"recordsUsed"`
}

type Result struct {
	Response       string            `json:"response"`
	QuestionType   classify.Category `json:"questionType"`
	Property       property.Property `json:"property"`
	ContextSummary ContextSummary    `json:"contextSummary"`
	TraceID        string            `json:"-"`
	Citations      []llm.Citation    `json:"citations,omitempty"`
}

// Pipeline answers property questions. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	cfg        Config
	provider   llm.Provider
	classifier *classify.Classifier
	fetchers   *fetch.Set
	synth      *synth.Synthesizer
}

// New validates that every policy route names a known fetcher and template.
func New(cfg Config, provider llm.Provider, policy *classify.Policy, fetchers *fetch.Set, synthesizer *synth.Synthesizer) (*Pipeline, error) {
	cfg = applyDefaults(cfg)
	if provider == nil {
		return nil, errors.New("completion provider required")
	}
	if fetchers == nil || synthesizer == nil {
		return nil, errors.New("fetchers and synthesizer required")
	}
	if policy == nil {
		policy = classify.DefaultPolicy()
	}
	for _, route := range policy.Routes {
		if _, ok := fetchers.Lookup(route.Fetcher); !ok {
			return nil, fmt.Errorf("category %s: unknown fetcher %q", route.Category, route.Fetcher)
		}
		if !synthesizer.HasTemplate(route.Template) {
			return nil, fmt.Errorf("category %s: unknown template %q (have %s)", route.Category, route.Template, strings.Join(synthesizer.Templates(), ", "))
		}
	}
	return &Pipeline{
		cfg:        cfg,
		provider:   provider,
		classifier: classify.NewClassifier(provider, policy),
		fetchers:   fetchers,
		synth:      synthesizer,
	}, nil
}

func (p *Pipeline) Policy() *classify.Policy {
	return p.classifier.Policy()
}

// Answer runs the stages in order. Any failure returns a *StageError and no
// partial result.
func (p *Pipeline) Answer(ctx context.Context, req Request) (*Result, error) {
	traceID := uuid.NewString()
	ctx = common.WithTraceID(ctx, traceID)
	ctx, end := telemetry.StartSpan(ctx, "insights.answer")
	logger := common.Logger()
	start := time.Now()
	stage := StageReceived
	logger.InfoContext(ctx, "insights: request received", "question_len", len(req.Question))

	fail := func(err error) (*Result, error) {
		failed := stage
		end("stage", failed, "error", err)
		telemetry.RecordRequest(string(failed), time.Since(start))
		logger.ErrorContext(ctx, "insights: request failed", "stage", failed, "state", StageFailed, "error", err)
		return nil, &StageError{Stage: failed, Err: err}
	}
	advance := func(next Stage) {
		stage = next
		logger.DebugContext(ctx, "insights: stage reached", "stage", stage)
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return fail(ErrEmptyQuestion)
	}
	subject, err := property.Normalize(req.PropertyData)
	if err != nil {
		return fail(err)
	}
	advance(StageNormalized)
	logger.DebugContext(ctx, "insights: property normalized", "property_id", subject.ID, "submarket", subject.Submarket)

	category, err := p.classifier.Classify(ctx, question)
	if err != nil {
		return fail(err)
	}
	route := p.Policy().Route(category)
	advance(StageClassified)
	logger.InfoContext(ctx, "insights: question classified", "category", category, "fetcher", route.Fetcher, "mode", route.Mode)

	fetcher, ok := p.fetchers.Lookup(route.Fetcher)
	if !ok {
		return fail(fmt.Errorf("unknown fetcher %q", route.Fetcher))
	}
	bundle, err := fetcher.Fetch(ctx, subject)
	if err != nil {
		return fail(err)
	}
	advance(StageContextFetched)
	logger.DebugContext(ctx, "insights: context fetched", "data_types", bundle.DataTypes(), "records", bundle.RecordsUsed())

	answer, err := p.synth.Synthesize(ctx, route, subject, question, bundle)
	if err != nil {
		return fail(err)
	}
	advance(StageSynthesized)

	result := &Result{
		Response:     answer.Text,
		QuestionType: category,
		Property:     subject,
		ContextSummary: ContextSummary{
			DataTypes:   bundle.DataTypes(),
			RecordsUsed: bundle.RecordsUsed(),
		},
		TraceID:   traceID,
		Citations: answer.Citations,
	}
	advance(StageCompleted)
	end("stage", stage, "category", category)
	telemetry.RecordRequest("", time.Since(start))
	logger.InfoContext(ctx, "insights: request completed", "category", category, "records", result.ContextSummary.RecordsUsed, "citations", len(result.Citations), "dur", telemetry.SpanDuration(ctx))
	return result, nil
}
