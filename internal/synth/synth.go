// File path: internal/synth/synth.go

// Package synth renders the category prompt for a question and asks the
// completion backend for the answer.
package synth

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/prompts"

	"github.com/nicodishanthj/propinsight/internal/classify"
	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/common/telemetry"
	"github.com/nicodishanthj/propinsight/internal/fetch"
	"github.com/nicodishanthj/propinsight/internal/llm"
	"github.com/nicodishanthj/propinsight/internal/property"
)

// ErrSynthesisFailed wraps any completion backend failure.
var ErrSynthesisFailed = errors.New("synthesis failed")

// InsufficientData replaces an empty completion.
const InsufficientData = "There is not enough data available to answer this question about the property."

const (
	systemPrompt = "You are a real estate analyst answering questions about a specific multifamily property. Use specific numbers when the data provides them and never invent figures."
	citationRule = " When you use information from the web, cite each source inline as [label](url) and use no other citation format."
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Answer is the synthesized response.
type Answer struct {
	Text      string
	Citations []llm.Citation
	Mode      classify.Mode
	Model     string
}

type Synthesizer struct {
	provider  llm.Provider
	templates map[string]prompts.PromptTemplate
}

type Option func(*Synthesizer)

// WithTemplate registers or replaces the prompt template called name. Text
// uses Go template syntax.
func WithTemplate(name, text string) Option {
	return func(s *Synthesizer) {
		s.templates[name] = newTemplate(text)
	}
}

func New(provider llm.Provider, opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{provider: provider, templates: make(map[string]prompts.PromptTemplate)}
	entries, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	for _, entry := range entries {
		data, err := templateFS.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry, err)
		}
		name := strings.TrimSuffix(path.Base(entry), ".tmpl")
		s.templates[name] = newTemplate(string(data))
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func newTemplate(text string) prompts.PromptTemplate {
	vars := append([]string{"question", "propertyId", "name", "address", "city", "state", "yearBuilt", "units", "levels", "submarket"}, fetch.Sections()...)
	return prompts.NewPromptTemplate(text, vars)
}

func (s *Synthesizer) HasTemplate(name string) bool {
	_, ok := s.templates[name]
	return ok
}

func (s *Synthesizer) Templates() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render fills the route's template with the property, the question and
// every bundle section.
func (s *Synthesizer) Render(route classify.Route, p property.Property, question string, bundle *fetch.Bundle) (string, error) {
	tmpl, ok := s.templates[route.Template]
	if !ok {
		return "", fmt.Errorf("unknown template %q", route.Template)
	}
	values, err := bundle.TemplateValues()
	if err != nil {
		return "", err
	}
	values["question"] = strings.TrimSpace(question)
	values["propertyId"] = p.ID
	values["name"] = p.Name
	values["address"] = p.Address
	values["city"] = p.City
	values["state"] = p.State
	values["yearBuilt"] = yearBuilt(p)
	values["units"] = strconv.Itoa(p.Units)
	values["levels"] = strconv.Itoa(p.Levels)
	values["submarket"] = p.Submarket
	prompt, err := tmpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", route.Template, err)
	}
	return prompt, nil
}

// Synthesize answers question with the route's template and completion mode.
// Web-mode answers have their citations rewritten to inline [label](url)
// links.
func (s *Synthesizer) Synthesize(ctx context.Context, route classify.Route, p property.Property, question string, bundle *fetch.Bundle) (Answer, error) {
	logger := common.Logger()
	prompt, err := s.Render(route, p, question, bundle)
	if err != nil {
		return Answer{}, err
	}
	system := systemPrompt
	if route.Mode.WebSearch() {
		system += citationRule
	}
	start := time.Now()
	completion, err := s.provider.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		WebSearch: route.Mode.WebSearch(),
	})
	telemetry.RecordCompletion(string(route.Mode), time.Since(start))
	if err != nil {
		logger.ErrorContext(ctx, "synth: completion failed", "category", route.Category, "mode", route.Mode, "error", err)
		return Answer{}, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	answer := Answer{Mode: route.Mode, Model: completion.Model, Text: strings.TrimSpace(completion.Text)}
	if answer.Text == "" {
		logger.WarnContext(ctx, "synth: empty completion; using fallback", "category", route.Category)
		answer.Text = InsufficientData
	}
	if route.Mode.WebSearch() {
		answer.Text = llm.NormalizeCitations(answer.Text, completion.Citations)
		answer.Citations = llm.ExtractCitations(answer.Text)
	}
	logger.DebugContext(ctx, "synth: answer ready", "category", route.Category, "mode", route.Mode, "citations", len(answer.Citations), "dur", time.Since(start))
	return answer, nil
}

func yearBuilt(p property.Property) string {
	if !p.HasKnownYearBuilt() {
		return "Unknown"
	}
	return strconv.Itoa(p.YearBuilt)
}
