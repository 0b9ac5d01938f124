// File path: internal/synth/synth_test.go
package synth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nicodishanthj/propinsight/internal/classify"
	"github.com/nicodishanthj/propinsight/internal/fetch"
	"github.com/nicodishanthj/propinsight/internal/llm"
	"github.com/nicodishanthj/propinsight/internal/metrics"
	"github.com/nicodishanthj/propinsight/internal/property"
	"github.com/nicodishanthj/propinsight/internal/store"
)

type mockProvider struct {
	completion llm.Completion
	err        error
	requests   []llm.Request
}

func (m *mockProvider) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return llm.Completion{}, m.err
	}
	return m.completion, nil
}

func (m *mockProvider) Name() string { return "mock" }

// emptyStore backs fetchers whose output is used only as template input.
type emptyStore struct{}

func (emptyStore) Years() metrics.YearRange { return metrics.YearRange{First: 2014, Last: 2015} }
func (emptyStore) PropertyByKey(context.Context, store.Key) (*property.Property, error) {
	return nil, nil
}
func (emptyStore) PropertiesBySubmarket(context.Context, string, string, int) ([]property.Property, error) {
	return nil, nil
}
func (emptyStore) PropertiesByYearBuilt(context.Context, int, int, string, int) ([]property.Property, error) {
	return nil, nil
}
func (emptyStore) History(context.Context, store.Metric, store.Key) (*store.SeriesRow, error) {
	return nil, nil
}
func (emptyStore) SubmarketHistory(context.Context, store.Metric, string, string, int) ([]store.SeriesRow, error) {
	return nil, nil
}
func (emptyStore) RentTrend(context.Context, string, int) ([]store.TrendPoint, error) {
	return nil, nil
}

var subject = property.Property{ID: "oak", Name: "Oak Ridge", Address: "1 Oak St", City: "Austin", State: "TX", YearBuilt: 2010, Units: 120, Levels: 3, Submarket: "East"}

func bundleFor(t *testing.T, fetcher string) *fetch.Bundle {
	t.Helper()
	f, ok := fetch.NewSet(emptyStore{}, fetch.Config{}).Lookup(fetcher)
	if !ok {
		t.Fatalf("unknown fetcher %s", fetcher)
	}
	bundle, err := f.Fetch(context.Background(), subject)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	return bundle
}

func route(t *testing.T, category classify.Category) classify.Route {
	t.Helper()
	r, ok := classify.DefaultPolicy().Lookup(category)
	if !ok {
		t.Fatalf("unknown category %s", category)
	}
	return r
}

func TestEveryPolicyTemplateRenders(t *testing.T) {
	s, err := New(&mockProvider{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, r := range classify.DefaultPolicy().Routes {
		if !s.HasTemplate(r.Template) {
			t.Fatalf("template %s missing", r.Template)
		}
		prompt, err := s.Render(r, subject, "How is it doing?", bundleFor(t, r.Fetcher))
		if err != nil {
			t.Fatalf("render %s: %v", r.Template, err)
		}
		if !strings.Contains(prompt, "How is it doing?") || !strings.Contains(prompt, "Oak Ridge") {
			t.Fatalf("template %s missing question or name:\n%s", r.Template, prompt)
		}
		if strings.Contains(prompt, "<no value>") {
			t.Fatalf("template %s left a variable unset:\n%s", r.Template, prompt)
		}
	}
}

func TestSynthesizePlainFact(t *testing.T) {
	provider := &mockProvider{completion: llm.Completion{Text: " Rent in 2015 was $1,100. "}}
	s, _ := New(provider)
	answer, err := s.Synthesize(context.Background(), route(t, classify.Fact), subject, "What was the rent in 2015?", bundleFor(t, fetch.FetcherFact))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Text != "Rent in 2015 was $1,100." {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
	req := provider.requests[0]
	if req.WebSearch {
		t.Fatalf("fact questions must use plain mode")
	}
	if strings.Contains(req.Messages[0].Content, "[label](url)") {
		t.Fatalf("plain mode should not carry the citation rule")
	}
	prompt := req.Messages[1].Content
	if !strings.Contains(prompt, "Year Built: 2010") || !strings.Contains(prompt, `"2014":"N/A"`) {
		t.Fatalf("prompt missing property data or rent history:\n%s", prompt)
	}
}

func TestSynthesizeWebModeNormalizesCitations(t *testing.T) {
	provider := &mockProvider{completion: llm.Completion{
		Text:      "East Austin rents rose 3% (https://news.example/rents).",
		Citations: []llm.Citation{{Label: "Market Report", URL: "https://report.example/q1"}},
	}}
	s, _ := New(provider)
	answer, err := s.Synthesize(context.Background(), route(t, classify.Market), subject, "How is the market?", bundleFor(t, fetch.FetcherMarket))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !provider.requests[0].WebSearch {
		t.Fatalf("market questions must use web search")
	}
	if !strings.Contains(provider.requests[0].Messages[0].Content, "[label](url)") {
		t.Fatalf("web mode must state the citation format")
	}
	if !strings.Contains(answer.Text, "[news.example](https://news.example/rents)") {
		t.Fatalf("bare URL not normalized: %q", answer.Text)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("expected inline and appended citations, got %+v", answer.Citations)
	}
}

func TestSynthesizeEmptyCompletionFallsBack(t *testing.T) {
	s, _ := New(&mockProvider{completion: llm.Completion{Text: "   "}})
	answer, err := s.Synthesize(context.Background(), route(t, classify.Market), subject, "How is the market?", bundleFor(t, fetch.FetcherMarket))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Text != InsufficientData {
		t.Fatalf("expected insufficient-data fallback, got %q", answer.Text)
	}
}

func TestSynthesizeBackendFailure(t *testing.T) {
	boom := errors.New("timeout")
	s, _ := New(&mockProvider{err: boom})
	_, err := s.Synthesize(context.Background(), route(t, classify.Comparison), subject, "q", bundleFor(t, fetch.FetcherComparison))
	if !errors.Is(err, ErrSynthesisFailed) || !errors.Is(err, boom) {
		t.Fatalf("expected synthesis failure wrapping cause, got %v", err)
	}
}

func TestWithTemplateOverridesAndUnknownTemplate(t *testing.T) {
	provider := &mockProvider{completion: llm.Completion{Text: "ok"}}
	s, _ := New(provider, WithTemplate("fact", "Q={{.question}} N={{.name}}"))
	if _, err := s.Synthesize(context.Background(), route(t, classify.Fact), subject, "rent?", bundleFor(t, fetch.FetcherFact)); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got := provider.requests[0].Messages[1].Content; got != "Q=rent? N=Oak Ridge" {
		t.Fatalf("unexpected prompt %q", got)
	}
	if _, err := s.Render(classify.Route{Template: "missing"}, subject, "q", nil); err == nil {
		t.Fatalf("expected unknown template error")
	}
}
