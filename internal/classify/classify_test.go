// File path: internal/classify/classify_test.go
package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicodishanthj/propinsight/internal/llm"
)

type mockProvider struct {
	reply    string
	err      error
	requests []llm.Request
}

func (m *mockProvider) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return llm.Completion{}, m.err
	}
	return llm.Completion{Text: m.reply}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func TestDefaultPolicyRoutes(t *testing.T) {
	policy := DefaultPolicy()
	if policy.Default() != Comparison {
		t.Fatalf("expected COMPARISON default, got %s", policy.Default())
	}
	want := map[Category]Route{
		Fact:        {Fetcher: "fact", Mode: ModePlain},
		ComplexFact: {Fetcher: "fact", Mode: ModeWebSearch},
		Comparison:  {Fetcher: "comparison", Mode: ModePlain},
		Investment:  {Fetcher: "investment", Mode: ModeWebSearch},
		Market:      {Fetcher: "market", Mode: ModeWebSearch},
		Irrelevant:  {Fetcher: "none", Mode: ModePlain},
	}
	for category, expected := range want {
		route, ok := policy.Lookup(category)
		if !ok {
			t.Fatalf("category %s missing", category)
		}
		if route.Fetcher != expected.Fetcher || route.Mode != expected.Mode {
			t.Fatalf("category %s: got %+v", category, route)
		}
	}
	if got := policy.Route(Category("BOGUS")); got.Category != Comparison {
		t.Fatalf("expected unknown category to route to default, got %+v", got)
	}
}

func TestParsePolicyValidation(t *testing.T) {
	cases := map[string]string{
		"empty":           "default: FACT\n",
		"unknown mode":    "categories:\n  - {name: FACT, fetcher: fact, template: fact, mode: turbo}\n",
		"missing fetcher": "categories:\n  - {name: FACT, template: fact}\n",
		"duplicate":       "categories:\n  - {name: FACT, fetcher: fact, template: fact}\n  - {name: fact, fetcher: fact, template: fact}\n",
		"bad default":     "default: MARKET\ncategories:\n  - {name: FACT, fetcher: fact, template: fact}\n",
	}
	for name, doc := range cases {
		if _, err := ParsePolicy([]byte(doc)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := "default: fact\ncategories:\n  - name: fact\n    fetcher: Fact\n    template: fact\n  - name: market\n    fetcher: market\n    template: market\n    mode: WEB_SEARCH\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	t.Setenv("INSIGHTS_POLICY_FILE", path)
	policy, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.Default() != Fact || len(policy.Categories()) != 2 {
		t.Fatalf("unexpected policy %+v", policy)
	}
	route, _ := policy.Lookup(Market)
	if !route.Mode.WebSearch() {
		t.Fatalf("expected market to use web search, got %+v", route)
	}
	if route, _ := policy.Lookup(Fact); route.Mode != ModePlain || route.Fetcher != "fact" {
		t.Fatalf("expected plain default mode, got %+v", route)
	}
}

func TestClassifyNormalizesOutput(t *testing.T) {
	cases := []struct {
		reply string
		want  Category
	}{
		{"FACT", Fact},
		{"  fact.\n", Fact},
		{"\"Market\"", Market},
		{"`INVESTMENT`", Investment},
		{"complex fact", ComplexFact},
		{"Complex-Fact", ComplexFact},
		{"Label: IRRELEVANT", Irrelevant},
		{"MARKET because rents are rising", Market},
		{"WEATHER", Comparison},
		{"", Comparison},
	}
	for _, tc := range cases {
		provider := &mockProvider{reply: tc.reply}
		got, err := NewClassifier(provider, nil).Classify(context.Background(), "What is happening?")
		if err != nil {
			t.Fatalf("reply %q: unexpected error %v", tc.reply, err)
		}
		if got != tc.want {
			t.Fatalf("reply %q: got %s want %s", tc.reply, got, tc.want)
		}
	}
}

func TestClassifyPromptListsLabels(t *testing.T) {
	provider := &mockProvider{reply: "FACT"}
	if _, err := NewClassifier(provider, nil).Classify(context.Background(), " What was the rent in 2015? "); err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(provider.requests) != 1 {
		t.Fatalf("expected a single completion call, got %d", len(provider.requests))
	}
	req := provider.requests[0]
	if req.WebSearch {
		t.Fatalf("classifier must use plain mode")
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Fatalf("expected zero temperature")
	}
	prompt := req.Messages[0].Content
	for _, label := range DefaultPolicy().Categories() {
		if !strings.Contains(prompt, "- "+string(label)+": ") {
			t.Fatalf("prompt missing label %s:\n%s", label, prompt)
		}
	}
	if !strings.Contains(prompt, "Question: What was the rent in 2015?") {
		t.Fatalf("prompt missing question:\n%s", prompt)
	}
}

func TestClassifyBackendErrorPropagates(t *testing.T) {
	boom := errors.New("backend down")
	_, err := NewClassifier(&mockProvider{err: boom}, nil).Classify(context.Background(), "q")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}
