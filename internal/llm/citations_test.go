// File path: internal/llm/citations_test.go
package llm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeCitationsLinksBareURLs(t *testing.T) {
	text := "Rents climbed 4% (see https://www.example.com/report.) and [CoStar](https://costar.com/a) agrees."
	got := NormalizeCitations(text, nil)
	want := "Rents climbed 4% (see [example.com](https://www.example.com/report).) and [CoStar](https://costar.com/a) agrees."
	if got != want {
		t.Fatalf("unexpected normalization:\n got: %s\nwant: %s", got, want)
	}
}

func TestNormalizeCitationsAppendsUnlinkedSources(t *testing.T) {
	text := "Austin demand is strong [Report](https://a.example/r).\n"
	refs := []Citation{
		{Label: "Report", URL: "https://a.example/r"},
		{Label: "Census [2020]", URL: "https://census.example/t"},
		{URL: "https://news.example/x"},
		{Label: "blank"},
	}
	got := NormalizeCitations(text, refs)
	if !strings.HasSuffix(got, "Sources: [Census (2020)](https://census.example/t), [news.example](https://news.example/x)") {
		t.Fatalf("unexpected sources suffix: %q", got)
	}
	if strings.Count(got, "https://a.example/r") != 1 {
		t.Fatalf("expected linked source not duplicated: %q", got)
	}
}

func TestExtractCitations(t *testing.T) {
	text := "[One](https://one.example) then [Two](http://two.example/p) and [One again](https://one.example)"
	want := []Citation{
		{Label: "One", URL: "https://one.example"},
		{Label: "Two", URL: "http://two.example/p"},
	}
	if diff := cmp.Diff(want, ExtractCitations(text)); diff != "" {
		t.Fatalf("citations mismatch (-want +got):\n%s", diff)
	}
}

func TestCitationsKeepBalancedParentheses(t *testing.T) {
	text := "See [Wiki](https://en.wikipedia.org/wiki/Frisco_(Texas)) and https://en.wikipedia.org/wiki/Plano_(Texas)."
	got := NormalizeCitations(text, nil)
	want := "See [Wiki](https://en.wikipedia.org/wiki/Frisco_(Texas)) and [en.wikipedia.org](https://en.wikipedia.org/wiki/Plano_(Texas))."
	if got != want {
		t.Fatalf("unexpected normalization:\n got: %s\nwant: %s", got, want)
	}
	citations := ExtractCitations(got)
	wantCitations := []Citation{
		{Label: "Wiki", URL: "https://en.wikipedia.org/wiki/Frisco_(Texas)"},
		{Label: "en.wikipedia.org", URL: "https://en.wikipedia.org/wiki/Plano_(Texas)"},
	}
	if diff := cmp.Diff(wantCitations, citations); diff != "" {
		t.Fatalf("citations mismatch (-want +got):\n%s", diff)
	}
}
