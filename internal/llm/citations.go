// File path: internal/llm/citations.go
package llm

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// URLs may carry one level of balanced parentheses, as in
	// wiki/Frisco_(Texas).
	markdownLink = regexp.MustCompile(`\[([^\]\n]+)\]\((https?://(?:[^\s()]|\([^\s()]*\))+)\)`)
	bareURL      = regexp.MustCompile(`https?://(?:[^\s<>()\[\]]|\([^\s<>()\[\]]*\))+`)
)

// ExtractCitations returns every [label](url) link in text, in order of
// appearance, without duplicates.
func ExtractCitations(text string) []Citation {
	var out []Citation
	seen := make(map[string]struct{})
	for _, match := range markdownLink.FindAllStringSubmatch(text, -1) {
		link := match[2]
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, Citation{Label: strings.TrimSpace(match[1]), URL: link})
	}
	return out
}

// NormalizeCitations rewrites bare URLs as [host](url) links and appends any
// backend-reported sources not already linked, so every citation in the
// answer uses the inline [label](url) form.
func NormalizeCitations(text string, refs []Citation) string {
	var b strings.Builder
	last := 0
	for _, loc := range markdownLink.FindAllStringIndex(text, -1) {
		b.WriteString(linkBareURLs(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(linkBareURLs(text[last:]))
	normalized := b.String()

	linked := make(map[string]struct{})
	for _, citation := range ExtractCitations(normalized) {
		linked[citation.URL] = struct{}{}
	}
	var missing []string
	for _, ref := range refs {
		link := strings.TrimSpace(ref.URL)
		if link == "" {
			continue
		}
		if _, ok := linked[link]; ok {
			continue
		}
		linked[link] = struct{}{}
		missing = append(missing, formatLink(ref.Label, link))
	}
	if len(missing) == 0 {
		return normalized
	}
	return strings.TrimRight(normalized, "\n ") + "\n\nSources: " + strings.Join(missing, ", ")
}

func linkBareURLs(segment string) string {
	return bareURL.ReplaceAllStringFunc(segment, func(match string) string {
		trimmed := strings.TrimRight(match, ".,;:!?'\"")
		suffix := match[len(trimmed):]
		return formatLink("", trimmed) + suffix
	})
}

func formatLink(label, link string) string {
	label = strings.TrimSpace(label)
	label = strings.NewReplacer("[", "(", "]", ")").Replace(label)
	if label == "" {
		label = hostLabel(link)
	}
	return "[" + label + "](" + link + ")"
}

func hostLabel(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return "source"
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
