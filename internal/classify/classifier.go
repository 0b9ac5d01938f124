// File path: internal/classify/classifier.go
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/common/telemetry"
	"github.com/nicodishanthj/propinsight/internal/llm"
)

const classifierTemplate = `You classify questions about a single rental property.
Reply with exactly one label from this list and nothing else:
{{.labels}}

Question: {{.question}}
Label:`

// Classifier maps a free-text question to one policy category with a single
// completion call.
type Classifier struct {
	provider llm.Provider
	policy   *Policy
	prompt   prompts.PromptTemplate
}

func NewClassifier(provider llm.Provider, policy *Policy) *Classifier {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Classifier{
		provider: provider,
		policy:   policy,
		prompt:   prompts.NewPromptTemplate(classifierTemplate, []string{"labels", "question"}),
	}
}

func (c *Classifier) Policy() *Policy {
	return c.policy
}

// Classify returns the category for question. Output outside the policy's
// category set resolves to the policy default; only backend failures are
// returned as errors.
func (c *Classifier) Classify(ctx context.Context, question string) (Category, error) {
	logger := common.Logger()
	prompt, err := c.prompt.Format(map[string]any{
		"labels":   c.labelList(),
		"question": strings.TrimSpace(question),
	})
	if err != nil {
		return "", fmt.Errorf("render classifier prompt: %w", err)
	}
	completion, err := c.provider.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: llm.Temperature(0),
	})
	if err != nil {
		return "", fmt.Errorf("classify question: %w", err)
	}
	category, ok := c.Resolve(completion.Text)
	if !ok {
		logger.WarnContext(ctx, "classify: ambiguous label, using default", "raw", completion.Text, "default", category)
	} else {
		logger.DebugContext(ctx, "classify: question classified", "category", category)
	}
	telemetry.RecordClassification(string(category))
	return category, nil
}

func (c *Classifier) labelList() string {
	lines := make([]string, 0, len(c.policy.Routes))
	for _, route := range c.policy.Routes {
		lines = append(lines, fmt.Sprintf("- %s: %s", route.Category, route.Description))
	}
	return strings.Join(lines, "\n")
}

// Resolve normalizes raw model output to a known category. The boolean is
// false when the output was ambiguous and the default was substituted.
func (c *Classifier) Resolve(raw string) (Category, bool) {
	for _, candidate := range candidates(raw) {
		if _, ok := c.policy.Lookup(Category(candidate)); ok {
			return Category(candidate), true
		}
	}
	return c.policy.Default(), false
}

func candidates(raw string) []string {
	text := strings.TrimSpace(raw)
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '`', '*':
			return -1
		}
		return r
	}, text)
	if idx := strings.LastIndex(text, ":"); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimRight(strings.TrimSpace(text), ".,;!?")
	if text == "" {
		return nil
	}
	out := []string{canonicalLabel(text)}
	if fields := strings.Fields(text); len(fields) > 1 {
		out = append(out, canonicalLabel(strings.TrimRight(fields[0], ".,;!?")))
	}
	return out
}
