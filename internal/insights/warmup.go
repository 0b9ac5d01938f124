// File path: internal/insights/warmup.go
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/llm"
)

const (
	StatusReady                = "ready"
	StatusPartiallyInitialized = "partially_initialized"

	CheckOK      = "ok"
	CheckFailed  = "failed"
	CheckTimeout = "timeout"
)

const warmupQuestion = "What year was this property built?"

type Check struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Duration string `json:"duration"`
}

type Readiness struct {
	Status string  `json:"status"`
	Checks []Check `json:"checks"`
}

// Warmup exercises the classifier, the plain completion backend and the
// web-search backend. The web probe races WarmupTimeout. Failures only
// downgrade the status; Warmup never returns an error.
func (p *Pipeline) Warmup(ctx context.Context) Readiness {
	logger := common.Logger()
	checks := []Check{
		p.runCheck(ctx, "classifier", func(ctx context.Context) error {
			_, err := p.classifier.Classify(ctx, warmupQuestion)
			return err
		}),
		p.runCheck(ctx, "completion", func(ctx context.Context) error {
			_, err := p.provider.Complete(ctx, llm.Request{Messages: []llm.Message{{Role: "user", Content: "Reply with OK."}}})
			return err
		}),
		p.webCheck(ctx),
	}
	readiness := Readiness{Status: StatusReady, Checks: checks}
	for _, check := range checks {
		if check.Status != CheckOK {
			readiness.Status = StatusPartiallyInitialized
		}
	}
	logger.InfoContext(ctx, "insights: warm-up finished", "status", readiness.Status)
	return readiness
}

func (p *Pipeline) runCheck(ctx context.Context, name string, fn func(context.Context) error) Check {
	start := time.Now()
	check := Check{Name: name, Status: CheckOK}
	if err := fn(ctx); err != nil {
		common.Logger().WarnContext(ctx, "insights: warm-up check failed", "check", name, "error", err)
		check.Status = CheckFailed
		check.Detail = err.Error()
	}
	check.Duration = time.Since(start).String()
	return check
}

func (p *Pipeline) webCheck(ctx context.Context) Check {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := p.provider.Complete(ctx, llm.Request{
			Messages:  []llm.Message{{Role: "user", Content: "Reply with OK."}},
			WebSearch: true,
		})
		done <- err
	}()

	timer := time.NewTimer(p.cfg.WarmupTimeout)
	defer timer.Stop()

	check := Check{Name: "web_search", Status: CheckOK}
	select {
	case err := <-done:
		if err != nil {
			check.Status = CheckFailed
			check.Detail = err.Error()
		}
	case <-timer.C:
		check.Status = CheckTimeout
		check.Detail = fmt.Sprintf("no response within %s", p.cfg.WarmupTimeout)
	case <-ctx.Done():
		check.Status = CheckFailed
		check.Detail = ctx.Err().Error()
	}
	if check.Status != CheckOK {
		common.Logger().WarnContext(ctx, "insights: web-search warm-up incomplete", "status", check.Status, "detail", check.Detail)
	}
	check.Duration = time.Since(start).String()
	return check
}
