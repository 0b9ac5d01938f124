// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/nicodishanthj/propinsight/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	requestsTotal    *expvar.Int
	requestsFailed   *expvar.Int
	stageFailures    *expvar.Map
	classifications  *expvar.Map
	storeFailures    *expvar.Map
	completionsTotal *expvar.Map
	completionMS     *expvar.Map
	pipelineMS       *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		requestsTotal = expvar.NewInt("propinsight_requests_total")
		requestsFailed = expvar.NewInt("propinsight_requests_failed_total")
		stageFailures = expvar.NewMap("propinsight_stage_failures_total")
		classifications = expvar.NewMap("propinsight_classifications_total")
		storeFailures = expvar.NewMap("propinsight_store_query_failures_total")
		completionsTotal = expvar.NewMap("propinsight_completions_total")
		completionMS = expvar.NewMap("propinsight_completion_latency_ms")
		pipelineMS = expvar.NewInt("propinsight_pipeline_latency_ms")
	})
}

func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...any)) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.DebugContext(ctx, "trace: start", "span", name)
	return ctx, func(attrs ...any) {
		duration := time.Since(sp.start)
		logger.DebugContext(ctx, "trace: end", append([]any{"span", name, "dur", duration}, attrs...)...)
	}
}

func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}

// RecordRequest counts one pipeline run. failedStage is empty on success.
func RecordRequest(failedStage string, duration time.Duration) {
	ensureInit()
	requestsTotal.Add(1)
	if duration > 0 {
		pipelineMS.Add(duration.Milliseconds())
	}
	if failedStage == "" {
		return
	}
	requestsFailed.Add(1)
	stageFailures.Add(key(failedStage, "unknown"), 1)
}

func RecordClassification(category string) {
	ensureInit()
	classifications.Add(key(category, "unknown"), 1)
}

func RecordStoreFailure(lookup string) {
	ensureInit()
	storeFailures.Add(key(lookup, "unknown"), 1)
}

// RecordCompletion tracks backend calls per synthesis mode.
func RecordCompletion(mode string, duration time.Duration) {
	ensureInit()
	k := key(mode, "plain")
	completionsTotal.Add(k, 1)
	if duration > 0 {
		completionMS.Add(k, duration.Milliseconds())
	}
}

func key(raw, fallback string) string {
	k := strings.TrimSpace(strings.ToLower(raw))
	if k == "" {
		return fallback
	}
	return k
}
