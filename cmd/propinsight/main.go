// File path: cmd/propinsight/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nicodishanthj/propinsight/internal/api"
	"github.com/nicodishanthj/propinsight/internal/classify"
	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/data/orchestrator"
	"github.com/nicodishanthj/propinsight/internal/insights"
	"github.com/nicodishanthj/propinsight/internal/llm"
	"github.com/nicodishanthj/propinsight/internal/synth"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("propinsight: .env file not loaded", "error", err)
	} else {
		logger.Info("propinsight: environment loaded from .env")
	}

	addr := flag.String("addr", defaultAddr(), "listen address")
	storePath := flag.String("store", "", "path to the SQLite property database (overrides STORE_PATH)")
	storeDriver := flag.String("store-driver", "", "property store driver: sqlite or oracle (overrides STORE_DRIVER)")
	policyPath := flag.String("policy", "", "YAML category policy file (overrides INSIGHTS_POLICY_FILE)")
	warmupTimeout := flag.String("warmup-timeout", "", "time box for the web-search warm-up probe (e.g. 10s)")
	warmup := flag.Bool("warmup", true, "exercise the completion backends before serving")
	flag.Parse()

	logger.Info("propinsight: startup initiated", "addr", *addr)

	orchCfg, err := orchestrator.LoadConfig()
	if err != nil {
		exit(logger, "orchestrator config load failed", err)
	}
	if trimmed := strings.TrimSpace(*storePath); trimmed != "" {
		orchCfg.Store.Path = trimmed
	}
	if trimmed := strings.TrimSpace(*storeDriver); trimmed != "" {
		orchCfg.Store.Driver = strings.ToLower(trimmed)
	}
	orch, err := orchestrator.New(ctx, orchCfg)
	if err != nil {
		exit(logger, "orchestrator initialization failed", err)
	}
	defer orch.Close()

	llmCfg, err := llm.LoadConfig()
	if err != nil {
		exit(logger, "llm config load failed", err)
	}
	provider := llm.NewProvider(llmCfg)
	logger.Info("propinsight: llm provider ready", "provider", provider.Name())

	var policy *classify.Policy
	if trimmed := strings.TrimSpace(*policyPath); trimmed != "" {
		policy, err = classify.LoadPolicyFile(trimmed)
	} else {
		policy, err = classify.LoadPolicy()
	}
	if err != nil {
		exit(logger, "category policy load failed", err)
	}
	logger.Info("propinsight: category policy loaded", "categories", len(policy.Routes), "default", policy.Default())

	synthesizer, err := synth.New(provider)
	if err != nil {
		exit(logger, "synthesizer initialization failed", err)
	}

	insightsCfg, err := insights.LoadConfig()
	if err != nil {
		exit(logger, "insights config load failed", err)
	}
	if trimmed := strings.TrimSpace(*warmupTimeout); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			exit(logger, "invalid warm-up timeout", err)
		}
		insightsCfg.WarmupTimeout = dur
	}
	pipeline, err := insights.New(insightsCfg, provider, policy, orch.Fetchers(), synthesizer)
	if err != nil {
		exit(logger, "pipeline construction failed", err)
	}
	if *warmup {
		readiness := pipeline.Warmup(ctx)
		logger.Info("propinsight: warm-up complete", "status", readiness.Status)
	}

	server, err := api.NewServer(pipeline, nil)
	if err != nil {
		exit(logger, "server construction failed", err)
	}

	logger.Info("propinsight: server listening", "addr", *addr, "insights", "/api/property-insights", "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("propinsight: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("propinsight: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultAddr() string {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8081"
}

func exit(logger *slog.Logger, msg string, err error) {
	logger.Error("propinsight: "+msg, "error", err)
	fmt.Println(msg+":", err)
	os.Exit(1)
}
