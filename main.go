package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"story_weaver/config"
	"story_weaver/generator"
	"story_weaver/logger"
	"story_weaver/metrics"
	"story_weaver/server"
)

// kvFlags collects repeated -set key=value pairs.
type kvFlags []string

func (k *kvFlags) String() string { return strings.Join(*k, ",") }

func (k *kvFlags) Set(v string) error {
	*k = append(*k, v)
	return nil
}

func main() {
	var overrides kvFlags
	configPath := flag.String("config", "config/config.json", "path to config.json or config.toml")
	addr := flag.String("addr", "", "http listen address (overrides config.server_addr)")
	verbose := flag.Bool("v", false, "enable debug logs")
	mock := flag.Bool("mock", false, "use the offline mock model")
	initConfig := flag.String("init-config", "", "write a default config to this path and exit")
	flag.Var(&overrides, "set", "override a config key, e.g. -set llm.model=gpt-4o-mini (repeatable)")
	flag.Parse()

	if *initConfig != "" {
		if err := config.Save(*initConfig, config.Default()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(*initConfig)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err = config.ApplyKVOverrides(cfg, overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *mock {
		cfg.LLM.Provider = "mock"
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	logger.Configure(level, os.Stderr)
	log := logger.Named("main")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	llm, err := buildLLM(cfg)
	if err != nil {
		log.WithError(err).Fatal("build llm client")
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		log.WithError(err).Fatal("build agent")
	}
	srv, err := server.New(agent, cfg, metrics.New())
	if err != nil {
		log.WithError(err).Fatal("build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.Run(ctx)

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logger.Fields{
		"addr":     cfg.ServerAddr,
		"provider": cfg.LLM.Provider,
		"model":    cfg.LLM.Model,
	}).Info("starting web server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("listen")
	}
	log.Info("server stopped")
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if settings.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "gemini":
		if settings.BaseURL == "" {
			settings.BaseURL = generator.GeminiOpenAIBaseURL
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "anthropic", "claude":
		return generator.NewAnthropicLLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
