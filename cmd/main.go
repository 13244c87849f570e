package main

import (
	"context"
	"fmt"
	"log"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/davidbz/porco/internal/cache/redis"
	"github.com/davidbz/porco/internal/chain"
	"github.com/davidbz/porco/internal/config"
	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/http"
	"github.com/davidbz/porco/internal/http/middleware"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/prompt"
	"github.com/davidbz/porco/internal/provider/anthropic"
	"github.com/davidbz/porco/internal/provider/local"
	"github.com/davidbz/porco/internal/provider/openai"
	"github.com/davidbz/porco/internal/provider/registry"
	"github.com/davidbz/porco/internal/schema"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

//nolint:gocyclo,funlen // Wiring is linear and clearer in one place
func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func() observability.EventPublisher {
		return observability.NewEventBus()
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func() domain.ProviderRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// OpenAI Provider (nil when no credential; registration skips nil)
	if err := container.Provide(func(cfg *openai.Config) (*openai.Provider, error) {
		if cfg.APIKey == "" {
			return nil, nil
		}
		return openai.NewProvider(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide OpenAI provider: %v", err)
	}

	// Anthropic Provider (nil when no credential; registration skips nil)
	if err := container.Provide(func(cfg *anthropic.Config) (*anthropic.Provider, error) {
		if cfg.APIKey == "" {
			return nil, nil
		}
		return anthropic.NewProvider(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide Anthropic provider: %v", err)
	}

	// Local Provider (always available, terminal fallback)
	if err := container.Provide(local.NewProvider); err != nil {
		log.Fatalf("Failed to provide local provider: %v", err)
	}

	// Register providers with registry (invoked for side effects)
	registerProviders(container)

	// Orchestrator with credential-driven defaults
	if err := container.Provide(func(
		reg domain.ProviderRegistry,
		openaiCfg *openai.Config,
		anthropicCfg *anthropic.Config,
	) *domain.Orchestrator {
		defaults := domain.SelectDefaults(domain.Credentials{
			OpenAI:    openaiCfg.APIKey != "",
			Anthropic: anthropicCfg.APIKey != "",
		})
		return domain.NewOrchestrator(reg, defaults)
	}); err != nil {
		log.Fatalf("Failed to provide orchestrator: %v", err)
	}

	// Prompt store and schema validator
	if err := container.Provide(func(cfg *config.PromptConfig) (*prompt.Store, error) {
		return prompt.NewStore(cfg.Dir)
	}); err != nil {
		log.Fatalf("Failed to provide prompt store: %v", err)
	}
	if err := container.Provide(schema.NewValidator); err != nil {
		log.Fatalf("Failed to provide schema validator: %v", err)
	}

	// Response cache (optional; nil disables memoization in the chains)
	if err := container.Provide(func(cfg *config.RedisConfig) domain.Cache {
		if cfg.Addr == "" {
			return nil
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return redis.NewStore(client, cfg.KeyPrefix)
	}); err != nil {
		log.Fatalf("Failed to provide cache: %v", err)
	}

	// Chains
	if err := container.Provide(chain.NewIntentChain); err != nil {
		log.Fatalf("Failed to provide intent chain: %v", err)
	}
	if err := container.Provide(chain.NewItineraryChain); err != nil {
		log.Fatalf("Failed to provide itinerary chain: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

func registerProviders(container *dig.Container) {
	if err := container.Invoke(func(
		reg domain.ProviderRegistry,
		openaiProvider *openai.Provider,
		anthropicProvider *anthropic.Provider,
		localProvider *local.Provider,
	) error {
		if openaiProvider != nil {
			reg.Register(domain.ProviderOpenAI, openaiProvider)
		}
		if anthropicProvider != nil {
			reg.Register(domain.ProviderAnthropic, anthropicProvider)
		}
		reg.Register(domain.ProviderLocal, localProvider)

		observability.FromContext(context.Background()).Info(
			fmt.Sprintf("registered providers: %v", reg.List()))
		return nil
	}); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}
}
