package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	routerx "github.com/wanderplan/wanderplan/agent/agents/router"
	"github.com/wanderplan/wanderplan/agent/agents/specialist"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
	llmx "github.com/wanderplan/wanderplan/agent/llm"
	statex "github.com/wanderplan/wanderplan/agent/state"
	configx "github.com/wanderplan/wanderplan/pkg/config"
	_ "github.com/wanderplan/wanderplan/pkg/logger/autoload"
	qstashx "github.com/wanderplan/wanderplan/pkg/qstash"
)

type AppConfig struct {
	SessionID   string `envconfig:"SESSION_ID" split_words:"true" default:"local-session"`
	TravelerID  string `envconfig:"TRAVELER_ID" split_words:"true" default:"local-traveler"`
	ChannelType string `envconfig:"CHANNEL_TYPE" split_words:"true" default:"cli"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" split_words:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH")

	store := newStore(ctx, *appCfg, *redisCfg)

	memory, err := statex.NewUpstashMemoryStore(*redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init memory store")
	}

	var events contractx.EventPublisher
	if qstashCfg, err := configx.New[qstashx.Config]("QSTASH"); err == nil && qstashCfg.Token != "" {
		publisher, err := qstashx.NewPublisher(*qstashCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("init qstash publisher")
		}
		events = publisher
	}

	registry, err := specialist.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init model registry")
	}

	svc, err := routerx.New(store, registry, memory, events, routerx.Config{
		TravelerID:  appCfg.TravelerID,
		ChannelType: appCfg.ChannelType,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init router")
	}

	runREPL(ctx, svc, appCfg.SessionID)
}

func newStore(ctx context.Context, appCfg AppConfig, redisCfg statex.UpstashRedisConfig) statex.Store {
	if dsn := strings.TrimSpace(appCfg.PostgresDSN); dsn != "" {
		pg, err := statex.NewPostgresStore(statex.PostgresConfig{DSN: dsn})
		if err != nil {
			log.Fatal().Err(err).Msg("init postgres store")
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure postgres schema")
		}
		return pg
	}

	store, err := statex.NewUpstashRedisStore(redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init redis store")
	}
	return store
}

func runREPL(ctx context.Context, svc *routerx.Router, sessionID string) {
	fmt.Println("wanderplan ready. Type a message, or /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			return
		}

		reply, err := svc.HandleMessage(ctx, sessionID, text)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}
		fmt.Println(reply)
	}
}
