package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting-service/catalog"
	"github.com/radieske/betting-list/internal/betting-service/consumer"
	httpapi "github.com/radieske/betting-list/internal/betting-service/http"
	"github.com/radieske/betting-list/internal/betting-service/relay"
	"github.com/radieske/betting-list/internal/betting-service/session"
	"github.com/radieske/betting-list/internal/betting-service/ws"
	"github.com/radieske/betting-list/internal/shared/cache"
	"github.com/radieske/betting-list/internal/shared/config"
	"github.com/radieske/betting-list/internal/shared/db"
	"github.com/radieske/betting-list/internal/shared/kafka"
	"github.com/radieske/betting-list/internal/shared/logger"
	"github.com/radieske/betting-list/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres (catálogo de partidas)
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com Redis (cache do catálogo + pub/sub de seleções)
	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Kafka: writer de seleções e reader de odds
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetChoiceSelected)
	defer writer.Close()
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOddsUpdates, cfg.ConsumerGroup)
	defer reader.Close()
	log.Info("kafka ready",
		zap.String("produce", cfg.TopicBetChoiceSelected),
		zap.String("consume", cfg.TopicOddsUpdates),
	)

	// Métricas Prometheus
	forwarded := prometheus.NewCounter(prometheus.CounterOpts{Name: "betting_relay_forwarded_total", Help: "seleções repassadas"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "betting_relay_dropped_total", Help: "seleções descartadas por fila cheia"})
	relayErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betting_relay_errors_total", Help: "erros por sink"}, []string{"sink"})
	oddsConsumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "betting_odds_consumed_total", Help: "atualizações de odds consumidas"})
	oddsApplied := prometheus.NewCounter(prometheus.CounterOpts{Name: "betting_odds_rerenders_total", Help: "sessões re-renderizadas por odds"})
	oddsErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betting_odds_errors_total", Help: "erros por estágio"}, []string{"stage"})
	wsClients := prometheus.NewGauge(prometheus.GaugeOpts{Name: "betting_ws_clients", Help: "clientes WebSocket conectados"})
	prometheus.MustRegister(forwarded, dropped, relayErrors, oddsConsumed, oddsApplied, oddsErrors, wsClients)

	// Relay: canal das sessões -> Redis Pub/Sub + Kafka
	rel := relay.New(log, cfg.RelayQueueSize,
		relay.NewRedisSink(redisClient, cfg.RedisPubSubChannel),
		relay.NewKafkaSink(writer),
	)
	rel.OnForwarded = func() { forwarded.Inc() }
	rel.OnDropped = func() { dropped.Inc() }
	rel.OnError = func(sink string) { relayErrors.WithLabelValues(sink).Inc() }
	go func() {
		if err := rel.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("relay stopped", zap.Error(err))
		}
	}()

	// Hub WebSocket + feed global vindo do Redis
	hub := ws.NewHub(log, func(*http.Request) bool { return true })
	hub.OnClients = func(delta int) { wsClients.Add(float64(delta)) }
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)

	// Catálogo e sessões
	cat := catalog.New(log, catalog.NewReadRepo(pg), catalog.NewCache(redisClient, cfg.CatalogCacheTTL))
	sessions := session.NewManager(log, cat,
		session.WithNotifier(hub),
		session.WithAttacher(rel),
		session.WithHeading(cfg.ListHeading),
	)
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "betting_sessions_open", Help: "listas montadas"},
		func() float64 { return float64(sessions.Count()) },
	))

	// Consumer de odds
	proc := consumer.NewProcessor(log, reader, cat, sessions)
	proc.OnConsumed = func() { oddsConsumed.Inc() }
	proc.OnApplied = func(n int) { oddsApplied.Add(float64(n)) }
	proc.OnError = func(stage string) { oddsErrors.WithLabelValues(stage).Inc() }
	go func() {
		if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("odds consumer stopped", zap.Error(err))
		}
	}()

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}, log)

	// HTTP público
	api := &httpapi.API{Log: log, Sessions: sessions, WS: hub.HandleWS}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("betting-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("betting-service stopped")
}
