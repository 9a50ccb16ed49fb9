package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/events"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/messaging/kafka"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/messaging/kafka/consumer"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/mirror"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/connection"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer ingests mirror change notifications. The mirror is the
// secondary delivery path for the same physical taps the readers submit
// directly, so everything funnels into the same engine and idempotency
// keys.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	tagRepo := tag.NewRepository(gormDB)

	engineCfg := engineConfigFromEnv()
	normalizer := attendance.NewNormalizer(engineCfg.DispatchMode, engineCfg.Timezone)
	tagService := tag.NewService(tagRepo, employeeRepo, redisClient)
	attendanceService := attendance.NewServiceWithOutbox(
		sqlDB,
		attendanceRepo,
		tagService,
		employeeRepo,
		outboxRepo,
		engineCfg,
	)

	adapter := mirror.NewSyncAdapter(attendanceService, normalizer)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.MirrorSyncTopic,
		GroupID:        "nfc-attendance-mirror-sync",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeMirrorSync(ctx, reader, adapter, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
