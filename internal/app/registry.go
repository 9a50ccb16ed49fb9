package app

import (
	"context"
	"database/sql"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/messaging/kafka"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/offline"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/reader"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	readerRepo := reader.NewRepository(gormDB)
	tagRepo := tag.NewRepository(gormDB)

	// --- Services ---
	engineCfg := engineConfigFromEnv()
	normalizer := attendance.NewNormalizer(engineCfg.DispatchMode, engineCfg.Timezone)

	readerService := reader.NewService(readerRepo)
	tagService := tag.NewService(tagRepo, employeeRepo, rdb)
	attendanceService := attendance.NewServiceWithOutbox(
		db,
		attendanceRepo,
		tagService,
		employeeRepo,
		outboxRepo,
		engineCfg,
	)

	// --- Offline queue ---
	// Taps buffered while the submission path was down re-enter through
	// the same normalizer and engine as live traffic.
	queue := offline.NewRedisQueue(rdb, offline.DefaultQueueKey)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, normalizer)
	offlineHandler := offline.NewHandler(queue)
	readerHandler := reader.NewHandler(readerService)
	tagHandler := tag.NewHandler(tagService)

	deviceAuth := func(ctx context.Context, readerID, apiKey string) (string, error) {
		resp, err := readerService.Authenticate(ctx, readerID, apiKey)
		if err != nil {
			return "", err
		}
		if resp.Location != nil {
			return *resp.Location, nil
		}
		return "", nil
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, deviceAuth)
		offline.RegisterRoutes(api, offlineHandler)
		reader.RegisterRoutes(api, readerHandler)
		tag.RegisterRoutes(api, tagHandler)
	}

	// --- Offline replay ---
	submit := func(ctx context.Context, ev offline.PendingEvent) error {
		req := attendance.TapRequest{
			TagID:      ev.TagID,
			ReaderID:   ev.ReaderID,
			Location:   ev.Location,
			OccurredAt: ev.Timestamp,
			Action:     ev.Type,
		}
		cev, err := normalizer.NormalizeTap(req, attendance.SourceMobile)
		if err != nil {
			return err
		}
		_, err = attendanceService.Process(ctx, cev)
		return err
	}
	replayer := offline.NewReplayer(queue, submit, replayIntervalFromEnv())
	go replayer.Run(context.Background())

	return nil
}
