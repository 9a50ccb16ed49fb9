package app

import (
	"os"
	"time"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/middleware"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
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

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	return registerModules(router, sqlDB, gormDB, redisClient)
}

// engineConfigFromEnv reads the reconciliation policy knobs. Every value
// has a sane default so a bare environment still boots.
func engineConfigFromEnv() attendance.Config {
	cfg := attendance.Config{
		DispatchMode: attendance.DispatchMode(os.Getenv("ATTENDANCE_DISPATCH_MODE")),
		WorkdayStart: os.Getenv("ATTENDANCE_WORKDAY_START"),
	}

	if tz := os.Getenv("ATTENDANCE_TIMEZONE"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = loc
		} else {
			zap.L().Warn("invalid ATTENDANCE_TIMEZONE, falling back to UTC", zap.String("tz", tz))
		}
	}
	if v := os.Getenv("ATTENDANCE_LATE_GRACE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LateGrace = d
		}
	}
	if v := os.Getenv("ATTENDANCE_HALF_DAY_CUTOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HalfDayCutoff = d
		}
	}

	return cfg
}

func replayIntervalFromEnv() time.Duration {
	if v := os.Getenv("OFFLINE_REPLAY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 30 * time.Second
}
