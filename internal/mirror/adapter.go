package mirror

import (
	"context"
	"errors"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/events"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/apperror"

	"go.uber.org/zap"
)

// SyncAdapter feeds mirror change notifications through the same
// normalizer and engine as live taps. It holds no state and does no
// deduplication of its own: redelivered payloads are safe because the
// engine's idempotency rule already absorbs them.
type SyncAdapter struct {
	engine     attendance.Engine
	normalizer *attendance.Normalizer
	logger     *zap.Logger
}

func NewSyncAdapter(engine attendance.Engine, normalizer *attendance.Normalizer, logger ...*zap.Logger) *SyncAdapter {
	l := zap.L().Named("mirror.sync")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mirror.sync")
	}
	return &SyncAdapter{
		engine:     engine,
		normalizer: normalizer,
		logger:     l,
	}
}

// OnEvent handles one notification. Both "added" and "changed"
// notifications funnel here. A returned error means the payload should
// be redelivered; rejections that redelivery cannot fix are logged and
// skipped instead.
func (a *SyncAdapter) OnEvent(ctx context.Context, payload events.MirrorSyncEvent) error {
	evs, err := a.normalizer.NormalizeMirror(payload)
	if err != nil {
		a.logger.Warn("mirror payload rejected at normalization",
			zap.String("tag_id", payload.TagID),
			zap.Error(err),
		)
		return nil
	}

	for _, ev := range evs {
		res, err := a.engine.Process(ctx, ev)
		if err != nil {
			if isPermanentRejection(err) {
				a.logger.Warn("mirror event rejected",
					zap.String("tag_id", ev.TagID),
					zap.String("log_key", ev.LogKey),
					zap.Error(err),
				)
				continue
			}
			return err
		}

		if res.AlreadyProcessed {
			a.logger.Debug("mirror event already processed",
				zap.String("tag_id", ev.TagID),
				zap.String("log_key", ev.LogKey),
			)
			continue
		}

		a.logger.Info("mirror event reconciled",
			zap.String("tag_id", ev.TagID),
			zap.String("action", res.Action),
			zap.String("log_key", ev.LogKey),
		)
	}

	return nil
}

func isPermanentRejection(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.HTTPStatus >= 400 && appErr.HTTPStatus < 500
}
