package consumer

import (
	"context"
	"encoding/json"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/events"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/mirror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeMirrorSync(
	ctx context.Context,
	reader *kafkago.Reader,
	adapter *mirror.SyncAdapter,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.mirror_sync")
	log.Info("mirror sync consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("mirror sync consumer stopped")
				return
			}
			log.Error("fetch mirror sync message failed", zap.Error(err))
			continue
		}

		var payload events.MirrorSyncEvent
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			log.Error("decode mirror sync payload failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := adapter.OnEvent(ctx, payload); err != nil {
			// Not committed: the broker redelivers and the engine's
			// idempotency absorbs whatever already got applied.
			log.Error("apply mirror sync payload failed",
				zap.String("tag_id", payload.TagID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit mirror sync message failed", zap.Error(err))
			continue
		}
	}
}
