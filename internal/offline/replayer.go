package offline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Replayer periodically checks connectivity by draining the queue
// through the live submission path. Order is not guaranteed; each event
// carries its original timestamp so the engine reconciles correctly
// regardless.
type Replayer struct {
	queue    Queue
	submit   SubmitFunc
	interval time.Duration
	logger   *zap.Logger
}

func NewReplayer(queue Queue, submit SubmitFunc, interval time.Duration, logger ...*zap.Logger) *Replayer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	l := zap.L().Named("offline.replayer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("offline.replayer")
	}
	return &Replayer{
		queue:    queue,
		submit:   submit,
		interval: interval,
		logger:   l,
	}
}

func (r *Replayer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("offline replayer started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("offline replayer stopped")
			return
		case <-ticker.C:
			r.replayOnce(ctx)
		}
	}
}

func (r *Replayer) replayOnce(ctx context.Context) {
	pending, err := r.queue.Len(ctx)
	if err != nil {
		r.logger.Error("queue length check failed", zap.Error(err))
		return
	}
	if pending == 0 {
		return
	}

	acked, err := r.queue.DrainAndReplay(ctx, r.submit)
	if err != nil {
		r.logger.Error("drain and replay failed", zap.Error(err))
		return
	}

	r.logger.Info("offline replay pass finished",
		zap.Int64("pending_before", pending),
		zap.Int("acked", acked),
	)
}
