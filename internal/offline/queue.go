package offline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance/errors"
	employeeerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee/errors"
	tagerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultQueueKey = "offline:pending_events"

// PendingEvent is a tap captured while the submission path was
// unreachable. It keeps its original timestamp so a replay hours later
// still reconciles to the same record as a live submission would have.
type PendingEvent struct {
	LocalID   string    `json:"local_id"`
	Type      string    `json:"type"` // checkin | checkout
	TagID     string    `json:"tag_id"`
	Timestamp time.Time `json:"timestamp"`
	ReaderID  string    `json:"reader_id,omitempty"`
	Location  string    `json:"location,omitempty"`
}

// SubmitFunc pushes one pending event through the same path live taps
// take. A nil error covers both fresh acceptance and the
// already-processed reply; both acknowledge the entry.
type SubmitFunc func(ctx context.Context, ev PendingEvent) error

//go:generate mockgen -source=queue.go -destination=mock/queue_mock.go -package=mock
type Queue interface {
	Enqueue(ctx context.Context, ev PendingEvent) error
	DrainAndReplay(ctx context.Context, submit SubmitFunc) (acked int, err error)
	Len(ctx context.Context) (int64, error)
}

type redisQueue struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
}

func NewRedisQueue(rdb *redis.Client, key string, logger ...*zap.Logger) Queue {
	if key == "" {
		key = DefaultQueueKey
	}
	l := zap.L().Named("offline.queue")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("offline.queue")
	}
	return &redisQueue{rdb: rdb, key: key, logger: l}
}

func (q *redisQueue) Enqueue(ctx context.Context, ev PendingEvent) error {
	if ev.LocalID == "" {
		ev.LocalID = uuid.NewString()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, q.key, payload).Err()
}

// DrainAndReplay walks the queue and submits every entry. An entry is
// removed only on explicit acknowledgment or on a permanent rejection
// that retrying cannot fix; transient failures leave it queued for the
// next reconnect pass.
func (q *redisQueue) DrainAndReplay(ctx context.Context, submit SubmitFunc) (int, error) {
	entries, err := q.rdb.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	acked := 0
	for _, raw := range entries {
		var ev PendingEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			q.logger.Warn("dropping undecodable pending event", zap.Error(err))
			q.remove(ctx, raw)
			continue
		}

		if err := submit(ctx, ev); err != nil {
			if isPermanentRejection(err) {
				q.logger.Warn("dropping rejected pending event",
					zap.String("local_id", ev.LocalID),
					zap.String("tag_id", ev.TagID),
					zap.Error(err),
				)
				q.remove(ctx, raw)
				continue
			}
			q.logger.Info("pending event kept for next replay",
				zap.String("local_id", ev.LocalID),
				zap.Error(err),
			)
			continue
		}

		q.remove(ctx, raw)
		acked++
	}

	return acked, nil
}

func (q *redisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

func (q *redisQueue) remove(ctx context.Context, raw string) {
	if err := q.rdb.LRem(ctx, q.key, 1, raw).Err(); err != nil {
		q.logger.Error("remove pending event failed", zap.Error(err))
	}
}

// permanentRejections lists the answers a retry cannot change: the tag
// itself is unusable or the entry was malformed at capture time.
var permanentRejections = []error{
	tagerrors.ErrTagNotFound,
	tagerrors.ErrTagInactive,
	tagerrors.ErrTagUnassigned,
	employeeerrors.ErrEmployeeNotFound,
	attendanceerrors.ErrInvalidTimestamp,
	attendanceerrors.ErrMissingAction,
	attendanceerrors.ErrInvalidAction,
}

// isPermanentRejection separates "card not enrolled" class answers from
// everything a later pass might fix. Order-dependent conflicts stay
// queued: a checkout replayed ahead of its checkin answers
// NoActiveCheckIn now but succeeds once the rest of the queue lands.
func isPermanentRejection(err error) bool {
	for _, sentinel := range permanentRejections {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
