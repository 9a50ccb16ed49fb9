package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance/errors"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee"
	employeeerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee/errors"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/events"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/messaging/kafka"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/contextutil"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	DispatchMode DispatchMode
	Timezone     *time.Location
	// WorkdayStart ("15:04") with LateGrace decides present vs late;
	// a check-in later than WorkdayStart+HalfDayCutoff is a half day.
	WorkdayStart  string
	LateGrace     time.Duration
	HalfDayCutoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.DispatchMode == "" {
		c.DispatchMode = DispatchExplicit
	}
	if c.Timezone == nil {
		c.Timezone = time.UTC
	}
	if c.WorkdayStart == "" {
		c.WorkdayStart = "09:00"
	}
	if c.LateGrace <= 0 {
		c.LateGrace = 15 * time.Minute
	}
	if c.HalfDayCutoff <= 0 {
		c.HalfDayCutoff = 4 * time.Hour
	}
	return c
}

// Engine turns one canonical tap event into at most one store write.
type Engine interface {
	Process(ctx context.Context, ev CanonicalEvent) (TapResponse, error)
}

//go:generate mockgen -source=engine.go -destination=mock/engine_mock.go -package=mock
type Service interface {
	Engine
	GetAll(ctx context.Context, filter ListFilter) ([]AttendanceResponse, int64, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	tags      tag.Resolver
	employees employee.Repository
	outbox    kafka.OutboxRepository
	cfg       Config
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	tags tag.Resolver,
	employees employee.Repository,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, tags, employees, nil, cfg, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	tags tag.Resolver,
	employees employee.Repository,
	outboxRepo kafka.OutboxRepository,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.engine")
	}
	return &service{
		db:        db,
		repo:      repo,
		tags:      tags,
		employees: employees,
		outbox:    outboxRepo,
		cfg:       cfg.withDefaults(),
		logger:    l,
	}
}

// Process reconciles one tap against the day's state machine:
// Absent -> Open -> Closed. Replays of the same logical tap, from any
// ingestion path, return the existing record flagged AlreadyProcessed.
func (s *service) Process(ctx context.Context, ev CanonicalEvent) (TapResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if ev.OccurredAt.IsZero() {
		return TapResponse{}, attendanceerrors.ErrInvalidTimestamp
	}

	resolved, err := s.tags.Resolve(ctx, ev.TagID, ev.ReaderID)
	if err != nil {
		s.logger.Warn("tap rejected at tag resolution",
			zap.String("request_id", rid),
			zap.String("tag_id", ev.TagID),
			zap.String("source", ev.Source),
			zap.Error(err),
		)
		return TapResponse{}, err
	}

	exists, err := s.employees.Exists(ctx, resolved.EmployeeID)
	if err != nil {
		return TapResponse{}, err
	}
	if !exists {
		return TapResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	occurred := ev.OccurredAt.In(s.cfg.Timezone)
	day := time.Date(occurred.Year(), occurred.Month(), occurred.Day(), 0, 0, 0, 0, s.cfg.Timezone)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TapResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Idempotency first: a known log key short-circuits everything else.
	if ev.LogKey != "" {
		rec, err := qtx.FindByIdempotencyKey(ctx, ev.LogKey)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return TapResponse{}, err
		}
		if err == nil {
			if ev.Kind == KindClose && rec.Open() {
				return s.close(ctx, tx, qtx, rec, occurred, ev, rid)
			}
			// Postcondition already satisfied for this key.
			return alreadyProcessed(rec), tx.Commit()
		}
	}

	kind := ev.Kind
	open, err := qtx.FindOpenByEmployeeAndDate(ctx, resolved.EmployeeID, day)
	openFound := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return TapResponse{}, err
	}

	if kind == KindToggle {
		// Single-reader deployments: no hint from the caller, the
		// day's state decides. Scoping the lookup to the calendar day
		// keeps a missed prior-day check-out from being closed here.
		if openFound {
			kind = KindClose
		} else {
			kind = KindOpen
		}
	}

	switch kind {
	case KindOpen:
		if openFound {
			return alreadyProcessed(open), tx.Commit()
		}
		closed, err := qtx.FindByEmployeeAndDate(ctx, resolved.EmployeeID, day)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return TapResponse{}, err
		}
		if err == nil {
			// Closed is terminal for the day; replays of the open are
			// acknowledged, never re-opened.
			return alreadyProcessed(closed), tx.Commit()
		}
		return s.open(ctx, tx, qtx, resolved, day, occurred, ev, rid)

	case KindClose:
		if openFound {
			return s.close(ctx, tx, qtx, open, occurred, ev, rid)
		}
		closed, err := qtx.FindByEmployeeAndDate(ctx, resolved.EmployeeID, day)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return TapResponse{}, err
		}
		if err == nil && closed.TimeOut != nil {
			return alreadyProcessed(closed), tx.Commit()
		}
		return TapResponse{}, attendanceerrors.ErrNoActiveCheckIn

	default:
		return TapResponse{}, attendanceerrors.ErrInvalidAction
	}
}

func (s *service) open(
	ctx context.Context,
	tx *sql.Tx,
	qtx Repository,
	resolved tag.ResolvedTag,
	day, occurred time.Time,
	ev CanonicalEvent,
	rid string,
) (TapResponse, error) {
	logKey := ev.LogKey
	if logKey == "" {
		logKey = LogKeyForCheckIn(ev.TagID, occurred)
	}

	rec := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     uuid.MustParse(resolved.EmployeeID),
		AttendanceDate: day,
		TimeIn:         occurred,
		Status:         s.statusFor(day, occurred),
		CheckInMethod:  ev.Method,
		TagID:          strPtr(ev.TagID),
		ReaderID:       strPtr(ev.ReaderID),
		Location:       strPtr(ev.Location),
		IdempotencyKey: &logKey,
	}

	if err := qtx.Create(ctx, rec); err != nil {
		if isDuplicateRecordViolation(err) {
			// Lost the race with another delivery of the same tap; the
			// winner's record is the canonical one.
			return s.recoverDuplicate(ctx, resolved.EmployeeID, day, logKey)
		}
		return TapResponse{}, err
	}

	if err := s.emit(ctx, tx, rec, events.EventTypeCheckedIn, ActionCheckIn, rid); err != nil {
		return TapResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		if isDuplicateRecordViolation(err) {
			return s.recoverDuplicate(ctx, resolved.EmployeeID, day, logKey)
		}
		return TapResponse{}, err
	}

	s.logger.Info("attendance opened",
		zap.String("request_id", rid),
		zap.String("employee_id", resolved.EmployeeID),
		zap.String("tag_id", ev.TagID),
		zap.String("source", ev.Source),
		zap.String("log_key", logKey),
	)
	return TapResponse{Action: ActionCheckIn, Record: mapToResponse(*rec)}, nil
}

func (s *service) close(
	ctx context.Context,
	tx *sql.Tx,
	qtx Repository,
	rec *Attendance,
	occurred time.Time,
	ev CanonicalEvent,
	rid string,
) (TapResponse, error) {
	out := occurred
	rec.TimeOut = &out
	minutes := durationMinutes(rec.TimeIn, out)
	rec.DurationMinutes = &minutes

	if err := qtx.Update(ctx, rec); err != nil {
		return TapResponse{}, err
	}

	if err := s.emit(ctx, tx, rec, events.EventTypeCheckedOut, ActionCheckOut, rid); err != nil {
		return TapResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TapResponse{}, err
	}

	s.logger.Info("attendance closed",
		zap.String("request_id", rid),
		zap.String("employee_id", rec.EmployeeID.String()),
		zap.String("tag_id", ev.TagID),
		zap.String("source", ev.Source),
		zap.Int("duration_minutes", minutes),
	)
	return TapResponse{Action: ActionCheckOut, Record: mapToResponse(*rec)}, nil
}

// recoverDuplicate re-reads the record the winning delivery created.
func (s *service) recoverDuplicate(ctx context.Context, employeeID string, day time.Time, logKey string) (TapResponse, error) {
	rec, err := s.repo.FindByIdempotencyKey(ctx, logKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return TapResponse{}, err
	}
	if err != nil {
		rec, err = s.repo.FindByEmployeeAndDate(ctx, employeeID, day)
		if err != nil {
			return TapResponse{}, err
		}
	}
	return alreadyProcessed(rec), nil
}

func (s *service) emit(ctx context.Context, tx *sql.Tx, rec *Attendance, eventType, action, rid string) error {
	if s.outbox == nil {
		return nil
	}

	event := events.AttendanceRecordedEvent{
		EventType:       eventType,
		RequestID:       rid,
		AttendanceID:    rec.ID.String(),
		EmployeeID:      rec.EmployeeID.String(),
		AttendanceDate:  rec.AttendanceDate.Format("2006-01-02"),
		Action:          action,
		DurationMinutes: rec.DurationMinutes,
		OccurredAt:      time.Now().UTC(),
	}
	if rec.TagID != nil {
		event.TagID = *rec.TagID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "attendance",
		AggregateID:   rec.ID.String(),
		EventType:     eventType,
		Topic:         events.AttendanceRecordedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]AttendanceResponse, int64, error) {
	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, total, nil
}

func (s *service) statusFor(day, timeIn time.Time) string {
	start, err := time.ParseInLocation("2006-01-02 15:04", day.Format("2006-01-02")+" "+s.cfg.WorkdayStart, s.cfg.Timezone)
	if err != nil {
		return statusPresent
	}
	switch {
	case timeIn.After(start.Add(s.cfg.HalfDayCutoff)):
		return statusHalfDay
	case timeIn.After(start.Add(s.cfg.LateGrace)):
		return statusLate
	default:
		return statusPresent
	}
}

// alreadyProcessed labels the reply from the record's state, not the
// event kind: a replayed checkout against a closed day answers
// "checkout" even when toggle resolution read the event as an open.
func alreadyProcessed(rec *Attendance) TapResponse {
	action := ActionCheckIn
	if !rec.Open() {
		action = ActionCheckOut
	}
	return TapResponse{
		Action:           action,
		AlreadyProcessed: true,
		Record:           mapToResponse(*rec),
	}
}

// durationMinutes truncates to whole minutes and never goes negative,
// even when timestamps arrive inverted.
func durationMinutes(in, out time.Time) int {
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
