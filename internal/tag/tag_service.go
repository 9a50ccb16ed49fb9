package tag

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee"
	employeeerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee/errors"
	tagerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ResolveCacheKeyPrefix = "tags:resolve:"
	resolveCacheTTL       = 5 * time.Minute
)

func GetResolveCacheKey(tagID string) string {
	return ResolveCacheKeyPrefix + tagID
}

// Resolver is the narrow view the reconciliation path depends on.
type Resolver interface {
	Resolve(ctx context.Context, tagID, readerID string) (ResolvedTag, error)
}

//go:generate mockgen -source=tag_service.go -destination=mock/tag_service_mock.go -package=mock
type Service interface {
	Resolver
	Register(ctx context.Context, req RegisterTagRequest) (TagResponse, error)
	Assign(ctx context.Context, tagID string, req AssignTagRequest) (TagResponse, error)
	UpdateStatus(ctx context.Context, tagID string, req UpdateTagStatusRequest) (TagResponse, error)
	GetAll(ctx context.Context) ([]TagResponse, error)
}

type service struct {
	repo      Repository
	employees employee.Repository
	rdb       *redis.Client
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(repo Repository, employees employee.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("tag.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("tag.service")
	}
	return &service{
		repo:      repo,
		employees: employees,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

// Resolve maps a physical tag to its employee. It is on the hot path of
// every tap, so lookups go through Redis and concurrent misses for the
// same tag collapse into one query. The last-used touch is best-effort:
// attendance state must not depend on it.
func (s *service) Resolve(ctx context.Context, tagID, readerID string) (ResolvedTag, error) {
	binding, err := s.loadBinding(ctx, tagID)
	if err != nil {
		return ResolvedTag{}, err
	}

	if binding.Status != StatusActive {
		return ResolvedTag{}, tagerrors.ErrTagInactive
	}
	if binding.EmployeeID == nil {
		return ResolvedTag{}, tagerrors.ErrTagUnassigned
	}

	if err := s.repo.TouchLastUsed(ctx, tagID, time.Now().UTC(), readerID); err != nil {
		s.logger.Warn("touch tag last_used failed",
			zap.String("tag_id", tagID),
			zap.Error(err),
		)
	}

	return ResolvedTag{
		TagID:      binding.TagID,
		EmployeeID: binding.EmployeeID.String(),
		Status:     binding.Status,
	}, nil
}

func (s *service) loadBinding(ctx context.Context, tagID string) (*TagBinding, error) {
	cacheKey := GetResolveCacheKey(tagID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var b TagBinding
			if json.Unmarshal([]byte(cached), &b) == nil {
				return &b, nil
			}
		}
	}

	v, err, _ := s.sf.Do(tagID, func() (any, error) {
		b, err := s.repo.FindByTagID(ctx, tagID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, tagerrors.ErrTagNotFound
			}
			return nil, err
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(b); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, resolveCacheTTL).Err(); err != nil {
					s.logger.Warn("cache tag binding failed",
						zap.String("key", cacheKey),
						zap.Error(err),
					)
				}
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TagBinding), nil
}

func (s *service) Register(ctx context.Context, req RegisterTagRequest) (TagResponse, error) {
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if !validStatus(status) {
		return TagResponse{}, tagerrors.ErrInvalidTagStatus
	}

	b := &TagBinding{
		ID:     uuid.New(),
		TagID:  req.TagID,
		Status: status,
	}
	if req.EmployeeID != nil {
		empID, err := uuid.Parse(*req.EmployeeID)
		if err != nil {
			return TagResponse{}, tagerrors.ErrInvalidEmployeeID
		}
		if err := s.checkEmployee(ctx, empID); err != nil {
			return TagResponse{}, err
		}
		b.EmployeeID = &empID
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return TagResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("tag registered",
		zap.String("tag_id", b.TagID),
		zap.String("status", b.Status),
	)
	return mapToResponse(*b), nil
}

func (s *service) Assign(ctx context.Context, tagID string, req AssignTagRequest) (TagResponse, error) {
	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TagResponse{}, tagerrors.ErrInvalidEmployeeID
	}
	if err := s.checkEmployee(ctx, empID); err != nil {
		return TagResponse{}, err
	}

	b, err := s.repo.FindByTagID(ctx, tagID)
	if err != nil {
		return TagResponse{}, mapRepositoryError(err)
	}

	b.EmployeeID = &empID
	if err := s.repo.Update(ctx, b); err != nil {
		return TagResponse{}, mapRepositoryError(err)
	}
	s.invalidateResolveCache(ctx, tagID)

	s.logger.Info("tag assigned",
		zap.String("tag_id", tagID),
		zap.String("employee_id", req.EmployeeID),
	)
	return mapToResponse(*b), nil
}

func (s *service) UpdateStatus(ctx context.Context, tagID string, req UpdateTagStatusRequest) (TagResponse, error) {
	if !validStatus(req.Status) {
		return TagResponse{}, tagerrors.ErrInvalidTagStatus
	}

	b, err := s.repo.FindByTagID(ctx, tagID)
	if err != nil {
		return TagResponse{}, mapRepositoryError(err)
	}

	b.Status = req.Status
	if err := s.repo.Update(ctx, b); err != nil {
		return TagResponse{}, mapRepositoryError(err)
	}
	s.invalidateResolveCache(ctx, tagID)

	s.logger.Info("tag status updated",
		zap.String("tag_id", tagID),
		zap.String("status", req.Status),
	)
	return mapToResponse(*b), nil
}

func (s *service) GetAll(ctx context.Context) ([]TagResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]TagResponse, len(rows))
	for i, b := range rows {
		res[i] = mapToResponse(b)
	}
	return res, nil
}

// checkEmployee rejects bindings to employees that do not exist. A tag
// must never resolve to a dangling employee id.
func (s *service) checkEmployee(ctx context.Context, empID uuid.UUID) error {
	if s.employees == nil {
		return nil
	}
	if _, err := s.employees.FindByID(ctx, empID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employeeerrors.ErrEmployeeNotFound
		}
		return err
	}
	return nil
}

func (s *service) invalidateResolveCache(ctx context.Context, tagID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetResolveCacheKey(tagID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate tag resolve cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

func mapToResponse(b TagBinding) TagResponse {
	resp := TagResponse{
		ID:           b.ID.String(),
		TagID:        b.TagID,
		Status:       b.Status,
		LastReaderID: b.LastReaderID,
	}
	if b.EmployeeID != nil {
		v := b.EmployeeID.String()
		resp.EmployeeID = &v
	}
	if b.LastUsedAt != nil {
		v := b.LastUsedAt.Format(time.RFC3339)
		resp.LastUsedAt = &v
	}
	return resp
}
