package reader

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	readererrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/reader/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=reader_service.go -destination=mock/reader_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterReaderRequest) (ReaderResponse, error)
	Authenticate(ctx context.Context, readerID, apiKey string) (ReaderResponse, error)
	GetAll(ctx context.Context) ([]ReaderResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("reader.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reader.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterReaderRequest) (ReaderResponse, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return ReaderResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return ReaderResponse{}, err
	}

	rd := &Reader{
		ID:         uuid.New(),
		ReaderID:   req.ReaderID,
		Name:       req.Name,
		Location:   req.Location,
		APIKeyHash: string(hash),
	}

	if err := s.repo.Create(ctx, rd); err != nil {
		return ReaderResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("reader registered", zap.String("reader_id", rd.ReaderID))

	resp := mapToResponse(*rd)
	resp.APIKey = apiKey
	return resp, nil
}

// Authenticate verifies a reader's API key and marks the reader as seen.
func (s *service) Authenticate(ctx context.Context, readerID, apiKey string) (ReaderResponse, error) {
	rd, err := s.repo.FindByReaderID(ctx, readerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReaderResponse{}, readererrors.ErrInvalidAPIKey
		}
		return ReaderResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rd.APIKeyHash), []byte(apiKey)); err != nil {
		return ReaderResponse{}, readererrors.ErrInvalidAPIKey
	}

	if err := s.repo.TouchLastSeen(ctx, readerID, time.Now().UTC()); err != nil {
		s.logger.Warn("touch reader last_seen failed",
			zap.String("reader_id", readerID),
			zap.Error(err),
		)
	}

	return mapToResponse(*rd), nil
}

func (s *service) GetAll(ctx context.Context) ([]ReaderResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]ReaderResponse, len(rows))
	for i, rd := range rows {
		res[i] = mapToResponse(rd)
	}
	return res, nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return readererrors.ErrReaderNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_readers_reader_id" {
			return readererrors.ErrReaderAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_readers_reader_id") {
		return readererrors.ErrReaderAlreadyExists
	}

	return err
}

func mapToResponse(rd Reader) ReaderResponse {
	resp := ReaderResponse{
		ID:       rd.ID.String(),
		ReaderID: rd.ReaderID,
		Name:     rd.Name,
		Location: rd.Location,
	}
	if rd.LastSeenAt != nil {
		v := rd.LastSeenAt.Format(time.RFC3339)
		resp.LastSeenAt = &v
	}
	return resp
}
