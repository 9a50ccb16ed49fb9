package reader

import (
	"context"
	"testing"
	"time"

	readererrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/reader/errors"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeReaderRepo struct {
	readers map[string]*Reader
	touched int
}

func (f *fakeReaderRepo) Create(ctx context.Context, r *Reader) error {
	cp := *r
	f.readers[r.ReaderID] = &cp
	return nil
}

func (f *fakeReaderRepo) FindByReaderID(ctx context.Context, readerID string) (*Reader, error) {
	if r, ok := f.readers[readerID]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReaderRepo) FindAll(ctx context.Context) ([]Reader, error) {
	out := make([]Reader, 0, len(f.readers))
	for _, r := range f.readers {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReaderRepo) TouchLastSeen(ctx context.Context, readerID string, seenAt time.Time) error {
	f.touched++
	return nil
}

func TestService_RegisterAndAuthenticate(t *testing.T) {
	repo := &fakeReaderRepo{readers: map[string]*Reader{}}
	svc := NewService(repo)
	ctx := context.Background()

	loc := "HQ lobby"
	registered, err := svc.Register(ctx, RegisterReaderRequest{ReaderID: "gate-1", Name: "Main gate", Location: &loc})
	assert.NoError(t, err)
	assert.NotEmpty(t, registered.APIKey)
	// The stored hash must not be the plaintext key.
	assert.NotEqual(t, registered.APIKey, repo.readers["gate-1"].APIKeyHash)

	authed, err := svc.Authenticate(ctx, "gate-1", registered.APIKey)
	assert.NoError(t, err)
	assert.Equal(t, "gate-1", authed.ReaderID)
	// Authentication never echoes the key back.
	assert.Empty(t, authed.APIKey)
	assert.Equal(t, 1, repo.touched)
}

func TestService_Authenticate_WrongKey(t *testing.T) {
	repo := &fakeReaderRepo{readers: map[string]*Reader{}}
	svc := NewService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterReaderRequest{ReaderID: "gate-1", Name: "Main gate"})
	assert.NoError(t, err)

	_, err = svc.Authenticate(ctx, "gate-1", registered.APIKey+"x")
	assert.ErrorIs(t, err, readererrors.ErrInvalidAPIKey)

	// Unknown reader ids answer identically to wrong keys.
	_, err = svc.Authenticate(ctx, "gate-9", registered.APIKey)
	assert.ErrorIs(t, err, readererrors.ErrInvalidAPIKey)
	assert.Equal(t, 0, repo.touched)
}
