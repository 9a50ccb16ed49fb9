package tag

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee"
	employeeerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/employee/errors"
	tagerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeTagRepo struct {
	createFn        func(ctx context.Context, b *TagBinding) error
	findByTagIDFn   func(ctx context.Context, tagID string) (*TagBinding, error)
	findAllFn       func(ctx context.Context) ([]TagBinding, error)
	updateFn        func(ctx context.Context, b *TagBinding) error
	touchLastUsedFn func(ctx context.Context, tagID string, usedAt time.Time, readerID string) error
}

func (f *fakeTagRepo) Create(ctx context.Context, b *TagBinding) error { return f.createFn(ctx, b) }
func (f *fakeTagRepo) FindByTagID(ctx context.Context, tagID string) (*TagBinding, error) {
	return f.findByTagIDFn(ctx, tagID)
}
func (f *fakeTagRepo) FindAll(ctx context.Context) ([]TagBinding, error) { return f.findAllFn(ctx) }
func (f *fakeTagRepo) Update(ctx context.Context, b *TagBinding) error   { return f.updateFn(ctx, b) }
func (f *fakeTagRepo) TouchLastUsed(ctx context.Context, tagID string, usedAt time.Time, readerID string) error {
	if f.touchLastUsedFn != nil {
		return f.touchLastUsedFn(ctx, tagID, usedAt, readerID)
	}
	return nil
}

type fakeEmployeeRepo struct {
	known map[string]bool
}

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.known[id] {
		return &employee.Employee{}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepo) Exists(ctx context.Context, id string) (bool, error) {
	return f.known[id], nil
}

func TestService_Resolve(t *testing.T) {
	empID := uuid.New()
	bindings := map[string]*TagBinding{
		"TAG-ACTIVE":     {ID: uuid.New(), TagID: "TAG-ACTIVE", EmployeeID: &empID, Status: StatusActive},
		"TAG-INACTIVE":   {ID: uuid.New(), TagID: "TAG-INACTIVE", EmployeeID: &empID, Status: StatusInactive},
		"TAG-LOST":       {ID: uuid.New(), TagID: "TAG-LOST", EmployeeID: &empID, Status: StatusLost},
		"TAG-UNASSIGNED": {ID: uuid.New(), TagID: "TAG-UNASSIGNED", Status: StatusActive},
	}

	touched := 0
	repo := &fakeTagRepo{
		findByTagIDFn: func(ctx context.Context, tagID string) (*TagBinding, error) {
			if b, ok := bindings[tagID]; ok {
				return b, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		touchLastUsedFn: func(ctx context.Context, tagID string, usedAt time.Time, readerID string) error {
			touched++
			assert.Equal(t, "gate-1", readerID)
			return nil
		},
	}
	svc := NewService(repo, &fakeEmployeeRepo{}, nil)
	ctx := context.Background()

	resolved, err := svc.Resolve(ctx, "TAG-ACTIVE", "gate-1")
	assert.NoError(t, err)
	assert.Equal(t, empID.String(), resolved.EmployeeID)
	assert.Equal(t, 1, touched)

	_, err = svc.Resolve(ctx, "TAG-INACTIVE", "gate-1")
	assert.ErrorIs(t, err, tagerrors.ErrTagInactive)

	_, err = svc.Resolve(ctx, "TAG-LOST", "gate-1")
	assert.ErrorIs(t, err, tagerrors.ErrTagInactive)

	_, err = svc.Resolve(ctx, "TAG-UNASSIGNED", "gate-1")
	assert.ErrorIs(t, err, tagerrors.ErrTagUnassigned)

	_, err = svc.Resolve(ctx, "TAG-UNKNOWN", "gate-1")
	assert.ErrorIs(t, err, tagerrors.ErrTagNotFound)

	// Only the active resolve touches last_used.
	assert.Equal(t, 1, touched)
}

func TestService_Resolve_CacheHit(t *testing.T) {
	empID := uuid.New()
	binding := TagBinding{ID: uuid.New(), TagID: "TAG-1", EmployeeID: &empID, Status: StatusActive}
	payload, err := json.Marshal(&binding)
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(GetResolveCacheKey("TAG-1")).SetVal(string(payload))

	repo := &fakeTagRepo{
		findByTagIDFn: func(ctx context.Context, tagID string) (*TagBinding, error) {
			t.Fatal("cache hit must not reach the repository")
			return nil, nil
		},
	}
	svc := NewService(repo, &fakeEmployeeRepo{}, rdb)

	resolved, err := svc.Resolve(context.Background(), "TAG-1", "gate-1")
	assert.NoError(t, err)
	assert.Equal(t, empID.String(), resolved.EmployeeID)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Resolve_CacheMissPopulates(t *testing.T) {
	empID := uuid.New()
	binding := TagBinding{ID: uuid.New(), TagID: "TAG-1", EmployeeID: &empID, Status: StatusActive}
	payload, err := json.Marshal(&binding)
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(GetResolveCacheKey("TAG-1")).RedisNil()
	redisMock.ExpectSet(GetResolveCacheKey("TAG-1"), payload, 5*time.Minute).SetVal("OK")

	repo := &fakeTagRepo{
		findByTagIDFn: func(ctx context.Context, tagID string) (*TagBinding, error) {
			return &binding, nil
		},
	}
	svc := NewService(repo, &fakeEmployeeRepo{}, rdb)

	_, err = svc.Resolve(context.Background(), "TAG-1", "gate-1")
	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Register(t *testing.T) {
	var created *TagBinding
	repo := &fakeTagRepo{
		createFn: func(ctx context.Context, b *TagBinding) error {
			created = b
			return nil
		},
	}
	empID := uuid.New().String()
	svc := NewService(repo, &fakeEmployeeRepo{known: map[string]bool{empID: true}}, nil)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterTagRequest{TagID: "TAG-1", EmployeeID: &empID})
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, resp.Status)
	if assert.NotNil(t, created) {
		assert.Equal(t, empID, created.EmployeeID.String())
	}

	_, err = svc.Register(ctx, RegisterTagRequest{TagID: "TAG-2", Status: "retired"})
	assert.ErrorIs(t, err, tagerrors.ErrInvalidTagStatus)

	bad := "not-a-uuid"
	_, err = svc.Register(ctx, RegisterTagRequest{TagID: "TAG-3", EmployeeID: &bad})
	assert.ErrorIs(t, err, tagerrors.ErrInvalidEmployeeID)

	ghost := uuid.New().String()
	_, err = svc.Register(ctx, RegisterTagRequest{TagID: "TAG-4", EmployeeID: &ghost})
	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
}

func TestService_Assign_InvalidatesCache(t *testing.T) {
	empID := uuid.New().String()
	binding := &TagBinding{ID: uuid.New(), TagID: "TAG-1", Status: StatusActive}

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel(GetResolveCacheKey("TAG-1")).SetVal(1)

	repo := &fakeTagRepo{
		findByTagIDFn: func(ctx context.Context, tagID string) (*TagBinding, error) { return binding, nil },
		updateFn:      func(ctx context.Context, b *TagBinding) error { return nil },
	}
	svc := NewService(repo, &fakeEmployeeRepo{known: map[string]bool{empID: true}}, rdb)

	resp, err := svc.Assign(context.Background(), "TAG-1", AssignTagRequest{EmployeeID: empID})
	assert.NoError(t, err)
	if assert.NotNil(t, resp.EmployeeID) {
		assert.Equal(t, empID, *resp.EmployeeID)
	}
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Assign_UnknownEmployee(t *testing.T) {
	repo := &fakeTagRepo{
		findByTagIDFn: func(ctx context.Context, tagID string) (*TagBinding, error) {
			t.Fatal("lookup must not happen for an unknown employee")
			return nil, nil
		},
	}
	svc := NewService(repo, &fakeEmployeeRepo{}, nil)

	_, err := svc.Assign(context.Background(), "TAG-1", AssignTagRequest{EmployeeID: uuid.New().String()})
	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	binding := &TagBinding{ID: uuid.New(), TagID: "TAG-1", Status: StatusActive}
	repo := &fakeTagRepo{
		findByTagIDFn: func(ctx context.Context, tagID string) (*TagBinding, error) { return binding, nil },
		updateFn:      func(ctx context.Context, b *TagBinding) error { return nil },
	}
	svc := NewService(repo, &fakeEmployeeRepo{}, nil)
	ctx := context.Background()

	resp, err := svc.UpdateStatus(ctx, "TAG-1", UpdateTagStatusRequest{Status: StatusLost})
	assert.NoError(t, err)
	assert.Equal(t, StatusLost, resp.Status)

	_, err = svc.UpdateStatus(ctx, "TAG-1", UpdateTagStatusRequest{Status: "broken"})
	assert.ErrorIs(t, err, tagerrors.ErrInvalidTagStatus)
}
