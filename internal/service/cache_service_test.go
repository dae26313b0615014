package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/idgen"
)

type memoryCacheRepo struct {
	items       map[string][]byte
	gets        int
	sets        int
	invalidated []string
	failGet     bool
	failDelete  bool
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	if m.failGet {
		return errors.New("connection refused")
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	if m.failDelete {
		return errors.New("redis: connection pool timeout")
	}
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	svc.Set(context.Background(), "k", "v")
	var out string
	assert.False(t, svc.Get(context.Background(), "k", &out))
	assert.Zero(t, repo.sets)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Invalidate(context.Background(), cachePatternAll)
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), 0, zap.NewNop(), true)
	ctx := context.Background()

	var out []string
	assert.False(t, svc.Get(ctx, "k", &out))

	svc.Set(ctx, "k", []string{"Bo"})
	require.True(t, svc.Get(ctx, "k", &out))
	assert.Equal(t, []string{"Bo"}, out)

	svc.Invalidate(ctx, "k*")
	assert.False(t, svc.Get(ctx, "k", &out))
}

func TestCacheServiceErrorIsAMiss(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.failGet = true
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	var out []string
	assert.False(t, svc.Get(context.Background(), "k", &out))
}

func TestCacheServiceFailedInvalidateDropsOldEntries(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	svc.Set(ctx, cacheKeyTeachers, []string{"stale"})
	repo.failDelete = true
	svc.Invalidate(ctx, cachePatternAll)

	var out []string
	assert.False(t, svc.Get(ctx, cacheKeyTeachers, &out))
	assert.Contains(t, repo.items, cacheKeyTeachers, "old entry is still in redis")

	svc.Set(ctx, cacheKeyTeachers, []string{"fresh"})
	require.True(t, svc.Get(ctx, cacheKeyTeachers, &out))
	assert.Equal(t, []string{"fresh"}, out)

	repo.failDelete = false
	svc.Invalidate(ctx, cachePatternAll)
	assert.Empty(t, repo.items)
}

func TestDirectoryRosterIsFreshWhenInvalidationFails(t *testing.T) {
	ctx := context.Background()
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc, err := NewDirectoryService(ctx, repository.NewUserRepository([]models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewStudent("s1", "Bo", "Ann"),
	}), validator.New(), zap.NewNop(), DirectoryOptions{
		CurrentUserID: "t1",
		NewStudentID:  idgen.New("user-s", 0, fixedClock).Next,
		Cache:         cache,
	})
	require.NoError(t, err)

	roster, err := svc.GetStudentsForTeacher(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, []string{"Bo"}, roster)

	cacheRepo.failDelete = true
	_, err = svc.AddStudentToTeacherList(ctx, AddStudentRequest{Name: "Cy"})
	require.NoError(t, err)

	roster, err = svc.GetStudentsForTeacher(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bo", "Cy"}, roster)

	teachers, err := svc.GetTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, []string{"Bo", "Cy"}, teachers[0].Teacher().Students)
}

func TestDirectoryReadsUseCacheAndMutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc, err := NewDirectoryService(ctx, repository.NewUserRepository([]models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewStudent("s1", "Bo", "Ann"),
	}), validator.New(), zap.NewNop(), DirectoryOptions{
		CurrentUserID: "t1",
		NewStudentID:  idgen.New("user-s", 0, fixedClock).Next,
		Cache:         cache,
	})
	require.NoError(t, err)

	_, err = svc.GetTeachers(ctx)
	require.NoError(t, err)
	_, err = svc.GetStudentsForTeacher(ctx, "t1")
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.items, cacheKeyTeachers)
	assert.Contains(t, cacheRepo.items, cacheKeyRosterPrefix+"t1")

	teachers, err := svc.GetTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, []string{"Bo"}, teachers[0].Teacher().Students)
	assert.Equal(t, 2, cacheRepo.sets)

	roster, err := svc.AddStudentToTeacherList(ctx, AddStudentRequest{Name: "Cy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bo", "Cy"}, roster)
	assert.Empty(t, cacheRepo.items)
	assert.Contains(t, cacheRepo.invalidated, cachePatternAll)

	roster, err = svc.GetStudentsForTeacher(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bo", "Cy"}, roster)
}
