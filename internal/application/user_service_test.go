package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/event"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/memory"
	"github.com/oksasatya/go-users-contract/pkg/contract"
	"github.com/oksasatya/go-users-contract/pkg/dto"
	"github.com/oksasatya/go-users-contract/pkg/querycache"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByNames(ctx context.Context, f repository.NameFilter) ([]*entity.User, error) {
	args := m.Called(ctx, f)
	if u := args.Get(0); u != nil {
		return u.([]*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e event.UserEvent) error {
	return m.Called(ctx, e).Error(0)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Index(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockSearcher) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	args := m.Called(ctx, q, size)
	if u := args.Get(0); u != nil {
		return u.([]*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

var ts = time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

func TestList_MapsDerivedFields(t *testing.T) {
	ctx := context.Background()
	r := new(MockUserRepository)
	r.On("List", ctx).Return([]*entity.User{
		{ID: 1, FirstName: "Alice", LastName: "Smith", CreatedAt: ts, UpdatedAt: ts},
		{ID: 2, FirstName: "Bob", LastName: "Johnson", CreatedAt: ts, UpdatedAt: ts},
	}, nil)
	s := NewService(r, nil, 0, nil, nil, quietLogger())

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, contract.UserDetails{
		ID: 1, FirstName: "Alice", LastName: "Smith", CapitalizedName: "ALICE SMITH", CreatedAt: ts, UpdatedAt: ts,
	}, users[0])
	assert.Equal(t, "BOB JOHNSON", users[1].CapitalizedName)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	s := NewService(memory.NewUserRepository(), nil, 0, nil, nil, quietLogger())
	users, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestGetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	r := new(MockUserRepository)
	r.On("GetByID", ctx, int64(99999)).Return(nil, repository.ErrNotFound)
	s := NewService(r, nil, 0, nil, nil, quietLogger())

	_, err := s.GetByID(ctx, 99999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.EqualError(t, err, "user with id 99999 not found")

	var nf *UserNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(99999), nf.ID)
}

func TestGetByID_RepoErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	r := new(MockUserRepository)
	boom := errors.New("connection reset")
	r.On("GetByID", ctx, int64(1)).Return(nil, boom)
	s := NewService(r, nil, 0, nil, nil, quietLogger())

	_, err := s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestGetByID_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	r := new(MockUserRepository)
	r.On("GetByID", ctx, int64(1)).
		Return(&entity.User{ID: 1, FirstName: "Jane", LastName: "Doe", CreatedAt: ts, UpdatedAt: ts}, nil).
		Once()
	cache := querycache.NewMemory()
	s := NewService(r, cache, time.Minute, nil, nil, quietLogger())

	first, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	second, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, second.CreatedAt.Equal(ts))
	r.AssertExpectations(t)

	_, ok, _ := cache.Get(ctx, "users:byId:1")
	assert.True(t, ok)
}

func TestCreate_InvalidatesListsAndPublishes(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSeededUserRepository()
	cache := querycache.NewMemory()
	pub := new(MockPublisher)
	pub.On("Publish", ctx, mock.MatchedBy(func(e event.UserEvent) bool {
		return e.Type == event.UserCreated && e.UserID == 4 && e.FirstName == "John"
	})).Return(nil).Once()
	search := new(MockSearcher)
	s := NewService(repo, cache, time.Minute, pub, search, quietLogger())

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	_, err = s.FindNames(ctx, contract.FindNamesQuery{FirstName: "o"})
	require.NoError(t, err)
	_, err = s.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, cache.Len())

	created, err := s.Create(ctx, contract.CreateUser{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, "JOHN DOE", created.CapitalizedName)
	assert.False(t, created.CreatedAt.IsZero())

	_, ok, _ := cache.Get(ctx, "users:list")
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, "users:findNames:firstName=o")
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, "users:byId:1")
	assert.True(t, ok, "user entries stay cached")

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	pub.AssertExpectations(t)
	search.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
}

func TestCreate_IndexesWhenPublishFails(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("Publish", ctx, mock.Anything).Return(errors.New("channel closed"))
	search := new(MockSearcher)
	search.On("Index", ctx, mock.AnythingOfType("*entity.User")).Return(nil).Once()
	s := NewService(memory.NewUserRepository(), nil, 0, pub, search, quietLogger())

	_, err := s.Create(ctx, contract.CreateUser{FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	search.AssertExpectations(t)
}

func TestCreate_IndexErrorDoesNotFail(t *testing.T) {
	ctx := context.Background()
	search := new(MockSearcher)
	search.On("Index", ctx, mock.Anything).Return(errors.New("es down"))
	logger, hook := test.NewNullLogger()
	s := NewService(memory.NewUserRepository(), nil, 0, nil, search, logger)

	_, err := s.Create(ctx, contract.CreateUser{FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	r := new(MockUserRepository)
	s := NewService(r, nil, 0, nil, nil, quietLogger())

	_, err := s.Create(ctx, contract.CreateUser{FirstName: "", LastName: "Doe"})
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "firstName")
	r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFindNames(t *testing.T) {
	ctx := context.Background()
	r := new(MockUserRepository)
	r.On("FindByNames", ctx, repository.NameFilter{LastName: "doe"}).Return([]*entity.User{
		{ID: 3, FirstName: "Jane", LastName: "Doe", CreatedAt: ts, UpdatedAt: ts},
	}, nil).Once()
	cache := querycache.NewMemory()
	s := NewService(r, cache, 0, nil, nil, quietLogger())

	for i := 0; i < 2; i++ {
		got, err := s.FindNames(ctx, contract.FindNamesQuery{LastName: "doe"})
		require.NoError(t, err)
		assert.Equal(t, []contract.UserNameDetails{{FirstName: "Jane", LastName: "Doe", FullName: "Jane Doe"}}, got)
	}
	r.AssertExpectations(t)

	_, ok, _ := cache.Get(ctx, "users:findNames:lastName=doe")
	assert.True(t, ok)
}

func TestFindNames_SeparatorInValueGetsOwnEntry(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	require.NoError(t, repo.Create(ctx, &entity.User{FirstName: "John", LastName: "Doe"}))
	s := NewService(repo, querycache.NewMemory(), time.Minute, nil, nil, quietLogger())

	packed, err := s.FindNames(ctx, contract.FindNamesQuery{FirstName: "Jo:lastName=Doe"})
	require.NoError(t, err)
	assert.Empty(t, packed)

	split, err := s.FindNames(ctx, contract.FindNamesQuery{FirstName: "Jo", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, []contract.UserNameDetails{{FirstName: "John", LastName: "Doe", FullName: "John Doe"}}, split)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()

	s := NewService(memory.NewUserRepository(), nil, 0, nil, nil, quietLogger())
	got, err := s.SearchUsers(ctx, contract.SearchQuery{Q: "doe"})
	require.NoError(t, err)
	assert.Empty(t, got)

	search := new(MockSearcher)
	search.On("Search", ctx, "doe", 5).Return([]*entity.User{{ID: 2, FirstName: "John", LastName: "Doe"}}, nil)
	s = NewService(memory.NewUserRepository(), nil, 0, nil, search, quietLogger())
	got, err = s.SearchUsers(ctx, contract.SearchQuery{Q: "doe", Size: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "JOHN DOE", got[0].CapitalizedName)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}
func (failingCache) InvalidatePrefix(context.Context, string) error { return errors.New("redis down") }

func TestCacheErrorsDoNotFailRequests(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.NewSeededUserRepository(), failingCache{}, time.Minute, nil, nil, quietLogger())

	users, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = s.Create(ctx, contract.CreateUser{FirstName: "A", LastName: "B"})
	require.NoError(t, err)
}
