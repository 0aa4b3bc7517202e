package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-contract/internal/domain/entity"
	"github.com/oksasatya/go-users-contract/internal/domain/event"
	repo "github.com/oksasatya/go-users-contract/internal/domain/repository"
	"github.com/oksasatya/go-users-contract/pkg/contract"
	"github.com/oksasatya/go-users-contract/pkg/dto"
	"github.com/oksasatya/go-users-contract/pkg/querycache"
	"github.com/oksasatya/go-users-contract/pkg/validation"
)

// EventPublisher sends user events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, e event.UserEvent) error
}

// UserSearcher is a full-text index of users.
type UserSearcher interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]*entity.User, error)
}

type Service struct {
	Repo     repo.UserRepository
	Cache    querycache.Cache
	CacheTTL time.Duration
	Events   EventPublisher
	Search   UserSearcher
	Logger   *logrus.Logger

	validate *validator.Validate
	now      func() time.Time
}

// NewService wires the user service. cache, events and searcher may be nil:
// reads then always hit the repository, creates skip publishing, and search
// returns no results.
func NewService(r repo.UserRepository, cache querycache.Cache, cacheTTL time.Duration, events EventPublisher, searcher UserSearcher, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Repo:     r,
		Cache:    cache,
		CacheTTL: cacheTTL,
		Events:   events,
		Search:   searcher,
		Logger:   logger,
		validate: validation.Engine(),
		now:      time.Now,
	}
}

// List returns every user ordered by id.
func (s *Service) List(ctx context.Context) ([]contract.UserDetails, error) {
	return cached(ctx, s, contract.UsersQueryKey("list", nil), func() ([]contract.UserDetails, error) {
		users, err := s.Repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return mapAll(s.validate, users, toUserDetails)
	})
}

// GetByID returns the user or a *UserNotFoundError.
func (s *Service) GetByID(ctx context.Context, id int64) (contract.UserDetails, error) {
	args := &contract.Args{Params: map[string]string{"id": strconv.FormatInt(id, 10)}}
	return cached(ctx, s, contract.UsersQueryKey("byId", args), func() (contract.UserDetails, error) {
		u, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return contract.UserDetails{}, &UserNotFoundError{ID: id}
			}
			return contract.UserDetails{}, err
		}
		return toUserDetails(s.validate, u)
	})
}

// Create validates and stores a user, then drops cached lists and announces
// the new user.
func (s *Service) Create(ctx context.Context, in contract.CreateUser) (contract.UserDetails, error) {
	if err := s.validate.Struct(in); err != nil {
		return contract.UserDetails{}, &dto.ValidationError{Details: validation.ToDetails(err)}
	}
	u := &entity.User{FirstName: in.FirstName, LastName: in.LastName}
	if err := s.Repo.Create(ctx, u); err != nil {
		s.Logger.WithError(err).Error("create user failed")
		return contract.UserDetails{}, err
	}
	log := s.Logger.WithField("user_id", u.ID)

	if s.Cache != nil {
		for _, route := range []string{"list", "findNames"} {
			key := contract.UsersQueryKey(route, nil)
			if err := s.Cache.InvalidatePrefix(ctx, key); err != nil {
				log.WithError(err).WithField("key", key).Warn("cache invalidation failed")
			}
		}
	}
	s.announce(ctx, u, log)

	return toUserDetails(s.validate, u)
}

// announce publishes user.created, or indexes the user directly when no
// publisher is configured or publishing fails.
func (s *Service) announce(ctx context.Context, u *entity.User, log *logrus.Entry) {
	if s.Events != nil {
		err := s.Events.Publish(ctx, event.NewUserCreated(u, s.now()))
		if err == nil {
			return
		}
		log.WithError(err).Warn("publish user event failed")
	}
	if s.Search != nil {
		if err := s.Search.Index(ctx, u); err != nil {
			log.WithError(err).Warn("es index failed")
		}
	}
}

// FindNames returns users whose names contain the given fragments.
func (s *Service) FindNames(ctx context.Context, q contract.FindNamesQuery) ([]contract.UserNameDetails, error) {
	args := &contract.Args{Query: map[string]string{}}
	for k, v := range dto.Plain(q) {
		args.Query[k] = fmt.Sprint(v)
	}
	return cached(ctx, s, contract.UsersQueryKey("findNames", args), func() ([]contract.UserNameDetails, error) {
		users, err := s.Repo.FindByNames(ctx, repo.NameFilter{FirstName: q.FirstName, LastName: q.LastName})
		if err != nil {
			return nil, err
		}
		return mapAll(s.validate, users, toUserNameDetails)
	})
}

// SearchUsers queries the search index. Without one it returns no users.
func (s *Service) SearchUsers(ctx context.Context, q contract.SearchQuery) ([]contract.UserDetails, error) {
	if s.Search == nil {
		return []contract.UserDetails{}, nil
	}
	users, err := s.Search.Search(ctx, q.Q, q.Size)
	if err != nil {
		s.Logger.WithError(err).WithField("q", q.Q).Warn("es search failed")
		return nil, err
	}
	return mapAll(s.validate, users, toUserDetails)
}

// cached serves key from the query cache, loading and storing it on a miss.
// Cache errors are logged and never fail the read.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	if s.Cache == nil {
		return load()
	}
	log := s.Logger.WithField("key", key)
	if b, ok, err := s.Cache.Get(ctx, key); err != nil {
		log.WithError(err).Warn("cache get failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		log.Warn("dropping undecodable cache entry")
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		if err := s.Cache.Set(ctx, key, b, s.CacheTTL); err != nil {
			log.WithError(err).Warn("cache set failed")
		}
	}
	return v, nil
}
