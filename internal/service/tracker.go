package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"ecomind/tracker-service/internal/gamify"
	"ecomind/tracker-service/internal/models"
	"ecomind/tracker-service/internal/recommend"
	"ecomind/tracker-service/internal/repository"
	"ecomind/tracker-service/pkg/logger"
	"ecomind/tracker-service/pkg/metrics"
	"ecomind/tracker-service/pkg/validation"
)

// TrackerService orchestrates the submission pipeline: footprint accounting,
// log persistence, score/level recomputation and badge evaluation. All
// dependencies are injected; the service holds no mutable state beyond the
// per-user locks.
type TrackerService struct {
	users       *repository.UserRepository
	logs        *repository.ActivityRepository
	badges      *repository.BadgeRepository
	cache       *repository.LeaderboardCache
	validator   *validation.ActivityValidator
	recommender *recommend.Recommender
	log         *logger.Logger
	metrics     *metrics.Metrics // optional

	mu        sync.Mutex
	userLocks map[uint64]*sync.Mutex
}

func NewTrackerService(
	users *repository.UserRepository,
	logs *repository.ActivityRepository,
	badges *repository.BadgeRepository,
	cache *repository.LeaderboardCache,
	validator *validation.ActivityValidator,
	recommender *recommend.Recommender,
	log *logger.Logger,
	m *metrics.Metrics,
) *TrackerService {
	return &TrackerService{
		users:       users,
		logs:        logs,
		badges:      badges,
		cache:       cache,
		validator:   validator,
		recommender: recommender,
		log:         log,
		metrics:     m,
		userLocks:   make(map[uint64]*sync.Mutex),
	}
}

// lockUser serializes mutations for one user. Submissions for different
// users proceed in parallel.
func (s *TrackerService) lockUser(userID uint64) func() {
	s.mu.Lock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// RegisterUser creates a user, or refreshes the email for an existing
// username, and returns the stored row.
func (s *TrackerService) RegisterUser(ctx context.Context, username string, email *string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidInput(errors.New("username is required"))
	}

	userID, err := s.users.Create(ctx, username, email)
	if err != nil {
		return nil, storageFailure("create user", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storageFailure("load user", err)
	}

	s.log.WithUserID(user.ID).WithField("username", user.Username).Info("user registered")
	return user, nil
}

// GetUser retrieves a user by id.
func (s *TrackerService) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageFailure("load user", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *TrackerService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageFailure("load user", err)
	}
	return user, nil
}

// ResetUser wipes the user's history, badges and progress back to the
// initial state. A subsequent identical submission sequence reproduces a
// brand-new user's trajectory.
func (s *TrackerService) ResetUser(ctx context.Context, userID uint64) error {
	unlock := s.lockUser(userID)
	defer unlock()

	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.badges.DeleteByUser(ctx, userID); err != nil {
		return storageFailure("delete badges", err)
	}
	if err := s.logs.DeleteByUser(ctx, userID); err != nil {
		return storageFailure("delete activity logs", err)
	}
	if err := s.users.UpdateProgress(ctx, userID, 0, gamify.Bronze.String()); err != nil {
		return storageFailure("reset progress", err)
	}

	s.cache.Invalidate(ctx)
	s.log.WithUserID(userID).Info("user data reset")
	return nil
}
