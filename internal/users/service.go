// Package users implements the user operations behind the HTTP API.
package users

import (
	"context"

	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/Aidin1998/usersapi/internal/messaging"
	"github.com/Aidin1998/usersapi/internal/users/store"
	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/Aidin1998/usersapi/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService defines the user operations.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in models.UserInput) (*models.User, error)
	Update(ctx context.Context, id string, in models.UserInput) (*models.User, error)
	Remove(ctx context.Context, id string) error
}

// Cache is the read-through cache in front of the store.
type Cache interface {
	Get(ctx context.Context, id string) (*models.User, bool, error)
	Set(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// Service implements UserService
type Service struct {
	logger    *zap.Logger
	store     store.Store
	cache     Cache
	publisher messaging.Publisher
	validator *validation.Validator
}

// NewService creates a new user service. cache and publisher may be nil.
func NewService(logger *zap.Logger, st store.Store, cache Cache, publisher messaging.Publisher, v *validation.Validator) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if v == nil {
		v = validation.NewValidator(logger)
	}
	return &Service{
		logger:    logger,
		store:     st,
		cache:     cache,
		publisher: publisher,
		validator: v,
	}
}

// List returns all users
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Find(ctx)
	record("list", err)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns a single user, served from the cache when possible
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	id, err := canonicalID(id)
	if err != nil {
		record("get", err)
		return nil, err
	}

	if user, ok := s.cached(ctx, id); ok {
		record("get", nil)
		return user, nil
	}

	user, err := s.store.FindByID(ctx, id)
	record("get", err)
	if err != nil {
		return nil, err
	}

	s.fill(ctx, user)
	return user, nil
}

// Create validates and stores a new user and returns the stored record
func (s *Service) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	in, err := s.validate(in)
	if err != nil {
		record("create", err)
		return nil, err
	}

	res, err := s.store.Insert(ctx, in)
	if err != nil {
		record("create", err)
		return nil, err
	}

	user, err := s.store.FindByID(ctx, res.ID.String())
	record("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()))
	s.publish(ctx, messaging.MsgUserCreated, user.ID.String(), user)
	return user, nil
}

// Update validates and applies the changes and returns the modified record
func (s *Service) Update(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	in, err := s.validate(in)
	if err != nil {
		record("update", err)
		return nil, err
	}
	if id, err = canonicalID(id); err != nil {
		record("update", err)
		return nil, err
	}

	count, err := s.store.Update(ctx, id, in)
	if err == nil && count == 0 {
		err = errors.NotFound.Explain("user %s not found", id)
	}
	if err != nil {
		record("update", err)
		return nil, err
	}
	s.invalidate(ctx, id)

	user, err := s.store.FindByID(ctx, id)
	record("update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User updated", zap.String("user_id", id))
	s.publish(ctx, messaging.MsgUserUpdated, id, user)
	return user, nil
}

// Remove deletes the user
func (s *Service) Remove(ctx context.Context, id string) error {
	id, err := canonicalID(id)
	if err != nil {
		record("remove", err)
		return err
	}

	count, err := s.store.Remove(ctx, id)
	if err == nil && count == 0 {
		err = errors.NotFound.Explain("user %s not found", id)
	}
	record("remove", err)
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.logger.Info("User removed", zap.String("user_id", id))
	s.publish(ctx, messaging.MsgUserDeleted, id, nil)
	return nil
}

// validate sanitizes the input before checking it, so markup-only values count as missing
func (s *Service) validate(in models.UserInput) (models.UserInput, error) {
	in.Name = s.validator.SanitizeString(in.Name)
	in.Bio = s.validator.SanitizeString(in.Bio)
	if err := s.validator.ValidateStruct(in); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Service) cached(ctx context.Context, id string) (*models.User, bool) {
	if s.cache == nil {
		return nil, false
	}
	user, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Cache lookup failed", zap.String("user_id", id), zap.Error(err))
		return nil, false
	}
	return user, ok
}

func (s *Service) fill(ctx context.Context, user *models.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, user); err != nil {
		s.logger.Warn("Cache fill failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, msgType messaging.MessageType, id string, user *models.User) {
	if err := s.publisher.Publish(ctx, messaging.NewUserEvent(msgType, id, user)); err != nil {
		s.logger.Error("Failed to publish user event",
			zap.String("type", string(msgType)),
			zap.String("user_id", id),
			zap.Error(err))
	}
}

// canonicalID parses id so that cache keys and event keys use one spelling per user.
// Ids that can never match a record are reported as not found.
func canonicalID(id string) (string, error) {
	uid, err := uuid.Parse(id)
	if err != nil || uid == uuid.Nil {
		return "", errors.NotFound.Explain("user %s not found", id)
	}
	return uid.String(), nil
}

func record(operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, errors.Invalid):
		result = "invalid"
	case errors.Is(err, errors.NotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.UserOperations.WithLabelValues(operation, result).Inc()
}
