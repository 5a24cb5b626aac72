package store

import (
	"context"

	"github.com/Aidin1998/usersapi/common/dbutil"
	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/Aidin1998/usersapi/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormStore keeps users in a SQL database through gorm.
type GormStore struct {
	log *zap.Logger
	db  *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(log *zap.Logger, db *gorm.DB) *GormStore {
	return &GormStore{log, db}
}

func (s *GormStore) Find(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	result := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&users)
	if result.Error != nil {
		return nil, errors.New("failed to list users").Wrap(dbutil.WrapError(result.Error))
	}

	return users, nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, notFound()
	}

	user, err := dbutil.FindOne[models.User](s.db.WithContext(ctx).Where("id = ?", uid))
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			return nil, notFound()
		}
		return nil, errors.New("failed to get user by ID").Wrap(err)
	}

	return user, nil
}

func (s *GormStore) Insert(ctx context.Context, in models.UserInput) (models.InsertResult, error) {
	user := newUser(in)

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.InsertResult{}, errors.New("failed to create user").Wrap(dbutil.WrapError(err))
	}

	return models.InsertResult{ID: user.ID}, nil
}

func (s *GormStore) Update(ctx context.Context, id string, in models.UserInput) (int64, error) {
	uid, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	updates := map[string]interface{}{
		"name":       in.Name,
		"bio":        in.Bio,
		"updated_at": timestamp(),
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Updates(updates)
	if result.Error != nil {
		return 0, errors.New("failed to update user").Wrap(dbutil.WrapError(result.Error))
	}

	return result.RowsAffected, nil
}

func (s *GormStore) Remove(ctx context.Context, id string) (int64, error) {
	uid, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", uid)
	if result.Error != nil {
		return 0, errors.New("failed to delete user").Wrap(dbutil.WrapError(result.Error))
	}

	if result.RowsAffected > 0 {
		s.log.Debug("user removed", zap.String("id", uid.String()))
	}

	return result.RowsAffected, nil
}
