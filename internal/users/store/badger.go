package store

import (
	"context"
	"encoding/json"

	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

var userPrefix = []byte("users/")

func userKey(id uuid.UUID) []byte {
	return append(append([]byte(nil), userPrefix...), id.String()...)
}

// BadgerStore is an embedded store backed by BadgerDB. Values are JSON encoded users; the
// time ordered ids make key order equal insertion order.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens the database at path. An empty path opens an in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // disable internal logging
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.New("failed to open badger db").Wrap(err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Find(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(userPrefix); it.ValidForPrefix(userPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var u models.User
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &u) }); err != nil {
				return err
			}
			users = append(users, u)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New("failed to list users").Wrap(err)
	}

	return users, nil
}

func (s *BadgerStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, notFound()
	}

	var user *models.User
	err := s.db.View(func(txn *badger.Txn) error {
		u, err := getUser(txn, uid)
		user = u
		return err
	})
	if err != nil {
		return nil, errors.New("failed to get user by ID").Wrap(err)
	}
	if user == nil {
		return nil, notFound()
	}

	return user, nil
}

func (s *BadgerStore) Insert(ctx context.Context, in models.UserInput) (models.InsertResult, error) {
	user := newUser(in)

	err := s.db.Update(func(txn *badger.Txn) error {
		return putUser(txn, &user)
	})
	if err != nil {
		return models.InsertResult{}, errors.New("failed to create user").Wrap(err)
	}

	return models.InsertResult{ID: user.ID}, nil
}

func (s *BadgerStore) Update(ctx context.Context, id string, in models.UserInput) (int64, error) {
	uid, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	var count int64
	err := s.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, uid)
		if err != nil || user == nil {
			return err
		}
		user.Name = in.Name
		user.Bio = in.Bio
		user.UpdatedAt = timestamp()
		if err := putUser(txn, user); err != nil {
			return err
		}
		count = 1
		return nil
	})
	if err != nil {
		return 0, errors.New("failed to update user").Wrap(err)
	}

	return count, nil
}

func (s *BadgerStore) Remove(ctx context.Context, id string) (int64, error) {
	uid, ok := parseID(id)
	if !ok {
		return 0, nil
	}

	var count int64
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(uid))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(userKey(uid)); err != nil {
			return err
		}
		count = 1
		return nil
	})
	if err != nil {
		return 0, errors.New("failed to delete user").Wrap(err)
	}

	return count, nil
}

// getUser returns nil, nil when the key does not exist.
func getUser(txn *badger.Txn, id uuid.UUID) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &u) }); err != nil {
		return nil, err
	}
	return &u, nil
}

func putUser(txn *badger.Txn, u *models.User) error {
	val, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return txn.Set(userKey(u.ID), val)
}
