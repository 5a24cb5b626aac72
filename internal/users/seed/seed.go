// Package seed loads initial users from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/Aidin1998/usersapi/internal/users/store"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/Aidin1998/usersapi/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the seed file layout:
//
//	users:
//	  - name: Frodo Baggins
//	    bio: ring bearer
type File struct {
	Users []models.UserInput `yaml:"users"`
}

// Parse decodes a seed document. Entries are sanitized and validated the same way as API
// input, so a bad entry rejects the whole file before anything is inserted.
func Parse(data []byte, v *validation.Validator) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, u := range f.Users {
		u.Name = v.SanitizeString(u.Name)
		u.Bio = v.SanitizeString(u.Bio)
		if err := v.ValidateStruct(u); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		f.Users[i] = u
	}
	return &f, nil
}

// Load reads and parses the seed file at path.
func Load(path string, v *validation.Validator) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data, v)
}

// Apply inserts the seed users when the store is empty and returns how many were inserted.
func Apply(ctx context.Context, logger *zap.Logger, st store.Store, f *File) (int, error) {
	existing, err := st.Find(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		logger.Info("Store already populated, skipping seed", zap.Int("users", len(existing)))
		return 0, nil
	}

	for i, u := range f.Users {
		if _, err := st.Insert(ctx, u); err != nil {
			return i, fmt.Errorf("failed to insert seed user %q: %w", u.Name, err)
		}
	}
	logger.Info("Seeded users", zap.Int("users", len(f.Users)))
	return len(f.Users), nil
}
