package dbutil_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/Aidin1998/usersapi/common/dbutil"
	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWrapError(t *testing.T) {
	assert.Nil(t, dbutil.WrapError(nil))

	assert.True(t, errors.Is(dbutil.WrapError(gorm.ErrRecordNotFound), errors.NotFound))

	pgErr := &pgconn.PgError{Code: dbutil.DuplicateKeyErrorCode}
	wrapped := dbutil.WrapError(fmt.Errorf("insert: %w", pgErr))
	assert.True(t, errors.Is(wrapped, errors.Conflict))

	kinded := errors.Invalid.Explain("bad id")
	assert.Same(t, kinded, dbutil.WrapError(kinded))

	timeout := dbutil.WrapError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.True(t, errors.Is(timeout, errors.Unavailable))
	assert.Equal(t, 503, errors.StatusOf(timeout))

	plain := fmt.Errorf("connection reset")
	assert.Equal(t, plain, dbutil.WrapError(plain))
}
