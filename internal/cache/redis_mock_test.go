package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, time.Minute)
	mock.ExpectGet(Key("job", "Python")).SetErr(errors.New("connection reset"))

	_, ok, err := c.Get(context.Background(), "job", "Python")

	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "cache get job")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_PutUsesTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, 90*time.Second)
	mock.ExpectSet(Key("resume", "Ada"), []byte(`{}`), 90*time.Second).SetVal("OK")

	require.NoError(t, c.Put(context.Background(), "resume", "Ada", []byte(`{}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_PutError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, 0)
	mock.ExpectSet(Key("resume", "Ada"), []byte(`{}`), 0).SetErr(errors.New("READONLY"))

	err := c.Put(context.Background(), "resume", "Ada", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
}
