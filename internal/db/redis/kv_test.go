package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/keepson/keepson/internal/db"
)

func TestGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "keepson:budget:oracle:daily:2026-08-23")).
		Return(mock.Result(mock.RedisString("1500")))

	data, err := s.Get(context.Background(), "keepson:budget:oracle:daily:2026-08-23")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "1500" {
		t.Fatalf("Get = %q", data)
	}
}

func TestGetMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "nope")).
		Return(mock.Result(mock.RedisNil()))

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("want ErrKeyNotFound, got %v", err)
	}
}

func TestSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("SET", "k", "v")).
		Return(mock.Result(mock.RedisString("OK")))

	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("SET", "k", "v", "EX", "600")).
		Return(mock.Result(mock.RedisString("OK")))

	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 10*time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
}

func TestIncrBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("INCRBY", "counter", "42")).
		Return(mock.Result(mock.RedisInt64(42)))

	if err := s.IncrBy(context.Background(), "counter", 42); err != nil {
		t.Fatalf("IncrBy: %v", err)
	}
}

func TestIncrByError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return cmd[0] == "INCRBY"
	})).Return(mock.ErrorResult(errors.New("readonly replica")))

	err := s.IncrBy(context.Background(), "counter", 1)
	if !isDBError(t, err, db.OpIncrBy) {
		t.Fatalf("want db.Error with op %s, got %v", db.OpIncrBy, err)
	}
}

func TestExpire(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("EXPIRE", "k", "172800")).
		Return(mock.Result(mock.RedisInt64(1)))

	if err := s.Expire(context.Background(), "k", 48*time.Hour, false); err != nil {
		t.Fatalf("Expire: %v", err)
	}
}

func TestExpireNX(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("EXPIRE", "k", "172800", "NX")).
		Return(mock.Result(mock.RedisInt64(0)))

	if err := s.Expire(context.Background(), "k", 48*time.Hour, true); err != nil {
		t.Fatalf("Expire NX: %v", err)
	}
}
