package bootstrap

import (
	"context"
	"testing"
)

func TestInitRedisDisabled(t *testing.T) {
	client, err := InitRedis(context.Background(), "")
	if err != nil || client != nil {
		t.Fatalf("expected no client without url, got %v %v", client, err)
	}
}

func TestInitRedisBadURL(t *testing.T) {
	if _, err := InitRedis(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}
