package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/huynhanx03/servicequeue/pkg/settings"
)

const (
	redisImage = "redis:7-alpine"
	redisPort  = "6379/tcp"
)

func TestRedisEngine_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	if !isDockerRunning(ctx) {
		t.Skip("Docker is not running, skipping integration test")
	}

	endpoint, terminate, err := setupRedisContainer(ctx)
	if err != nil {
		t.Fatalf("failed to setup redis container: %v", err)
	}
	defer terminate()

	host, portStr, _ := net.SplitHostPort(endpoint)
	port, _ := strconv.Atoi(portStr)

	engine, err := NewConnection(&settings.Redis{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	defer engine.Close()

	t.Run("set_get_delete", func(t *testing.T) {
		if err := engine.Set(ctx, "k", map[string]int{"size": 3}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, ok, err := engine.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("Get() = (%s, %v, %v)", got, ok, err)
		}
		if string(got) != `{"size":3}` {
			t.Errorf("Get() = %s, want {\"size\":3}", got)
		}
		if err := engine.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if got, ok, err := engine.Get(ctx, "k"); ok || err != nil || got != nil {
			t.Errorf("Get after Delete = (%s, %v, %v), want (nil, false, nil)", got, ok, err)
		}
	})

	t.Run("push_capped", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if err := engine.PushCapped(ctx, "list", 3, []byte(strconv.Itoa(i))); err != nil {
				t.Fatalf("PushCapped() error = %v", err)
			}
		}
		got, err := engine.Range(ctx, "list", 10)
		if err != nil {
			t.Fatalf("Range() error = %v", err)
		}
		want := []string{"4", "3", "2"}
		if len(got) != len(want) {
			t.Fatalf("Range() len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if string(got[i]) != want[i] {
				t.Errorf("Range()[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func TestNewConnection_Unreachable(t *testing.T) {
	_, err := NewConnection(&settings.Redis{Host: "127.0.0.1", Port: 1, DialTimeout: 1, MaxRetries: -1})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("NewConnection() error = %v, want ErrConnectionFailed", err)
	}
}

func setupRedisContainer(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{redisPort},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to start container: %w", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to get endpoint: %w", err)
	}

	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate container: %v\n", err)
		}
	}

	return endpoint, terminate, nil
}

func isDockerRunning(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "info")
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}
