package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zapcore"

	"jobmatch-backend/internal/shared/telemetry"
)

// fakeClient implements the handful of commands Redis uses over an
// in-memory map. Any other command panics through the nil embedded client.
type fakeClient struct {
	redis.UniversalClient

	mu      sync.Mutex
	items   map[string]string
	ttls    map[string]time.Duration
	deleted []string
	failGet error
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.items[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.items[key] = string(v)
	case string:
		f.items[key] = v
	default:
		return redis.NewStatusResult("", errors.New("unsupported value type"))
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		f.deleted = append(f.deleted, k)
		if _, ok := f.items[k]; ok {
			delete(f.items, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	if v, ok := f.items[key]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return redis.NewIntResult(0, errors.New("ERR value is not an integer"))
		}
		n = parsed
	}
	n++
	f.items[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Close() error { return nil }

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRedisSetThenGet(t *testing.T) {
	client := newFakeClient()
	c := NewRedisWithClient(client)
	ctx := context.Background()

	if err := c.Set(ctx, "k", entry{Name: "go", Count: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := client.items["k"]; got != `{"name":"go","count":3}` {
		t.Fatalf("unexpected stored value %q", got)
	}
	if client.ttls["k"] != time.Minute {
		t.Fatalf("expected ttl to be passed through, got %v", client.ttls["k"])
	}

	var got entry
	hit, err := c.Get(ctx, "k", &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if got != (entry{Name: "go", Count: 3}) {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestRedisGetMiss(t *testing.T) {
	c := NewRedisWithClient(newFakeClient())
	var got entry
	hit, err := c.Get(context.Background(), "missing", &got)
	if err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}
}

func TestRedisGetError(t *testing.T) {
	client := newFakeClient()
	client.failGet = errors.New("connection refused")
	c := NewRedisWithClient(client)

	var got entry
	hit, err := c.Get(context.Background(), "k", &got)
	if hit || err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped error, hit=%v err=%v", hit, err)
	}
}

func TestRedisGetDropsCorruptEntry(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(zapcore.AddSync(&buf))
	t.Cleanup(func() { telemetry.SetOutput(zapcore.AddSync(os.Stdout)) })

	client := newFakeClient()
	client.items["k"] = "{not json"
	c := NewRedisWithClient(client)

	var got entry
	hit, err := c.Get(context.Background(), "k", &got)
	if err != nil || hit {
		t.Fatalf("expected corrupt entry to read as a miss, hit=%v err=%v", hit, err)
	}
	if _, ok := client.items["k"]; ok {
		t.Fatalf("expected corrupt entry to be deleted")
	}
	if !strings.Contains(buf.String(), "cache.decode_failed") {
		t.Fatalf("expected decode failure to be logged, got %q", buf.String())
	}
}

func TestRedisSetRejectsUnencodableValue(t *testing.T) {
	client := newFakeClient()
	c := NewRedisWithClient(client)
	err := c.Set(context.Background(), "k", make(chan int), time.Minute)
	if err == nil || !strings.Contains(err.Error(), "marshal cache value") {
		t.Fatalf("expected marshal error, got %v", err)
	}
	if len(client.items) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestRedisDelete(t *testing.T) {
	client := newFakeClient()
	client.items["a"] = "1"
	client.items["b"] = "2"
	c := NewRedisWithClient(client)
	ctx := context.Background()

	if err := c.Delete(ctx); err != nil {
		t.Fatalf("delete nothing: %v", err)
	}
	if len(client.deleted) != 0 {
		t.Fatalf("expected no DEL for an empty key list, got %v", client.deleted)
	}

	if err := c.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := client.items["a"]; ok {
		t.Fatalf("expected a to be deleted")
	}
	if _, ok := client.items["b"]; !ok {
		t.Fatalf("expected b to survive")
	}
}

func TestRedisIncr(t *testing.T) {
	c := NewRedisWithClient(newFakeClient())
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "v")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("incr = %d, want %d", got, want)
		}
	}

	var stored int64
	if hit, err := c.Get(ctx, "v", &stored); err != nil || !hit || stored != 3 {
		t.Fatalf("expected counter readable as JSON number, hit=%v err=%v v=%d", hit, err, stored)
	}
}

func TestNopNeverStores(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	if err := c.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var v int
	if hit, err := c.Get(ctx, "k", &v); hit || err != nil {
		t.Fatalf("expected miss, hit=%v err=%v", hit, err)
	}
}
