package redisad

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type pageFixture struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(mr.Addr(), "", 0), mr
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := pageFixture{Items: []string{"h1", "h2"}, Total: 2}
	if err := c.Set(ctx, "hotels:list:abc", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out pageFixture
	ok, err := c.Get(ctx, "hotels:list:abc", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Total != 2 || len(out.Items) != 2 || out.Items[0] != "h1" {
		t.Fatalf("round trip: %+v", out)
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	var out pageFixture
	ok, err := c.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}

func TestCache_Del(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", pageFixture{Total: 1}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var out pageFixture
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected key gone")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := mr.Set("k", `{"items": 42`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var out pageFixture
	ok, err := c.Get(ctx, "k", &out)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok {
		t.Fatalf("undecodable entry must read as a miss")
	}
	if mr.Exists("k") {
		t.Fatalf("undecodable entry must be evicted")
	}
}

func TestCache_SkipsOversizedValues(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	huge := pageFixture{Items: []string{strings.Repeat("x", 2_000_000)}}
	if err := c.Set(ctx, "big", huge, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out pageFixture
	if ok, _ := c.Get(ctx, "big", &out); ok {
		t.Fatalf("oversized value should not be stored")
	}
}
