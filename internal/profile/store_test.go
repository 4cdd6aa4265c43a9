// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package profile

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestNormalizeKeywords(t *testing.T) {
	t.Parallel()

	got := NormalizeKeywords([]string{" 주식 ", "AI", "", "ai", "주식"})
	want := []string{"주식", "ai"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeKeywords() = %v, want %v", got, want)
	}
}

func TestMemoryStore_Learn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Learn(ctx, "u1", []string{"주식", "배당"}); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.Learn(ctx, "u1", []string{"주식"}); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}

	got, err := store.Interests(ctx, "u1")
	if err != nil {
		t.Fatalf("Interests() error = %v", err)
	}
	want := map[string]int{"주식": 2, "배당": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Interests() = %v, want %v", got, want)
	}
}

func TestMemoryStore_UnknownUser(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	got, err := store.Interests(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Interests() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty profile, got %v", got)
	}
	if store.Users() != 0 {
		t.Error("Expected reads not to create profiles")
	}
}

func TestMemoryStore_BlankUser(t *testing.T) {
	t.Parallel()

	err := NewMemoryStore().Learn(context.Background(), "  ", []string{"주식"})
	if !errors.Is(err, ErrBlankUser) {
		t.Errorf("Expected ErrBlankUser, got %v", err)
	}
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Learn(ctx, "u1", []string{"주식"})

	got, _ := store.Interests(ctx, "u1")
	got["주식"] = 99

	again, _ := store.Interests(ctx, "u1")
	if again["주식"] != 1 {
		t.Errorf("Expected stored count unaffected, got %d", again["주식"])
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Learn(ctx, "u1", []string{"주식"})
		}()
	}
	wg.Wait()

	got, _ := store.Interests(ctx, "u1")
	if got["주식"] != 50 {
		t.Errorf("Expected 50 increments, got %d", got["주식"])
	}
}
