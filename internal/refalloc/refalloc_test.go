/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package refalloc

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

type fakeChecker struct {
	taken  int // first n candidates report as existing
	err    error
	checks int
}

func (f *fakeChecker) RefExists(_ context.Context, ref string) (bool, error) {
	f.checks++
	if f.err != nil {
		return false, f.err
	}
	return f.checks <= f.taken, nil
}

func TestAllocateFormat(t *testing.T) {
	alloc := New(&fakeChecker{}, rand.New(rand.NewSource(1)), zerolog.Nop())
	for i := 0; i < 50; i++ {
		ref, err := alloc.Allocate(context.Background())
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if len(ref) != 9 {
			t.Fatalf("ref %q has length %d, want 9", ref, len(ref))
		}
		for _, r := range ref {
			if r < '0' || r > '9' {
				t.Fatalf("ref %q contains non-digit %q", ref, r)
			}
		}
	}
}

func TestAllocateRetriesCollisions(t *testing.T) {
	checker := &fakeChecker{taken: 999}
	alloc := New(checker, rand.New(rand.NewSource(1)), zerolog.Nop())

	ref, err := alloc.Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if ref == "" {
		t.Fatal("empty ref")
	}
	if checker.checks != 1000 {
		t.Errorf("checks = %d, want 1000", checker.checks)
	}
}

func TestAllocateSurfacesCheckerError(t *testing.T) {
	boom := errors.New("remote unreachable")
	alloc := New(&fakeChecker{err: boom}, rand.New(rand.NewSource(1)), zerolog.Nop())

	if _, err := alloc.Allocate(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped checker error", err)
	}
}

func TestAllocateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := &fakeChecker{taken: 1 << 30}
	alloc := New(checker, rand.New(rand.NewSource(1)), zerolog.Nop())
	if _, err := alloc.Allocate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
