/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package refalloc allocates schedule references: nine-digit numeric
// strings that key a whole day's worth of rows in the playout database.
// References are drawn at random and verified against the authoritative
// store before use, so a crashed run can never recycle a live reference.
package refalloc

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenfm/autoscheduler/internal/telemetry"
)

// RefChecker answers whether a candidate reference is already present in
// the authoritative store.
type RefChecker interface {
	RefExists(ctx context.Context, ref string) (bool, error)
}

// Allocator draws candidate references and retries until the checker
// confirms one unused.
type Allocator struct {
	checker RefChecker
	rng     *rand.Rand
	logger  zerolog.Logger
}

// New constructs an allocator. rng may be nil, in which case a
// cryptographically-seeded source is used; tests inject a fixed seed.
func New(checker RefChecker, rng *rand.Rand, log zerolog.Logger) *Allocator {
	if rng == nil {
		rng = rand.New(rand.NewSource(cryptoSeed()))
	}
	return &Allocator{
		checker: checker,
		rng:     rng,
		logger:  log.With().Str("component", "refalloc").Logger(),
	}
}

// Allocate returns a nine-digit reference that the checker reports as
// unused. Collisions are retried indefinitely; a checker error is
// surfaced immediately rather than retried, since it usually means the
// store is unreachable and every further draw would fail the same way.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ref := a.draw()
		exists, err := a.checker.RefExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("checking schedule ref %s: %w", ref, err)
		}
		if !exists {
			return ref, nil
		}
		telemetry.RefAllocatorRetriesTotal.Inc()
		a.logger.Debug().Str("ref", ref).Msg("schedule ref collision, redrawing")
	}
}

// draw produces a candidate: a random twelve-digit number, zero-padded,
// truncated to its first nine digits. The wide draw keeps leading zeros
// rare without ever excluding them.
func (a *Allocator) draw() string {
	return fmt.Sprintf("%012d", a.rng.Int63n(1_000_000_000_000))[:9]
}

// cryptoSeed seeds the default source from the OS entropy pool, falling
// back to the clock if that read fails.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
