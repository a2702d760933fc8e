// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/affectme/db"
	"github.com/danielhkuo/affectme/memory"
	"github.com/danielhkuo/affectme/models"
)

// ErrNotFound is returned by Load when neither store has the profile.
var ErrNotFound = errors.New("profile not found")

// RecordStore is the durable profile store. *db.Store satisfies it.
type RecordStore interface {
	GetProfileByUser(ctx context.Context, userID string) (models.CivicProfile, error)
	UpsertProfile(ctx context.Context, p models.CivicProfile) error
}

// Service persists civic profiles to the record store and mirrors them
// into the memory provider.
type Service struct {
	records  RecordStore
	memories memory.Provider
	timeout  time.Duration
}

// NewService creates a profile service. timeout bounds memory provider calls.
func NewService(records RecordStore, memories memory.Provider, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{records: records, memories: memories, timeout: timeout}
}

// Save writes the profile to both stores concurrently and waits for both.
// Only a record store failure is returned.
func (s *Service) Save(ctx context.Context, userID string, in models.ProfileInput) (models.CivicProfile, error) {
	p := FromInput(userID, in)
	text, meta := ToMemoryRecord(p)

	var (
		wg       sync.WaitGroup
		storeErr error
		memErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		mctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		memErr = s.memories.Add(mctx, memory.ProfileDocument(userID, text, meta))
	}()
	go func() {
		defer wg.Done()
		storeErr = s.records.UpsertProfile(ctx, p)
	}()
	wg.Wait()

	if memErr != nil {
		slog.Warn("memory profile write failed, record store is authoritative", "user_id", userID, "error", memErr)
	}
	if storeErr != nil {
		return models.CivicProfile{}, fmt.Errorf("save profile: %w", storeErr)
	}

	slog.Info("profile saved", "user_id", userID, "housing_status", p.HousingStatus)
	return p, nil
}

// Load reads the profile from the memory provider, falling back to the
// record store when the provider has no profile or is unavailable.
func (s *Service) Load(ctx context.Context, userID string) (models.CivicProfile, error) {
	if p, ok := s.fromMemory(ctx, userID); ok {
		return p, nil
	}

	p, err := s.records.GetProfileByUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.CivicProfile{}, ErrNotFound
	}
	if err != nil {
		return models.CivicProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (s *Service) fromMemory(ctx context.Context, userID string) (models.CivicProfile, bool) {
	mctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.memories.Get(mctx, userID)
	if err != nil {
		if !errors.Is(err, memory.ErrNotFound) {
			slog.Debug("memory profile read failed, using record store", "user_id", userID, "error", err)
		}
		return models.CivicProfile{}, false
	}
	if rec == nil || !HasProfileFields(rec.Metadata) {
		return models.CivicProfile{}, false
	}
	return FromMemoryRecord(ProfileID(userID), userID, rec.Metadata), true
}
