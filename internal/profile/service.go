package profile

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/m3rciful/weatherbot/core/logger"
)

// Service runs the load, get-or-create, mutate, save cycle against a Store.
// Read failures degrade to an empty map and write failures are only logged.
// A cycle whose read failed does not write, so stored data is never
// overwritten from the empty fallback.
// Cycles are serialized so two updates never interleave over the whole-map store.
type Service struct {
	store Store
	log   *slog.Logger
	mu    sync.Mutex
}

// NewService wraps store.
func NewService(store Store) *Service {
	return &Service{store: store, log: logger.Component("profile")}
}

// Load returns a snapshot of every profile.
func (s *Service) Load(ctx context.Context) Profiles {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, _ := s.load(ctx)
	return ps
}

// Save replaces the stored profiles with ps.
func (s *Service) Save(ctx context.Context, ps Profiles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(ctx, ps)
}

// load reports writable=false when the store failed for a reason other than a
// missing file.
func (s *Service) load(ctx context.Context) (ps Profiles, writable bool) {
	ps, err := s.store.Load(ctx)
	if err != nil {
		level, status := slog.LevelError, "fail"
		writable = errors.Is(err, fs.ErrNotExist)
		if writable {
			level, status = slog.LevelInfo, "skip"
		}
		s.log.LogAttrs(ctx, level, "profiles load failed",
			slog.String("event", "profiles.load"),
			slog.String("status", status),
			slog.String("err", logger.ErrAttr(err)),
		)
		return Profiles{}, writable
	}
	if ps == nil {
		ps = Profiles{}
	}
	return ps, true
}

func (s *Service) skipSave(ctx context.Context, attr slog.Attr) {
	s.log.LogAttrs(ctx, slog.LevelWarn, "profiles save skipped",
		slog.String("event", "profiles.save"),
		slog.String("status", "skip"),
		slog.String("reason", "load_failed"),
		attr,
	)
}

func (s *Service) save(ctx context.Context, ps Profiles) {
	if err := s.store.Save(ctx, ps); err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "profiles save failed",
			slog.String("event", "profiles.save"),
			slog.String("status", "fail"),
			slog.Int("profiles", len(ps)),
			slog.String("err", logger.ErrAttr(err)),
		)
	}
}

// Touch guarantees a profile exists for id and returns a copy of it.
func (s *Service) Touch(ctx context.Context, id int64, defaultName string) Profile {
	return s.Update(ctx, id, defaultName, nil)
}

// Update applies fn to the profile for id, creating it first, and persists the map.
func (s *Service) Update(ctx context.Context, id int64, defaultName string, fn func(*Profile)) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, writable := s.load(ctx)
	p, created := ps.GetOrCreate(id, defaultName)
	if fn != nil {
		fn(p)
	}
	if !writable {
		s.skipSave(ctx, slog.Int64("user_id", id))
		return p.Clone()
	}
	s.save(ctx, ps)
	if created {
		s.log.LogAttrs(ctx, slog.LevelInfo, "profile created",
			slog.String("event", "profile.create"),
			slog.Int64("user_id", id),
		)
	}
	return p.Clone()
}

// Peek returns the profile for id without creating it.
func (s *Service) Peek(ctx context.Context, id int64) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, _ := s.load(ctx)
	p, ok := ps[id]
	if !ok || p == nil {
		return Profile{History: map[string]Visit{}}, false
	}
	return p.Clone(), true
}

// Count returns the number of stored profiles.
func (s *Service) Count(ctx context.Context) int {
	if c, ok := s.store.(Counter); ok {
		n, err := c.Count(ctx)
		if err == nil {
			return n
		}
		s.log.LogAttrs(ctx, slog.LevelWarn, "profiles count failed",
			slog.String("event", "profiles.count"),
			slog.String("err", logger.ErrAttr(err)),
		)
	}
	return len(s.Load(ctx))
}

// Import adds the profiles from legacy that the store does not hold yet.
// It returns the number of imported profiles.
func (s *Service) Import(ctx context.Context, legacy Profiles) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, writable := s.load(ctx)
	if !writable {
		s.skipSave(ctx, slog.Int("legacy", len(legacy)))
		return 0
	}
	added := 0
	for id, p := range legacy {
		if _, ok := ps[id]; ok || p == nil {
			continue
		}
		cp := p.Clone()
		ps[id] = &cp
		added++
	}
	if added > 0 {
		s.save(ctx, ps)
	}
	return added
}
