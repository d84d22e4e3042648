package app

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
)

// ProgressRepository abstracts the key-value surface the progress record is
// persisted through (in-memory, Redis, etc). Get reports absence instead of
// failing; Set is best-effort and errors from it are logged, never surfaced.
type ProgressRepository interface {
	Get(ctx context.Context, deviceID string) (string, bool)
	Set(ctx context.Context, deviceID string, raw string) error
}

// ProgressService owns the quiz progress records, one per device. Reads fall
// back to the all-zero default on any persistence or decode problem; writes
// that fail still leave the in-memory record updated so callers stay
// consistent for the rest of the session.
type ProgressService struct {
	repo ProgressRepository
	now  func() time.Time

	mu       sync.Mutex
	trackers map[string]*tracker
}

func NewProgressService(repo ProgressRepository) *ProgressService {
	return NewProgressServiceWithClock(repo, time.Now)
}

// NewProgressServiceWithClock allows deterministic dates in tests.
func NewProgressServiceWithClock(repo ProgressRepository, now func() time.Time) *ProgressService {
	return &ProgressService{
		repo:     repo,
		now:      now,
		trackers: make(map[string]*tracker),
	}
}

// Load returns the device's current record, reading through to the
// repository on first access. Never fails: absent or malformed stored values
// yield the default record.
func (s *ProgressService) Load(ctx context.Context, deviceID string) domain.Progress {
	return s.tracker(ctx, deviceID).get()
}

// RecordAnswer applies a single answered question to the device's record:
// points accumulate, the streak advances per the calendar-date rules, and the
// counters increment. The updated record is persisted best-effort and
// returned.
func (s *ProgressService) RecordAnswer(ctx context.Context, deviceID string, points int, correct bool) domain.Progress {
	if points < 0 {
		points = 0
	}
	today := domain.DateOf(s.now())

	t := s.tracker(ctx, deviceID)
	updated := t.update(func(p domain.Progress) domain.Progress {
		p.CurrentStreak = domain.NextStreak(p.CurrentStreak, p.LastPlayedDate, today)
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
		p.TotalPoints += points
		p.LastPlayedDate = today
		p.QuestionsAnswered++
		if correct {
			p.CorrectAnswers++
		}
		return p
	}, today)

	s.persist(ctx, deviceID, updated)
	return updated
}

// Reset overwrites the device's record with the all-zero default.
func (s *ProgressService) Reset(ctx context.Context, deviceID string) domain.Progress {
	t := s.tracker(ctx, deviceID)
	today := domain.DateOf(s.now())
	updated := t.update(func(domain.Progress) domain.Progress {
		return domain.DefaultProgress()
	}, today)

	s.persist(ctx, deviceID, updated)
	return updated
}

// HasPlayedToday reports whether the device already recorded an answer on
// the current local calendar date.
func (s *ProgressService) HasPlayedToday(ctx context.Context, deviceID string) bool {
	return s.Load(ctx, deviceID).HasPlayedOn(domain.DateOf(s.now()))
}

// Gate returns the UI affordance decision for the device. Exactly one of
// start/results is set.
func (s *ProgressService) Gate(ctx context.Context, deviceID string) domain.SessionGate {
	return domain.GateAt(s.Load(ctx, deviceID), domain.DateOf(s.now()))
}

// Snapshot returns the client view of the device's record with derived
// values filled in.
func (s *ProgressService) Snapshot(ctx context.Context, deviceID string) domain.ProgressSnapshot {
	return domain.SnapshotAt(s.Load(ctx, deviceID), domain.DateOf(s.now()))
}

// Subscribe returns a channel that receives a snapshot after every mutation
// of the device's record. The caller must invoke the returned cancel function
// to avoid leaks.
func (s *ProgressService) Subscribe(ctx context.Context, deviceID string) (<-chan domain.ProgressSnapshot, func()) {
	return s.tracker(ctx, deviceID).subscribe(domain.DateOf(s.now()))
}

func (s *ProgressService) tracker(ctx context.Context, deviceID string) *tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trackers[deviceID]; ok {
		return t
	}
	t := newTracker(s.loadStored(ctx, deviceID))
	s.trackers[deviceID] = t
	return t
}

// loadStored decodes the persisted record, substituting defaults when the
// value is absent, unparseable, or violates the stored-format invariants.
func (s *ProgressService) loadStored(ctx context.Context, deviceID string) domain.Progress {
	raw, ok := s.repo.Get(ctx, deviceID)
	if !ok {
		return domain.DefaultProgress()
	}
	var p domain.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.DefaultProgress()
	}
	if !p.Valid() {
		return domain.DefaultProgress()
	}
	return p
}

func (s *ProgressService) persist(ctx context.Context, deviceID string, p domain.Progress) {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Printf("marshal progress for %s: %v", deviceID, err)
		return
	}
	if err := s.repo.Set(ctx, deviceID, string(raw)); err != nil {
		// In-memory state already reflects the update; the next successful
		// write re-syncs the stored copy.
		log.Printf("persist progress for %s: %v", deviceID, err)
	}
}

// tracker holds one device's in-memory record and its subscribers.
type tracker struct {
	mu          sync.Mutex
	record      domain.Progress
	subscribers map[chan domain.ProgressSnapshot]struct{}
}

func newTracker(initial domain.Progress) *tracker {
	return &tracker{
		record:      initial,
		subscribers: make(map[chan domain.ProgressSnapshot]struct{}),
	}
}

func (t *tracker) get() domain.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record
}

func (t *tracker) update(fn func(domain.Progress) domain.Progress, today string) domain.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record = fn(t.record)
	t.broadcastLocked(today)
	return t.record
}

func (t *tracker) subscribe(today string) (<-chan domain.ProgressSnapshot, func()) {
	ch := make(chan domain.ProgressSnapshot, 8)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	initial := domain.SnapshotAt(t.record, today)
	t.mu.Unlock()

	ch <- initial

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subscribers[ch]; ok {
			delete(t.subscribers, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

func (t *tracker) broadcastLocked(today string) {
	snapshot := domain.SnapshotAt(t.record, today)
	for ch := range t.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow reader never blocks mutation.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
