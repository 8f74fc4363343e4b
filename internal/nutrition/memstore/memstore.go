// Package memstore is an in-memory nutrition.Store used by tests. WithinTx
// works on a copy of the data and only publishes it when fn succeeds, so
// rollback behaves like the SQL store.
package memstore

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

type state struct {
	entries   map[string]nutrition.FoodEntry
	favorites map[string]nutrition.FavoriteFood
	profiles  map[string]nutrition.UserProfile
	tracking  map[string]nutrition.ProfileTracking
	frozen    map[string]time.Time // key: userID|date
	credits   map[string]int
	seq       map[string]int // insertion order, breaks ordering ties
	next      int
}

func newState() *state {
	return &state{
		entries:   map[string]nutrition.FoodEntry{},
		favorites: map[string]nutrition.FavoriteFood{},
		profiles:  map[string]nutrition.UserProfile{},
		tracking:  map[string]nutrition.ProfileTracking{},
		frozen:    map[string]time.Time{},
		credits:   map[string]int{},
		seq:       map[string]int{},
	}
}

func (st *state) clone() *state {
	return &state{
		entries:   maps.Clone(st.entries),
		favorites: maps.Clone(st.favorites),
		profiles:  maps.Clone(st.profiles),
		tracking:  maps.Clone(st.tracking),
		frozen:    maps.Clone(st.frozen),
		credits:   maps.Clone(st.credits),
		seq:       maps.Clone(st.seq),
		next:      st.next,
	}
}

func (st *state) stamp(id string) {
	st.next++
	st.seq[id] = st.next
}

type Store struct {
	mu       *sync.Mutex
	st       *state
	failures map[string]error
}

var _ nutrition.Store = (*Store)(nil)

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState(), failures: map[string]error{}}
}

// FailOn makes the operation named op (e.g. "favorites.mark_used") fail with
// err wrapped in a *nutrition.PersistenceError.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// SetCredits sets the user's remaining freeze credits.
func (s *Store) SetCredits(userID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.credits[userID] = n
}

func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		return &nutrition.PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx nutrition.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Store{mu: &sync.Mutex{}, st: s.st.clone(), failures: s.failures}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

func (s *Store) Entries() nutrition.FoodEntryRepository { return entries{s} }
func (s *Store) Favorites() nutrition.FavoriteFoodRepository { return favorites{s} }
func (s *Store) Profiles() nutrition.ProfileRepository { return profiles{s} }
func (s *Store) Freezes() nutrition.FreezeRepository { return freezes{s} }

/* ─── Food entries ───────────────────────────────────────────────────── */

type entries struct{ s *Store }

func (r entries) Insert(_ context.Context, e nutrition.FoodEntry) (nutrition.FoodEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.insert"); err != nil {
		return nutrition.FoodEntry{}, err
	}
	r.s.st.entries[e.ID] = e
	r.s.st.stamp(e.ID)
	return e, nil
}

func (r entries) List(_ context.Context, userID string, f nutrition.FoodEntryFilter) ([]nutrition.FoodEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.list"); err != nil {
		return nil, err
	}
	var out []nutrition.FoodEntry
	for _, e := range r.s.st.entries {
		if e.UserID != userID {
			continue
		}
		if f.From != nil && e.EntryDate.Before(f.From.Time) {
			continue
		}
		if f.To != nil && e.EntryDate.After(f.To.Time) {
			continue
		}
		if f.MealType != nil && e.MealType != *f.MealType {
			continue
		}
		out = append(out, e)
	}
	seq := r.s.st.seq
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate.Time) {
			return a.EntryDate.After(b.EntryDate.Time)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return seq[a.ID] > seq[b.ID]
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r entries) Get(_ context.Context, id, userID string) (nutrition.FoodEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.get"); err != nil {
		return nutrition.FoodEntry{}, err
	}
	e, ok := r.s.st.entries[id]
	if !ok || e.UserID != userID {
		return nutrition.FoodEntry{}, nutrition.ErrNotFound
	}
	return e, nil
}

func (r entries) Update(_ context.Context, id, userID string, p nutrition.FoodEntryPatch, now time.Time) (nutrition.FoodEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.update"); err != nil {
		return nutrition.FoodEntry{}, err
	}
	e, ok := r.s.st.entries[id]
	if !ok || e.UserID != userID {
		return nutrition.FoodEntry{}, nutrition.ErrNotFound
	}
	set(&e.FoodName, p.FoodName)
	set(&e.Calories, p.Calories)
	set(&e.ProteinG, p.ProteinG)
	set(&e.CarbsG, p.CarbsG)
	set(&e.FatG, p.FatG)
	set(&e.MealType, p.MealType)
	set(&e.EntryDate, p.EntryDate)
	if p.AIConfidence != nil {
		e.AIConfidence = p.AIConfidence
	}
	if p.OriginalDescription != nil {
		e.OriginalDescription = p.OriginalDescription
	}
	e.UpdatedAt = now
	r.s.st.entries[id] = e
	return e, nil
}

func (r entries) Delete(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.delete"); err != nil {
		return false, err
	}
	e, ok := r.s.st.entries[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(r.s.st.entries, id)
	return true, nil
}

func (r entries) LoggedDates(_ context.Context, userID string) ([]nutrition.Date, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.logged_dates"); err != nil {
		return nil, err
	}
	seen := map[string]nutrition.Date{}
	for _, e := range r.s.st.entries {
		if e.UserID == userID {
			seen[e.EntryDate.String()] = e.EntryDate
		}
	}
	return sortedDates(seen), nil
}

/* ─── Favorite foods ─────────────────────────────────────────────────── */

type favorites struct{ s *Store }

func (r favorites) Insert(_ context.Context, f nutrition.FavoriteFood) (nutrition.FavoriteFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("favorites.insert"); err != nil {
		return nutrition.FavoriteFood{}, err
	}
	r.s.st.favorites[f.ID] = f
	r.s.st.stamp(f.ID)
	return f, nil
}

func (r favorites) List(_ context.Context, userID string, f nutrition.FavoriteFoodFilter) ([]nutrition.FavoriteFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("favorites.list"); err != nil {
		return nil, err
	}
	var out []nutrition.FavoriteFood
	for _, fav := range r.s.st.favorites {
		if fav.UserID != userID {
			continue
		}
		if f.Category != nil && (fav.Category == nil || *fav.Category != *f.Category) {
			continue
		}
		out = append(out, fav)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UsageCount != b.UsageCount {
			return a.UsageCount > b.UsageCount
		}
		switch {
		case a.LastUsedAt != nil && b.LastUsedAt == nil:
			return true
		case a.LastUsedAt == nil && b.LastUsedAt != nil:
			return false
		case a.LastUsedAt != nil && !a.LastUsedAt.Equal(*b.LastUsedAt):
			return a.LastUsedAt.After(*b.LastUsedAt)
		}
		return strings.Compare(a.Name, b.Name) < 0
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r favorites) Get(_ context.Context, id, userID string) (nutrition.FavoriteFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("favorites.get"); err != nil {
		return nutrition.FavoriteFood{}, err
	}
	return r.find(id, userID)
}

func (r favorites) GetForUpdate(ctx context.Context, id, userID string) (nutrition.FavoriteFood, error) {
	return r.Get(ctx, id, userID)
}

func (r favorites) find(id, userID string) (nutrition.FavoriteFood, error) {
	fav, ok := r.s.st.favorites[id]
	if !ok || fav.UserID != userID {
		return nutrition.FavoriteFood{}, nutrition.ErrNotFound
	}
	return fav, nil
}

func (r favorites) Update(_ context.Context, id, userID string, p nutrition.FavoriteFoodPatch, now time.Time) (nutrition.FavoriteFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("favorites.update"); err != nil {
		return nutrition.FavoriteFood{}, err
	}
	fav, err := r.find(id, userID)
	if err != nil {
		return nutrition.FavoriteFood{}, err
	}
	set(&fav.Name, p.Name)
	set(&fav.Calories, p.Calories)
	set(&fav.ProteinG, p.ProteinG)
	set(&fav.CarbsG, p.CarbsG)
	set(&fav.FatG, p.FatG)
	if p.ServingSize != nil {
		fav.ServingSize = p.ServingSize
	}
	if p.Category != nil {
		fav.Category = p.Category
	}
	fav.UpdatedAt = now
	r.s.st.favorites[id] = fav
	return fav, nil
}

func (r favorites) Delete(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("favorites.delete"); err != nil {
		return false, err
	}
	if _, err := r.find(id, userID); err != nil {
		return false, nil
	}
	delete(r.s.st.favorites, id)
	return true, nil
}

func (r favorites) MarkUsed(_ context.Context, id, userID string, at time.Time) (nutrition.FavoriteFood, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("favorites.mark_used"); err != nil {
		return nutrition.FavoriteFood{}, err
	}
	fav, err := r.find(id, userID)
	if err != nil {
		return nutrition.FavoriteFood{}, err
	}
	fav.UsageCount++
	fav.LastUsedAt = &at
	fav.UpdatedAt = at
	r.s.st.favorites[id] = fav
	return fav, nil
}

/* ─── Profiles and tracking ──────────────────────────────────────────── */

type profiles struct{ s *Store }

func (r profiles) InsertProfile(_ context.Context, p nutrition.UserProfile) (nutrition.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.insert"); err != nil {
		return nutrition.UserProfile{}, err
	}
	if _, ok := r.s.st.profiles[p.UserID]; ok {
		return nutrition.UserProfile{}, nutrition.ErrConflict
	}
	r.s.st.profiles[p.UserID] = p
	return p, nil
}

func (r profiles) GetProfile(_ context.Context, userID string) (nutrition.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.get"); err != nil {
		return nutrition.UserProfile{}, err
	}
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return nutrition.UserProfile{}, nutrition.ErrNotFound
	}
	return p, nil
}

func (r profiles) UpdateProfile(_ context.Context, userID string, patch nutrition.UserProfilePatch, now time.Time) (nutrition.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.update"); err != nil {
		return nutrition.UserProfile{}, err
	}
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return nutrition.UserProfile{}, nutrition.ErrNotFound
	}
	set(&p.HeightCm, patch.HeightCm)
	set(&p.Age, patch.Age)
	set(&p.Gender, patch.Gender)
	set(&p.ActivityLevel, patch.ActivityLevel)
	p.UpdatedAt = now
	r.s.st.profiles[userID] = p
	return p, nil
}

func (r profiles) InsertTracking(_ context.Context, t nutrition.ProfileTracking) (nutrition.ProfileTracking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tracking.insert"); err != nil {
		return nutrition.ProfileTracking{}, err
	}
	r.s.st.tracking[t.ID] = t
	r.s.st.stamp(t.ID)
	return t, nil
}

func (r profiles) ListTracking(_ context.Context, userID string, f nutrition.TrackingFilter) ([]nutrition.ProfileTracking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tracking.list"); err != nil {
		return nil, err
	}
	out := r.sortedTracking(userID, func(t nutrition.ProfileTracking) bool {
		if f.From != nil && t.RecordedDate.Before(f.From.Time) {
			return false
		}
		return f.To == nil || !t.RecordedDate.After(f.To.Time)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r profiles) LatestWeightTracking(_ context.Context, userID string) (nutrition.ProfileTracking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tracking.latest"); err != nil {
		return nutrition.ProfileTracking{}, err
	}
	out := r.sortedTracking(userID, func(t nutrition.ProfileTracking) bool { return t.WeightKg != nil })
	if len(out) == 0 {
		return nutrition.ProfileTracking{}, nutrition.ErrNotFound
	}
	return out[0], nil
}

func (r profiles) sortedTracking(userID string, keep func(nutrition.ProfileTracking) bool) []nutrition.ProfileTracking {
	var out []nutrition.ProfileTracking
	for _, t := range r.s.st.tracking {
		if t.UserID == userID && keep(t) {
			out = append(out, t)
		}
	}
	seq := r.s.st.seq
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.RecordedDate.Equal(b.RecordedDate.Time) {
			return a.RecordedDate.After(b.RecordedDate.Time)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return seq[a.ID] > seq[b.ID]
	})
	return out
}

func (r profiles) DeleteTracking(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tracking.delete"); err != nil {
		return false, err
	}
	t, ok := r.s.st.tracking[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(r.s.st.tracking, id)
	return true, nil
}

/* ─── Streak freezes ─────────────────────────────────────────────────── */

type freezes struct{ s *Store }

func (r freezes) FrozenDates(_ context.Context, userID string) ([]nutrition.Date, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("freezes.list"); err != nil {
		return nil, err
	}
	seen := map[string]nutrition.Date{}
	prefix := userID + "|"
	for key := range r.s.st.frozen {
		if day, ok := strings.CutPrefix(key, prefix); ok {
			d, err := nutrition.ParseDate(day)
			if err != nil {
				return nil, err
			}
			seen[day] = d
		}
	}
	return sortedDates(seen), nil
}

func (r freezes) RemainingCredits(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("freezes.credits"); err != nil {
		return 0, err
	}
	return r.s.st.credits[userID], nil
}

func (r freezes) ConsumeCredit(_ context.Context, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("freezes.consume"); err != nil {
		return false, err
	}
	if r.s.st.credits[userID] <= 0 {
		return false, nil
	}
	r.s.st.credits[userID]--
	return true, nil
}

func (r freezes) InsertFrozenDate(_ context.Context, userID string, d nutrition.Date, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("freezes.insert"); err != nil {
		return err
	}
	key := userID + "|" + d.String()
	if _, ok := r.s.st.frozen[key]; ok {
		return nutrition.ErrConflict
	}
	r.s.st.frozen[key] = at
	return nil
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortedDates(byKey map[string]nutrition.Date) []nutrition.Date {
	out := make([]nutrition.Date, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j].Time) })
	return out
}
