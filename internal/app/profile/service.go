package profile

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dorsu/alumnitracer/internal/app/client"
	"github.com/dorsu/alumnitracer/internal/app/models"
	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/pkg/apperrors"
	"github.com/dorsu/alumnitracer/internal/pkg/clientstorage"
	"github.com/dorsu/alumnitracer/internal/pkg/events"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

// API is the remote surface the profile service drives.
type API interface {
	GetAlumni(ctx context.Context, id int64) (*dto.ProfileWire, error)
	UpdateAlumni(ctx context.Context, id int64, upd dto.ProfileUpdate, image *client.ImageFile) (*dto.ProfileWire, error)
	DeleteAlumni(ctx context.Context, id int64) error
}

// Service owns the account profile: it fetches and mutates it remotely,
// keeps a normalized copy in durable storage, and publishes every change
// on the bus so other live views refresh without re-fetching. External
// storage changes (another process saving the profile) are folded back in
// through the storage watcher.
type Service struct {
	api     API
	apiBase string
	store   *clientstorage.Store
	bus     *events.Bus
	log     zerolog.Logger

	mu      sync.Mutex
	current *models.Profile
}

// NewService creates the profile service and primes it from storage.
func NewService(api API, apiBase string, store *clientstorage.Store, bus *events.Bus) *Service {
	s := &Service{
		api:     api,
		apiBase: apiBase,
		store:   store,
		bus:     bus,
		log:     logger.Component("profile"),
	}

	var cached models.Profile
	if ok, err := store.GetJSON(clientstorage.KeyCurrentUser, &cached); err == nil && ok {
		s.current = &cached
	}

	store.OnChange(s.handleStorageChange)
	return s
}

// Current returns a copy of the last-known-good profile, or nil.
func (s *Service) Current() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	p := s.current.Clone()
	return &p
}

// Fetch retrieves the account record, normalizes it, caches it, and
// broadcasts the update. A 2xx response that cannot be decoded falls back
// to the last-known-good profile instead of erroring.
func (s *Service) Fetch(ctx context.Context) (*models.Profile, error) {
	id, err := s.accountID()
	if err != nil {
		return nil, err
	}

	wire, err := s.api.GetAlumni(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrPartialData) {
			if last := s.Current(); last != nil {
				s.log.Warn().Err(err).Msg("Profile response unparseable, keeping last-known-good state")
				return last, nil
			}
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return s.apply(*wire)
}

// Save patches the account record, as JSON or as multipart when an image
// file accompanies the changes. The server's response is normalized (with
// relative image paths rewritten against the API base), cached durably,
// and broadcast.
func (s *Service) Save(ctx context.Context, upd dto.ProfileUpdate, image *client.ImageFile) (*models.Profile, error) {
	id, err := s.accountID()
	if err != nil {
		return nil, err
	}

	wire, err := s.api.UpdateAlumni(ctx, id, upd, image)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrPartialData) {
			if last := s.Current(); last != nil {
				s.log.Warn().Err(err).Msg("Profile save response unparseable, keeping last-known-good state")
				return last, nil
			}
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return s.apply(*wire)
}

// Delete removes the account, clears all cached client state, and
// broadcasts a nil profile so views drop the logged-in user.
func (s *Service) Delete(ctx context.Context) error {
	id, err := s.accountID()
	if err != nil {
		return err
	}
	if err := s.api.DeleteAlumni(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	for _, key := range []string{clientstorage.KeyCurrentUser, clientstorage.KeyUserID, clientstorage.KeyToken} {
		if err := s.store.Delete(key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to clear client state")
		}
	}
	s.bus.Publish(events.TopicUserUpdated, (*models.Profile)(nil))
	return nil
}

// SetAccount records which account the service operates on, typically
// right after login.
func (s *Service) SetAccount(id int64) error {
	return s.store.Set(clientstorage.KeyUserID, strconv.FormatInt(id, 10))
}

// apply normalizes a wire profile, caches it, publishes it, and returns it.
func (s *Service) apply(wire dto.ProfileWire) (*models.Profile, error) {
	p := dto.ProfileFromWire(wire, s.apiBase)

	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()

	if err := s.store.SetJSON(clientstorage.KeyCurrentUser, p); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache profile")
	}
	s.bus.Publish(events.TopicUserUpdated, &p)

	out := p.Clone()
	return &out, nil
}

// handleStorageChange reacts to another process rewriting the cached
// profile: re-read it and rebroadcast locally.
func (s *Service) handleStorageChange(key string) {
	if key != clientstorage.KeyCurrentUser {
		return
	}
	var cached models.Profile
	ok, err := s.store.GetJSON(clientstorage.KeyCurrentUser, &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("Ignoring unreadable externally-updated profile")
		return
	}

	s.mu.Lock()
	if ok {
		s.current = &cached
	} else {
		s.current = nil
	}
	s.mu.Unlock()

	if ok {
		s.bus.Publish(events.TopicUserUpdated, &cached)
	} else {
		s.bus.Publish(events.TopicUserUpdated, (*models.Profile)(nil))
	}
}

// accountID resolves the operating account from memory or storage.
func (s *Service) accountID() (int64, error) {
	s.mu.Lock()
	if s.current != nil && s.current.ID != 0 {
		id := s.current.ID
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	raw, ok := s.store.Get(clientstorage.KeyUserID)
	if !ok {
		return 0, apperrors.NewCustomError(apperrors.ErrAlumniNotFound, "no account id in client state; log in first")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewCustomError(apperrors.ErrAlumniNotFound, "stored account id is not numeric")
	}
	return id, nil
}
