package stubapi

import (
	"sync"

	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/pkg/apperrors"
	"github.com/dorsu/alumnitracer/internal/pkg/auth"
)

// Account is one alumni login account held by the stub.
type Account struct {
	ID            int64
	Username      string
	Email         string
	FullName      string
	ProgramCourse string
	YearGraduated int
	PasswordHash  string
	Image         string
}

// Store is the stub's in-memory backing state. It holds accounts and at most
// one survey response per account, which is exactly the uniqueness rule the
// real backend enforces.
type Store struct {
	mu          sync.RWMutex
	accounts    map[int64]*Account
	surveys     map[int64]*dto.SurveyWire
	surveyOwner map[int64]int64 // alumni id -> survey id
	nextAccount int64
	nextSurvey  int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:    map[int64]*Account{},
		surveys:     map[int64]*dto.SurveyWire{},
		surveyOwner: map[int64]int64{},
		nextAccount: 1,
		nextSurvey:  1,
	}
}

// AddAccount registers an account with a plaintext password, hashing it the
// same way the real backend does. Used for seeding.
func (s *Store) AddAccount(a Account, password string) (*Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Username == a.Username {
			return nil, apperrors.ErrUsernameExists
		}
		if existing.Email == a.Email {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}
	a.ID = s.nextAccount
	s.nextAccount++
	a.PasswordHash = hash
	s.accounts[a.ID] = &a
	out := a
	return &out, nil
}

// Authenticate verifies username/password and returns the matching account.
func (s *Store) Authenticate(username, password string) (*Account, error) {
	s.mu.RLock()
	var found *Account
	for _, a := range s.accounts {
		if a.Username == username {
			found = a
			break
		}
	}
	s.mu.RUnlock()

	if found == nil || !auth.CheckPassword(found.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	out := *found
	return &out, nil
}

// GetAccount returns a copy of the account or ErrAlumniNotFound.
func (s *Store) GetAccount(id int64) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.ErrAlumniNotFound
	}
	out := *a
	return &out, nil
}

// ListAccounts returns copies of all accounts.
func (s *Store) ListAccounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	return out
}

// UpdateAccount applies fn to the stored account under the lock.
func (s *Store) UpdateAccount(id int64, fn func(*Account)) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.ErrAlumniNotFound
	}
	fn(a)
	out := *a
	return &out, nil
}

// DeleteAccount removes the account and any survey it owns.
func (s *Store) DeleteAccount(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return apperrors.ErrAlumniNotFound
	}
	delete(s.accounts, id)
	if sid, ok := s.surveyOwner[id]; ok {
		delete(s.surveys, sid)
		delete(s.surveyOwner, id)
	}
	return nil
}

// CreateSurvey stores a new survey for the given alumni. A second create for
// the same alumni fails with ErrSurveyAlreadyExists.
func (s *Store) CreateSurvey(alumniID int64, w dto.SurveyWire) (*dto.SurveyWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveyOwner[alumniID]; ok {
		return nil, apperrors.ErrSurveyAlreadyExists
	}
	w.ID = s.nextSurvey
	s.nextSurvey++
	w.Alumni = &alumniID
	s.surveys[w.ID] = &w
	s.surveyOwner[alumniID] = w.ID
	out := w
	return &out, nil
}

// GetSurvey returns a copy of one survey or ErrSurveyNotFound.
func (s *Store) GetSurvey(id int64) (*dto.SurveyWire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.surveys[id]
	if !ok {
		return nil, apperrors.ErrSurveyNotFound
	}
	out := *w
	return &out, nil
}

// FindSurveysByAlumni returns the surveys owned by the given alumni, which
// is at most one.
func (s *Store) FindSurveysByAlumni(alumniID int64) []dto.SurveyWire {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sid, ok := s.surveyOwner[alumniID]
	if !ok {
		return []dto.SurveyWire{}
	}
	return []dto.SurveyWire{*s.surveys[sid]}
}

// ReplaceSurvey stores the merged record produced by a partial update.
func (s *Store) ReplaceSurvey(w dto.SurveyWire) (*dto.SurveyWire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.surveys[w.ID]
	if !ok {
		return nil, apperrors.ErrSurveyNotFound
	}
	// Ownership never moves across accounts on update.
	w.Alumni = existing.Alumni
	s.surveys[w.ID] = &w
	out := w
	return &out, nil
}
