// Package userstore persists subscriber profiles as a single JSON document.
//
// Every operation is a read-modify-write against the latest snapshot on
// disk; writes land in a temp file first and are renamed into place so a
// failed write never leaves a half-written document behind. The store
// assumes a single writer process; a mutex serializes callers inside it.
package userstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/grant-notifier/internal/domain"
	apperrors "github.com/spec-kit/grant-notifier/pkg/util"
)

// ProfileDetails carries the parsed city/interest pair.
type ProfileDetails struct {
	City     *string
	Interest *string
}

// Store is a file-backed mapping from user id to profile.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store persisting to the given path. The file is created
// lazily on first write; a missing file reads as an empty mapping.
func New(path string) *Store {
	return &Store{path: path}
}

// Register creates a profile for the user if none exists and returns the
// stored profile. Calling it again for a known user is a no-op: no field
// is overwritten, including the display name.
func (s *Store) Register(userID, displayName string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	if existing, ok := data[userID]; ok {
		return existing, nil
	}

	profile := domain.NewProfile(displayName)
	data[userID] = profile
	if err := s.save(data); err != nil {
		return nil, err
	}
	return profile, nil
}

// AppendInteraction appends one line to the user's interaction log.
// Unknown users are ignored.
func (s *Store) AppendInteraction(userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	profile, ok := data[userID]
	if !ok {
		return nil
	}
	profile.Interactions = append(profile.Interactions, text)
	return s.save(data)
}

// UpdateProfileFromFreeText parses "city, interest" out of a free-form
// reply and stores both attributes. Missing segments stay nil. Returns
// nil details for unknown users.
func (s *Store) UpdateProfileFromFreeText(userID, text string) (*ProfileDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	profile, ok := data[userID]
	if !ok {
		return nil, nil
	}

	details := parseDetails(text)
	profile.City = details.City
	profile.Interest = details.Interest
	if err := s.save(data); err != nil {
		return nil, err
	}
	return details, nil
}

// ConfirmRegistration marks the user as registered. Unknown users are ignored.
func (s *Store) ConfirmRegistration(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	profile, ok := data[userID]
	if !ok {
		return nil
	}
	profile.RegistrationConfirmed = true
	return s.save(data)
}

// IsRegistrationConfirmed reports the confirmation flag; false for
// unknown users.
func (s *Store) IsRegistrationConfirmed(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}
	profile, ok := data[userID]
	if !ok {
		return false, nil
	}
	return profile.RegistrationConfirmed, nil
}

// RecentInteractions returns the last n interaction log lines, oldest
// first. Unknown users yield an empty slice.
func (s *Store) RecentInteractions(userID string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	profile, ok := data[userID]
	if !ok || n <= 0 {
		return []string{}, nil
	}

	log := profile.Interactions
	if len(log) > n {
		log = log[len(log)-n:]
	}
	out := make([]string, len(log))
	copy(out, log)
	return out, nil
}

// RecordNotified unions newCodes into the user's notified set. The
// document is only rewritten when the union actually grew, so repeated
// deliveries of known codes cost no write.
func (s *Store) RecordNotified(userID string, newCodes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	profile, ok := data[userID]
	if !ok {
		return nil
	}

	changed := false
	for _, code := range newCodes {
		if profile.HasNotified(code) {
			continue
		}
		profile.Notified = append(profile.Notified, code)
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save(data)
}

// Get returns a copy-by-reference of the stored profile, or nil when the
// user is unknown.
func (s *Store) Get(userID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data[userID], nil
}

// UserIDs lists every registered user id in sorted order, so batch runs
// are deterministic.
func (s *Store) UserIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) load() (map[string]*domain.Profile, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]*domain.Profile{}, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreIOFailure(err)
	}
	if len(raw) == 0 {
		return map[string]*domain.Profile{}, nil
	}

	data := map[string]*domain.Profile{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.NewStoreIOFailure(fmt.Errorf("decode %s: %w", s.path, err))
	}
	return data, nil
}

// save writes the whole document to a temp file in the same directory
// and renames it over the target, so readers never observe a torn write.
func (s *Store) save(data map[string]*domain.Profile) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperrors.NewStoreIOFailure(err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperrors.NewStoreIOFailure(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStoreIOFailure(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStoreIOFailure(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStoreIOFailure(err)
	}
	return nil
}

func parseDetails(text string) *ProfileDetails {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	details := &ProfileDetails{}
	if len(parts) > 0 && parts[0] != "" {
		city := parts[0]
		details.City = &city
	}
	if len(parts) > 1 && parts[1] != "" {
		interest := parts[1]
		details.Interest = &interest
	}
	return details
}
