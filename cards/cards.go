// Package cards manages the set of authorized card identifiers and its
// JSON-file configuration mirror. The store is queried from the card-read
// path and mutated from the console path, so all access goes through a
// read-write lock.
package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

var (
	// ErrEmpty is returned when registering a blank card identifier.
	ErrEmpty = errors.New("empty card id")

	// ErrDuplicate is returned when registering an already-known card.
	ErrDuplicate = errors.New("card already registered")
)

// Config mirrors the on-disk JSON configuration. Keys absent from the file
// keep their built-in defaults; the whole struct is written back on save.
type Config struct {
	VendorID        uint16         `json:"vendor_id"`
	ProductID       uint16         `json:"product_id"`
	AuthorizedCards []string       `json:"authorized_cards"`
	ServoDefaultPos int            `json:"servo_default_pos"`
	ServoAllowedPos int            `json:"servo_allowed_pos"`
	BaudRate        int            `json:"baud_rate"`
	LedPins         map[string]int `json:"led_pins"`
}

// DefaultConfig returns the built-in configuration used when no file is
// present or a key is missing.
func DefaultConfig() Config {
	return Config{
		VendorID:        0x1234,
		ProductID:       0x5678,
		AuthorizedCards: []string{"A1B2C3D4", "E5F6G7H8"},
		ServoDefaultPos: 90,
		ServoAllowedPos: 180,
		BaudRate:        9600,
		LedPins:         map[string]int{"green": 3, "red": 4},
	}
}

// Store holds the runtime configuration and the authorized card set.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore creates a store seeded with the given configuration.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Load overlays the JSON file at path onto the current configuration.
// A missing or malformed file is not an error to the process; the caller
// logs it and keeps the defaults.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := json.Unmarshal(data, &s.cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Save writes the full configuration to path. Last write wins; there is no
// versioning.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.cfg, "", "    ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Authorized reports whether id is in the authorized set. The comparison is
// exact: case-sensitive, no trimming beyond what the caller already did.
func (s *Store) Authorized(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, card := range s.cfg.AuthorizedCards {
		if card == id {
			return true
		}
	}
	return false
}

// Register appends a new card identifier. Blank identifiers and duplicates
// are rejected.
func (s *Store) Register(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range s.cfg.AuthorizedCards {
		if card == id {
			return ErrDuplicate
		}
	}
	s.cfg.AuthorizedCards = append(s.cfg.AuthorizedCards, id)
	return nil
}

// Count returns the number of registered cards.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cfg.AuthorizedCards)
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	cfg.AuthorizedCards = append([]string(nil), s.cfg.AuthorizedCards...)
	cfg.LedPins = make(map[string]int, len(s.cfg.LedPins))
	for color, pin := range s.cfg.LedPins {
		cfg.LedPins[color] = pin
	}
	return cfg
}
