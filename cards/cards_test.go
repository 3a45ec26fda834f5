package cards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizedExactMatch(t *testing.T) {
	s := NewStore(DefaultConfig())

	assert.True(t, s.Authorized("A1B2C3D4"))
	assert.True(t, s.Authorized("E5F6G7H8"))
	assert.False(t, s.Authorized("a1b2c3d4"), "membership is case-sensitive")
	assert.False(t, s.Authorized(" A1B2C3D4"), "store does not trim")
	assert.False(t, s.Authorized("ZZZZ9999"))
	assert.False(t, s.Authorized(""))
}

func TestRegister(t *testing.T) {
	s := NewStore(DefaultConfig())
	before := s.Count()

	require.NoError(t, s.Register("0BADF00D"))
	assert.Equal(t, before+1, s.Count())
	assert.True(t, s.Authorized("0BADF00D"))

	// Second attempt with the same id leaves the set unchanged.
	err := s.Register("0BADF00D")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, before+1, s.Count())
}

func TestRegisterEmpty(t *testing.T) {
	s := NewStore(DefaultConfig())
	before := s.Count()

	assert.ErrorIs(t, s.Register(""), ErrEmpty)
	assert.ErrorIs(t, s.Register("   "), ErrEmpty)
	assert.Equal(t, before, s.Count())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s := NewStore(DefaultConfig())
	require.NoError(t, s.Register("CAFEBABE"))
	require.NoError(t, s.Save(path))

	loaded := NewStore(DefaultConfig())
	require.NoError(t, loaded.Load(path))

	assert.True(t, loaded.Authorized("CAFEBABE"))
	assert.Equal(t, s.Count(), loaded.Count())
	assert.Equal(t, s.Config(), loaded.Config())
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(DefaultConfig())
	err := s.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	// Defaults survive a failed load.
	assert.True(t, s.Authorized("A1B2C3D4"))
	assert.Equal(t, 2, s.Count())
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewStore(DefaultConfig())
	require.Error(t, s.Load(path))
	assert.Equal(t, 2, s.Count())
}

func TestLoadPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"authorized_cards":["11112222"],"baud_rate":115200}`), 0644))

	s := NewStore(DefaultConfig())
	require.NoError(t, s.Load(path))

	cfg := s.Config()
	assert.Equal(t, []string{"11112222"}, cfg.AuthorizedCards)
	assert.Equal(t, 115200, cfg.BaudRate)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 90, cfg.ServoDefaultPos)
	assert.Equal(t, 180, cfg.ServoAllowedPos)
	assert.Equal(t, map[string]int{"green": 3, "red": 4}, cfg.LedPins)
}
