package access

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servogate/cards"
)

// captureSender records every line sent through it.
type captureSender struct {
	mu    sync.Mutex
	lines []string
}

func (s *captureSender) Send(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, string(line))
	return nil
}

func (s *captureSender) Close() error { return nil }

func (s *captureSender) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// brokenSender fails every write, like a yanked serial cable.
type brokenSender struct{}

func (brokenSender) Send(line []byte) error { return errors.New("port closed") }
func (brokenSender) Close() error           { return nil }

func testConfig() Config {
	return Config{DefaultPos: 90, AllowedPos: 180, Dwell: time.Millisecond}
}

func TestDecodeCredential(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain", []byte("A1B2C3D4"), "A1B2C3D4"},
		{"surrounding whitespace", []byte("  A1B2C3D4\r\n"), "A1B2C3D4"},
		{"empty", nil, ""},
		{"only whitespace", []byte(" \t\n"), ""},
		{"high bytes decode to something", []byte{0xC0, 0xFF, 0xEE}, "Àÿî"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeCredential(tt.raw))
		})
	}
}

func TestGrantSequence(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())

	allowed := ctrl.HandleRead([]byte("A1B2C3D4"))
	require.True(t, allowed)

	assert.Equal(t, []string{
		"{\"led\":{\"green\":true}}\n",
		"{\"servo\":{\"enable\":true}}\n",
		"{\"led\":{\"green\":false}}\n",
	}, tx.Lines())

	assert.Equal(t, ServoState{Enabled: true, Position: 180}, ctrl.Servo())
}

func TestDenySequence(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())

	allowed := ctrl.HandleRead([]byte("ZZZZ9999"))
	require.False(t, allowed)

	assert.Equal(t, []string{
		"{\"led\":{\"red\":true}}\n",
		"{\"servo\":{\"enable\":false}}\n",
		"{\"led\":{\"red\":false}}\n",
	}, tx.Lines())

	assert.Equal(t, ServoState{Enabled: false, Position: 90}, ctrl.Servo())
}

func TestGrantTrimsCredential(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())

	assert.True(t, ctrl.HandleRead([]byte("  A1B2C3D4\n")))
}

func TestEmptyReadDenied(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())

	assert.False(t, ctrl.HandleRead(nil))
	assert.Equal(t, ServoState{Enabled: false, Position: 90}, ctrl.Servo())
}

func TestTransportFailureDoesNotAbortTransition(t *testing.T) {
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, brokenSender{}, testConfig())

	assert.True(t, ctrl.HandleRead([]byte("A1B2C3D4")))
	assert.Equal(t, ServoState{Enabled: true, Position: 180}, ctrl.Servo(),
		"state machine completes even when every emission fails")

	assert.False(t, ctrl.HandleRead([]byte("ZZZZ9999")))
	assert.Equal(t, ServoState{Enabled: false, Position: 90}, ctrl.Servo())
}

func TestSetPosition(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())
	ctrl.EnableServo()
	tx.mu.Lock()
	tx.lines = nil
	tx.mu.Unlock()

	require.True(t, ctrl.SetPosition(45))
	assert.Equal(t, ServoState{Enabled: true, Position: 45}, ctrl.Servo(),
		"position command must not touch the enabled flag")
	assert.Equal(t, []string{"{\"servo\":{\"set_position\":45}}\n"}, tx.Lines())

	// Boundary values are accepted.
	assert.True(t, ctrl.SetPosition(0))
	assert.True(t, ctrl.SetPosition(180))
}

func TestSetPositionRejectsOutOfRange(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())
	before := ctrl.Servo()
	sent := len(tx.Lines())

	assert.False(t, ctrl.SetPosition(-1))
	assert.False(t, ctrl.SetPosition(181))
	assert.Equal(t, before, ctrl.Servo())
	assert.Len(t, tx.Lines(), sent, "rejected positions emit nothing")
}

func TestDecisionCallback(t *testing.T) {
	tx := &captureSender{}
	store := cards.NewStore(cards.DefaultConfig())
	ctrl := NewController(store, tx, testConfig())

	var gotCard string
	var gotAllowed bool
	ctrl.OnDecision(func(card string, allowed bool) {
		gotCard = card
		gotAllowed = allowed
	})

	ctrl.HandleRead([]byte("E5F6G7H8"))
	assert.Equal(t, "E5F6G7H8", gotCard)
	assert.True(t, gotAllowed)

	ctrl.HandleRead([]byte("nope"))
	assert.Equal(t, "nope", gotCard)
	assert.False(t, gotAllowed)
}
