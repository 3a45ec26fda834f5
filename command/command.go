// Package command builds the JSON line protocol spoken to the actuator
// controller. The protocol is one-way: each command encodes to exactly one
// newline-terminated JSON object with a single top-level key, and nothing
// is ever read back.
package command

import "encoding/json"

// ServoStatus is the servo portion of a status snapshot.
type ServoStatus struct {
	Position int  `json:"position"`
	Enabled  bool `json:"enabled"`
}

type statusBody struct {
	Servo ServoStatus `json:"servo"`
	RFID  rfidStatus  `json:"rfid"`
}

type rfidStatus struct {
	CardsRegistered int `json:"cards_registered"`
}

// Command is a single message for the actuator controller.
type Command struct {
	payload any
}

// Led builds an LED on/off command for the named color.
func Led(color string, on bool) Command {
	return Command{payload: map[string]map[string]bool{
		"led": {color: on},
	}}
}

// ServoEnable builds a servo control enable/disable command.
func ServoEnable(on bool) Command {
	return Command{payload: map[string]map[string]bool{
		"servo": {"enable": on},
	}}
}

// ServoPosition builds an absolute position command. Range checking is the
// caller's job; the codec encodes whatever it is given.
func ServoPosition(angle int) Command {
	return Command{payload: map[string]map[string]int{
		"servo": {"set_position": angle},
	}}
}

// Status builds a periodic status snapshot command.
func Status(servo ServoStatus, cardsRegistered int) Command {
	return Command{payload: map[string]statusBody{
		"status": {
			Servo: servo,
			RFID:  rfidStatus{CardsRegistered: cardsRegistered},
		},
	}}
}

// Encode renders the command as one newline-terminated JSON line. Encoding
// is total: every command built by this package marshals, and marshalling
// the same command twice yields identical bytes.
func (c Command) Encode() []byte {
	b, err := json.Marshal(c.payload)
	if err != nil {
		// Payloads are plain maps of bools and ints; Marshal cannot fail.
		panic(err)
	}
	return append(b, '\n')
}
