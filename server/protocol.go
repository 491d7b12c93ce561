package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/invopop/jsonschema"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lab1702/rocket-hivemind/game"
)

// Message types
const (
	MsgTypeWorld       = "world"
	MsgTypeReset       = "reset"
	MsgTypeAssignments = "assignments"
	MsgTypeError       = "error"
)

var (
	ErrEmptyFrame     = errors.New("empty frame")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMissingWorld   = errors.New("world message without world payload")
)

// DroneReport is the executor's status for one drone's current maneuver
type DroneReport struct {
	ID            int  `json:"id" jsonschema:"description=Car id of the drone"`
	Finished      bool `json:"finished" jsonschema:"description=The maneuver completed this tick"`
	Interruptible bool `json:"interruptible" jsonschema:"description=The maneuver may be replaced"`
}

// WorldFrame is one tick of the host feed
type WorldFrame struct {
	Tick         uint64        `json:"tick,omitempty" jsonschema:"description=Host tick counter"`
	Time         float64       `json:"time" jsonschema:"description=Game clock in seconds"`
	Team         *game.Team    `json:"team,omitempty" jsonschema:"description=Team our drones play for (0 blue or 1 orange). Defaults to the server team"`
	KickoffPause bool          `json:"kickoffPause" jsonschema:"description=Ball is waiting at center for a kickoff"`
	Ball         game.Ball     `json:"ball"`
	Cars         []game.Car    `json:"cars" jsonschema:"description=Every car on the field in a stable order"`
	Pads         []game.Pad    `json:"pads" jsonschema:"description=Boost pads in a stable order"`
	Reports      []DroneReport `json:"reports,omitempty" jsonschema:"description=Executor status since the last frame"`
}

// TeamOr returns the frame's team, or fallback when the frame has none
func (f *WorldFrame) TeamOr(fallback game.Team) game.Team {
	if f.Team == nil {
		return fallback
	}
	return *f.Team
}

// World converts the frame into the read-only snapshot the hivemind uses
func (f *WorldFrame) World(fallback game.Team) *game.WorldState {
	w := game.NewWorldState(f.TeamOr(fallback))
	w.Time = f.Time
	w.KickoffPause = f.KickoffPause
	w.Ball = f.Ball
	w.Cars = f.Cars
	w.Pads = f.Pads
	return w
}

// HostMessage represents a message from the host to the hivemind
type HostMessage struct {
	Type  string      `json:"type" jsonschema:"enum=world,enum=reset"`
	World *WorldFrame `json:"world,omitempty"`
}

// ServerMessage represents a message from the hivemind to the host
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Assignment is one drone's maneuver as seen by the host
type Assignment struct {
	Drone         DroneID  `json:"drone"`
	Role          string   `json:"role"`
	Kind          string   `json:"kind,omitempty"`
	Interruptible bool     `json:"interruptible"`
	Maneuver      Maneuver `json:"maneuver,omitempty"`
}

// AssignmentFrame is the reply to a world message
type AssignmentFrame struct {
	Tick         uint64         `json:"tick"`
	Session      string         `json:"session"`
	GoingForBall DroneID        `json:"goingForBall"`
	Defending    DroneID        `json:"defending"`
	Goal         game.GoalEvent `json:"goal"`
	Assignments  []Assignment   `json:"assignments"`
	Reservations []Reservation  `json:"reservations"`
}

// ErrorFrame reports a frame the hivemind could not use
type ErrorFrame struct {
	Message string `json:"message"`
}

// DecodeHostMessage parses one websocket frame. Text frames are JSON, binary
// frames are msgpack keyed by the same field names.
func DecodeHostMessage(messageType int, data []byte) (HostMessage, error) {
	var msg HostMessage
	if len(data) == 0 {
		return msg, ErrEmptyFrame
	}

	switch messageType {
	case websocket.TextMessage:
		if err := json.Unmarshal(data, &msg); err != nil {
			return msg, fmt.Errorf("decode json frame: %w", err)
		}
	case websocket.BinaryMessage:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&msg); err != nil {
			return msg, fmt.Errorf("decode msgpack frame: %w", err)
		}
	default:
		return msg, fmt.Errorf("%w: websocket frame type %d", ErrUnknownMessage, messageType)
	}

	switch msg.Type {
	case MsgTypeWorld:
		if msg.World == nil {
			return msg, ErrMissingWorld
		}
	case MsgTypeReset:
	default:
		return msg, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return msg, nil
}

// EncodeServerMessage serializes msg as msgpack when binary is set, JSON
// otherwise
func EncodeServerMessage(binary bool, msg ServerMessage) ([]byte, error) {
	if !binary {
		return json.Marshal(msg)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ProtocolSchema describes the host message format
func ProtocolSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&HostMessage{})
	schema.Title = "Hivemind Host Message"
	schema.Description = "One tick of world state or a session reset sent by the game host."
	return schema
}
