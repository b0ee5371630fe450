package main

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	errEmptyMessage = errors.New("empty message")
	errNonFinite    = errors.New("non-finite number")
)

// WelcomeMsg is sent once, right after the player is created
type WelcomeMsg struct {
	PlayerID string `json:"playerId" msgpack:"playerId"`
}

// PlayerState is broadcast per player
type PlayerState struct {
	ID   string  `json:"id" msgpack:"id"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Mass float64 `json:"mass" msgpack:"mass"`
}

// CellState is broadcast per cell
type CellState struct {
	ID    int64   `json:"id" msgpack:"id"`
	X     int     `json:"x" msgpack:"x"`
	Y     int     `json:"y" msgpack:"y"`
	Mass  float64 `json:"mass" msgpack:"mass"`
	Color string  `json:"color" msgpack:"color"`
}

// BlobState is broadcast per blob
type BlobState struct {
	ID       int64   `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Mass     float64 `json:"mass" msgpack:"mass"`
	Angle    float64 `json:"angle" msgpack:"angle"`
	Speed    float64 `json:"speed" msgpack:"speed"`
	Traveled float64 `json:"distance_traveled" msgpack:"distance_traveled"`
	OwnerID  string  `json:"ownerId" msgpack:"ownerId"`
}

// Snapshot is the full world state broadcast
type Snapshot struct {
	Players []PlayerState `json:"players" msgpack:"players"`
	Cells   []CellState   `json:"cells" msgpack:"cells"`
	Blobs   []BlobState   `json:"blobs" msgpack:"blobs"`
}

// Encode marshals msg as a JSON text frame or a msgpack binary frame
func Encode(msg interface{}, binary bool) ([]byte, error) {
	if binary {
		return msgpack.Marshal(msg)
	}
	return json.Marshal(msg)
}

// IntentKind classifies a client message
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentMove
	IntentConsume
	IntentFire
)

func (k IntentKind) String() string {
	switch k {
	case IntentMove:
		return "move"
	case IntentConsume:
		return "consume"
	case IntentFire:
		return "fire"
	}
	return "none"
}

// Intent is any client message. Which fields are present decides its kind.
type Intent struct {
	X              *float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y              *float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	ConsumedCellID *int64   `json:"consumedCellId,omitempty" msgpack:"consumedCellId,omitempty"`
	FireBlob       Flag     `json:"fireBlob,omitempty" msgpack:"fireBlob,omitempty"`
	Angle          *float64 `json:"angle,omitempty" msgpack:"angle,omitempty"`
}

// Kind picks the first matching shape: position, consumption, fire
func (in Intent) Kind() IntentKind {
	switch {
	case in.X != nil && in.Y != nil:
		return IntentMove
	case in.ConsumedCellID != nil:
		return IntentConsume
	case bool(in.FireBlob) && in.Angle != nil:
		return IntentFire
	}
	return IntentNone
}

// DecodeIntent parses a text (JSON) or binary (msgpack) client frame
func DecodeIntent(raw []byte, binary bool) (Intent, error) {
	var in Intent
	if len(raw) == 0 {
		return in, errEmptyMessage
	}
	var err error
	if binary {
		err = msgpack.Unmarshal(raw, &in)
	} else {
		err = json.Unmarshal(raw, &in)
	}
	if err != nil {
		return in, err
	}
	// msgpack can carry NaN and Inf, which would poison positions and snapshots
	for _, v := range []*float64{in.X, in.Y, in.Angle} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return Intent{}, errNonFinite
		}
	}
	return in, nil
}

// Flag decodes any truthy value: true, non-zero numbers, non-empty strings
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Flag(truthy(v))
	return nil
}

func (f *Flag) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	*f = Flag(truthy(v))
	return nil
}

func (f Flag) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBool(bool(f))
}

func truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String, reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
