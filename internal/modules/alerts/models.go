// Package alerts deduplicates and delivers market open/close alerts.
package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// TransitionKind is the session boundary an alert announces.
type TransitionKind int

const (
	// Opening announces an upcoming open.
	Opening TransitionKind = iota
	// Closing announces an upcoming close.
	Closing
)

// Kinds lists every transition kind; each has its own dedup namespace.
var Kinds = []TransitionKind{Opening, Closing}

func (k TransitionKind) String() string {
	switch k {
	case Opening:
		return "opening"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// namespace is the store partition for the kind.
func (k TransitionKind) namespace() string {
	return k.String()
}

// ErrUnknownBackend is returned for an unrecognised dedup backend name.
var ErrUnknownBackend = errors.New("unknown dedup backend")

// Marker records a delivered alert. It is stored msgpack-encoded.
type Marker struct {
	Region  string    `msgpack:"region" json:"region"`
	Kind    string    `msgpack:"kind" json:"kind"`
	Message string    `msgpack:"message" json:"message"`
	SentAt  time.Time `msgpack:"sent_at" json:"sent_at"`
}

func encodeMarker(m Marker) ([]byte, error) {
	data, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode marker: %w", err)
	}
	return data, nil
}

func decodeMarker(data []byte) (Marker, error) {
	var m Marker
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Marker{}, fmt.Errorf("failed to decode marker: %w", err)
	}
	return m, nil
}
