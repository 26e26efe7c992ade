package harvest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/austral-data/cosecha/types"
)

// Journal frame limits. A DownloadOutcome is small; anything near the
// cap indicates a corrupted length prefix.
const (
	journalLengthPrefixSize = 4
	journalMaxPayloadSize   = 1 << 20
)

// JournalName is the outcome journal's filename under <job>/results/.
const JournalName = "outcomes.bin"

// Journal is an append-only log of download outcomes, one
// length-prefixed msgpack frame per outcome. A later reconciliation or
// audit can replay the pass from it without shared memory.
type Journal struct {
	f *os.File
}

// OpenJournal opens (creating if needed) the journal at path for append.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{f: f}, nil
}

// Append writes one outcome frame: 4-byte big-endian payload length
// followed by the msgpack payload.
func (j *Journal) Append(outcome types.DownloadOutcome) error {
	payload, err := msgpack.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	var prefix [journalLengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))

	if _, err := j.f.Write(prefix[:]); err != nil {
		return fmt.Errorf("write journal frame: %w", err)
	}
	if _, err := j.f.Write(payload); err != nil {
		return fmt.Errorf("write journal frame: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (j *Journal) Close() error {
	return j.f.Close()
}

// ReadJournal replays every outcome frame from the journal at path.
func ReadJournal(path string) ([]types.DownloadOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var outcomes []types.DownloadOutcome
	for {
		var prefix [journalLengthPrefixSize]byte
		if _, err := io.ReadFull(f, prefix[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return outcomes, nil
			}
			return nil, fmt.Errorf("journal truncated: %w", err)
		}

		size := binary.BigEndian.Uint32(prefix[:])
		if size > journalMaxPayloadSize {
			return nil, fmt.Errorf("journal frame size %d exceeds maximum %d", size, journalMaxPayloadSize)
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(f, payload); err != nil {
			return nil, fmt.Errorf("journal truncated: %w", err)
		}

		var outcome types.DownloadOutcome
		if err := msgpack.Unmarshal(payload, &outcome); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
}
