// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/adjudicator/lib/adjudication"
	"github.com/bureau-foundation/adjudicator/lib/codec"
)

// formatVersion is the envelope version this package writes and
// accepts.
const formatVersion = 1

// ErrCorrupt is returned by [Read] and [Decode] when the snapshot's
// digest does not match its payload.
var ErrCorrupt = errors.New("history: snapshot digest mismatch")

// Snapshot is the persisted part of a session.
type Snapshot struct {
	// Location is the location path and history with the current
	// position.
	Location adjudication.LocationState `cbor:"location"`

	// BaseURL is the record service the history was recorded against.
	// Resuming against a different service starts fresh.
	BaseURL string `cbor:"base_url"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `cbor:"saved_at"`
}

// envelope wraps the encoded snapshot with its digest.
type envelope struct {
	Version int              `cbor:"version"`
	Payload codec.RawMessage `cbor:"payload"`
	Digest  []byte           `cbor:"digest"`
}

// digestKey is the 32-byte BLAKE3 key for snapshot digests: the ASCII
// domain name, zero-padded.
var digestKey = [32]byte{
	'a', 'd', 'j', 'u', 'd', 'i', 'c', 'a', 't', 'o', 'r', '.',
	's', 'e', 's', 's', 'i', 'o', 'n', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest returns the snapshot-domain BLAKE3 keyed hash of payload.
func Digest(payload []byte) [32]byte {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("history: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// Encode serializes a snapshot into its enveloped form.
func Encode(snapshot Snapshot) ([]byte, error) {
	payload, err := codec.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	digest := Digest(payload)
	data, err := codec.Marshal(envelope{
		Version: formatVersion,
		Payload: payload,
		Digest:  digest[:],
	})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot envelope: %w", err)
	}
	return data, nil
}

// Decode parses and verifies an enveloped snapshot.
func Decode(data []byte) (Snapshot, error) {
	var wrapped envelope
	if err := codec.Unmarshal(data, &wrapped); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot envelope: %w", err)
	}
	if wrapped.Version != formatVersion {
		return Snapshot{}, fmt.Errorf("history: unsupported snapshot version %d", wrapped.Version)
	}
	digest := Digest(wrapped.Payload)
	if !bytes.Equal(digest[:], wrapped.Digest) {
		return Snapshot{}, ErrCorrupt
	}

	var snapshot Snapshot
	if err := codec.Unmarshal(wrapped.Payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snapshot, nil
}

// Capture takes a snapshot of location.
func Capture(location *adjudication.Location, baseURL string, now time.Time) Snapshot {
	return Snapshot{
		Location: location.State(),
		BaseURL:  baseURL,
		SavedAt:  now,
	}
}

// Restore rebuilds the location a snapshot recorded.
func (snapshot Snapshot) Restore() (*adjudication.Location, error) {
	return adjudication.RestoreLocation(snapshot.Location)
}

// Write atomically writes a snapshot file, creating the parent
// directory if needed. The file is created with mode 0600.
func Write(path string, snapshot Snapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary snapshot file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary snapshot file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary snapshot file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary snapshot file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming snapshot file into place: %w", err)
	}

	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Read reads and verifies a snapshot file. When the file does not
// exist, the returned error wraps os.ErrNotExist (testable with
// errors.Is).
func Read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}

// Clear removes a snapshot file. Idempotent: returns nil when the file
// does not exist.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot file: %w", err)
	}
	return nil
}
