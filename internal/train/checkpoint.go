package train

import (
	"encoding/binary"
	"hash/crc32"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Checkpoint format, little-endian throughout:
//
//	[8]byte  magic "COLLOCK1"
//	uint64   parameter count
//	float64  parameters, count entries
//	uint32   CRC-32 (IEEE) of everything above
//
// The CRC guards against truncated or corrupted snapshots; a partial
// write is detected on read rather than silently loading garbage.

var checkpointMagic = [8]byte{'C', 'O', 'L', 'L', 'O', 'C', 'K', '1'}

// ErrCorruptCheckpoint reports a checkpoint that failed validation.
var ErrCorruptCheckpoint = errors.New("train: corrupt checkpoint")

// WriteCheckpoint atomically writes the parameter vector to path. The
// snapshot lands in a temporary file first and is renamed over the
// target, so readers never observe a half-written checkpoint.
func WriteCheckpoint(path string, params []float64) error {
	buf := make([]byte, 8+8+8*len(params)+4)
	copy(buf, checkpointMagic[:])
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(params)))
	for i, v := range params {
		binary.LittleEndian.PutUint64(buf[16+8*i:], math.Float64bits(v))
	}
	payload := buf[:len(buf)-4]
	binary.LittleEndian.PutUint32(buf[len(buf)-4:], crc32.ChecksumIEEE(payload))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return errors.Wrap(err, "train: write checkpoint")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "train: rename checkpoint")
	}
	return nil
}

// ReadCheckpoint loads a parameter vector written by WriteCheckpoint.
func ReadCheckpoint(path string) ([]float64, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "train: read checkpoint")
	}
	if len(buf) < 8+8+4 {
		return nil, errors.Wrap(ErrCorruptCheckpoint, "file too short")
	}
	if string(buf[:8]) != string(checkpointMagic[:]) {
		return nil, errors.Wrap(ErrCorruptCheckpoint, "bad magic")
	}

	payload := buf[:len(buf)-4]
	want := binary.LittleEndian.Uint32(buf[len(buf)-4:])
	if crc32.ChecksumIEEE(payload) != want {
		return nil, errors.Wrap(ErrCorruptCheckpoint, "checksum mismatch")
	}

	count := binary.LittleEndian.Uint64(buf[8:16])
	if uint64(len(buf)) != 8+8+8*count+4 {
		return nil, errors.Wrap(ErrCorruptCheckpoint, "length does not match parameter count")
	}

	params := make([]float64, count)
	for i := range params {
		params[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[16+8*i:]))
	}
	return params, nil
}
