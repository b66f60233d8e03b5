package persistence

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// Snapshots are stored zstd-compressed with a BLAKE3 digest of the raw
// bytes. A blob that fails to decompress or verify loads as empty, which
// the engine's sanitizer turns into a fresh state.

// Save stores blob under key, replacing any previous snapshot.
func (db *DB) Save(key string, blob []byte) error {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	packed := enc.EncodeAll(blob, nil)

	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO snapshots (key, blob, digest, raw_size, saved_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key, packed, digest(blob), len(blob), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}

	slog.Debug("snapshot saved", "key", key,
		"raw", humanize.Bytes(uint64(len(blob))), "stored", humanize.Bytes(uint64(len(packed))))
	return nil
}

// Load returns the snapshot stored under key, or nil when there is none or
// it is corrupt.
func (db *DB) Load(key string) ([]byte, error) {
	var row struct {
		Blob   []byte `db:"blob"`
		Digest string `db:"digest"`
	}
	err := db.conn.Get(&row, "SELECT blob, digest FROM snapshots WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(row.Blob, nil)
	if err != nil {
		slog.Warn("snapshot corrupt, ignoring", "key", key, "error", err)
		return nil, nil
	}
	if digest(raw) != row.Digest {
		slog.Warn("snapshot digest mismatch, ignoring", "key", key)
		return nil, nil
	}
	return raw, nil
}

// SnapshotInfo describes a stored snapshot without decoding it.
type SnapshotInfo struct {
	Key     string `db:"key" json:"key"`
	Digest  string `db:"digest" json:"digest"`
	RawSize int64  `db:"raw_size" json:"raw_size"`
	SavedAt string `db:"saved_at" json:"saved_at"`
}

// Snapshots lists the stored snapshots by key.
func (db *DB) Snapshots() ([]SnapshotInfo, error) {
	var out []SnapshotInfo
	if err := db.conn.Select(&out, "SELECT key, digest, raw_size, saved_at FROM snapshots ORDER BY key"); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// DeleteSnapshot removes the snapshot under key.
func (db *DB) DeleteSnapshot(key string) error {
	if _, err := db.conn.Exec("DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}

// PruneSnapshots deletes every snapshot whose key is not in keep and
// returns the deleted keys.
func (db *DB) PruneSnapshots(keep map[string]bool) ([]string, error) {
	infos, err := db.Snapshots()
	if err != nil {
		return nil, err
	}
	var pruned []string
	for _, info := range infos {
		if keep[info.Key] {
			continue
		}
		if err := db.DeleteSnapshot(info.Key); err != nil {
			return pruned, err
		}
		slog.Info("snapshot pruned", "key", info.Key, "saved_at", info.SavedAt)
		pruned = append(pruned, info.Key)
	}
	return pruned, nil
}

func digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
