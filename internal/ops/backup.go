package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"idlepond/internal/storage"
)

const manifestName = "MANIFEST.json"

var ErrDigestMismatch = errors.New("ops: backup digest mismatch")

// SaveKeys are the keys a backup covers.
var SaveKeys = []string{storage.KeyLedger, storage.KeyProgress, storage.KeySession}

// Manifest lists the saves in an archive with their sha256 digests.
type Manifest struct {
	CreatedAt time.Time         `json:"created_at"`
	Digests   map[string]string `json:"digests"`
}

// BackupSaves writes the saves found in store to a .tar.gz at archivePath.
// Keys with no save are skipped.
func BackupSaves(ctx context.Context, store storage.Store, archivePath string, now time.Time) (Manifest, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return Manifest{}, fmt.Errorf("archivePath is required")
	}

	var entries []storage.Entry
	for _, key := range SaveKeys {
		data, err := store.Load(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("reading %s: %w", key, err)
		}
		entries = append(entries, storage.Entry{Key: key, Data: data})
	}

	m := Manifest{CreatedAt: now.UTC(), Digests: make(map[string]string, len(entries))}
	for _, e := range entries {
		m.Digests[e.Key] = digest(e.Data)
	}
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, err
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Manifest{}, err
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	write := func(name string, body []byte) error {
		hdr := &tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(body)),
			ModTime:  m.CreatedAt,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(body)
		return err
	}

	if err := write(manifestName, mb); err != nil {
		return Manifest{}, err
	}
	for _, e := range entries {
		if err := write(e.Key+".json", e.Data); err != nil {
			return Manifest{}, err
		}
	}
	if err := tw.Close(); err != nil {
		return Manifest{}, err
	}
	if err := gz.Close(); err != nil {
		return Manifest{}, err
	}
	return m, f.Close()
}

// RestoreSaves checks every save in the archive against its manifest
// digest and writes them to store in one batch. Nothing is written when
// any check fails.
func RestoreSaves(ctx context.Context, store storage.Store, archivePath string) (Manifest, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return Manifest{}, fmt.Errorf("archivePath is required")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return Manifest{}, err
	}
	defer gz.Close()

	var (
		m        Manifest
		haveMeta bool
		saves    = map[string][]byte{}
	)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Manifest{}, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, err := sanitizeArchiveName(hdr.Name)
		if err != nil {
			return Manifest{}, err
		}
		body, err := io.ReadAll(tr)
		if err != nil {
			return Manifest{}, err
		}
		if name == manifestName {
			if err := json.Unmarshal(body, &m); err != nil {
				return Manifest{}, fmt.Errorf("reading manifest: %w", err)
			}
			haveMeta = true
			continue
		}
		key, ok := strings.CutSuffix(name, ".json")
		if !ok {
			continue
		}
		saves[key] = body
	}
	if !haveMeta {
		return Manifest{}, fmt.Errorf("archive has no %s", manifestName)
	}

	keys := make([]string, 0, len(m.Digests))
	for k := range m.Digests {
		keys = append(keys, k)
	}
	// sorted order puts session after ledger and progress
	sort.Strings(keys)

	entries := make([]storage.Entry, 0, len(keys))
	for _, k := range keys {
		body, ok := saves[k]
		if !ok {
			return Manifest{}, fmt.Errorf("archive is missing %s", k)
		}
		if got := digest(body); got != m.Digests[k] {
			return Manifest{}, fmt.Errorf("%w: %s", ErrDigestMismatch, k)
		}
		entries = append(entries, storage.Entry{Key: k, Data: body})
	}
	if err := store.SaveAll(ctx, entries); err != nil {
		return Manifest{}, fmt.Errorf("writing restored saves: %w", err)
	}
	return m, nil
}

func digest(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func sanitizeArchiveName(name string) (string, error) {
	clean := path.Clean(strings.TrimSpace(name))
	if clean == "." || clean == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if path.IsAbs(clean) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(clean, "/") {
		return "", fmt.Errorf("invalid archive entry path: %s", name)
	}
	return clean, nil
}
