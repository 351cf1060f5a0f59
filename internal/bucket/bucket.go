// Package bucket is the reference-image store consumed by the face
// backends: a directory per identity holding that identity's reference
// photos, plus an audit area for accepted verification snapshots.
package bucket

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// auditDir holds accepted probe snapshots and is never treated as an
// identity.
const auditDir = "enrollface"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Bucket reads and writes a directory-per-identity image layout.
type Bucket struct {
	root string
}

// New creates a bucket rooted at the given directory. The directory does
// not need to exist yet; an absent root is an empty bucket.
func New(root string) *Bucket {
	return &Bucket{root: root}
}

// Root returns the bucket's base directory.
func (b *Bucket) Root() string {
	return b.root
}

// Identities lists the identity ids (subdirectory names) present in the
// bucket, sorted. An identity directory may be empty.
func (b *Bucket) Identities() ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list bucket root: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == auditDir {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Images lists the reference image paths for an identity, sorted. Only
// jpg, jpeg and png files count.
func (b *Bucket) Images(identity string) ([]string, error) {
	dir := filepath.Join(b.root, identity)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list identity %s: %w", identity, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read returns the bytes of a previously listed image file.
func (b *Bucket) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// SaveReference stores an uploaded reference image under the identity's
// directory and returns the stored path. The extension must be one of
// the accepted image types.
func (b *Bucket) SaveReference(identity, ext string, data []byte) (string, error) {
	ext = strings.ToLower(ext)
	if !imageExtensions[ext] {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	dir := filepath.Join(b.root, identity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create identity dir: %w", err)
	}
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), shortID(), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write reference image: %w", err)
	}
	return path, nil
}

// SaveAuditSnapshot stores an accepted verification probe under the
// audit area keyed by identity. Callers treat failures as non-fatal.
func (b *Bucket) SaveAuditSnapshot(identity string, data []byte) (string, error) {
	dir := filepath.Join(b.root, auditDir, identity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create audit dir: %w", err)
	}
	name := fmt.Sprintf("verify_%d.jpg", time.Now().UnixMilli())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audit snapshot: %w", err)
	}
	return path, nil
}

func shortID() string {
	return uuid.NewString()[:8]
}
