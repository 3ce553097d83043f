// Package fileutil copies and fingerprints byte ranges of disc images.
package fileutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
)

// Checksums holds the Redump-style fingerprints of one track.
type Checksums struct {
	Size  int64
	CRC32 uint32
	SHA1  string
}

// CRC32Hex renders the CRC as eight lowercase hex digits.
func (c Checksums) CRC32Hex() string {
	return fmt.Sprintf("%08x", c.CRC32)
}

// Hasher computes CRC32 and SHA-1 over everything written to it.
type Hasher struct {
	crc  hash.Hash32
	sha  hash.Hash
	size int64
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{crc: crc32.NewIEEE(), sha: sha1.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	h.crc.Write(p)
	h.sha.Write(p)
	h.size += int64(len(p))
	return len(p), nil
}

// Sum returns the checksums of the data written so far.
func (h *Hasher) Sum() Checksums {
	return Checksums{Size: h.size, CRC32: h.crc.Sum32(), SHA1: hex.EncodeToString(h.sha.Sum(nil))}
}

type rangeReader struct {
	*io.SectionReader
	file *os.File
}

func (r *rangeReader) Close() error { return r.file.Close() }

// OpenRange opens size bytes of path starting at offset start. The range must
// lie inside the file.
func OpenRange(path string, start, size int64) (io.ReadCloser, error) {
	if start < 0 || size < 0 {
		return nil, fmt.Errorf("invalid range [%d,+%d) in %s", start, size, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if start+size > info.Size() {
		f.Close()
		return nil, fmt.Errorf("range [%d,+%d) exceeds %s (%d bytes)", start, size, path, info.Size())
	}
	return &rangeReader{SectionReader: io.NewSectionReader(f, start, size), file: f}, nil
}

// CopyRange copies size bytes of src starting at start into dst and returns
// their checksums. dst is written under a temporary name and renamed into
// place once complete, so an interrupted copy never leaves a partial file.
func CopyRange(src string, start, size int64, dst string) (Checksums, error) {
	in, err := OpenRange(src, start, size)
	if err != nil {
		return Checksums{}, err
	}
	defer in.Close()

	hasher := NewHasher()
	err = WriteFileAtomic(dst, 0o644, func(w io.Writer) error {
		written, err := io.Copy(io.MultiWriter(w, hasher), in)
		if err != nil {
			return err
		}
		if written != size {
			return fmt.Errorf("copy size mismatch: expected %d bytes, copied %d bytes", size, written)
		}
		return nil
	})
	if err != nil {
		return Checksums{}, err
	}
	return hasher.Sum(), nil
}

// ChecksumRange fingerprints size bytes of path starting at start.
func ChecksumRange(path string, start, size int64) (Checksums, error) {
	in, err := OpenRange(path, start, size)
	if err != nil {
		return Checksums{}, err
	}
	defer in.Close()

	hasher := NewHasher()
	if _, err := io.Copy(hasher, in); err != nil {
		return Checksums{}, err
	}
	return hasher.Sum(), nil
}

// WriteFileAtomic creates path through write, going via a temporary file in
// the same directory. The temporary file is removed when write fails.
func WriteFileAtomic(path string, mode os.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
