package fileutil

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T) (string, []byte) {
	t.Helper()
	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	path := filepath.Join(t.TempDir(), "image.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path, data
}

func TestCopyRange(t *testing.T) {
	src, data := writeSource(t)
	dst := filepath.Join(t.TempDir(), "track.bin")

	sums, err := CopyRange(src, 2352, 4704, dst)
	if err != nil {
		t.Fatalf("CopyRange: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data[2352:2352+4704]) {
		t.Fatal("copied bytes do not match the source range")
	}
	if sums.Size != 4704 {
		t.Fatalf("size = %d", sums.Size)
	}

	again, err := ChecksumRange(src, 2352, 4704)
	if err != nil {
		t.Fatalf("ChecksumRange: %v", err)
	}
	if again != sums {
		t.Fatalf("checksums differ: %+v vs %+v", again, sums)
	}

	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(entries))
	}
}

func TestCopyRangeRejectsOutOfBounds(t *testing.T) {
	src, _ := writeSource(t)
	dst := filepath.Join(t.TempDir(), "track.bin")

	if _, err := CopyRange(src, 9000, 2000, dst); err == nil {
		t.Fatal("expected error for range past end of file")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err = %v", err)
	}
	if _, err := CopyRange(src, -1, 10, dst); err == nil {
		t.Fatal("expected error for negative start")
	}
}

func TestChecksumsKnownValues(t *testing.T) {
	h := NewHasher()
	io.WriteString(h, "123456789")
	sums := h.Sum()
	if sums.CRC32Hex() != "cbf43926" {
		t.Fatalf("crc32 = %s", sums.CRC32Hex())
	}
	if sums.SHA1 != "f7c3bc1d808e04732adf679965ccc34ca7ae3441" {
		t.Fatalf("sha1 = %s", sums.SHA1)
	}
	if sums.Size != 9 {
		t.Fatalf("size = %d", sums.Size)
	}
}

func TestOpenRangeReadsOnlyTheRange(t *testing.T) {
	src, data := writeSource(t)
	r, err := OpenRange(src, 100, 50)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data[100:150]) {
		t.Fatal("unexpected range contents")
	}
}

func TestWriteFileAtomicRemovesTempOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.cue")
	boom := errors.New("boom")

	err := WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, found %d entries", len(entries))
	}

	if err := WriteFileAtomic(path, 0o600, func(w io.Writer) error {
		_, err := io.WriteString(w, "FILE \"a.bin\" BINARY\n")
		return err
	}); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o", info.Mode().Perm())
	}
}
