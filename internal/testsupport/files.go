package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MkdirAll creates dir and its parents.
func MkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// ID3Frame is a text frame written by WriteID3Song.
type ID3Frame struct {
	ID   string
	Text string
}

// WriteID3Song writes a minimal ID3v2 tagged file followed by a few bytes of
// payload. version is 3 or 4 and selects the ID3v2 minor version.
func WriteID3Song(t testing.TB, path string, version byte, frames ...ID3Frame) {
	t.Helper()

	if version != 3 && version != 4 {
		t.Fatalf("unsupported ID3v2 version %d", version)
	}

	var body bytes.Buffer
	for _, frame := range frames {
		if len(frame.ID) != 4 {
			t.Fatalf("frame id %q must be four characters", frame.ID)
		}
		encoding := byte(0x00)
		if version == 4 {
			encoding = 0x03
		}
		payload := append([]byte{encoding}, []byte(frame.Text)...)
		body.WriteString(frame.ID)
		if version == 4 {
			body.Write(syncsafe(len(payload)))
		} else {
			var size [4]byte
			binary.BigEndian.PutUint32(size[:], uint32(len(payload)))
			body.Write(size[:])
		}
		body.Write([]byte{0x00, 0x00})
		body.Write(payload)
	}

	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{version, 0x00, 0x00})
	out.Write(syncsafe(body.Len()))
	out.Write(body.Bytes())
	out.Write([]byte{0xFF, 0xFB, 0x90, 0x00})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func syncsafe(n int) []byte {
	return []byte{
		byte(n>>21) & 0x7F,
		byte(n>>14) & 0x7F,
		byte(n>>7) & 0x7F,
		byte(n) & 0x7F,
	}
}
