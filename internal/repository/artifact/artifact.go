// Package artifact persists the corpus embedding store as a single binary file.
//
// Layout (little-endian):
//
//	magic   [4]byte "EMOF"
//	version uint32  (1)
//	dim     uint32
//	count   uint64
//	data    count*dim float32
package artifact

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
)

// Version is the current on-disk format version.
const Version uint32 = 1

// MaxDim bounds the vector dimension accepted from a header.
const MaxDim = 1 << 16

// headerSize is the encoded size of header.
const headerSize = 4 + 4 + 4 + 8

// readChunk caps how many vectors are preallocated before they are read.
const readChunk = 1024

var magic = [4]byte{'E', 'M', 'O', 'F'}

// ErrInvalidFormat marks a file that is not a readable artifact.
var ErrInvalidFormat = errors.New("invalid embedding artifact")

type header struct {
	Magic   [4]byte
	Version uint32
	Dim     uint32
	Count   uint64
}

// Persist writes s to path atomically: the data goes to a temp file in the
// same directory which is synced and renamed over path.
func Persist(s *embstore.Store, path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, s); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Write encodes s to w.
func Write(w io.Writer, s *embstore.Store) error {
	bw := bufio.NewWriter(w)

	h := header{Magic: magic, Version: Version, Dim: uint32(s.Dim()), Count: uint64(s.Len())}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	buf := make([]byte, 4*s.Dim())
	for i := range s.Len() {
		for j, f := range s.Vector(i) {
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(f))
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write vector %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}
	return nil
}

// Load reads the artifact at path. A missing file yields domain.ErrArtifactNotFound.
func Load(path string) (*embstore.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	s, err := ReadSized(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return s, nil
}

// Read decodes an artifact from r.
func Read(r io.Reader) (*embstore.Store, error) {
	return ReadSized(r, -1)
}

// ReadSized decodes an artifact of a known total size. The header must
// describe exactly size bytes, which is checked before any vector is
// allocated. A negative size skips the check.
func ReadSized(r io.Reader, size int64) (*embstore.Store, error) {
	br := bufio.NewReader(r)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w: %w", err, ErrInvalidFormat)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("bad magic %q: %w", h.Magic[:], ErrInvalidFormat)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("unsupported version %d: %w", h.Version, ErrInvalidFormat)
	}
	if h.Count > 0 && h.Dim == 0 {
		return nil, fmt.Errorf("zero dimension with %d vectors: %w", h.Count, ErrInvalidFormat)
	}
	if h.Count > math.MaxInt32 {
		return nil, fmt.Errorf("implausible vector count %d: %w", h.Count, ErrInvalidFormat)
	}

	if h.Dim > MaxDim {
		return nil, fmt.Errorf("implausible dimension %d: %w", h.Dim, ErrInvalidFormat)
	}
	if want := headerSize + int64(h.Count)*int64(h.Dim)*4; size >= 0 && size != want {
		return nil, fmt.Errorf("header describes %d bytes, file has %d: %w", want, size, ErrInvalidFormat)
	}

	dim := int(h.Dim)
	count := int(h.Count)
	vectors := make([][]float32, 0, min(count, readChunk))
	buf := make([]byte, 4*dim)
	for i := range count {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("read vector %d: %w: %w", i, err, ErrInvalidFormat)
		}
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		vectors = append(vectors, v)
	}

	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after %d vectors: %w", h.Count, ErrInvalidFormat)
	}

	s, err := embstore.New(vectors)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	return s, nil
}

// File binds Load and Persist to a fixed path.
type File struct {
	Path string
}

// Load reads the artifact at f.Path.
func (f File) Load() (*embstore.Store, error) { return Load(f.Path) }

// Persist writes s to f.Path.
func (f File) Persist(s *embstore.Store) error { return Persist(s, f.Path) }
