// Package source reads SourcePawn files into normalized text.
package source

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxSize is the read limit applied when none is configured.
const DefaultMaxSize = 4 << 20

// ErrTooLarge is returned for files above the configured size limit.
var ErrTooLarge = errors.New("source: file too large")

var bom = []byte{0xEF, 0xBB, 0xBF}

// File is the decoded content of one source file.
type File struct {
	Path string
	Text string
	Hash string // hex sha256 of the raw bytes

	// Legacy is set when the bytes were not valid UTF-8 and were decoded as
	// Windows-1252.
	Legacy bool
}

// Read loads path, refusing files larger than maxSize bytes. A maxSize of
// zero or less selects DefaultMaxSize.
func Read(path string, maxSize int64) (*File, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s: is a directory", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}

	// The limit also guards files that grow between Stat and Read.
	raw, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(raw)) > maxSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}

	out, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out.Path = path
	return out, nil
}

// Decode turns raw file bytes into text: a UTF-8 byte order mark is dropped,
// invalid UTF-8 is decoded as Windows-1252, CRLF and lone CR line endings
// become LF, and the result is NFC-normalized.
func Decode(raw []byte) (*File, error) {
	sum := sha256.Sum256(raw)
	out := &File{Hash: fmt.Sprintf("%x", sum)}

	b := bytes.TrimPrefix(raw, bom)
	if !utf8.Valid(b) {
		dec, err := charmap.Windows1252.NewDecoder().Bytes(b)
		if err != nil {
			return nil, err
		}
		b = dec
		out.Legacy = true
	}

	text := string(b)
	if strings.Contains(text, "\r") {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	out.Text = norm.NFC.String(text)
	return out, nil
}
