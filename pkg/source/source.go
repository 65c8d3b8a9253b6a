package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxSize is the largest input Resolve will read (10MB).
const MaxSize int64 = 10 * 1024 * 1024

// Path is a file path to be read by Resolve. A plain string is treated as
// in-memory text, so paths must be marked explicitly.
type Path string

// StreamSource is a resolved input: its bytes plus an optional system ID
// naming where they came from.
type StreamSource struct {
	systemID string
	data     []byte
}

// New creates a StreamSource from bytes already in memory.
func New(data []byte, systemID string) *StreamSource {
	return &StreamSource{systemID: systemID, data: data}
}

// SystemID returns the identifier of the source, or "" for anonymous input.
func (s *StreamSource) SystemID() string { return s.systemID }

// Bytes returns the source content. Callers must not modify it.
func (s *StreamSource) Bytes() []byte { return s.data }

// Reader returns a fresh reader over the source content.
func (s *StreamSource) Reader() io.Reader { return bytes.NewReader(s.data) }

// Len returns the content length in bytes.
func (s *StreamSource) Len() int { return len(s.data) }

// Resolve turns input into a StreamSource. Accepted inputs:
//
//   - *StreamSource, returned unchanged
//   - Path, read from disk
//   - *os.File, read to EOF (the caller keeps ownership and closes it)
//   - io.Reader, read to EOF
//   - string or []byte, used as in-memory text
//
// Anything else, or any read failure, yields an *UnresolvableSourceError.
func Resolve(input any) (*StreamSource, error) {
	switch in := input.(type) {
	case nil:
		return nil, &UnresolvableSourceError{Input: "<nil>", Cause: ErrNilInput}
	case *StreamSource:
		if in == nil {
			return nil, &UnresolvableSourceError{Input: "<nil>", Cause: ErrNilInput}
		}
		return in, nil
	case Path:
		return resolvePath(string(in))
	case *os.File:
		if in == nil {
			return nil, &UnresolvableSourceError{Input: "<nil>", Cause: ErrNilInput}
		}
		data, err := readAll(in)
		if err != nil {
			return nil, &UnresolvableSourceError{Input: in.Name(), Cause: err}
		}
		return New(data, in.Name()), nil
	case io.Reader:
		data, err := readAll(in)
		if err != nil {
			return nil, &UnresolvableSourceError{Input: fmt.Sprintf("%T", in), Cause: err}
		}
		return New(data, ""), nil
	case string:
		return New([]byte(in), ""), nil
	case []byte:
		return New(in, ""), nil
	default:
		return nil, &UnresolvableSourceError{
			Input: fmt.Sprintf("%T", input),
			Cause: ErrUnsupportedInput,
		}
	}
}

func resolvePath(path string) (*StreamSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &UnresolvableSourceError{Input: path, Cause: err}
	}
	if info.IsDir() {
		return nil, &UnresolvableSourceError{Input: path, Cause: ErrDirectory}
	}
	if info.Size() > MaxSize {
		return nil, &UnresolvableSourceError{Input: path, Cause: ErrTooLarge}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnresolvableSourceError{Input: path, Cause: err}
	}

	systemID := path
	if abs, err := filepath.Abs(path); err == nil {
		systemID = abs
	}
	return New(data, systemID), nil
}

// readAll reads r to EOF, failing once MaxSize is exceeded.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
