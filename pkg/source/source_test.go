package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	existing := New([]byte("x"), "mem")

	tests := []struct {
		name         string
		input        func(t *testing.T) any
		wantData     string
		wantSystemID string
	}{
		{
			name:     "string",
			input:    func(*testing.T) any { return "a: 1\n" },
			wantData: "a: 1\n",
		},
		{
			name:     "bytes",
			input:    func(*testing.T) any { return []byte("b: 2\n") },
			wantData: "b: 2\n",
		},
		{
			name:     "reader",
			input:    func(*testing.T) any { return strings.NewReader("c: 3\n") },
			wantData: "c: 3\n",
		},
		{
			name:         "path",
			input:        func(*testing.T) any { return Path(path) },
			wantData:     "a: 1\n",
			wantSystemID: path,
		},
		{
			name: "file",
			input: func(t *testing.T) any {
				f, err := os.Open(path)
				if err != nil {
					t.Fatalf("failed to open file: %v", err)
				}
				t.Cleanup(func() { f.Close() })
				return f
			},
			wantData:     "a: 1\n",
			wantSystemID: path,
		},
		{
			name:         "stream source",
			input:        func(*testing.T) any { return existing },
			wantData:     "x",
			wantSystemID: "mem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Resolve(tt.input(t))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if string(src.Bytes()) != tt.wantData {
				t.Errorf("Bytes() = %q, want %q", src.Bytes(), tt.wantData)
			}
			if src.SystemID() != tt.wantSystemID {
				t.Errorf("SystemID() = %q, want %q", src.SystemID(), tt.wantSystemID)
			}
			if src.Len() != len(tt.wantData) {
				t.Errorf("Len() = %d, want %d", src.Len(), len(tt.wantData))
			}
		})
	}
}

func TestResolve_StreamSourceUnchanged(t *testing.T) {
	src := New([]byte("x"), "mem")
	got, err := Resolve(src)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != src {
		t.Error("an existing StreamSource must be returned as is")
	}
}

func TestResolve_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		input     any
		wantCause error
	}{
		{"nil", nil, ErrNilInput},
		{"nil stream source", (*StreamSource)(nil), ErrNilInput},
		{"nil file", (*os.File)(nil), ErrNilInput},
		{"unsupported type", 42, ErrUnsupportedInput},
		{"missing path", Path(filepath.Join(dir, "missing.yaml")), os.ErrNotExist},
		{"directory", Path(dir), ErrDirectory},
		{"oversized reader", io.LimitReader(zeroReader{}, MaxSize+1), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.input)

			var srcErr *UnresolvableSourceError
			if !errors.As(err, &srcErr) {
				t.Fatalf("expected *UnresolvableSourceError, got %v", err)
			}
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("expected cause %v, got %v", tt.wantCause, err)
			}
		})
	}
}

func TestResolve_ReadFailure(t *testing.T) {
	_, err := Resolve(failingReader{})

	var srcErr *UnresolvableSourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected *UnresolvableSourceError, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("error must carry the read failure, got %v", err)
	}
}

func TestStreamSource_Reader(t *testing.T) {
	src := New([]byte("hello"), "")

	for i := 0; i < 2; i++ {
		data, err := io.ReadAll(src.Reader())
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("read %d = %q, want hello", i, data)
		}
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
