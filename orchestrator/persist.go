package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// stager writes chunk WAVs to disk for the duration of one speech call.
type stager struct {
	dir string
}

func newStager(dir string) (*stager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &stager{dir: dir}, nil
}

// stage writes wav under a name unique to this call so concurrent requests
// for the same recording never collide. cleanup removes the file.
func (s *stager) stage(base string, index int, wav []byte) (string, func(), error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%d_%s.wav", base, index, uuid.NewString()))
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

func baseName(name string) string {
	b := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if b == "" || b == "." || b == string(filepath.Separator) {
		return "audio"
	}
	return b
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
