package staging

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultDir is the staging directory shared with the transcription sidecar
const DefaultDir = "../audio-uploads"

// sniffLength is how many leading bytes are inspected to detect the format
const sniffLength = 3072

var (
	// ErrNoFile is returned when the upload has no name or no content
	ErrNoFile = errors.New("no file uploaded")

	// ErrNotAudio is returned when the payload is not an audio or video container
	ErrNotAudio = errors.New("uploaded file is not audio")
)

// Area writes uploads to the staging directory under their base name.
// Uploads sharing a base name overwrite each other
type Area struct {
	dir string
}

// NewArea creates a staging area rooted at dir
func NewArea(dir string) *Area {
	return &Area{dir: dir}
}

// Dir returns the staging directory
func (a *Area) Dir() string {
	return a.dir
}

// Staged describes a file written to the staging area
type Staged struct {
	Name     string // Base name the file was written under
	Path     string
	MimeType string
	Size     int64
}

// Stage validates and writes an upload. The name is reduced to its base name
// so clients cannot write outside the staging directory
func (a *Area) Stage(name string, payload io.Reader) (*Staged, error) {
	base := notes.BaseName(name)
	if base == "" || payload == nil {
		return nil, ErrNoFile
	}

	reader := bufio.NewReaderSize(payload, sniffLength)
	head, err := reader.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrNoFile
	}

	mtype := mimetype.Detect(head)
	if !isAudio(mtype) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotAudio, mtype.String())
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(a.dir, base)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	size, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close staged file: %w", err)
	}

	return &Staged{
		Name:     base,
		Path:     path,
		MimeType: mtype.String(),
		Size:     size,
	}, nil
}

// isAudio accepts audio and video containers, walking up the detected type's
// parents so generic containers are matched as well
func isAudio(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		kind := m.String()
		if strings.HasPrefix(kind, "audio/") || strings.HasPrefix(kind, "video/") || kind == "application/ogg" {
			return true
		}
	}
	return false
}
