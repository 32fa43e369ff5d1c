package voicefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"jarvis/internal/domain"
	"jarvis/internal/repository"
)

const clipExt = ".ogg"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Archive implements repository.VoiceArchive on the local filesystem.
// Clips live in <dir>/<user id>/<seq>_<file id>.ogg.
type Archive struct {
	dir string
	mu  sync.Mutex
}

var _ repository.VoiceArchive = (*Archive)(nil)

// NewArchive creates a new voice archive rooted at dir
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save stores a clip and returns the user's clip count
func (a *Archive) Save(ctx context.Context, userID int64, fileID string, r io.Reader) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	userDir := a.userDir(userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return 0, fmt.Errorf("create voice dir: %v: %w", err, domain.ErrPersistence)
	}

	clips, err := a.clips(userDir)
	if err != nil {
		return 0, err
	}

	seq := 1
	if n := len(clips); n > 0 {
		seq = clips[n-1].seq + 1
	}

	tmp, err := os.CreateTemp(userDir, ".clip-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp clip: %v: %w", err, domain.ErrPersistence)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("write clip: %v: %w", err, domain.ErrPersistence)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close clip: %v: %w", err, domain.ErrPersistence)
	}

	name := fmt.Sprintf("%06d_%s%s", seq, sanitize(fileID), clipExt)
	if err := os.Rename(tmpName, filepath.Join(userDir, name)); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("store clip: %v: %w", err, domain.ErrPersistence)
	}

	return len(clips) + 1, nil
}

// List returns the user's clip paths in capture order
func (a *Archive) List(ctx context.Context, userID int64) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userDir := a.userDir(userID)
	clips, err := a.clips(userDir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(clips))
	for _, c := range clips {
		paths = append(paths, filepath.Join(userDir, c.name))
	}
	return paths, nil
}

type clip struct {
	seq  int
	name string
}

func (a *Archive) userDir(userID int64) string {
	return filepath.Join(a.dir, strconv.FormatInt(userID, 10))
}

// clips returns archived clips sorted by sequence
func (a *Archive) clips(userDir string) ([]clip, error) {
	entries, err := os.ReadDir(userDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read voice dir: %v: %w", err, domain.ErrPersistence)
	}

	var clips []clip
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), clipExt) {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		clips = append(clips, clip{seq: seq, name: e.Name()})
	}

	sort.Slice(clips, func(i, j int) bool { return clips[i].seq < clips[j].seq })
	return clips, nil
}

func sanitize(fileID string) string {
	s := unsafeChars.ReplaceAllString(fileID, "_")
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		s = "clip"
	}
	return s
}
