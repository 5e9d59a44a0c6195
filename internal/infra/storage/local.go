package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which uploaded files are served.
const URLPrefix = "/uploads/"

var ErrOutsideUploads = errors.New("path is not under the uploads directory")

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Local keeps uploaded media on the local filesystem. Public sources look
// like /uploads/<folder>/<file> and map onto <root>/<folder>/<file>.
type Local struct {
	root string
}

func NewLocal(root string, folders ...string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	for _, dir := range append([]string{""}, folders...) {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create uploads dir: %w", err)
		}
	}
	return &Local{root: abs}, nil
}

func (l *Local) Root() string {
	return l.root
}

// Resolve maps a public source onto a file path. Sources outside /uploads/
// or escaping the root are rejected.
func (l *Local) Resolve(src string) (string, error) {
	if !strings.HasPrefix(src, URLPrefix) {
		return "", ErrOutsideUploads
	}
	rel := path.Clean("/" + strings.TrimPrefix(src, URLPrefix))
	if rel == "/" {
		return "", ErrOutsideUploads
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", ErrOutsideUploads
	}
	return full, nil
}

// Owns reports whether src points into the uploads directory.
func (l *Local) Owns(src string) bool {
	_, err := l.Resolve(src)
	return err == nil
}

func (l *Local) Exists(src string) (bool, error) {
	full, err := l.Resolve(src)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes the file behind src. A missing file is not an error.
func (l *Local) Remove(src string) error {
	full, err := l.Resolve(src)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Save writes r into folder under a unique name and returns its source.
func (l *Local) Save(folder, originalName string, r io.Reader) (string, error) {
	folder = unsafeNameChars.ReplaceAllString(folder, "")
	if folder == "" {
		return "", fmt.Errorf("empty upload folder")
	}
	dir := filepath.Join(l.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	name := uuid.NewString() + "-" + SafeName(originalName)
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return URLPrefix + folder + "/" + name, nil
}

// SafeName strips directories and unusual characters from an upload name.
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		return "file"
	}
	return name
}
