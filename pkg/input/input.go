// Package input resolves the list of raw image references a batch works on.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tinyzimmer/imgfetch/pkg/log"
)

var (
	// ErrNoSource is returned when neither a list of images nor a file was given,
	// or the list holds only blank entries.
	ErrNoSource = errors.New("neither images nor a file of images was given")
	// ErrBothSources is returned when both a list of images and a file were given.
	ErrBothSources = errors.New("images and a file of images are mutually exclusive")
	// ErrNoSuchFile is returned when the image file does not exist or is not a
	// regular file.
	ErrNoSuchFile = errors.New("no such file")
)

// Resolve returns the raw references from exactly one of the two sources. Each
// reference is trimmed and blank entries are dropped. Lines in the file starting
// with '#' are comments.
func Resolve(images []string, file string) ([]string, error) {
	hasImages := len(images) > 0
	hasFile := file != ""
	switch {
	case hasImages && hasFile:
		return nil, ErrBothSources
	case hasImages:
		refs := trimAll(images)
		if len(refs) == 0 {
			return nil, ErrNoSource
		}
		return refs, nil
	case hasFile:
		return ReadFile(file)
	default:
		return nil, ErrNoSource
	}
}

// ReadFile reads a newline-delimited list of references from the given path.
func ReadFile(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w '%s'", ErrNoSuchFile, path)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w '%s': not a regular file", ErrNoSuchFile, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Debugf("Reading images from %q\n", path)
	return Read(f)
}

// Read parses a newline-delimited list of references.
func Read(rdr io.Reader) ([]string, error) {
	out := make([]string, 0)
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func trimAll(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
