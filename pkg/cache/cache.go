package cache

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/util"
)

// DefaultCache is the image cache configured at init. It is replaced when the
// cache directory is overridden on the command line.
var DefaultCache ImageCache

func init() {
	cache := &imageCache{}
	defer func() { DefaultCache = cache }()
	usr, err := user.Current()
	if err != nil {
		log.Debug("Could not determine the current user for the default cache directory:", err)
		return
	}
	cache.cacheDir = filepath.Join(usr.HomeDir, ".imgfetch", "cache")
}

// ImageCache is an interface for locating the on-disk copies of images kept by
// runtimes that have no daemon of their own. Every image gets its own directory
// so a re-pull can replace it without touching the others.
type ImageCache interface {
	// CacheDir returns the current cache directory.
	CacheDir() string
	// PathFor returns the directory holding the given image reference.
	PathFor(image string) (string, error)
	// Clean will wipe the contents of the cache.
	Clean() error
}

// New creates a new ImageCache rooted at the given directory.
func New(dir string) ImageCache {
	return &imageCache{cacheDir: dir}
}

type imageCache struct {
	cacheDir string
}

func (c *imageCache) CacheDir() string { return c.cacheDir }

func (c *imageCache) Clean() error {
	if c.cacheDir == "" {
		return errors.New("No cache directory detected")
	}
	log.Info("Wiping cache directory:", c.cacheDir)
	return os.RemoveAll(c.cacheDir)
}

func (c *imageCache) PathFor(image string) (string, error) {
	if c.cacheDir == "" {
		return "", errors.New("No cache directory detected")
	}
	cacheName, err := util.CalculateSHA256Sum(strings.NewReader(image))
	if err != nil {
		return "", err
	}
	return filepath.Join(c.cacheDir, cacheName), nil
}
