package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/crane"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/layout"

	"github.com/tinyzimmer/imgfetch/pkg/cache"
	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// NewCrane returns a runtime that needs no daemon. Images are pulled straight
// from their registries into an OCI image layout per reference, kept in the
// given cache, and saved from there.
func NewCrane(store cache.ImageCache, platform string) (*Crane, error) {
	if store.CacheDir() == "" {
		return nil, errors.New("the crane runtime requires a cache directory")
	}
	opts := []crane.Option{crane.WithAuthFromKeychain(authn.DefaultKeychain)}
	if platform != "" {
		p, err := v1.ParsePlatform(platform)
		if err != nil {
			return nil, fmt.Errorf("invalid platform %q: %w", platform, err)
		}
		opts = append(opts, crane.WithPlatform(p))
	}
	return &Crane{store: store, opts: opts}, nil
}

// Crane is a ContainerRuntime backed by go-containerregistry.
type Crane struct {
	store cache.ImageCache
	opts  []crane.Option
}

var _ types.ContainerRuntime = &Crane{}

// Name implements ContainerRuntime.
func (c *Crane) Name() string { return string(types.RuntimeCrane) }

// Inspect implements ContainerRuntime.
func (c *Crane) Inspect(ctx context.Context, image string) error {
	_, err := c.localImage(image)
	return err
}

// Pull implements ContainerRuntime. Any previous copy of the image in the store
// is replaced.
func (c *Crane) Pull(ctx context.Context, image string) error {
	img, err := crane.Pull(image, c.options(ctx)...)
	if err != nil {
		return err
	}
	dir, err := c.store.PathFor(image)
	if err != nil {
		return err
	}
	log.Debugf("Writing %s to image layout %q\n", image, dir)
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	p, err := layout.Write(dir, empty.Index)
	if err != nil {
		return fmt.Errorf("failed to create layout at path %s: %w", dir, err)
	}
	if err := p.AppendImage(img); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("failed to append image to layout: %w", err)
	}
	return nil
}

// Save implements ContainerRuntime. The archive is a docker compatible tarball.
func (c *Crane) Save(ctx context.Context, image, dest string) error {
	img, err := c.localImage(image)
	if err != nil {
		return err
	}
	return crane.Save(img, image, dest)
}

func (c *Crane) localImage(image string) (v1.Image, error) {
	dir, err := c.store.PathFor(image)
	if err != nil {
		return nil, err
	}
	p, err := layout.FromPath(dir)
	if err != nil {
		return nil, fmt.Errorf("image %s not found locally: %w", image, err)
	}
	index, err := p.ImageIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to get image index: %w", err)
	}
	manifest, err := index.IndexManifest()
	if err != nil {
		return nil, fmt.Errorf("failed to get index manifest: %w", err)
	}
	if len(manifest.Manifests) == 0 {
		return nil, fmt.Errorf("image %s not found locally: empty layout", image)
	}
	return p.Image(manifest.Manifests[0].Digest)
}

func (c *Crane) options(ctx context.Context) []crane.Option {
	opts := make([]crane.Option, 0, len(c.opts)+1)
	opts = append(opts, c.opts...)
	return append(opts, crane.WithContext(ctx))
}
