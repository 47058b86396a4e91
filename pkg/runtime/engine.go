package runtime

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// engineAPI is the subset of the docker client used by the engine runtime.
type engineAPI interface {
	ImageInspectWithRaw(ctx context.Context, imageID string) (dockertypes.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, refStr string, options dockertypes.ImagePullOptions) (io.ReadCloser, error)
	ImageSave(ctx context.Context, imageIDs []string) (io.ReadCloser, error)
	Close() error
}

func getDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// NewEngine returns a runtime that talks to the docker engine configured in the
// environment.
func NewEngine(platform string) (*Engine, error) {
	cli, err := getDockerClient()
	if err != nil {
		return nil, err
	}
	return &Engine{api: cli, platform: platform}, nil
}

// Engine is a ContainerRuntime backed by the docker engine API.
type Engine struct {
	api      engineAPI
	platform string
}

var _ types.ContainerRuntime = &Engine{}

// Name implements ContainerRuntime.
func (e *Engine) Name() string { return string(types.RuntimeEngine) }

// Close closes the underlying client.
func (e *Engine) Close() error { return e.api.Close() }

// Inspect implements ContainerRuntime.
func (e *Engine) Inspect(ctx context.Context, image string) error {
	_, _, err := e.api.ImageInspectWithRaw(ctx, image)
	return err
}

// Pull implements ContainerRuntime. The pull is only complete once the progress
// stream has been consumed, and errors reported inside the stream fail the pull.
func (e *Engine) Pull(ctx context.Context, image string) error {
	rdr, err := e.api.ImagePull(ctx, image, dockertypes.ImagePullOptions{Platform: e.platform})
	if err != nil {
		return err
	}
	defer rdr.Close()
	out := log.TailWriter(e.Name())
	defer out.Close()
	return jsonmessage.DisplayJSONMessagesStream(rdr, out, 0, false, nil)
}

// Save implements ContainerRuntime. The archive is written to a temporary file
// next to dest and renamed into place once complete.
func (e *Engine) Save(ctx context.Context, image, dest string) error {
	rdr, err := e.api.ImageSave(ctx, []string{image})
	if err != nil {
		return err
	}
	defer rdr.Close()

	tmp, err := ioutil.TempFile(filepath.Dir(dest), "."+filepath.Base(dest)+"-")
	if err != nil {
		return err
	}
	log.Debugf("Writing %s to temporary file %q\n", image, tmp.Name())
	if _, err := io.Copy(tmp, rdr); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing archive for %s: %w", image, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Chmod(dest, 0644)
}
