package types

import "context"

// ContainerRuntime is an interface for the three image operations the materializer
// relies on. It can be implemented by different runtimes such as the docker or podman
// CLI, the docker engine API, or a daemonless registry client.
type ContainerRuntime interface {
	// Name returns a short identifier for the runtime, used as a log prefix.
	Name() string
	// Inspect should return nil if the image is available in the runtime's local
	// store, and an error otherwise.
	Inspect(ctx context.Context, image string) error
	// Pull should fetch the image into the runtime's local store.
	Pull(ctx context.Context, image string) error
	// Save should serialize the image to an archive file at dest.
	Save(ctx context.Context, image, dest string) error
}
