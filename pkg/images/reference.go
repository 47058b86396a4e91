package images

import (
	"path/filepath"
	"strings"

	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// NormalizeReference appends the default tag to an image reference that has no
// ':' in it. Any reference already containing a ':' is returned as is, including
// ones where the ':' belongs to a registry port or a digest.
func NormalizeReference(image string) string {
	if !strings.Contains(image, ":") {
		return image + ":" + types.DefaultTag
	}
	return image
}

// DestinationPath returns the archive path for a normalized image reference. Every
// '/' in the file name and every ':' in the joined path become '.', so
// "library/alpine:3.18" saved to "out" with extension "docker" maps to
// "out/library.alpine.3.18.docker". The mapping is lossy but deterministic, which
// is what lets a second run recognize archives written by the first.
func DestinationPath(image, dir, extension string) string {
	name := strings.Replace(image+"."+extension, "/", ".", -1)
	return strings.Replace(filepath.Join(dir, name), ":", ".", -1)
}

// Normalize returns the normalized reference for a raw image string along with
// its destination path.
func Normalize(raw, dir, extension string) (image, dest string) {
	image = NormalizeReference(raw)
	return image, DestinationPath(image, dir, extension)
}
