package runtime

import (
	"context"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// Mock returns an in-memory runtime that records every call made to it. It is
// used in tests.
func Mock() *MockRuntime {
	return &MockRuntime{
		Present:    make(map[string]bool),
		Unpullable: make(map[string]bool),
	}
}

// MockRuntime is a ContainerRuntime whose local store is a map.
type MockRuntime struct {
	// Images the runtime already has
	Present map[string]bool
	// Images that fail to pull
	Unpullable map[string]bool
	// Returned by every Save when set
	SaveErr error
	// How long Inspect blocks before answering
	InspectDelay time.Duration
	// Called at the start of every operation when set
	BeforeCall func(op, image string)
	// Every call in order, formatted as "<op> <image>"
	Calls []string
}

func (m *MockRuntime) record(op, image string) {
	if m.BeforeCall != nil {
		m.BeforeCall(op, image)
	}
	m.Calls = append(m.Calls, op+" "+image)
}

var _ types.ContainerRuntime = &MockRuntime{}

// Name implements ContainerRuntime.
func (m *MockRuntime) Name() string { return "mock" }

// Inspect implements ContainerRuntime.
func (m *MockRuntime) Inspect(ctx context.Context, image string) error {
	m.record("inspect", image)
	if m.InspectDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.InspectDelay):
		}
	}
	if !m.Present[image] {
		return fmt.Errorf("no such image: %s", image)
	}
	return nil
}

// Pull implements ContainerRuntime.
func (m *MockRuntime) Pull(ctx context.Context, image string) error {
	m.record("pull", image)
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Unpullable[image] {
		return fmt.Errorf("pull access denied for %s", image)
	}
	m.Present[image] = true
	return nil
}

// Save implements ContainerRuntime.
func (m *MockRuntime) Save(ctx context.Context, image, dest string) error {
	m.record("save", image)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if !m.Present[image] {
		return fmt.Errorf("no such image: %s", image)
	}
	return ioutil.WriteFile(dest, []byte("archive of "+image), 0644)
}

// CallsFor returns the recorded operations for a single image.
func (m *MockRuntime) CallsFor(image string) []string {
	out := make([]string, 0)
	for _, c := range m.Calls {
		if strings.HasSuffix(c, " "+image) {
			out = append(out, strings.TrimSuffix(c, " "+image))
		}
	}
	return out
}

// Reset forgets the recorded calls.
func (m *MockRuntime) Reset() { m.Calls = nil }
