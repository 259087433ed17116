package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/glshade/gpu"
	"github.com/gogpu/glshade/gpu/gputest"
)

func registerTest(t *testing.T, name string, f Factory) {
	t.Helper()
	Register(name, f)
	t.Cleanup(func() { Unregister(name) })
}

func TestRegisterAndOpen(t *testing.T) {
	dev := gputest.NewDevice()
	registerTest(t, "test", func() (gpu.Device, error) { return dev, nil })

	if !IsRegistered("test") {
		t.Fatal("IsRegistered(test) = false")
	}
	got, err := Open("test")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got != dev {
		t.Error("Open returned a different device")
	}

	found := false
	for _, name := range Available() {
		if name == "test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing test", Available())
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open("does-not-exist"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(unknown) = %v, want ErrBackendNotAvailable", err)
	}
}

func TestDefaultSkipsFailingBackends(t *testing.T) {
	// Shadow anything registered by other packages.
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})

	if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Default() with no backends = %v, want ErrBackendNotAvailable", err)
	}

	openErr := errors.New("no context")
	Register(BackendOpenGL, func() (gpu.Device, error) { return nil, openErr })
	if _, err := Default(); !errors.Is(err, openErr) {
		t.Errorf("Default() = %v, want %v", err, openErr)
	}

	dev := gputest.NewDevice()
	Register("fake", func() (gpu.Device, error) { return dev, nil })
	got, err := Default()
	if err != nil || got != dev {
		t.Errorf("Default() = %v, %v; want fake device", got, err)
	}
}
