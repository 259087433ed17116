// Package buffer wraps GPU buffer objects for vertex, index and uniform
// data.
//
// Static buffers are uploaded once. Dynamic buffers are rewritten every
// frame; their storage only grows, so steady-state updates are sub-range
// uploads into the existing allocation.
package buffer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/gpu"
)

var (
	// ErrDestroyed is returned when a buffer is used after Delete.
	ErrDestroyed = errors.New("buffer: use after delete")

	// ErrUsage is returned for usages other than vertex, index or uniform.
	ErrUsage = errors.New("buffer: unsupported usage")
)

// Element is a scalar type that can be uploaded as buffer content.
type Element interface {
	~float32 | ~int32 | ~uint32 | ~uint16 | ~uint8
}

// Bytes returns the in-memory bytes of data without copying.
func Bytes[T Element](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero))) //nolint:gosec // plain scalar slice
}

func checkUsage(usage gputypes.BufferUsage) error {
	switch usage {
	case gputypes.BufferUsageVertex, gputypes.BufferUsageIndex, gputypes.BufferUsageUniform:
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUsage, usage)
}

// Static is an immutable buffer uploaded at creation.
type Static struct {
	dev    gpu.Device
	usage  gputypes.BufferUsage
	handle gpu.Buffer
	length int
	size   int
}

// NewStatic creates a buffer with usage and uploads data once.
func NewStatic[T Element](dev gpu.Device, usage gputypes.BufferUsage, data []T) (*Static, error) {
	if err := checkUsage(usage); err != nil {
		return nil, err
	}
	h, err := dev.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("buffer: create static buffer: %w", err)
	}
	raw := Bytes(data)
	dev.BindBuffer(usage, h)
	dev.BufferData(usage, raw, false)
	return &Static{
		dev:    dev,
		usage:  usage,
		handle: h,
		length: len(data),
		size:   len(raw),
	}, nil
}

// Len returns the number of elements uploaded.
func (b *Static) Len() int { return b.length }

// Size returns the size in bytes.
func (b *Static) Size() int { return b.size }

// Usage returns the buffer usage.
func (b *Static) Usage() gputypes.BufferUsage { return b.usage }

// Handle returns the GPU handle, 0 after Delete.
func (b *Static) Handle() gpu.Buffer { return b.handle }

// Bind makes the buffer current for its usage. After Delete it unbinds.
func (b *Static) Bind() { b.dev.BindBuffer(b.usage, b.handle) }

// BindBase binds the buffer to an indexed binding point, as used by
// uniform blocks.
func (b *Static) BindBase(index uint32) error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	b.dev.BindBufferBase(b.usage, index, b.handle)
	return nil
}

// Delete releases the GPU buffer.
func (b *Static) Delete() error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	b.dev.DeleteBuffer(b.handle)
	b.handle = 0
	return nil
}

// Dynamic is a buffer whose content is replaced by Update.
type Dynamic struct {
	dev      gpu.Device
	usage    gputypes.BufferUsage
	handle   gpu.Buffer
	capacity int
	size     int
}

// NewDynamic creates an empty dynamic buffer with usage.
func NewDynamic(dev gpu.Device, usage gputypes.BufferUsage) (*Dynamic, error) {
	if err := checkUsage(usage); err != nil {
		return nil, err
	}
	h, err := dev.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("buffer: create dynamic buffer: %w", err)
	}
	return &Dynamic{dev: dev, usage: usage, handle: h}, nil
}

// Update replaces the buffer content. Storage is reallocated only when data
// exceeds the current capacity; otherwise data is written at offset 0 and
// bytes past it keep their previous content.
func (b *Dynamic) Update(data []byte) error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	b.dev.BindBuffer(b.usage, b.handle)
	switch {
	case len(data) > b.capacity:
		b.dev.BufferData(b.usage, data, true)
		b.capacity = len(data)
	case len(data) > 0:
		b.dev.BufferSubData(b.usage, 0, data)
	}
	b.size = len(data)
	return nil
}

// Update writes typed data to b.
func Update[T Element](b *Dynamic, data []T) error {
	return b.Update(Bytes(data))
}

// Capacity returns the allocated size in bytes.
func (b *Dynamic) Capacity() int { return b.capacity }

// Size returns the size in bytes of the last Update.
func (b *Dynamic) Size() int { return b.size }

// Usage returns the buffer usage.
func (b *Dynamic) Usage() gputypes.BufferUsage { return b.usage }

// Handle returns the GPU handle, 0 after Delete.
func (b *Dynamic) Handle() gpu.Buffer { return b.handle }

// Bind makes the buffer current for its usage. After Delete it unbinds.
func (b *Dynamic) Bind() { b.dev.BindBuffer(b.usage, b.handle) }

// BindBase binds the buffer to an indexed binding point, as used by
// uniform blocks.
func (b *Dynamic) BindBase(index uint32) error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	b.dev.BindBufferBase(b.usage, index, b.handle)
	return nil
}

// Delete releases the GPU buffer.
func (b *Dynamic) Delete() error {
	if b.handle == 0 {
		return ErrDestroyed
	}
	b.dev.DeleteBuffer(b.handle)
	b.handle = 0
	b.capacity = 0
	b.size = 0
	return nil
}
