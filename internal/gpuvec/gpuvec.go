// Package gpuvec provides a CPU-staged array mirrored into a GPU buffer.
package gpuvec

import (
	"errors"
	"fmt"

	"github.com/gogpu/gvr/gpucore"
)

// ErrReleased is returned when updating a released Vec.
var ErrReleased = errors.New("gpuvec: vec has been released")

// DefaultCapacity is the element capacity of a new device allocation.
const DefaultCapacity = 1024

// Vec is a growable array of plain GPU records backed by one device buffer.
//
// Push and Clear touch only the CPU copy. Update writes the used prefix to
// the device, recreating the allocation when the CPU length outgrew it.
// Elements past Len in the device buffer are stale and must not be read.
//
// Vec is not safe for concurrent use.
type Vec[T any] struct {
	backend gpucore.Backend
	label   string
	usage   gpucore.BufferUsage

	items    []T
	buffer   gpucore.BufferID
	capacity int
	released bool
}

// New creates a Vec with a device allocation of capacity elements.
// A capacity below 1 is raised to 1 so the buffer is always bindable.
func New[T any](backend gpucore.Backend, label string, usage gpucore.BufferUsage, capacity int) (*Vec[T], error) {
	if capacity < 1 {
		capacity = 1
	}
	v := &Vec[T]{
		backend: backend,
		label:   label,
		usage:   usage | gpucore.BufferUsageCopyDst,
		items:   make([]T, 0, capacity),
	}
	if err := v.allocate(capacity); err != nil {
		return nil, err
	}
	return v, nil
}

// Push appends an item to the CPU copy.
func (v *Vec[T]) Push(item T) {
	v.items = append(v.items, item)
}

// Clear resets the length to zero. Backing storage is kept.
func (v *Vec[T]) Clear() {
	v.items = v.items[:0]
}

// Len returns the number of staged items.
func (v *Vec[T]) Len() int {
	return len(v.items)
}

// At returns the item at index i.
func (v *Vec[T]) At(i int) T {
	return v.items[i]
}

// Items returns the staged items. The slice is only valid until the next Push.
func (v *Vec[T]) Items() []T {
	return v.items
}

// Buffer returns the current device buffer.
// The ID changes whenever Update reports a layout change.
func (v *Vec[T]) Buffer() gpucore.BufferID {
	return v.buffer
}

// Capacity returns the element capacity of the device allocation.
func (v *Vec[T]) Capacity() int {
	return v.capacity
}

// ByteSize returns the byte size of the device allocation.
func (v *Vec[T]) ByteSize() uint64 {
	return uint64(v.capacity * gpucore.SizeOf[T]())
}

// Update synchronizes the staged items to the device.
//
// It returns true when the device buffer was recreated, in which case every
// bind group referencing the previous buffer must be rebuilt by the caller.
func (v *Vec[T]) Update() (bool, error) {
	if v.released {
		return false, ErrReleased
	}

	changed := false
	if len(v.items) > v.capacity {
		if err := v.grow(len(v.items)); err != nil {
			return false, err
		}
		changed = true
	}

	if len(v.items) == 0 {
		return changed, nil
	}
	if err := v.backend.WriteBuffer(v.buffer, 0, gpucore.SliceBytes(v.items)); err != nil {
		return changed, fmt.Errorf("gpuvec: write %s: %w", v.label, err)
	}
	return changed, nil
}

// Release destroys the device buffer.
func (v *Vec[T]) Release() {
	if v.released {
		return
	}
	v.backend.DestroyBuffer(v.buffer)
	v.buffer = gpucore.InvalidID
	v.released = true
}

// grow replaces the device allocation with one holding at least n elements.
func (v *Vec[T]) grow(n int) error {
	capacity := v.capacity
	for capacity < n {
		capacity *= 2
	}
	old := v.buffer
	if err := v.allocate(capacity); err != nil {
		return err
	}
	v.backend.DestroyBuffer(old)
	return nil
}

func (v *Vec[T]) allocate(capacity int) error {
	id, err := v.backend.CreateBuffer(v.label, capacity*gpucore.SizeOf[T](), v.usage)
	if err != nil {
		return fmt.Errorf("gpuvec: create %s (%d elements): %w", v.label, capacity, err)
	}
	v.buffer = id
	v.capacity = capacity
	return nil
}
