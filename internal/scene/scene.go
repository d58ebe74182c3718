// Package scene holds the per-frame arrays the renderer fills and the
// rotation of those arrays across frames.
package scene

import (
	"fmt"
	"slices"

	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/internal/gpuvec"
)

// Binding indices of the scene bind group.
const (
	BindingPrims uint32 = iota
	BindingCVs
	BindingXforms
	BindingPaints
	BindingScissors
)

// LayoutDesc describes the bind group every Scene binds at group 0.
func LayoutDesc() *gpucore.BindGroupLayoutDesc {
	vis := gpucore.ShaderStageVertex | gpucore.ShaderStageFragment
	entries := make([]gpucore.BindGroupLayoutEntry, 0, 5)
	for b := BindingPrims; b <= BindingScissors; b++ {
		entries = append(entries, gpucore.BindGroupLayoutEntry{
			Binding:    b,
			Visibility: vis,
			Type:       gpucore.BindingTypeReadOnlyStorageBuffer,
		})
	}
	return &gpucore.BindGroupLayoutDesc{Label: "scene", Entries: entries}
}

// Scene is one complete set of per-frame arrays.
//
// Primitives are collected into z-index buckets while the frame is being
// recorded and flattened into Prims by Flatten. Transforms, scissors,
// paints and curve vertices are appended directly.
type Scene struct {
	backend gpucore.Backend
	layout  gpucore.BindGroupLayoutID

	depthed map[int32][]gpucore.Prim
	zs      []int32

	Prims    *gpuvec.Vec[gpucore.Prim]
	CVs      *gpuvec.Vec[gpucore.CV]
	Xforms   *gpuvec.Vec[gpucore.Xform]
	Paints   *gpuvec.Vec[gpucore.Paint]
	Scissors *gpuvec.Vec[gpucore.Scissor]

	bindGroup gpucore.BindGroupID
}

// New allocates a scene whose arrays start at capacity elements each.
func New(backend gpucore.Backend, layout gpucore.BindGroupLayoutID, capacity int) (*Scene, error) {
	s := &Scene{
		backend: backend,
		layout:  layout,
		depthed: make(map[int32][]gpucore.Prim),
	}
	var err error
	usage := gpucore.BufferUsageStorage
	if s.Prims, err = gpuvec.New[gpucore.Prim](backend, "prims", usage, capacity); err != nil {
		return nil, err
	}
	if s.CVs, err = gpuvec.New[gpucore.CV](backend, "cvs", usage, capacity); err != nil {
		s.Release()
		return nil, err
	}
	if s.Xforms, err = gpuvec.New[gpucore.Xform](backend, "xforms", usage, capacity); err != nil {
		s.Release()
		return nil, err
	}
	if s.Paints, err = gpuvec.New[gpucore.Paint](backend, "paints", usage, capacity); err != nil {
		s.Release()
		return nil, err
	}
	if s.Scissors, err = gpuvec.New[gpucore.Scissor](backend, "scissors", usage, capacity); err != nil {
		s.Release()
		return nil, err
	}
	if err := s.rebind(); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// Clear empties every bucket and array. Device allocations are kept.
func (s *Scene) Clear() {
	clear(s.depthed)
	s.zs = s.zs[:0]
	s.Prims.Clear()
	s.CVs.Clear()
	s.Xforms.Clear()
	s.Paints.Clear()
	s.Scissors.Clear()
}

// Add appends a primitive to the bucket for z.
func (s *Scene) Add(z int32, p gpucore.Prim) {
	bucket, ok := s.depthed[z]
	if !ok {
		s.zs = append(s.zs, z)
	}
	s.depthed[z] = append(bucket, p)
}

// Pending returns the number of primitives in all buckets.
func (s *Scene) Pending() int {
	n := 0
	for _, b := range s.depthed {
		n += len(b)
	}
	return n
}

// Flatten replaces Prims with the bucket contents in ascending z order,
// keeping submission order within each bucket.
func (s *Scene) Flatten() {
	s.Prims.Clear()
	slices.Sort(s.zs)
	for _, z := range s.zs {
		for _, p := range s.depthed[z] {
			s.Prims.Push(p)
		}
	}
}

// Update uploads every array and rebuilds the bind group when any device
// allocation was replaced.
func (s *Scene) Update() error {
	changed := false
	for _, update := range []func() (bool, error){
		s.Prims.Update,
		s.CVs.Update,
		s.Xforms.Update,
		s.Paints.Update,
		s.Scissors.Update,
	} {
		c, err := update()
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		changed = changed || c
	}
	if !changed {
		return nil
	}
	return s.rebind()
}

// BindGroup returns the bind group over the current device buffers.
func (s *Scene) BindGroup() gpucore.BindGroupID {
	return s.bindGroup
}

// Release destroys the bind group and every device buffer.
func (s *Scene) Release() {
	if s.bindGroup != gpucore.InvalidID {
		s.backend.DestroyBindGroup(s.bindGroup)
		s.bindGroup = gpucore.InvalidID
	}
	if s.Prims != nil {
		s.Prims.Release()
	}
	if s.CVs != nil {
		s.CVs.Release()
	}
	if s.Xforms != nil {
		s.Xforms.Release()
	}
	if s.Paints != nil {
		s.Paints.Release()
	}
	if s.Scissors != nil {
		s.Scissors.Release()
	}
}

func (s *Scene) rebind() error {
	group, err := s.backend.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "scene",
		Layout: s.layout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: BindingPrims, Buffer: s.Prims.Buffer()},
			{Binding: BindingCVs, Buffer: s.CVs.Buffer()},
			{Binding: BindingXforms, Buffer: s.Xforms.Buffer()},
			{Binding: BindingPaints, Buffer: s.Paints.Buffer()},
			{Binding: BindingScissors, Buffer: s.Scissors.Buffer()},
		},
	})
	if err != nil {
		return fmt.Errorf("scene: bind group: %w", err)
	}
	if s.bindGroup != gpucore.InvalidID {
		s.backend.DestroyBindGroup(s.bindGroup)
	}
	s.bindGroup = group
	return nil
}
