package scene

import "github.com/gogpu/gvr/gpucore"

// Slots is the number of scenes in a Ring. It must be at least the
// backend's maximum number of frames in flight.
const Slots = 3

// Ring rotates Slots scenes across frames so a scene's device buffers are
// rewritten only after two later frames have been submitted.
type Ring struct {
	scenes [Slots]*Scene
	cur    int
}

// NewRing allocates Slots scenes. The first Advance selects slot 0.
func NewRing(backend gpucore.Backend, layout gpucore.BindGroupLayoutID, capacity int) (*Ring, error) {
	r := &Ring{cur: Slots - 1}
	for i := range r.scenes {
		s, err := New(backend, layout, capacity)
		if err != nil {
			r.Release()
			return nil, err
		}
		r.scenes[i] = s
	}
	return r, nil
}

// Advance selects the next slot, clears it and returns it.
func (r *Ring) Advance() *Scene {
	r.cur = (r.cur + 1) % Slots
	s := r.scenes[r.cur]
	s.Clear()
	return s
}

// Current returns the selected scene.
func (r *Ring) Current() *Scene {
	return r.scenes[r.cur]
}

// Index returns the selected slot.
func (r *Ring) Index() int {
	return r.cur
}

// Release releases every scene.
func (r *Ring) Release() {
	for i, s := range r.scenes {
		if s != nil {
			s.Release()
			r.scenes[i] = nil
		}
	}
}
