package scene

import (
	"testing"

	"github.com/gogpu/gvr/backend/memory"
	"github.com/gogpu/gvr/gpucore"
)

func newTestRing(t *testing.T, capacity int) (*memory.Backend, *Ring) {
	t.Helper()
	b := memory.New()
	layout, err := b.CreateBindGroupLayout(LayoutDesc())
	if err != nil {
		t.Fatalf("CreateBindGroupLayout() error = %v", err)
	}
	r, err := NewRing(b, layout, capacity)
	if err != nil {
		t.Fatalf("NewRing() error = %v", err)
	}
	return b, r
}

func TestFlattenOrdersByZStable(t *testing.T) {
	_, r := newTestRing(t, 4)
	s := r.Advance()

	s.Add(5, gpucore.Prim{Paint: 1})
	s.Add(1, gpucore.Prim{Paint: 2})
	s.Add(5, gpucore.Prim{Paint: 3})
	s.Add(-2, gpucore.Prim{Paint: 4})
	s.Flatten()

	want := []uint32{4, 2, 1, 3}
	if s.Prims.Len() != len(want) {
		t.Fatalf("Prims.Len() = %d, want %d", s.Prims.Len(), len(want))
	}
	for i, w := range want {
		if got := s.Prims.At(i).Paint; got != w {
			t.Errorf("Prims[%d].Paint = %d, want %d", i, got, w)
		}
	}
}

func TestRingRotation(t *testing.T) {
	_, r := newTestRing(t, 4)

	var slots []int
	for i := 0; i < 4; i++ {
		s := r.Advance()
		slots = append(slots, r.Index())
		if i == 0 {
			s.Add(0, gpucore.Prim{Paint: 7})
			s.Paints.Push(gpucore.Paint{Image: -1})
			s.CVs.Push(gpucore.CV{X: 1, Y: 2})
		}
	}

	want := []int{0, 1, 2, 0}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("frame %d slot = %d, want %d", i+1, slots[i], want[i])
		}
	}

	s := r.Current()
	if s.Pending() != 0 || s.Paints.Len() != 0 || s.CVs.Len() != 0 {
		t.Errorf("slot 0 not cleared on reuse: pending=%d paints=%d cvs=%d",
			s.Pending(), s.Paints.Len(), s.CVs.Len())
	}
}

func TestUpdateRebindsOnGrow(t *testing.T) {
	b, r := newTestRing(t, 1)
	s := r.Advance()
	before := s.BindGroup()

	if err := s.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if s.BindGroup() != before {
		t.Error("bind group rebuilt without a buffer change")
	}

	for i := 0; i < 3; i++ {
		s.Add(0, gpucore.Prim{})
	}
	s.Flatten()
	if err := s.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if s.BindGroup() == before {
		t.Fatal("bind group not rebuilt after prims buffer grew")
	}
	desc, ok := b.BindGroup(s.BindGroup())
	if !ok {
		t.Fatal("new bind group not live")
	}
	if desc.Entries[BindingPrims].Buffer != s.Prims.Buffer() {
		t.Errorf("prims binding = %d, want %d", desc.Entries[BindingPrims].Buffer, s.Prims.Buffer())
	}
	if _, ok := b.BindGroup(before); ok {
		t.Error("stale bind group still live")
	}
}

func TestRingRelease(t *testing.T) {
	b := memory.New()
	layout, _ := b.CreateBindGroupLayout(LayoutDesc())
	r, err := NewRing(b, layout, 2)
	if err != nil {
		t.Fatalf("NewRing() error = %v", err)
	}
	r.Release()
	// Only the layout remains.
	if b.Live() != 1 {
		t.Errorf("Live() = %d, want 1", b.Live())
	}
}
