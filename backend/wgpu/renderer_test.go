package wgpu_test

import (
	"testing"

	"github.com/gogpu/gvr"
	"github.com/gogpu/gvr/backend/wgpu"
	"github.com/gogpu/gvr/gpucore"
)

func TestRendererOnNoopDevice(t *testing.T) {
	b, err := wgpu.NewNoop()
	if err != nil {
		t.Fatalf("NewNoop() error = %v", err)
	}
	defer b.Release()

	r, err := gvr.New(b, gvr.WithAtlasSize(256))
	if err != nil {
		t.Fatalf("gvr.New() error = %v", err)
	}

	target, err := b.CreateTexture(&gpucore.TextureDesc{
		Label:  "target",
		Width:  128,
		Height: 128,
		Format: gpucore.TextureFormatBGRA8Unorm,
		Usage:  gpucore.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}

	pixels := make([]byte, 4*4*4)
	for i := range pixels {
		pixels[i] = 0xff
	}
	img, err := r.CreateImage(4, 4, pixels)
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}

	for frame := 0; frame < 4; frame++ {
		if err := r.Begin(128, 128, 1); err != nil {
			t.Fatalf("frame %d: Begin() error = %v", frame, err)
		}
		red := r.ColorPaint(gvr.RGB(1, 0, 0))
		r.FillCircle(gvr.Pt(32, 32), 16, red)
		r.StrokeSegment(gvr.Pt(0, 0), gvr.Pt(100, 100), 2, red)
		r.FillRect(gvr.NewRect(10, 10, 40, 40), 4, r.ImagePattern(gvr.Pt(0, 0), gvr.Pt(4, 4), 0, img, 1), 0)
		if err := r.Encode(&gpucore.RenderPassDesc{Target: target, Clear: true}); err != nil {
			t.Fatalf("frame %d: Encode() error = %v", frame, err)
		}
		if n := b.InFlight(); n > 2 {
			t.Errorf("frame %d: InFlight() = %d, want <= 2", frame, n)
		}
	}

	if s := r.Stats(); s.Prims != 3 {
		t.Errorf("Stats().Prims = %d, want 3", s.Prims)
	}

	r.Release()
	b.DestroyTexture(target)
	if n := b.Live(); n != 0 {
		t.Errorf("Live() = %d after Release, want 0", n)
	}
}
