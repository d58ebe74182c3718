package gvr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gvr/atlas"
	"github.com/gogpu/gvr/backend/memory"
	"github.com/gogpu/gvr/gpucore"
)

func newTarget(t *testing.T, b *memory.Backend) gpucore.TextureID {
	t.Helper()
	id, err := b.CreateTexture(&gpucore.TextureDesc{
		Label:  "target",
		Width:  64,
		Height: 64,
		Format: gpucore.TextureFormatBGRA8Unorm,
		Usage:  gpucore.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	return id
}

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *memory.Backend) {
	t.Helper()
	b := memory.New()
	r, err := New(b, append([]Option{WithAtlasSize(256)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(r.Release)
	return r, b
}

func begin(t *testing.T, r *Renderer) {
	t.Helper()
	if err := r.Begin(64, 64, 1); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
}

func encode(t *testing.T, r *Renderer, b *memory.Backend) *memory.Pass {
	t.Helper()
	if err := r.Encode(&gpucore.RenderPassDesc{Target: newTarget(t, b), Clear: true}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return b.LastPass()
}

func solidImage(w, h int, v byte) []byte {
	return bytes.Repeat([]byte{v}, w*h*4)
}

func TestZOrderFlatten(t *testing.T) {
	r, b := newTestRenderer(t)
	begin(t, r)
	paint := r.ColorPaint(Red)

	r.SetZIndex(5)
	r.FillCircle(Pt(0, 0), 1, paint)
	r.SetZIndex(1)
	r.FillCircle(Pt(0, 0), 2, paint)
	r.SetZIndex(5)
	r.FillCircle(Pt(0, 0), 3, paint)
	encode(t, r, b)

	prims := r.scene.Prims.Items()
	if len(prims) != 3 {
		t.Fatalf("len(prims) = %d, want 3", len(prims))
	}
	for i, want := range []float32{2, 1, 3} {
		if prims[i].Radius != want {
			t.Errorf("prims[%d].Radius = %v, want %v", i, prims[i].Radius, want)
		}
	}
}

func TestSaveRestoreBitIdentical(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	r.Translate(3, 4)
	r.Rotate(0.3)
	r.Scissor(NewRect(1, 2, 30, 40), 4)

	xf := r.CurrentTransform()
	sc := r.scissors[len(r.scissors)-1]

	r.Save()
	r.Translate(10, 0)
	r.Scale(2, 2)
	r.ResetScissor()
	if err := r.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if got := r.CurrentTransform(); got != xf {
		t.Errorf("transform after restore = %+v, want %+v", got, xf)
	}
	if got := r.scissors[len(r.scissors)-1]; got != sc {
		t.Errorf("scissor after restore = %+v, want %+v", got, sc)
	}
}

func TestRestoreUnderflow(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	r.Translate(5, 5)
	want := r.CurrentTransform()

	if err := r.Restore(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Restore() error = %v, want ErrStackUnderflow", err)
	}
	r.Save()
	if err := r.Restore(); err != nil {
		t.Errorf("balanced Restore() error = %v", err)
	}
	if err := r.Restore(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("second Restore() error = %v, want ErrStackUnderflow", err)
	}
	if got := r.CurrentTransform(); got != want {
		t.Errorf("transform after underflow = %+v, want %+v", got, want)
	}
}

func TestBatchRunsSplitOnImage(t *testing.T) {
	r, b := newTestRenderer(t)
	imgA, err := r.CreateImage(2, 2, solidImage(2, 2, 0xff))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	imgB, err := r.CreateImage(2, 2, solidImage(2, 2, 0x80))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}

	begin(t, r)
	pa := r.ImagePattern(Pt(0, 0), Pt(10, 10), 0, imgA, 1)
	pn := r.ColorPaint(Blue)
	pb := r.ImagePattern(Pt(0, 0), Pt(10, 10), 0, imgB, 1)
	for _, p := range []PaintIndex{pa, pa, pn, pb, pb, pa} {
		r.FillCircle(Pt(5, 5), 5, p)
	}
	pass := encode(t, r, b)

	draws := pass.Draws()
	want := []struct{ count, first uint32 }{{3, 0}, {2, 3}, {1, 5}}
	if len(draws) != len(want) {
		t.Fatalf("len(draws) = %d, want %d", len(draws), len(want))
	}
	for i, w := range want {
		d := draws[i]
		if d.VertexCount != 4 || d.InstanceCount != w.count || d.FirstInstance != w.first {
			t.Errorf("draw %d = (%d verts, %d inst, first %d), want (4, %d, %d)",
				i, d.VertexCount, d.InstanceCount, d.FirstInstance, w.count, w.first)
		}
	}

	groupA, _ := r.images.bindGroup(int32(imgA.Index()))
	groupB, _ := r.images.bindGroup(int32(imgB.Index()))
	var textureGroups []gpucore.BindGroupID
	for _, c := range pass.Commands {
		if c.Kind == memory.CommandSetBindGroup && c.Index == groupTextures {
			textureGroups = append(textureGroups, c.Group)
		}
	}
	wantGroups := []gpucore.BindGroupID{r.cacheGroup, groupA, groupB, groupA}
	if len(textureGroups) != len(wantGroups) {
		t.Fatalf("texture binds = %v, want %v", textureGroups, wantGroups)
	}
	for i := range wantGroups {
		if textureGroups[i] != wantGroups[i] {
			t.Errorf("texture bind %d = %d, want %d", i, textureGroups[i], wantGroups[i])
		}
	}
	if s := r.Stats(); s.Prims != 6 || s.Runs != 3 {
		t.Errorf("Stats() prims/runs = %d/%d, want 6/3", s.Prims, s.Runs)
	}
}

func TestEncodeBindsFrameState(t *testing.T) {
	r, b := newTestRenderer(t)
	if err := r.Begin(320, 200, 2); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	r.FillCircle(Pt(1, 1), 1, r.ColorPaint(White))
	pass := encode(t, r, b)

	if len(pass.Commands) == 0 || pass.Commands[0].Kind != memory.CommandSetPipeline {
		t.Fatalf("first command = %+v, want SetPipeline", pass.Commands)
	}
	if !pass.Ended {
		t.Error("pass not ended")
	}
	if b.Submits() != 1 {
		t.Errorf("Submits() = %d, want 1", b.Submits())
	}

	data, ok := b.BufferData(r.uniforms.Buffer())
	if !ok {
		t.Fatal("uniform buffer missing")
	}
	var got [4]float32
	for i := range got {
		got[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	if want := [4]float32{320, 200, 256, 256}; got != want {
		t.Errorf("uniforms = %v, want %v", got, want)
	}
}

func TestEncodeBeforeBegin(t *testing.T) {
	r, b := newTestRenderer(t)
	err := r.Encode(&gpucore.RenderPassDesc{Target: newTarget(t, b)})
	if !errors.Is(err, ErrNoFrame) {
		t.Errorf("Encode() error = %v, want ErrNoFrame", err)
	}
}

func TestFrameRotation(t *testing.T) {
	r, b := newTestRenderer(t)

	begin(t, r)
	if r.ring.Index() != 0 {
		t.Fatalf("first Begin selected slot %d, want 0", r.ring.Index())
	}
	first := r.scene
	r.FillCircle(Pt(0, 0), 1, r.ColorPaint(Red))
	r.MoveTo(Pt(0, 0))
	r.LineTo(Pt(1, 0))
	r.LineTo(Pt(0, 1))
	r.Fill(r.ColorPaint(Red))
	encode(t, r, b)

	for _, want := range []int{1, 2, 0} {
		begin(t, r)
		if got := r.ring.Index(); got != want {
			t.Errorf("slot = %d, want %d", got, want)
		}
	}
	if r.scene != first {
		t.Fatal("fourth Begin did not return to the first slot")
	}
	if n := r.scene.Pending(); n != 0 {
		t.Errorf("Pending() = %d after wrap, want 0", n)
	}
	if r.scene.Prims.Len() != 0 || r.scene.CVs.Len() != 0 || r.scene.Paints.Len() != 0 {
		t.Errorf("slot not cleared: prims %d cvs %d paints %d",
			r.scene.Prims.Len(), r.scene.CVs.Len(), r.scene.Paints.Len())
	}
	if r.scene.Xforms.Len() != 1 || r.scene.Scissors.Len() != 0 {
		t.Errorf("xforms/scissors = %d/%d, want 1/0", r.scene.Xforms.Len(), r.scene.Scissors.Len())
	}
}

func TestFillEmitsOnePrimPerContour(t *testing.T) {
	r, b := newTestRenderer(t)
	begin(t, r)

	r.MoveTo(Pt(0, 0))
	r.LineTo(Pt(10, 0))
	r.LineTo(Pt(10, 10))
	r.LineTo(Pt(0, 10))
	r.LineTo(Pt(0, 0))

	r.MoveTo(Pt(20, 30))
	r.QuadTo(Pt(22, 28), Pt(25, 30))
	r.LineTo(Pt(25, 35))
	r.LineTo(Pt(20, 35))
	r.LineTo(Pt(20, 30))

	r.Fill(r.ColorPaint(Green))
	encode(t, r, b)

	prims := r.scene.Prims.Items()
	if len(prims) != 2 {
		t.Fatalf("len(prims) = %d, want 2", len(prims))
	}
	want := []struct {
		start, count uint32
		bounds       [4]float32
	}{
		{0, 4, [4]float32{0, 0, 10, 10}},
		{12, 4, [4]float32{20, 28, 25, 35}},
	}
	for i, w := range want {
		p := prims[i]
		if p.Type != gpucore.PrimPathFill {
			t.Errorf("prims[%d].Type = %v, want PathFill", i, p.Type)
		}
		if p.Start != w.start || p.Count != w.count {
			t.Errorf("prims[%d] slice = (%d, %d), want (%d, %d)", i, p.Start, p.Count, w.start, w.count)
		}
		if p.QuadBounds != w.bounds || p.TexBounds != w.bounds {
			t.Errorf("prims[%d] bounds = %v/%v, want %v", i, p.QuadBounds, p.TexBounds, w.bounds)
		}
	}
	if prims[0].Scissor != prims[1].Scissor || prims[0].Xform != prims[1].Xform {
		t.Error("contours of one fill should share transform and scissor snapshots")
	}
	if n := r.scene.CVs.Len(); n != 24 {
		t.Errorf("CVs.Len() = %d, want 24", n)
	}
	if cv := r.scene.CVs.At(12); cv != (gpucore.CV{X: 20, Y: 30}) {
		t.Errorf("second contour first cv = %+v, want {20 30}", cv)
	}

	r.Fill(r.ColorPaint(Green))
	if r.scene.Pending() != 2 {
		t.Errorf("Fill after Fill added prims: Pending() = %d, want 2", r.scene.Pending())
	}
}

func TestShapeBounds(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	p := r.ColorPaint(Red)

	tests := []struct {
		name string
		draw func()
		typ  gpucore.PrimType
		want [4]float32
	}{
		{"circle", func() { r.FillCircle(Pt(10, 10), 5, p) }, gpucore.PrimCircle, [4]float32{5, 5, 15, 15}},
		{"arc", func() { r.StrokeArc(Pt(10, 10), 5, 2, 0, 1, p) }, gpucore.PrimArc, [4]float32{3, 3, 17, 17}},
		{"rect blur", func() { r.FillRect(NewRect(10, 10, 20, 10), 2, p, 1) }, gpucore.PrimRect, [4]float32{7, 7, 33, 23}},
		{"stroke rect", func() { r.StrokeRect(NewRect(10, 10, 20, 10), 2, 3, p) }, gpucore.PrimRectStroke, [4]float32{7, 7, 33, 23}},
		{"segment", func() { r.StrokeSegment(Pt(10, 20), Pt(0, 5), 1, p) }, gpucore.PrimSegment, [4]float32{-2, 3, 12, 22}},
		{"bezier", func() { r.StrokeBezier(Pt(0, 0), Pt(5, 10), Pt(10, 0), 2, p) }, gpucore.PrimBezier, [4]float32{-2, -2, 12, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := r.scene.Pending()
			tt.draw()
			bucket := r.scene.Pending()
			if bucket != before+1 {
				t.Fatalf("Pending() = %d, want %d", bucket, before+1)
			}
			r.scene.Flatten()
			got := r.scene.Prims.At(r.scene.Prims.Len() - 1)
			if got.Type != tt.typ {
				t.Errorf("Type = %v, want %v", got.Type, tt.typ)
			}
			if got.QuadBounds != tt.want {
				t.Errorf("QuadBounds = %v, want %v", got.QuadBounds, tt.want)
			}
			if got.TexBounds != got.QuadBounds {
				t.Errorf("TexBounds = %v, want QuadBounds", got.TexBounds)
			}
		})
	}
}

func TestArcControlValues(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	r.StrokeArc(Pt(1, 2), 5, 1, math.Pi/2, 0, r.ColorPaint(Red))
	r.scene.Flatten()
	cv := r.scene.Prims.At(0).CVs
	if cv[0] != 1 || cv[1] != 2 || !near(cv[2], 1) || !near(cv[3], 0) || !near(cv[4], 0) || !near(cv[5], 1) {
		t.Errorf("arc CVs = %v, want [1 2 1 0 0 1]", cv)
	}
}

func TestOverflowAliasesToZero(t *testing.T) {
	r, _ := newTestRenderer(t, WithMaxPrims(4))
	begin(t, r)

	var paints []PaintIndex
	for i := 0; i < 5; i++ {
		paints = append(paints, r.ColorPaint(Gray(float32(i)/4)))
	}
	if paints[3].Index() != 3 || paints[4].Index() != 0 {
		t.Errorf("paint indices = %d, %d, want 3, 0", paints[3].Index(), paints[4].Index())
	}

	for i := 0; i < 5; i++ {
		r.FillCircle(Pt(0, 0), float32(i+1), paints[0])
	}
	r.scene.Flatten()
	var xforms, scissors []uint32
	for _, p := range r.scene.Prims.Items() {
		xforms = append(xforms, p.Xform)
		scissors = append(scissors, p.Scissor)
	}
	wantX := []uint32{1, 2, 3, 0, 0}
	wantS := []uint32{0, 1, 2, 3, 0}
	for i := range wantX {
		if xforms[i] != wantX[i] || scissors[i] != wantS[i] {
			t.Errorf("prim %d xform/scissor = %d/%d, want %d/%d", i, xforms[i], scissors[i], wantX[i], wantS[i])
		}
	}

	s := r.Stats()
	if s.XformOverflow != 2 || s.ScissorOverflow != 1 || s.PaintOverflow != 1 {
		t.Errorf("overflow = %d/%d/%d, want 2/1/1", s.XformOverflow, s.ScissorOverflow, s.PaintOverflow)
	}
	if s.Xforms != 4 || s.Scissors != 4 || s.Paints != 4 {
		t.Errorf("counts = %d/%d/%d, want 4/4/4", s.Xforms, s.Scissors, s.Paints)
	}

	begin(t, r)
	if s := r.Stats(); s.XformOverflow != 0 || s.PaintOverflow != 0 {
		t.Errorf("overflow counters not reset by Begin: %+v", s)
	}
}

func TestScissorSnapshot(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	r.Translate(10, 10)
	r.Scissor(NewRect(0, 0, 5, 5), 2)
	r.FillCircle(Pt(0, 0), 1, r.ColorPaint(Red))
	r.ResetScissor()
	r.FillCircle(Pt(0, 0), 1, r.ColorPaint(Red))

	clipped := r.scene.Scissors.At(0)
	want := gpucore.Scissor{
		Xform:  [6]float32{1, 0, 0, 1, -10, -10},
		Size:   [2]float32{5, 5},
		Radius: 2,
	}
	if clipped != want {
		t.Errorf("scissor = %+v, want %+v", clipped, want)
	}
	if got := r.scene.Scissors.At(1); got != defaultScissor() {
		t.Errorf("reset scissor = %+v, want default", got)
	}
	if got := r.scene.Xforms.At(1); got != Translate(10, 10).To3D() {
		t.Errorf("recorded xform = %v, want translate(10, 10)", got)
	}
}

func applyColumns(m [6]float32, p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

func TestPaintTransforms(t *testing.T) {
	grad := gradientPaint(Pt(10, 0), Pt(20, 0), Red, Blue, 0.5)
	if got := applyColumns(grad.Xform, Pt(10, 0)); !nearPoint(got, Pt(0, 0)) {
		t.Errorf("gradient start maps to %v, want (0, 0)", got)
	}
	if got := applyColumns(grad.Xform, Pt(20, 0)); !nearPoint(got, Pt(1, 0)) {
		t.Errorf("gradient end maps to %v, want (1, 0)", got)
	}
	if grad.Image != -1 || grad.Glow != 0.5 || grad.InnerColor != Red.array() || grad.OuterColor != Blue.array() {
		t.Errorf("gradient paint = %+v", grad)
	}

	degenerate := gradientPaint(Pt(3, 3), Pt(3, 3), Red, Blue, 0)
	if got := applyColumns(degenerate.Xform, Pt(3, 4)); !nearPoint(got, Pt(1, 0)) {
		t.Errorf("degenerate gradient maps (3, 4) to %v, want (1, 0)", got)
	}

	pat := patternPaint(Pt(10, 10), Pt(20, 40), 0, 7, 0.5)
	if got := applyColumns(pat.Xform, Pt(30, 50)); !nearPoint(got, Pt(1, 1)) {
		t.Errorf("pattern far corner maps to %v, want (1, 1)", got)
	}
	if pat.Image != 7 || pat.InnerColor != [4]float32{1, 1, 1, 0.5} {
		t.Errorf("pattern paint = %+v", pat)
	}

	solid := solidPaint(Green)
	if solid.Xform != Identity().columns() || solid.Image != -1 || solid.InnerColor != solid.OuterColor {
		t.Errorf("solid paint = %+v", solid)
	}
}

func maskGlyph(w, h int) atlas.Bitmap {
	return atlas.Bitmap{Width: w, Height: h, Left: 1, Top: h, Pixels: bytes.Repeat([]byte{0xff}, w*h)}
}

func TestRenderGlyph(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	paint := r.ColorPaint(Black)
	key := atlas.GlyphKey{Font: 1, Glyph: 36, Size: 14, X: atlas.QuantizeSubpixel(10.3)}

	calls := 0
	raster := func() atlas.Bitmap {
		calls++
		return maskGlyph(6, 9)
	}
	r.RenderGlyph(Pt(10, 20), key, raster, paint)
	r.RenderGlyph(Pt(30, 20), key, raster, paint)
	if calls != 1 {
		t.Errorf("rasterizer called %d times, want 1", calls)
	}

	r.RenderGlyph(Pt(0, 0), atlas.GlyphKey{Glyph: 3}, func() atlas.Bitmap { return atlas.Bitmap{} }, paint)
	r.RenderGlyph(Pt(0, 0), atlas.GlyphKey{Glyph: 4}, func() atlas.Bitmap {
		return atlas.Bitmap{Width: 1, Height: 1, Colored: true, Pixels: []byte{1, 2, 3, 4}}
	}, paint)

	r.scene.Flatten()
	prims := r.scene.Prims.Items()
	if len(prims) != 3 {
		t.Fatalf("len(prims) = %d, want 3 (empty glyph skipped)", len(prims))
	}
	g := prims[0]
	if g.Type != gpucore.PrimGlyph {
		t.Errorf("Type = %v, want Glyph", g.Type)
	}
	if want := [4]float32{11, 11, 17, 20}; g.QuadBounds != want {
		t.Errorf("QuadBounds = %v, want %v", g.QuadBounds, want)
	}
	if g.TexBounds[2]-g.TexBounds[0] != 6 || g.TexBounds[3]-g.TexBounds[1] != 9 {
		t.Errorf("TexBounds = %v, want a 6x9 atlas rect", g.TexBounds)
	}
	if prims[1].TexBounds != g.TexBounds {
		t.Errorf("cached glyph TexBounds = %v, want %v", prims[1].TexBounds, g.TexBounds)
	}
	if prims[2].Type != gpucore.PrimColorGlyph {
		t.Errorf("color glyph Type = %v, want ColorGlyph", prims[2].Type)
	}
	if s := r.Stats(); s.SkippedDraws != 1 {
		t.Errorf("SkippedDraws = %d, want 1", s.SkippedDraws)
	}
}

func TestRenderImageAndSVG(t *testing.T) {
	r, _ := newTestRenderer(t)
	begin(t, r)
	tint := r.ColorPaint(Red)

	r.RenderImage(Pt(5, 5), []byte("photo"), 40, 30, func() atlas.Image {
		return atlas.Image{Width: 4, Height: 3, Pixels: make([]byte, 4*3*4)}
	})
	icon := func() []byte { return make([]byte, 16*16*4) }
	r.RenderSVG(Pt(0, 0), []byte("icon"), 16, 16, icon, nil)
	r.RenderSVG(Pt(0, 0), []byte("icon"), 16, 16, icon, &tint)

	r.scene.Flatten()
	prims := r.scene.Prims.Items()
	if len(prims) != 3 {
		t.Fatalf("len(prims) = %d, want 3", len(prims))
	}
	if want := [4]float32{5, 5, 45, 35}; prims[0].QuadBounds != want || prims[0].Type != gpucore.PrimColorGlyph {
		t.Errorf("image prim = %v %v, want ColorGlyph %v", prims[0].Type, prims[0].QuadBounds, want)
	}
	if prims[1].Type != gpucore.PrimColorGlyph {
		t.Errorf("svg without paint Type = %v, want ColorGlyph", prims[1].Type)
	}
	if prims[2].Type != gpucore.PrimOverrideColorSvg || prims[2].Paint != uint32(tint.Index()) {
		t.Errorf("svg with paint = %v paint %d, want OverrideColorSvg paint %d", prims[2].Type, prims[2].Paint, tint.Index())
	}
	if prims[1].TexBounds != prims[2].TexBounds {
		t.Error("same icon key packed twice")
	}
}

func TestImageLifecycle(t *testing.T) {
	r, b := newTestRenderer(t)

	if _, err := r.CreateImage(4, 4, make([]byte, 10)); !errors.Is(err, ErrImageSize) {
		t.Errorf("CreateImage(short) error = %v, want ErrImageSize", err)
	}

	a, err := r.CreateImage(2, 2, solidImage(2, 2, 1))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	tex := r.images.slots[a.Index()].texture
	if got, _ := b.Texture(tex); got.Desc.Format != gpucore.TextureFormatRGBA8UnormSRGB || got.Pixels[0] != 1 {
		t.Errorf("image texture = %+v, want uploaded RGBA8 sRGB", got.Desc)
	}

	if err := r.DeleteImage(a); err != nil {
		t.Fatalf("DeleteImage() error = %v", err)
	}
	if err := r.DeleteImage(a); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("second DeleteImage() error = %v, want ErrInvalidImage", err)
	}
	if _, _, ok := r.ImageSize(a); ok {
		t.Error("ImageSize() ok = true for deleted image")
	}

	c, err := r.CreateImage(1, 1, solidImage(1, 1, 2))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	if c.Index() != 1 {
		t.Errorf("new image index = %d, want 1 (no reuse)", c.Index())
	}
	if w, h, ok := r.ImageSize(c); !ok || w != 1 || h != 1 {
		t.Errorf("ImageSize() = %d, %d, %v, want 1, 1, true", w, h, ok)
	}

	if _, ok := b.Texture(tex); !ok {
		t.Error("deleted image texture destroyed before in-flight frames finished")
	}
	for i := 0; i < 3; i++ {
		begin(t, r)
	}
	if _, ok := b.Texture(tex); ok {
		t.Error("deleted image texture still alive after three frames")
	}

	p := r.ImagePattern(Pt(0, 0), Pt(1, 1), 0, a, 1)
	if got := r.scene.Paints.At(p.Index()); got.Image != -1 || got.InnerColor != Transparent.array() {
		t.Errorf("pattern on deleted image = %+v, want transparent solid", got)
	}
}

func TestDeletedImageRunSkipped(t *testing.T) {
	r, b := newTestRenderer(t)
	img, err := r.CreateImage(1, 1, solidImage(1, 1, 9))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	begin(t, r)
	r.FillCircle(Pt(0, 0), 1, r.ColorPaint(Red))
	r.FillCircle(Pt(0, 0), 1, r.ImagePattern(Pt(0, 0), Pt(1, 1), 0, img, 1))
	if err := r.DeleteImage(img); err != nil {
		t.Fatalf("DeleteImage() error = %v", err)
	}
	pass := encode(t, r, b)

	if draws := pass.Draws(); len(draws) != 1 || draws[0].InstanceCount != 1 {
		t.Errorf("draws = %+v, want only the atlas run", draws)
	}
	if s := r.Stats(); s.SkippedDraws != 1 {
		t.Errorf("SkippedDraws = %d, want 1", s.SkippedDraws)
	}
}

func TestAtlasResetRebindsTextures(t *testing.T) {
	r, b := newTestRenderer(t, WithAtlasThreshold(0.01))
	img, err := r.CreateImage(1, 1, solidImage(1, 1, 3))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	begin(t, r)
	r.RenderGlyph(Pt(0, 0), atlas.GlyphKey{Glyph: 1}, func() atlas.Bitmap { return maskGlyph(64, 64) }, r.ColorPaint(Red))
	encode(t, r, b)

	oldCache := r.cacheGroup
	oldImage, _ := r.images.bindGroup(int32(img.Index()))
	begin(t, r)

	if r.cacheGroup == oldCache {
		t.Fatal("cache bind group not recreated after atlas reset")
	}
	desc, ok := b.BindGroup(r.cacheGroup)
	if !ok {
		t.Fatal("cache bind group not live")
	}
	if desc.Entries[bindingMask].Texture != r.cache.MaskTexture() ||
		desc.Entries[bindingColor].Texture != r.cache.ColorTexture() {
		t.Errorf("cache bind group entries = %+v, want current atlas textures", desc.Entries)
	}
	newImage, _ := r.images.bindGroup(int32(img.Index()))
	if newImage == oldImage {
		t.Error("image bind group not recreated after atlas reset")
	}
	if _, ok := b.BindGroup(oldCache); !ok {
		t.Error("old cache bind group destroyed while frames may be in flight")
	}
	if s := r.Stats(); s.AtlasResets != 1 || s.AtlasEntries != 0 {
		t.Errorf("Stats() resets/entries = %d/%d, want 1/0", s.AtlasResets, s.AtlasEntries)
	}
}

func TestOversizedIconSkippedWithoutReset(t *testing.T) {
	r, b := newTestRenderer(t)
	calls := 0
	for frame := 0; frame < 5; frame++ {
		begin(t, r)
		r.RenderGlyph(Pt(0, 0), atlas.GlyphKey{Glyph: 1}, func() atlas.Bitmap {
			calls++
			return maskGlyph(4, 4)
		}, r.ColorPaint(Red))
		r.RenderSVG(Pt(0, 0), []byte("poster"), 512, 512, func() []byte { return make([]byte, 512*512*4) }, nil)
		encode(t, r, b)

		if s := r.Stats(); s.SkippedDraws != 1 || s.Prims != 1 || s.AtlasResets != 0 {
			t.Fatalf("frame %d: skipped/prims/resets = %d/%d/%d, want 1/1/0",
				frame, s.SkippedDraws, s.Prims, s.AtlasResets)
		}
	}
	if calls != 1 {
		t.Errorf("glyph rasterized %d times over 5 frames, want 1", calls)
	}
}

func TestReleaseFreesEverything(t *testing.T) {
	b := memory.New()
	r, err := New(b, WithAtlasSize(256), WithAtlasThreshold(0.01))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	img, err := r.CreateImage(2, 2, solidImage(2, 2, 0))
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	if _, err := r.CreateImage(2, 2, solidImage(2, 2, 0)); err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	if err := r.Begin(10, 10, 1); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	r.RenderGlyph(Pt(0, 0), atlas.GlyphKey{}, func() atlas.Bitmap { return maskGlyph(64, 64) }, r.ColorPaint(Red))
	if err := r.DeleteImage(img); err != nil {
		t.Fatalf("DeleteImage() error = %v", err)
	}
	if err := r.Begin(10, 10, 1); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	r.Release()
	if n := b.Live(); n != 0 {
		t.Errorf("Live() = %d after Release, want 0", n)
	}
	if err := r.Begin(10, 10, 1); !errors.Is(err, ErrReleased) {
		t.Errorf("Begin() after Release error = %v, want ErrReleased", err)
	}
}
