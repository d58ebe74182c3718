package main

import (
	"crypto/sha256"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/gvr"
	"github.com/gogpu/gvr/text"
)

const checkerSize = 8

type demo struct {
	r      *gvr.Renderer
	cfg    config
	font   *text.Font
	drawer *text.Drawer

	checker gvr.ImageIndex
	icon    []byte
	iconID  []byte
}

func (d *demo) init() error {
	img, err := d.r.CreateImage(checkerSize, checkerSize, checkerPixels(checkerSize))
	if err != nil {
		return fmt.Errorf("create checker image: %w", err)
	}
	d.checker = img
	d.icon = ringIcon(32)
	sum := sha256.Sum256(d.icon)
	d.iconID = sum[:]
	return nil
}

func (d *demo) draw(frame int) {
	r := d.r
	w, h := float32(d.cfg.Width), float32(d.cfg.Height)
	t := float32(frame) * 0.1

	bg := r.LinearGradient(gvr.Pt(0, 0), gvr.Pt(0, h), gvr.Hex("#1d2b53"), gvr.Hex("#7e2553"), 0)
	r.FillRect(gvr.NewRect(0, 0, w, h), 0, bg, 0)

	red := r.ColorPaint(gvr.RGBA(1, 0.3, 0.3, 0.8))
	green := r.ColorPaint(gvr.RGBA(0.3, 1, 0.3, 0.8))
	blue := r.ColorPaint(gvr.RGBA(0.3, 0.3, 1, 0.8))
	white := r.ColorPaint(gvr.Gray(1))

	r.FillCircle(gvr.Pt(150, 150), 60, red)
	r.FillCircle(gvr.Pt(200, 150), 60, green)
	r.FillCircle(gvr.Pt(175, 200), 60, blue)

	r.FillRect(gvr.NewRect(350, 100, 120, 80), 15, r.ColorPaint(gvr.RGB(1, 0.8, 0)), 0)
	r.StrokeRect(gvr.NewRect(350, 100, 120, 80), 15, 4, white)
	r.FillRect(gvr.NewRect(500, 100, 120, 80), 10, r.ColorPaint(gvr.RGBA(0, 0, 0, 0.5)), 8)

	r.StrokeArc(gvr.Pt(175, 400), 50, 6, t, math32.Pi*0.75, white)
	r.StrokeSegment(gvr.Pt(300, 350), gvr.Pt(450, 450), 3, white)
	r.StrokeBezier(gvr.Pt(300, 450), gvr.Pt(375, 300), gvr.Pt(450, 450), 3, green)

	// Rotating squares drawn above everything else.
	r.Save()
	r.SetZIndex(1)
	r.Translate(650, 400)
	for i := 0; i < 6; i++ {
		r.Rotate(math32.Pi/6 + t)
		r.FillRect(gvr.NewRect(-30, -30, 60, 60), 4, r.ColorPaint(gvr.RGBA(1, 1, 1, 0.15)), 0)
	}
	_ = r.Restore()

	d.star(gvr.Pt(650, 180), 70, 28, r.ColorPaint(gvr.Hex("#ffec27")))

	pattern := r.ImagePattern(gvr.Pt(40, 480), gvr.Pt(16, 16), 0, d.checker, 1)
	r.FillRect(gvr.NewRect(40, 480, 200, 80), 12, pattern, 0)

	r.Save()
	r.Scissor(gvr.NewRect(500, 480, 240, 80), 8)
	r.FillCircle(gvr.Pt(620, 520), 90, blue)
	r.RenderSVG(gvr.Pt(510, 490), d.iconID, 32, 32, func() []byte { return d.icon }, nil)
	r.RenderSVG(gvr.Pt(550, 490), d.iconID, 32, 32, func() []byte { return d.icon }, &red)
	_ = r.Restore()

	d.drawer.DrawText(r, gvr.Pt(40, 60), d.cfg.Text, d.font, d.cfg.FontSize, white)
}

// star fills a five-pointed star.
func (d *demo) star(c gvr.Point, outer, inner float32, paint gvr.PaintIndex) {
	const points = 5
	at := func(i int, radius float32) gvr.Point {
		a := float32(i)*math32.Pi/points - math32.Pi/2
		s, co := math32.Sincos(a)
		return gvr.Pt(c.X+co*radius, c.Y+s*radius)
	}
	d.r.MoveTo(at(0, outer))
	for i := 1; i <= 2*points; i++ {
		radius := outer
		if i%2 == 1 {
			radius = inner
		}
		p := at(i%(2*points), radius)
		d.r.LineTo(p)
	}
	d.r.Fill(paint)
}

func checkerPixels(n int) []byte {
	px := make([]byte, n*n*4)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := byte(40)
			if (x+y)%2 == 0 {
				v = 220
			}
			i := (y*n + x) * 4
			px[i], px[i+1], px[i+2], px[i+3] = v, v, v, 255
		}
	}
	return px
}

// ringIcon renders a size x size RGBA8 ring, standing in for an SVG
// rasterizer.
func ringIcon(size int) []byte {
	px := make([]byte, size*size*4)
	c := float32(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float32(x)+0.5-c, float32(y)+0.5-c
			dist := math32.Sqrt(dx*dx + dy*dy)
			a := math32.Max(0, 1-math32.Abs(dist-c*0.7)/2)
			i := (y*size + x) * 4
			px[i], px[i+1], px[i+2], px[i+3] = 255, 200, 80, byte(255*a)
		}
	}
	return px
}
