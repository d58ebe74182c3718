// Package text shapes strings and rasterizes glyphs for the renderer's
// glyph atlas.
//
// The renderer does no text layout itself. It caches glyph bitmaps by
// atlas.GlyphKey and calls back into a rasterizer on a miss. This package
// supplies both halves:
//
//   - Font parses TrueType/OpenType data once for shaping (go-text) and
//     outline access (x/image sfnt).
//   - Shaper splits a string into bidi runs (x/text) and shapes each run
//     with HarfBuzz (go-text/typesetting), returning glyphs in visual order.
//   - Rasterizer fills glyph outlines into coverage bitmaps with
//     x/image/vector, shifted by a quantized subpixel offset.
//   - Drawer ties them together: DrawText shapes, then calls
//     Renderer.RenderGlyph for every glyph.
//
// Example:
//
//	f, err := text.NewFont(goregular.TTF)
//	if err != nil {
//		return err
//	}
//	d := text.NewDrawer()
//	d.DrawText(r, gvr.Pt(20, 40), "Hello", f, 16, r.ColorPaint(gvr.RGB(0, 0, 0)))
package text
