// Package gvr is an immediate-mode 2D vector renderer core for GPUs.
//
// # Overview
//
// Each frame, callers issue drawing commands against a Renderer: circles,
// arcs, rounded rectangles, strokes, bezier curves, filled paths, glyphs,
// images and vector icons. The renderer turns them into a compact array of
// instanced primitives that a single shader evaluates per pixel, plus
// cached rasterized content packed into two shared atlas textures.
//
// # Quick Start
//
//	r, err := gvr.New(backend)
//	if err != nil {
//		return err
//	}
//	defer r.Release()
//
//	if err := r.Begin(800, 600, 1); err != nil {
//		return err
//	}
//	red := r.ColorPaint(gvr.RGB(1, 0, 0))
//	r.FillCircle(gvr.Pt(100, 100), 40, red)
//	r.FillRect(gvr.NewRect(200, 50, 120, 80), 8, red, 0)
//	err = r.Encode(&gpucore.RenderPassDesc{Target: target, Clear: true})
//
// # Frame Model
//
// Begin selects the next of three scene slots and clears it. Draw calls
// append primitives to a z-index bucket, each recording a snapshot of the
// current transform and scissor. Encode flattens the buckets by ascending
// z in submission order, uploads the per-frame arrays and issues one
// instanced draw per run of primitives sharing a bound texture.
//
// The three-slot rotation is the only protection against overwriting
// buffers the GPU may still read; backends must not keep more than two
// frames in flight.
//
// # Backends
//
// The renderer talks to the GPU through [gpucore.Backend]. The
// backend/wgpu package implements it over gogpu/wgpu; backend/memory
// records everything in host memory for tests and headless runs.
//
// # Coordinate System
//
// Origin (0,0) at top-left, X right, Y down, angles in radians.
package gvr
