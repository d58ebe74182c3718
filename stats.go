package gvr

// Stats describes the current frame and the renderer's resources.
type Stats struct {
	Frame uint64

	// Prims and Runs are set by Encode.
	Prims int
	Runs  int

	CVs      int
	Xforms   int
	Scissors int
	Paints   int

	// Overflow counters count snapshots that aliased index 0 because the
	// per-frame bound was reached.
	XformOverflow   int
	ScissorOverflow int
	PaintOverflow   int

	// SkippedDraws counts primitives dropped this frame: empty or
	// unpackable rasterizations and runs bound to deleted images.
	SkippedDraws int

	AtlasUsage   float64
	AtlasEntries int
	AtlasResets  int
	Images       int

	// Retired counts resources waiting for in-flight frames to finish.
	Retired int
}

func (s *Stats) beginFrame() {
	*s = Stats{}
}

// Stats returns statistics for the current frame.
func (r *Renderer) Stats() Stats {
	s := r.stats
	s.Frame = r.frames
	s.Xforms = r.xformCount
	s.Scissors = r.scissorCount
	s.Paints = r.paintCount
	if r.scene != nil {
		s.CVs = r.scene.CVs.Len()
	}
	if r.cache != nil {
		s.AtlasUsage = r.cache.Usage()
		s.AtlasEntries = r.cache.Len()
		s.AtlasResets = r.cache.Resets()
	}
	s.Images = r.images.live()
	s.Retired = r.graveyard.len()
	return s
}
