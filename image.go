package gvr

import (
	"fmt"

	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/internal/scene"
)

// ImageIndex refers to an image created with CreateImage. Indices are
// never reused, so a deleted index stays invalid for the renderer's life.
type ImageIndex struct {
	index int
}

// Index returns the numeric image index.
func (i ImageIndex) Index() int {
	return i.index
}

type imageSlot struct {
	texture gpucore.TextureID
	group   gpucore.BindGroupID
	width   int
	height  int
}

// imageTable is a grow-only list of optional slots. Deletion leaves a
// nil tombstone.
type imageTable struct {
	slots []*imageSlot
}

func (t *imageTable) valid(i ImageIndex) bool {
	return i.index >= 0 && i.index < len(t.slots) && t.slots[i.index] != nil
}

func (t *imageTable) bindGroup(i int32) (gpucore.BindGroupID, bool) {
	if !t.valid(ImageIndex{index: int(i)}) {
		return gpucore.InvalidID, false
	}
	return t.slots[i].group, true
}

func (t *imageTable) live() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func (t *imageTable) release(b gpucore.Backend) {
	for i, s := range t.slots {
		if s == nil {
			continue
		}
		if s.group != gpucore.InvalidID {
			b.DestroyBindGroup(s.group)
		}
		b.DestroyTexture(s.texture)
		t.slots[i] = nil
	}
}

// CreateImage uploads width x height RGBA8 pixels into a dedicated
// texture and returns its index.
func (r *Renderer) CreateImage(width, height int, pixels []byte) (ImageIndex, error) {
	if r.released {
		return ImageIndex{}, ErrReleased
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return ImageIndex{}, fmt.Errorf("%w: %dx%d with %d bytes", ErrImageSize, width, height, len(pixels))
	}
	tex, err := r.backend.CreateTexture(&gpucore.TextureDesc{
		Label:  "image",
		Width:  width,
		Height: height,
		Format: gpucore.TextureFormatRGBA8UnormSRGB,
		Usage:  gpucore.TextureUsageCopyDst | gpucore.TextureUsageTextureBinding,
	})
	if err != nil {
		return ImageIndex{}, fmt.Errorf("gvr: create image: %w", err)
	}
	region := gpucore.TextureRegion{Width: width, Height: height}
	if err := r.backend.WriteTexture(tex, region, pixels[:width*height*4]); err != nil {
		r.backend.DestroyTexture(tex)
		return ImageIndex{}, fmt.Errorf("gvr: upload image: %w", err)
	}
	group, err := r.textureGroup("image", tex)
	if err != nil {
		r.backend.DestroyTexture(tex)
		return ImageIndex{}, err
	}

	idx := ImageIndex{index: len(r.images.slots)}
	r.images.slots = append(r.images.slots, &imageSlot{
		texture: tex,
		group:   group,
		width:   width,
		height:  height,
	})
	r.logger.Debug("gvr: image created", "image", idx.index, "width", width, "height", height)
	return idx, nil
}

// DeleteImage tombstones an image. Its texture is destroyed once frames
// that may still sample it have completed.
func (r *Renderer) DeleteImage(image ImageIndex) error {
	if !r.images.valid(image) {
		return fmt.Errorf("%w: %d", ErrInvalidImage, image.index)
	}
	s := r.images.slots[image.index]
	r.images.slots[image.index] = nil
	b := r.backend
	r.graveyard.add(func() {
		b.DestroyBindGroup(s.group)
		b.DestroyTexture(s.texture)
	})
	return nil
}

// ImageSize returns the dimensions of a live image.
func (r *Renderer) ImageSize(image ImageIndex) (width, height int, ok bool) {
	if !r.images.valid(image) {
		return 0, 0, false
	}
	s := r.images.slots[image.index]
	return s.width, s.height, true
}

// rebindImages recreates every image bind group after the atlas
// textures changed.
func (r *Renderer) rebindImages() error {
	for _, s := range r.images.slots {
		if s == nil {
			continue
		}
		group, err := r.textureGroup("image", s.texture)
		if err != nil {
			return err
		}
		r.retireBindGroup(s.group)
		s.group = group
	}
	return nil
}

// graveyard delays destruction of resources that in-flight frames may
// still reference until every scene slot has been reused.
type graveyard struct {
	entries []graveEntry
}

type graveEntry struct {
	destroy func()
	frames  int
}

func (g *graveyard) add(destroy func()) {
	g.entries = append(g.entries, graveEntry{destroy: destroy, frames: scene.Slots})
}

// tick ages every entry by one frame and destroys the expired ones.
func (g *graveyard) tick() {
	kept := g.entries[:0]
	for _, e := range g.entries {
		e.frames--
		if e.frames <= 0 {
			e.destroy()
			continue
		}
		kept = append(kept, e)
	}
	clear(g.entries[len(kept):])
	g.entries = kept
}

// flush destroys everything immediately.
func (g *graveyard) flush() {
	for _, e := range g.entries {
		e.destroy()
	}
	g.entries = nil
}

func (g *graveyard) len() int {
	return len(g.entries)
}
