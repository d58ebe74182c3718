package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gvr/gpucore"
)

// === Command Recording and Execution ===

// BeginRenderPass starts a render pass on the frame's command encoder,
// creating the encoder on the first pass after a Submit.
func (b *Backend) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil, ErrReleased
	}
	if b.passActive {
		return nil, gpucore.ErrPassActive
	}
	target, ok := b.textures[desc.Target]
	if !ok {
		return nil, fmt.Errorf("wgpu: pass target %d: %w", desc.Target, gpucore.ErrUnknownResource)
	}

	if b.encoder == nil {
		encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gvr_frame"})
		if err != nil {
			return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
		}
		if err := encoder.BeginEncoding("gvr_frame"); err != nil {
			return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
		}
		b.encoder = encoder
	}

	load := gputypes.LoadOpLoad
	if desc.Clear {
		load = gputypes.LoadOpClear
	}
	c := desc.ClearColor
	rp := b.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       target.view,
				LoadOp:     load,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: c[0], G: c[1], B: c[2], A: c[3]},
			},
		},
	})
	b.passActive = true
	return &passEncoder{backend: b, pass: rp}, nil
}

// passEncoder implements gpucore.RenderPassEncoder on a HAL pass.
// Commands naming unknown resources are dropped with a warning.
type passEncoder struct {
	backend *Backend
	pass    hal.RenderPassEncoder
	ended   bool
}

// SetPipeline sets the active render pipeline.
func (e *passEncoder) SetPipeline(id gpucore.RenderPipelineID) {
	b := e.backend
	b.mu.Lock()
	p, ok := b.pipelines[id]
	b.mu.Unlock()
	if !ok || e.ended {
		b.log().Warn("wgpu: set pipeline dropped", "pipeline", id, "ended", e.ended)
		return
	}
	e.pass.SetPipeline(p.pipeline)
}

// SetBindGroup sets a bind group at the specified index.
func (e *passEncoder) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	b := e.backend
	b.mu.Lock()
	g, ok := b.bindGroups[id]
	b.mu.Unlock()
	if !ok || e.ended {
		b.log().Warn("wgpu: set bind group dropped", "index", index, "group", id, "ended", e.ended)
		return
	}
	e.pass.SetBindGroup(index, g, nil)
}

// Draw issues an instanced draw.
func (e *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if e.ended {
		return
	}
	e.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// End finishes the render pass.
func (e *passEncoder) End() {
	if e.ended {
		return
	}
	e.ended = true
	e.pass.End()

	b := e.backend
	b.mu.Lock()
	b.passActive = false
	b.mu.Unlock()
}

// Submit finishes the frame's command buffer and submits it, signalling
// the fence with the next value. It then waits until no more than
// maxFramesInFlight submissions are pending.
func (b *Backend) Submit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return ErrReleased
	}
	if b.encoder == nil {
		return nil
	}
	if b.passActive {
		return fmt.Errorf("wgpu: submit: %w", gpucore.ErrPassActive)
	}

	cmd, err := b.encoder.EndEncoding()
	b.encoder = nil
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	b.fenceValue++
	if err := b.queue.Submit([]hal.CommandBuffer{cmd}, b.fence, b.fenceValue); err != nil {
		b.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	b.inflight = append(b.inflight, submission{cmd: cmd, value: b.fenceValue})
	return b.reclaimLocked(maxFramesInFlight)
}

// reclaimLocked waits for the oldest submissions until at most keep
// remain and frees their command buffers. b.mu must be held.
func (b *Backend) reclaimLocked(keep int) error {
	for len(b.inflight) > keep {
		s := b.inflight[0]
		ok, err := b.device.Wait(b.fence, s.value, b.cfg.timeout)
		if err != nil {
			return fmt.Errorf("wgpu: wait for frame %d: %w", s.value, err)
		}
		if !ok {
			b.log().Warn("wgpu: frame timeout", "frame", s.value, "timeout", b.cfg.timeout)
			return fmt.Errorf("%w: frame %d", ErrFrameTimeout, s.value)
		}
		b.device.FreeCommandBuffer(s.cmd)
		b.inflight[0] = submission{}
		b.inflight = b.inflight[1:]
	}
	return nil
}

// InFlight returns the number of submitted frames not yet known to be
// complete.
func (b *Backend) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}
