// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

// DrawCommand pairs a primitive with the transform that places it on
// screen for one frame.
type DrawCommand struct {
	Primitive *Primitive
	Transform Transform
}

// Frame is one composed frame: an ordered list of draw commands built
// fresh by the composer. Commands are drawn in slice order.
//
// A frame holds one primitive reference per command, taken when the
// command is appended, so evictions that happen while the frame is
// in flight cannot free buffers out from under the surface. Callers must
// Release the frame after submitting it.
type Frame struct {
	// Width and Height are the target size in pixels the frame was
	// composed for.
	Width, Height int

	commands []DrawCommand
	released bool
}

// NewFrame creates an empty frame for a target of the given pixel size.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height}
}

// Append adds a draw command and retains its primitive for the frame's
// lifetime.
func (f *Frame) Append(p *Primitive, t Transform) {
	p.Retain()
	f.commands = append(f.commands, DrawCommand{Primitive: p, Transform: t})
}

// Commands returns the draw commands in draw order. The slice is owned by
// the frame and valid until Release.
func (f *Frame) Commands() []DrawCommand {
	return f.commands
}

// Len returns the number of draw commands.
func (f *Frame) Len() int {
	return len(f.commands)
}

// Release drops the frame's primitive references. It is idempotent;
// frames are single-threaded by contract so no locking is needed.
func (f *Frame) Release() {
	if f.released {
		return
	}
	f.released = true
	for _, cmd := range f.commands {
		cmd.Primitive.Release()
	}
	f.commands = nil
}
