// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The engine never creates a GPU device of its own: the host (a windowing
// framework, a game engine, a headless harness) owns the device and queue
// and hands them in through this interface. GPU-backed Surface
// implementations wrap a DeviceHandle; the software surface ignores it.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so engine
// surfaces plug directly into the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle with no GPU behind it, for CPU-only
// rendering and tests.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns unknown adapter metadata for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var _ DeviceHandle = NullDeviceHandle{}

// TextureDescriptor describes an atlas or target texture a surface
// allocates, mirroring the WebGPU texture descriptor.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
	Usage  TextureUsage
}

// TextureUsage specifies how a texture may be used. Flags combine with
// bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopyDst allows writing pixel data into the texture.
	TextureUsageCopyDst TextureUsage = 1 << iota
	// TextureUsageTextureBinding allows sampling from shaders.
	TextureUsageTextureBinding
	// TextureUsageRenderAttachment allows rendering into the texture.
	TextureUsageRenderAttachment
)

// Surface is a rendering destination for composed frames.
//
// Implementations rasterize or draw the frame's commands in order. Upload
// is an optional pre-warming step: it lets the pipeline push a freshly
// tessellated primitive's buffers to the GPU before the primitive is first
// drawn, and must be idempotent. Surfaces attach per-primitive GPU
// resources through Primitive.AttachGPU so release follows the
// primitive's reference count.
type Surface interface {
	// Size returns the target size in pixels.
	Size() (width, height int)

	// Format returns the target pixel format.
	Format() gputypes.TextureFormat

	// Upload makes the primitive's buffers resident. Calling Upload on
	// an already resident primitive is a no-op.
	Upload(p *Primitive) error

	// Submit draws a composed frame. The caller releases the frame
	// after Submit returns.
	Submit(f *Frame) error
}
