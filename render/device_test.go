// Copyright 2026 The galileo Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestSoftwareSurfaceImplementsSurface(t *testing.T) {
	var s Surface = NewSoftwareSurface(4, 4)
	if w, h := s.Size(); w != 4 || h != 4 {
		t.Errorf("Size() = %d,%d, want 4,4", w, h)
	}
}

func TestTextureUsageFlags(t *testing.T) {
	u := TextureUsageCopyDst | TextureUsageTextureBinding

	if u&TextureUsageCopyDst == 0 {
		t.Error("CopyDst flag lost")
	}
	if u&TextureUsageTextureBinding == 0 {
		t.Error("TextureBinding flag lost")
	}
	if u&TextureUsageRenderAttachment != 0 {
		t.Error("RenderAttachment flag set unexpectedly")
	}
}
