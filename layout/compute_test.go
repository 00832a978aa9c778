package layout

import "testing"

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uintptr
	}{
		{0, 1, 0},
		{0, 8, 0},
		{1, 1, 1},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{9, 8, 16},
		{7, 0, 7},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		fields  []FieldDesc
		size    uintptr
		align   uintptr
		offsets []uintptr
	}{
		{
			name:  "empty",
			size:  0,
			align: 1,
		},
		{
			name: "packed primitives",
			fields: []FieldDesc{
				{Name: "a", Size: 1, Align: 1},
				{Name: "b", Size: 1, Align: 1},
			},
			size:    2,
			align:   1,
			offsets: []uintptr{0, 1},
		},
		{
			name: "padding between fields",
			fields: []FieldDesc{
				{Name: "a", Size: 1, Align: 1},
				{Name: "b", Size: 8, Align: 8},
			},
			size:    16,
			align:   8,
			offsets: []uintptr{0, 8},
		},
		{
			name: "trailing padding",
			fields: []FieldDesc{
				{Name: "a", Size: 8, Align: 8},
				{Name: "b", Size: 1, Align: 1},
			},
			size:    16,
			align:   8,
			offsets: []uintptr{0, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.fields)
			if got.Size != tt.size || got.Align != tt.align {
				t.Errorf("size/align = %d/%d, want %d/%d", got.Size, got.Align, tt.size, tt.align)
			}
			for i, off := range tt.offsets {
				if got.Offsets[i] != off {
					t.Errorf("offset[%d] = %d, want %d", i, got.Offsets[i], off)
				}
			}
		})
	}
}

func TestComputeShared(t *testing.T) {
	fields := []FieldDesc{
		{Name: "a", Size: 4, Align: 4, Role: Head},
		{Name: "b", Size: 8, Align: 8, Role: Tail},
	}

	blk, payloadOff := ComputeShared(fields)

	if payloadOff < refCountSize {
		t.Errorf("payload offset %d overlaps the count slot", payloadOff)
	}
	if payloadOff%8 != 0 {
		t.Errorf("payload offset %d not aligned for the payload", payloadOff)
	}
	if blk.Offsets[0] != payloadOff {
		t.Errorf("first field offset %d, want %d", blk.Offsets[0], payloadOff)
	}
	if blk.Align < 8 {
		t.Errorf("block align %d too small for the count", blk.Align)
	}

	payload := Compute(fields)
	if blk.Size < payloadOff+payload.Size {
		t.Errorf("block size %d cannot hold payload", blk.Size)
	}
}
