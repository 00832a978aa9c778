package main

import (
	"fmt"
	"unsafe"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/wippyai/incrstruct/layout"
)

// layoutFile is the HCL schema for declared layouts:
//
//	struct "conn" {
//	  field "endpoint" { role = "head" size = 16 align = 8 }
//	  field "buf"      { role = "head" size = 24 align = 8 }
//	  field "view"     { role = "tail" size = ptr align = ptr }
//	}
type layoutFile struct {
	Structs []structBlock `hcl:"struct,block"`
}

type structBlock struct {
	Name   string       `hcl:"name,label"`
	Fields []fieldBlock `hcl:"field,block"`
}

type fieldBlock struct {
	Name  string `hcl:"name,label"`
	Role  string `hcl:"role"`
	Size  int64  `hcl:"size"`
	Align int64  `hcl:"align,optional"`
}

// evalContext exposes the target's pointer and word sizes to layout
// declarations, so `size = ptr` reads naturally.
func evalContext() *hcl.EvalContext {
	ptrSize := int64(unsafe.Sizeof(uintptr(0)))
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"ptr":  cty.NumberIntVal(ptrSize),
			"word": cty.NumberIntVal(ptrSize),
		},
	}
}

func loadLayouts(path string) (*layoutFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	var lf layoutFile
	diags = gohcl.DecodeBody(file.Body, evalContext(), &lf)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}
	if len(lf.Structs) == 0 {
		return nil, fmt.Errorf("%s declares no structs", path)
	}
	return &lf, nil
}

// naturalAlign picks the alignment for a field that declares none:
// the largest machine-word divisor of its size, capped at pointer size.
func naturalAlign(size uintptr) uintptr {
	for a := unsafe.Sizeof(uintptr(0)); a > 1; a >>= 1 {
		if size >= a && size%a == 0 {
			return a
		}
	}
	return 1
}

// descs converts a declared struct into field descriptors, validating
// roles and the head-before-tail rule.
func descs(s structBlock) ([]layout.FieldDesc, error) {
	out := make([]layout.FieldDesc, 0, len(s.Fields))
	sawTail := false

	for _, f := range s.Fields {
		var role layout.Role
		switch f.Role {
		case "head":
			role = layout.Head
		case "tail":
			role = layout.Tail
		default:
			return nil, fmt.Errorf("struct %q field %q: role must be head or tail, got %q",
				s.Name, f.Name, f.Role)
		}

		if role == layout.Tail {
			sawTail = true
		} else if sawTail {
			return nil, fmt.Errorf("struct %q field %q: head fields must precede tail fields",
				s.Name, f.Name)
		}
		if f.Size < 0 || f.Align < 0 {
			return nil, fmt.Errorf("struct %q field %q: bad size/align %d/%d",
				s.Name, f.Name, f.Size, f.Align)
		}
		align := uintptr(f.Align)
		if align == 0 {
			align = naturalAlign(uintptr(f.Size))
		}

		out = append(out, layout.FieldDesc{
			Name:  f.Name,
			Role:  role,
			Size:  uintptr(f.Size),
			Align: align,
		})
	}
	return out, nil
}
