package graphics

import (
	"fmt"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/function"
)

// csKind names the device color space a colorSpace ultimately resolves
// to once any tint-transform function has run, per §8.6.
type csKind int

const (
	csDeviceGray csKind = iota
	csDeviceRGB
	csDeviceCMYK
)

// colorSpace is a resolved /ColorSpace resource entry. For the device
// spaces, kind is all that is needed and tint is nil. For Separation and
// DeviceN spaces (§8.6.6.4/§8.6.6.5), tint holds the Type-4 PostScript
// calculator function that maps the space's own components onto alt, the
// resolved alternate device space.
type colorSpace struct {
	kind csKind
	tint *function.Function
	alt  csKind
}

// deviceColorSpace is the zero-value colorSpace for one of the three
// direct device spaces: no tint transform, alt is unused.
func deviceColorSpace(k csKind) *colorSpace { return &colorSpace{kind: k} }

// resolveColorSpaceResource resolves the operand of cs/CS: either the
// literal name of a device space or a name that must be looked up in the
// current resource dictionary's /ColorSpace subdictionary.
func (rd *renderer) resolveColorSpaceResource(name pdf.Name) (*colorSpace, error) {
	switch name {
	case "DeviceGray", "CalGray", "G":
		return deviceColorSpace(csDeviceGray), nil
	case "DeviceRGB", "CalRGB", "RGB":
		return deviceColorSpace(csDeviceRGB), nil
	case "DeviceCMYK", "CMYK":
		return deviceColorSpace(csDeviceCMYK), nil
	case "Pattern":
		return nil, nil // painted via the previous color; see Open Questions
	}
	if rd.resources == nil {
		return nil, fmt.Errorf("graphics: color space %q not found (no /Resources)", name)
	}
	csObj, ok := rd.resources.Get("ColorSpace")
	if !ok {
		return nil, fmt.Errorf("graphics: no /ColorSpace subdictionary")
	}
	csDict, err := pdf.GetDict(rd.r, csObj)
	if err != nil {
		return nil, err
	}
	entry, ok := csDict.Get(name)
	if !ok {
		return nil, fmt.Errorf("graphics: color space %q not found", name)
	}
	return rd.resolveColorSpaceObj(entry)
}

// resolveColorSpaceObj resolves a /ColorSpace array or name object to a
// colorSpace, recursing into Separation/DeviceN's alternate space and
// compiling its tint-transform function.
func (rd *renderer) resolveColorSpaceObj(obj pdf.Object) (*colorSpace, error) {
	resolved, err := pdf.Resolve(rd.r, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case pdf.Name:
		return rd.resolveColorSpaceResource(v)
	case pdf.Array:
		if len(v) == 0 {
			return nil, fmt.Errorf("graphics: empty color space array")
		}
		familyObj, err := pdf.Resolve(rd.r, v[0])
		if err != nil {
			return nil, err
		}
		family, _ := familyObj.(pdf.Name)
		switch family {
		case "ICCBased":
			if len(v) < 2 {
				return nil, fmt.Errorf("graphics: /ICCBased missing stream")
			}
			stm, err := pdf.GetStream(rd.r, v[1])
			if err != nil || stm == nil {
				return nil, fmt.Errorf("graphics: /ICCBased stream not found")
			}
			nObj, _ := stm.Dict.Get("N")
			n, _ := pdf.GetInteger(rd.r, nObj)
			switch n {
			case 1:
				return deviceColorSpace(csDeviceGray), nil
			case 4:
				return deviceColorSpace(csDeviceCMYK), nil
			default:
				return deviceColorSpace(csDeviceRGB), nil
			}
		case "Separation", "DeviceN":
			if len(v) < 4 {
				return nil, fmt.Errorf("graphics: %s array too short", family)
			}
			alt, err := rd.resolveColorSpaceObj(v[2])
			if err != nil || alt == nil {
				return nil, fmt.Errorf("graphics: %s alternate space: %w", family, err)
			}
			fn, err := function.Extract(rd.r, v[3])
			if err != nil {
				return nil, fmt.Errorf("graphics: %s tint transform: %w", family, err)
			}
			return &colorSpace{kind: alt.kind, tint: fn, alt: alt.kind}, nil
		case "Indexed", "Lab", "Pattern":
			// Indexed palettes, CIE Lab and Pattern base spaces are not
			// evaluated; resolveColor then resolves the operands by their
			// count. See the Open Question note in DESIGN.md.
			return nil, nil
		default:
			return nil, fmt.Errorf("graphics: unsupported color space family %q", family)
		}
	default:
		return nil, fmt.Errorf("graphics: color space must be a name or array, got %T", resolved)
	}
}

// colorFromSpace evaluates ops against space: if space has a tint
// transform, ops is fed through it and the result interpreted in the
// alternate space; otherwise ops is interpreted directly by space.kind.
func colorFromSpace(space *colorSpace, ops []pdf.Object) (color, bool) {
	nums, err := operandsToFloats(dropTrailingName(ops))
	if err != nil || len(nums) == 0 {
		return color{}, false
	}
	if space.tint != nil {
		out, err := space.tint.Eval(nums)
		if err != nil {
			return color{}, false
		}
		return colorFromKind(space.alt, out)
	}
	return colorFromKind(space.kind, nums)
}

func colorFromKind(kind csKind, nums []float64) (color, bool) {
	switch kind {
	case csDeviceGray:
		if len(nums) != 1 {
			return color{}, false
		}
		return color{nums[0], nums[0], nums[0]}, true
	case csDeviceRGB:
		if len(nums) != 3 {
			return color{}, false
		}
		return color{nums[0], nums[1], nums[2]}, true
	case csDeviceCMYK:
		if len(nums) != 4 {
			return color{}, false
		}
		c, m, y, k := nums[0], nums[1], nums[2], nums[3]
		return color{(1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)}, true
	default:
		return color{}, false
	}
}

func dropTrailingName(ops []pdf.Object) []pdf.Object {
	out := make([]pdf.Object, 0, len(ops))
	for _, o := range ops {
		if _, isName := o.(pdf.Name); isName {
			continue
		}
		out = append(out, o)
	}
	return out
}
