package graphics

import (
	"fmt"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/content"
)

// setColor implements the color-setting operators. Device color spaces
// (DeviceGray/DeviceRGB/DeviceCMYK) are interpreted directly. cs/CS
// resolves the named /ColorSpace resource (ICCBased by component count,
// Separation/DeviceN by compiling their Type-4 tint-transform function)
// and records it for the matching sc/scn slot; when no space was set, or
// the space could not be resolved (Indexed, Lab, Pattern — see the Open
// Question note in DESIGN.md), sc/scn falls back to resolving the color
// purely by operand count.
func (rd *renderer) setColor(op content.Operation) error {
	gs := rd.gs.top()
	switch op.Op {
	case "g":
		c, err := grayColor(op.Operands)
		if err != nil {
			return err
		}
		gs.fillColor = c
	case "G":
		c, err := grayColor(op.Operands)
		if err != nil {
			return err
		}
		gs.strokeColor = c
	case "rg":
		c, err := rgbColor(op.Operands)
		if err != nil {
			return err
		}
		gs.fillColor = c
	case "RG":
		c, err := rgbColor(op.Operands)
		if err != nil {
			return err
		}
		gs.strokeColor = c
	case "k":
		c, err := cmykColor(op.Operands)
		if err != nil {
			return err
		}
		gs.fillColor = c
	case "K":
		c, err := cmykColor(op.Operands)
		if err != nil {
			return err
		}
		gs.strokeColor = c
	case "cs", "CS":
		if len(op.Operands) != 1 {
			return fmt.Errorf("%s expects 1 name operand", op.Op)
		}
		name, ok := op.Operands[0].(pdf.Name)
		if !ok {
			return fmt.Errorf("%s operand must be a name", op.Op)
		}
		space, err := rd.resolveColorSpaceResource(name)
		if err != nil {
			return err
		}
		if op.Op == "cs" {
			gs.fillSpace = space
		} else {
			gs.strokeSpace = space
		}
	case "sc", "scn":
		c, ok := resolveColor(gs.fillSpace, op.Operands)
		if ok {
			gs.fillColor = c
		}
	case "SC", "SCN":
		c, ok := resolveColor(gs.strokeSpace, op.Operands)
		if ok {
			gs.strokeColor = c
		}
	}
	return nil
}

// resolveColor prefers the color space recorded by a prior cs/CS (which
// may run a Separation/DeviceN tint transform); with no space recorded it
// falls back to resolving purely by operand count.
func resolveColor(space *colorSpace, ops []pdf.Object) (color, bool) {
	if space != nil {
		if c, ok := colorFromSpace(space, ops); ok {
			return c, true
		}
	}
	return colorFromComponents(ops)
}

func grayColor(ops []pdf.Object) (color, error) {
	nums, err := operandsToFloats(ops)
	if err != nil || len(nums) != 1 {
		return color{}, fmt.Errorf("expects 1 gray component")
	}
	return color{nums[0], nums[0], nums[0]}, nil
}

func rgbColor(ops []pdf.Object) (color, error) {
	nums, err := operandsToFloats(ops)
	if err != nil || len(nums) != 3 {
		return color{}, fmt.Errorf("expects 3 RGB components")
	}
	return color{nums[0], nums[1], nums[2]}, nil
}

func cmykColor(ops []pdf.Object) (color, error) {
	nums, err := operandsToFloats(ops)
	if err != nil || len(nums) != 4 {
		return color{}, fmt.Errorf("expects 4 CMYK components")
	}
	c, m, y, k := nums[0], nums[1], nums[2], nums[3]
	return color{
		r: (1 - c) * (1 - k),
		g: (1 - m) * (1 - k),
		b: (1 - y) * (1 - k),
	}, nil
}

// colorFromComponents interprets sc/scn operands by their numeric
// operand count (1=gray, 3=RGB, 4=CMYK), ignoring a trailing pattern
// name operand if present. Returns ok=false for a pattern-only operand
// list (no numeric components at all), leaving the color unchanged.
func colorFromComponents(ops []pdf.Object) (color, bool) {
	var nums []pdf.Object
	for _, o := range ops {
		if _, isName := o.(pdf.Name); isName {
			continue
		}
		nums = append(nums, o)
	}
	switch len(nums) {
	case 1:
		c, err := grayColor(nums)
		return c, err == nil
	case 3:
		c, err := rgbColor(nums)
		return c, err == nil
	case 4:
		c, err := cmykColor(nums)
		return c, err == nil
	default:
		return color{}, false
	}
}
