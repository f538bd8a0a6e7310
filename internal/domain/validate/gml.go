package validate

import (
	"strconv"
	"strings"

	"locus/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// gmlAttr describes one parameter of a GML shape: how many instances the
// shape requires and allows (maxAllowed < 0 means unbounded) and how a value
// is checked.
type gmlAttr struct {
	name        string
	minRequired int
	maxAllowed  int
	valid       func(value string) bool
}

type gmlShapeDef struct {
	shapeType string
	attrs     []gmlAttr
}

// ParsePos parses a GML "lat lon" position into an orb.Point (lon/lat order,
// per orb convention).
func ParsePos(value string) (orb.Point, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return orb.Point{}, errors.Errorf("position %q must have 2 coordinates", value)
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "position %q latitude", value)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "position %q longitude", value)
	}

	return orb.Point{lon, lat}, nil
}

// ParsePos3D parses a GML "lat lon alt" position into an orb.Point plus
// altitude in meters.
func ParsePos3D(value string) (orb.Point, float64, error) {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return orb.Point{}, 0, errors.Errorf("position %q must have 3 coordinates", value)
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return orb.Point{}, 0, errors.Wrapf(err, "position %q latitude", value)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return orb.Point{}, 0, errors.Wrapf(err, "position %q longitude", value)
	}
	alt, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return orb.Point{}, 0, errors.Wrapf(err, "position %q altitude", value)
	}

	return orb.Point{lon, lat}, alt, nil
}

func validPos(value string) bool {
	_, err := ParsePos(value)

	return err == nil
}

func validPos3D(value string) bool {
	_, _, err := ParsePos3D(value)

	return err == nil
}

func validFloat(value string) bool {
	// A trailing unit of measure is allowed: "20 radians".
	field, _, _ := strings.Cut(strings.TrimSpace(value), " ")
	_, err := strconv.ParseFloat(field, 64)

	return err == nil
}

func validUOM(value string) bool {
	return value == "degrees" || value == "radians"
}

var gmlShapeDefs = []gmlShapeDef{
	{shapeType: "Point", attrs: []gmlAttr{
		{"pos", 1, 1, validPos},
	}},
	{shapeType: "Polygon", attrs: []gmlAttr{
		{"pos", 3, -1, validPos},
	}},
	{shapeType: "Circle", attrs: []gmlAttr{
		{"pos", 1, 1, validPos},
		{"radius", 1, 1, validFloat},
	}},
	{shapeType: "Ellipse", attrs: []gmlAttr{
		{"pos", 1, 1, validPos},
		{"semiMajorAxis", 1, 1, validFloat},
		{"semiMinorAxis", 1, 1, validFloat},
		{"orientation", 1, 1, validFloat},
		{"orientation_uom", 1, 1, validUOM},
	}},
	{shapeType: "ArcBand", attrs: []gmlAttr{
		{"pos", 1, 1, validPos},
		{"innerRadius", 1, 1, validFloat},
		{"outerRadius", 1, 1, validFloat},
		{"startAngle", 1, 1, validFloat},
		{"startAngle_uom", 1, 1, validUOM},
		{"openingAngle", 1, 1, validFloat},
		{"openingAngle_uom", 1, 1, validUOM},
	}},
	{shapeType: "Sphere", attrs: []gmlAttr{
		{"pos3d", 1, 1, validPos3D},
		{"radius", 1, 1, validFloat},
	}},
	{shapeType: "Ellipsoid", attrs: []gmlAttr{
		{"pos3d", 1, 1, validPos3D},
		{"semiMajorAxis", 1, 1, validFloat},
		{"semiMinorAxis", 1, 1, validFloat},
		{"verticalAxis", 1, 1, validFloat},
		{"orientation", 1, 1, validFloat},
		{"orientation_uom", 1, 1, validUOM},
	}},
	{shapeType: "Prism", attrs: []gmlAttr{
		{"pos3d", 3, -1, validPos3D},
		{"height", 1, 1, validFloat},
	}},
}

// shapeTypeOf returns the shape-type indicator. The canonical key is
// "shape"; "type" is accepted as an alias for older configurations.
func shapeTypeOf(varlist entity.VarList) (string, bool) {
	if shape, ok := varlist.Get("shape"); ok {
		return shape, true
	}

	return varlist.Get("type")
}

func isShapeKey(name string) bool {
	return name == "shape" || name == "type" || name == "crs"
}

// deferred reports whether a value still holds an unresolved ${...}
// indirection, whose final form is only known at consumption time.
func deferred(value string) bool {
	return strings.Contains(value, "${")
}

// ValidateGML checks that a variable list describes a valid GML shape: a
// recognized shape-type indicator, no parameters foreign to that shape,
// well-formed values and per-parameter instance counts within the shape's
// bounds. Returns the result and, on failure, the offending item.
func ValidateGML(varlist entity.VarList) (Result, string) {
	shapeType, ok := shapeTypeOf(varlist)
	if !ok {
		return ResultMissingType, "shape"
	}

	var def *gmlShapeDef
	for i := range gmlShapeDefs {
		if gmlShapeDefs[i].shapeType == shapeType {
			def = &gmlShapeDefs[i]

			break
		}
	}
	if def == nil {
		return ResultInvalidType, shapeType
	}

	for _, v := range varlist {
		if isShapeKey(v.Name) {
			continue
		}

		var attr *gmlAttr
		for i := range def.attrs {
			if def.attrs[i].name == v.Name {
				attr = &def.attrs[i]

				break
			}
		}
		if attr == nil {
			return ResultInvalidVarname, v.Name
		}
		if !deferred(v.Value) && !attr.valid(v.Value) {
			return ResultInvalidValue, v.Name
		}
	}

	for _, attr := range def.attrs {
		count := 0
		for _, v := range varlist {
			if v.Name == attr.name {
				count++
			}
		}
		if count < attr.minRequired {
			return ResultNotEnoughVarnames, attr.name
		}
		if attr.maxAllowed > 0 && count > attr.maxAllowed {
			return ResultTooManyVarnames, attr.name
		}
	}

	return ResultSuccess, ""
}

// GMLError is ValidateGML with the result folded into an error.
func GMLError(varlist entity.VarList) error {
	result, item := ValidateGML(varlist)

	return resultError(result, item)
}
