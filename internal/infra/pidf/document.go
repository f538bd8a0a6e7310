// Package pidf parses PIDF-LO presence documents (RFC 4119, RFC 5491) into
// the variable lists the effective profile builder consumes. Namespace
// prefixes in the incoming document are irrelevant; matching is on local
// element names.
package pidf

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/pkg/errors"

	"locus/internal/domain/entity"
)

// node is a generic XML element tree. encoding/xml fills Children in
// document order, which keeps location parameter ordering intact.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}

	return ""
}

func (n *node) text() string {
	return strings.TrimSpace(n.Content)
}

// child returns the first direct child with the given local name.
func (n *node) child(local string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}

	return nil
}

// find returns the first descendant with the given local name, depth first
// in document order.
func (n *node) find(local string) *node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local {
			return c
		}
		if found := c.find(local); found != nil {
			return found
		}
	}

	return nil
}

// Document is a parsed PIDF-LO presence document.
type Document struct {
	presence node
}

// Parse reads a PIDF-LO document. The root element must be presence.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc.presence); err != nil {
		return nil, errors.Wrap(err, "parse pidf document")
	}
	if doc.presence.XMLName.Local != "presence" {
		return nil, errors.Errorf("root element is %q, expected presence", doc.presence.XMLName.Local)
	}

	return doc, nil
}

// Entity returns the presence entity attribute.
func (d *Document) Entity() string {
	return d.presence.attr("entity")
}

// Location is the location content extracted from one presence sub-element.
type Location struct {
	ID           string
	Element      entity.PIDFElement
	Format       entity.Format
	LocationInfo entity.VarList
	UsageRules   entity.VarList
	Method       string
	Notes        string
}

var gmlShapeNames = map[string]struct{}{
	"Point": {}, "Polygon": {}, "Circle": {}, "Ellipse": {},
	"ArcBand": {}, "Sphere": {}, "Ellipsoid": {}, "Prism": {},
}

// FindLocation extracts the highest priority location from the document.
// Per RFC 5491 rule 8, the first device element containing a location wins,
// then the first tuple, then the first person.
func (d *Document) FindLocation() (*Location, error) {
	for _, elem := range []entity.PIDFElement{
		entity.PIDFElementDevice,
		entity.PIDFElementTuple,
		entity.PIDFElementPerson,
	} {
		for i := range d.presence.Children {
			c := &d.presence.Children[i]
			if !strings.EqualFold(c.XMLName.Local, elem.String()) {
				continue
			}

			locInfo := c.find("location-info")
			if locInfo == nil {
				continue
			}

			return d.extractLocation(c, elem, locInfo)
		}
	}

	return nil, errors.New("document carries no location-info")
}

func (d *Document) extractLocation(container *node, elem entity.PIDFElement, locInfo *node) (*Location, error) {
	if len(locInfo.Children) == 0 {
		return nil, errors.New("location-info element is empty")
	}
	shape := &locInfo.Children[0]

	loc := &Location{
		ID:      container.attr("id"),
		Element: elem,
	}
	if loc.ID == "" {
		loc.ID = d.Entity()
	}

	switch {
	case shape.XMLName.Local == "civicAddress":
		loc.Format = entity.FormatCivicAddress
		loc.LocationInfo.Append("lang", shape.attr("lang"))
	default:
		if _, ok := gmlShapeNames[shape.XMLName.Local]; !ok {
			return nil, errors.Errorf("unknown location-info content %q", shape.XMLName.Local)
		}
		loc.Format = entity.FormatGML
		loc.LocationInfo.Append("shape", shape.XMLName.Local)
		loc.LocationInfo.Append("crs", shape.attr("srsName"))
	}

	loc.LocationInfo = append(loc.LocationInfo, varListFromNode(shape)...)

	geopriv := container.find("geopriv")
	if geopriv == nil {
		geopriv = container
	}
	if rules := geopriv.find("usage-rules"); rules != nil {
		loc.UsageRules = varListFromNode(rules)
	}
	if method := geopriv.find("method"); method != nil {
		loc.Method = method.text()
	}
	if notes := geopriv.find("note-well"); notes != nil {
		loc.Notes = notes.text()
	}

	return loc, nil
}

// varListFromNode converts an element's direct children into name/value
// pairs. A uom attribute is folded into the value ("20 radians") so the
// unit survives flat serialization.
func varListFromNode(n *node) entity.VarList {
	var list entity.VarList
	for i := range n.Children {
		c := &n.Children[i]
		value := c.text()
		if uom := c.attr("uom"); uom != "" {
			value = value + " " + uom
		}
		list.Append(c.XMLName.Local, value)
	}

	return list
}
