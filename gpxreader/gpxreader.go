// Package gpxreader streams the track points, route points, and
// waypoints out of a GPX document without buffering it in memory. It
// treats tracks and routes synonymously, except that a track may also
// carry segments.
package gpxreader

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucasjlepore/coursepointer"
)

// ItemKind identifies which field of an Item is populated.
type ItemKind int

const (
	// ItemTrackOrRoute marks the start of a track or route. Subsequent
	// ItemTrackOrRouteName, ItemTrackSegment, and ItemTrackOrRoutePoint
	// items belong to it, until the next ItemTrackOrRoute.
	ItemTrackOrRoute ItemKind = iota
	// ItemTrackOrRouteName carries the name of the enclosing track or route.
	ItemTrackOrRouteName
	// ItemTrackSegment marks the start of a track segment. Subsequent
	// ItemTrackOrRoutePoint items belong to it until the next
	// ItemTrackSegment or ItemTrackOrRoute.
	ItemTrackSegment
	// ItemTrackOrRoutePoint is one point along a track segment or route,
	// emitted in document order.
	ItemTrackOrRoutePoint
	// ItemWaypoint is a standalone waypoint, not associated with any
	// track or route.
	ItemWaypoint
)

// Item is one unit of parsed GPX content.
type Item struct {
	Kind     ItemKind
	Name     string
	Point    coursepointer.GeoPoint
	Waypoint coursepointer.Waypoint
}

// gaiaCreatorAttr and rideWithGPSCreatorAttr are the exact values GPX
// producers write into the root element's creator attribute. Anything
// else maps to coursepointer.CreatorUnknown.
const (
	gaiaCreatorAttr       = "GaiaGPS"
	rideWithGPSCreatorAttr = "http://ridewithgps.com/"
)

func creatorHintFromAttr(creator string) coursepointer.CreatorHint {
	switch creator {
	case gaiaCreatorAttr:
		return coursepointer.CreatorGaia
	case rideWithGPSCreatorAttr:
		return coursepointer.CreatorRideWithGPS
	default:
		return coursepointer.CreatorUnknown
	}
}

// tag is a recognized element name along the GPX schema path this reader
// cares about; anything else is tagUnknown and only affects depth
// tracking.
type tag int

const (
	tagUnknown tag = iota
	tagGpx
	tagTrk
	tagName
	tagTrkseg
	tagTrkpt
	tagRte
	tagRtept
	tagEle
	tagWpt
	tagCmt
	tagSym
	tagType
)

func getTag(local string) tag {
	switch local {
	case "gpx":
		return tagGpx
	case "trk":
		return tagTrk
	case "trkseg":
		return tagTrkseg
	case "trkpt":
		return tagTrkpt
	case "rte":
		return tagRte
	case "rtept":
		return tagRtept
	case "ele":
		return tagEle
	case "name":
		return tagName
	case "wpt":
		return tagWpt
	case "cmt":
		return tagCmt
	case "sym":
		return tagSym
	case "type":
		return tagType
	default:
		return tagUnknown
	}
}

// nextPtFields accumulates the attributes and child text of whichever
// trkpt/rtept/wpt element is currently open.
type nextPtFields struct {
	name       string
	hasName    bool
	cmt        string
	sym        string
	typ        string
	hasLat     bool
	hasLon     bool
	lat, lon   float64
	hasEle     bool
	ele        float64
}

func (f *nextPtFields) reset() { *f = nextPtFields{} }

func (f nextPtFields) toGeoPoint() (coursepointer.GeoPoint, error) {
	if !f.hasLat {
		return coursepointer.GeoPoint{}, fmt.Errorf("gpx: trackpoint missing lat attribute")
	}
	if !f.hasLon {
		return coursepointer.GeoPoint{}, fmt.Errorf("gpx: trackpoint missing lon attribute")
	}
	if f.hasEle {
		return coursepointer.NewGeoPointWithElevation(f.lat, f.lon, f.ele)
	}
	return coursepointer.NewGeoPoint(f.lat, f.lon)
}

func (f nextPtFields) toWaypoint(creator coursepointer.CreatorHint) (coursepointer.Waypoint, error) {
	if !f.hasLat {
		return coursepointer.Waypoint{}, fmt.Errorf("gpx: waypoint missing lat attribute")
	}
	if !f.hasLon {
		return coursepointer.Waypoint{}, fmt.Errorf("gpx: waypoint missing lon attribute")
	}
	if !f.hasName {
		return coursepointer.Waypoint{}, fmt.Errorf("gpx: waypoint missing name")
	}
	point, err := coursepointer.NewGeoPoint(f.lat, f.lon)
	if err != nil {
		return coursepointer.Waypoint{}, err
	}
	return coursepointer.Waypoint{
		Point:   point,
		Name:    f.name,
		Symbol:  f.sym,
		GpxType: f.typ,
		Creator: creator,
	}, nil
}

// Reader streams Items out of a GPX document. Construct with NewReader
// and call Next in a loop until it returns io.EOF.
type Reader struct {
	dec     *xml.Decoder
	tagPath []tag
	pt      nextPtFields
	creator coursepointer.CreatorHint
	started bool
}

// NewReader wraps r as a streaming GPX reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// Next returns the next Item, or io.EOF once the document is exhausted.
func (gr *Reader) Next() (Item, error) {
	for {
		tok, err := gr.dec.Token()
		if err == io.EOF {
			return Item{}, io.EOF
		}
		if err != nil {
			return Item{}, fmt.Errorf("gpx: reading token: %w", err)
		}

		switch elt := tok.(type) {
		case xml.StartElement:
			t := getTag(elt.Name.Local)
			gr.tagPath = append(gr.tagPath, t)

			if !gr.started && t == tagGpx {
				gr.started = true
				gr.creator = creatorHintFromAttr(attrValue(elt.Attr, "creator"))
			}

			switch {
			case pathEquals(gr.tagPath, tagGpx, tagTrk):
				return Item{Kind: ItemTrackOrRoute}, nil
			case pathEquals(gr.tagPath, tagGpx, tagRte):
				return Item{Kind: ItemTrackOrRoute}, nil
			case pathEquals(gr.tagPath, tagGpx, tagTrk, tagTrkseg):
				return Item{Kind: ItemTrackSegment}, nil
			case pathEquals(gr.tagPath, tagGpx, tagTrk, tagTrkseg, tagTrkpt),
				pathEquals(gr.tagPath, tagGpx, tagRte, tagRtept),
				pathEquals(gr.tagPath, tagGpx, tagWpt):
				lat, hasLat, err := parseFloatAttr(elt.Attr, "lat")
				if err != nil {
					return Item{}, err
				}
				lon, hasLon, err := parseFloatAttr(elt.Attr, "lon")
				if err != nil {
					return Item{}, err
				}
				gr.pt.hasLat, gr.pt.lat = hasLat, lat
				gr.pt.hasLon, gr.pt.lon = hasLon, lon
			}

		case xml.CharData:
			text := strings.TrimSpace(string(elt))
			if text == "" {
				break
			}
			switch {
			case pathEquals(gr.tagPath, tagGpx, tagTrk, tagName),
				pathEquals(gr.tagPath, tagGpx, tagRte, tagName):
				return Item{Kind: ItemTrackOrRouteName, Name: text}, nil

			case pathEquals(gr.tagPath, tagGpx, tagTrk, tagTrkseg, tagTrkpt, tagEle),
				pathEquals(gr.tagPath, tagGpx, tagRte, tagRtept, tagEle),
				pathEquals(gr.tagPath, tagGpx, tagWpt, tagEle):
				ele, err := strconv.ParseFloat(text, 64)
				if err != nil {
					return Item{}, fmt.Errorf("gpx: parsing elevation: %w", err)
				}
				gr.pt.hasEle, gr.pt.ele = true, ele

			case pathEquals(gr.tagPath, tagGpx, tagWpt, tagName):
				gr.pt.hasName, gr.pt.name = true, text
			case pathEquals(gr.tagPath, tagGpx, tagWpt, tagCmt):
				gr.pt.cmt = text
			case pathEquals(gr.tagPath, tagGpx, tagWpt, tagSym):
				gr.pt.sym = text
			case pathEquals(gr.tagPath, tagGpx, tagWpt, tagType):
				gr.pt.typ = text
			}

		case xml.EndElement:
			path := gr.tagPath
			if len(gr.tagPath) > 0 {
				gr.tagPath = gr.tagPath[:len(gr.tagPath)-1]
			}

			switch {
			case pathEquals(path, tagGpx, tagTrk, tagTrkseg, tagTrkpt),
				pathEquals(path, tagGpx, tagRte, tagRtept):
				p, err := gr.pt.toGeoPoint()
				gr.pt.reset()
				if err != nil {
					return Item{}, err
				}
				return Item{Kind: ItemTrackOrRoutePoint, Point: p}, nil

			case pathEquals(path, tagGpx, tagWpt):
				w, err := gr.pt.toWaypoint(gr.creator)
				gr.pt.reset()
				if err != nil {
					return Item{}, err
				}
				return Item{Kind: ItemWaypoint, Waypoint: w}, nil
			}
		}
	}
}

// ReadAll drains a Reader into its constituent route points and
// waypoints, concatenating every track/route's points into a single
// ordered sequence (courses built from multi-track GPX files treat
// every track/route as one continuous route, in document order).
func ReadAll(r io.Reader) (routeName string, points []coursepointer.GeoPoint, waypoints []coursepointer.Waypoint, err error) {
	gr := NewReader(r)
	for {
		item, err := gr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, nil, err
		}
		switch item.Kind {
		case ItemTrackOrRouteName:
			if routeName == "" {
				routeName = item.Name
			}
		case ItemTrackOrRoutePoint:
			points = append(points, item.Point)
		case ItemWaypoint:
			waypoints = append(waypoints, item.Waypoint)
		}
	}
	return routeName, points, waypoints, nil
}

func pathEquals(path []tag, want ...tag) bool {
	if len(path) != len(want) {
		return false
	}
	for i, t := range want {
		if path[i] != t {
			return false
		}
	}
	return true
}

func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func parseFloatAttr(attrs []xml.Attr, local string) (float64, bool, error) {
	for _, a := range attrs {
		if a.Name.Local == local {
			v, err := strconv.ParseFloat(a.Value, 64)
			if err != nil {
				return 0, false, fmt.Errorf("gpx: parsing %s attribute: %w", local, err)
			}
			return v, true, nil
		}
	}
	return 0, false, nil
}
