package gpxreader

import (
	"io"
	"strings"
	"testing"

	"github.com/lucasjlepore/coursepointer"
)

func TestReadAllTrackpoints(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <trk>
    <trkseg>
      <trkpt lat="37.1" lon="-122.1"></trkpt>
      <trkpt lat="37.2" lon="-122.2"></trkpt>
    </trkseg>
  </trk>
</gpx>`
	_, points, waypoints, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if len(waypoints) != 0 {
		t.Fatalf("len(waypoints) = %d, want 0", len(waypoints))
	}
	if float64(points[0].LatDeg) != 37.1 || float64(points[0].LonDeg) != -122.1 {
		t.Fatalf("points[0] = %+v, want (37.1, -122.1)", points[0])
	}
}

func TestReadAllRoutepoints(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="http://ridewithgps.com/">
  <rte>
    <rtept lat="10" lon="20"></rtept>
    <rtept lat="11" lon="21"></rtept>
    <rtept lat="12" lon="22"></rtept>
  </rte>
</gpx>`
	_, points, _, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}
}

func TestReadAllTrackpointsWithElevation(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <trk>
    <trkseg>
      <trkpt lat="37.1" lon="-122.1"><ele>123.4</ele></trkpt>
    </trkseg>
  </trk>
</gpx>`
	_, points, _, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(points))
	}
	if !points[0].HasElevation() {
		t.Fatal("expected elevation to be set")
	}
	if float64(points[0].ElevM) != 123.4 {
		t.Fatalf("ElevM = %v, want 123.4", points[0].ElevM)
	}
}

func TestReadAllRoutepointsWithElevation(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="http://ridewithgps.com/">
  <rte>
    <rtept lat="10" lon="20"><ele>5</ele></rtept>
  </rte>
</gpx>`
	_, points, _, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(points) != 1 || !points[0].HasElevation() {
		t.Fatalf("expected one elevated point, got %+v", points)
	}
}

func TestReadAllInvalidTrackpointMissingLon(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <trk>
    <trkseg>
      <trkpt lat="37.1"></trkpt>
    </trkseg>
  </trk>
</gpx>`
	_, _, _, err := ReadAll(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected an error for a trackpoint missing lon")
	}
}

func TestReadAllTrackName(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <trk>
    <name>Morning Loop</name>
    <trkseg>
      <trkpt lat="1" lon="1"></trkpt>
    </trkseg>
  </trk>
</gpx>`
	name, _, _, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if name != "Morning Loop" {
		t.Fatalf("routeName = %q, want %q", name, "Morning Loop")
	}
}

func TestReadAllTrackWithMultipleSegments(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <trk>
    <trkseg>
      <trkpt lat="1" lon="1"></trkpt>
      <trkpt lat="2" lon="2"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="3" lon="3"></trkpt>
    </trkseg>
  </trk>
</gpx>`
	_, points, _, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3 (segments concatenated in document order)", len(points))
	}
}

func TestReadAllWaypoints(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <wpt lat="37.5" lon="-122.3">
    <name>Water Stop</name>
    <sym>Drinking Water</sym>
  </wpt>
  <wpt lat="37.6" lon="-122.4">
    <name>Summit</name>
    <sym>Peak</sym>
  </wpt>
</gpx>`
	_, _, waypoints, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(waypoints) != 2 {
		t.Fatalf("len(waypoints) = %d, want 2", len(waypoints))
	}
	if waypoints[0].Name != "Water Stop" || waypoints[0].Symbol != "Drinking Water" {
		t.Fatalf("waypoints[0] = %+v", waypoints[0])
	}
	if waypoints[0].Creator != coursepointer.CreatorGaia {
		t.Fatalf("waypoints[0].Creator = %v, want CreatorGaia", waypoints[0].Creator)
	}
}

func TestReadAllWaypointMissingNameIsAnError(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="GaiaGPS">
  <wpt lat="37.5" lon="-122.3"></wpt>
</gpx>`
	_, _, _, err := ReadAll(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected an error for a nameless waypoint")
	}
}

func TestCreatorHintUnrecognizedIsUnknown(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx creator="SomeOtherApp">
  <wpt lat="1" lon="1">
    <name>X</name>
  </wpt>
</gpx>`
	_, _, waypoints, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if waypoints[0].Creator != coursepointer.CreatorUnknown {
		t.Fatalf("Creator = %v, want CreatorUnknown", waypoints[0].Creator)
	}
}

func TestReaderNextReturnsEOFAtEndOfDocument(t *testing.T) {
	r := NewReader(strings.NewReader(`<gpx></gpx>`))
	for i := 0; i < 10; i++ {
		_, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	t.Fatal("expected io.EOF within 10 tokens for an empty document")
}
