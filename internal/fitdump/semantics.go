package fitdump

import (
	"fmt"
	"strings"
	"time"

	"github.com/tormoder/fit"
)

type fieldSemantic struct {
	name   string
	units  string
	scaler func(decoded any) (any, bool)
}

var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// semanticsByMessage only covers the messages CourseWriter actually emits
// (file_id, lap, record, event, course, course_point, file_creator). A
// course file carries none of an activity file's session/workout/HR/power
// data, so those tables from the teacher's analytics exporter are dropped
// rather than carried along unused; any field outside this table still
// falls back to the generic field_N/raw-hex rendering in semanticForField.
var semanticsByMessage = map[uint16]map[uint8]fieldSemantic{
	0: { // file_id
		0: {name: "type"},
		1: {name: "manufacturer"},
		4: {name: "time_created", units: "s_since_fit_epoch", scaler: scaleTimestamp},
		8: {name: "product_name"},
	},
	19: { // lap
		253: {name: "timestamp", units: "s_since_fit_epoch", scaler: scaleTimestamp},
		2:   {name: "start_time", units: "s_since_fit_epoch", scaler: scaleTimestamp},
		7:   {name: "total_elapsed_time", units: "s", scaler: scaleBy(1000, 0)},
		8:   {name: "total_timer_time", units: "s", scaler: scaleBy(1000, 0)},
		9:   {name: "total_distance", units: "m", scaler: scaleBy(100, 0)},
		3:   {name: "start_position_lat", units: "semicircles"},
		4:   {name: "start_position_long", units: "semicircles"},
		5:   {name: "end_position_lat", units: "semicircles"},
		6:   {name: "end_position_long", units: "semicircles"},
	},
	20: { // record
		0:   {name: "position_lat", units: "semicircles"},
		1:   {name: "position_long", units: "semicircles"},
		5:   {name: "distance", units: "m", scaler: scaleBy(100, 0)},
		253: {name: "timestamp", units: "s_since_fit_epoch", scaler: scaleTimestamp},
	},
	21: { // event
		253: {name: "timestamp", units: "s_since_fit_epoch", scaler: scaleTimestamp},
		0:   {name: "event"},
		1:   {name: "event_type"},
		4:   {name: "event_group"},
	},
	31: { // course
		4: {name: "sport"},
		5: {name: "name"},
	},
	32: { // course_point
		1: {name: "timestamp", units: "s_since_fit_epoch", scaler: scaleTimestamp},
		2: {name: "position_lat", units: "semicircles"},
		3: {name: "position_long", units: "semicircles"},
		4: {name: "distance", units: "m", scaler: scaleBy(100, 0)},
		5: {name: "type"},
		6: {name: "name"},
	},
	49: { // file_creator
		0: {name: "software_version"},
		1: {name: "hardware_version"},
	},
}

func semanticForField(global uint16, field uint8) fieldSemantic {
	if m, ok := semanticsByMessage[global]; ok {
		if s, ok := m[field]; ok {
			return s
		}
	}
	return fieldSemantic{
		name: fmt.Sprintf("field_%d", field),
	}
}

func scaleBy(scale, offset float64) func(any) (any, bool) {
	return func(decoded any) (any, bool) {
		switch v := decoded.(type) {
		case float64:
			return (v / scale) - offset, true
		case int8:
			return (float64(v) / scale) - offset, true
		case int16:
			return (float64(v) / scale) - offset, true
		case int32:
			return (float64(v) / scale) - offset, true
		case int64:
			return (float64(v) / scale) - offset, true
		case uint8:
			return (float64(v) / scale) - offset, true
		case uint16:
			return (float64(v) / scale) - offset, true
		case uint32:
			return (float64(v) / scale) - offset, true
		case uint64:
			return (float64(v) / scale) - offset, true
		default:
			return nil, false
		}
	}
}

func scaleTimestamp(decoded any) (any, bool) {
	var raw uint32
	switch v := decoded.(type) {
	case uint32:
		raw = v
	case uint64:
		raw = uint32(v)
	default:
		return nil, false
	}
	if raw == 0xFFFFFFFF {
		return nil, false
	}
	return fitEpoch.Add(time.Duration(raw) * time.Second).UTC().Format(time.RFC3339), true
}

func invalidRuleForBase(base BaseTypeInfo) string {
	switch base.Name {
	case "enum":
		return "0xFF sentinel"
	case "sint8":
		return "0x7F sentinel"
	case "uint8":
		return "0xFF sentinel"
	case "sint16":
		return "0x7FFF sentinel"
	case "uint16":
		return "0xFFFF sentinel"
	case "sint32":
		return "0x7FFFFFFF sentinel"
	case "uint32":
		return "0xFFFFFFFF sentinel"
	case "float32":
		return "0xFFFFFFFF bit-pattern sentinel"
	case "float64":
		return "0xFFFFFFFFFFFFFFFF bit-pattern sentinel"
	case "uint8z", "uint16z", "uint32z", "uint64z":
		return "0 sentinel"
	case "byte":
		return "all bytes 0xFF sentinel"
	case "string":
		return "empty string / NUL-only"
	default:
		return "see FIT base type sentinel rules"
	}
}

func globalMessageName(global uint16) string {
	name := fmt.Sprint(fit.MesgNum(global))
	if strings.HasPrefix(name, "MesgNum(") {
		return fmt.Sprintf("global_%d", global)
	}
	return name
}
