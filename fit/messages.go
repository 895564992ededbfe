package fit

// BaseType is a FIT profile base type byte. Values below follow the
// vendor's public base type table exactly.
type BaseType uint8

const (
	BaseEnum   BaseType = 0
	BaseUint8  BaseType = 2
	BaseSint32 BaseType = 133
	BaseUint16 BaseType = 132
	BaseUint32 BaseType = 134
	BaseString BaseType = 7
)

// GlobalMessage is a FIT profile global message number.
type GlobalMessage uint16

const (
	MesgFileId      GlobalMessage = 0
	MesgLap         GlobalMessage = 19
	MesgRecord      GlobalMessage = 20
	MesgEvent       GlobalMessage = 21
	MesgCourse      GlobalMessage = 31
	MesgCoursePoint GlobalMessage = 32
	MesgFileCreator GlobalMessage = 49
)

// FieldDef is one field_definition_number/size/base_type triple, as
// written verbatim into a definition record.
type FieldDef struct {
	Num  uint8
	Size uint8
	Base BaseType
}

var fileIdFields = []FieldDef{
	{Num: 0, Size: 1, Base: BaseEnum},   // type
	{Num: 1, Size: 2, Base: BaseUint16}, // manufacturer
	{Num: 4, Size: 4, Base: BaseUint32}, // time_created
	{Num: 8, Size: 14, Base: BaseString}, // product_name
}

var courseFields = []FieldDef{
	{Num: 5, Size: 15, Base: BaseString}, // name
	{Num: 4, Size: 1, Base: BaseEnum},    // sport
}

var lapFields = []FieldDef{
	{Num: 2, Size: 4, Base: BaseUint32}, // start_time
	{Num: 253, Size: 4, Base: BaseUint32}, // timestamp
	{Num: 7, Size: 4, Base: BaseUint32}, // total_elapsed_time
	{Num: 8, Size: 4, Base: BaseUint32}, // total_timer_time
	{Num: 9, Size: 4, Base: BaseUint32}, // total_distance
	{Num: 3, Size: 4, Base: BaseSint32}, // start_position_lat
	{Num: 4, Size: 4, Base: BaseSint32}, // start_position_long
	{Num: 5, Size: 4, Base: BaseSint32}, // end_position_lat
	{Num: 6, Size: 4, Base: BaseSint32}, // end_position_long
}

var eventFields = []FieldDef{
	{Num: 253, Size: 4, Base: BaseUint32}, // timestamp
	{Num: 0, Size: 1, Base: BaseEnum},     // event
	{Num: 4, Size: 1, Base: BaseUint8},    // event_group
	{Num: 1, Size: 1, Base: BaseEnum},     // event_type
}

var recordFields = []FieldDef{
	{Num: 0, Size: 4, Base: BaseSint32},  // position_lat
	{Num: 1, Size: 4, Base: BaseSint32},  // position_long
	{Num: 5, Size: 4, Base: BaseUint32},  // distance
	{Num: 253, Size: 4, Base: BaseUint32}, // timestamp
}

var coursePointFields = []FieldDef{
	{Num: 1, Size: 4, Base: BaseUint32},  // timestamp
	{Num: 2, Size: 4, Base: BaseSint32},  // position_lat
	{Num: 3, Size: 4, Base: BaseSint32},  // position_long
	{Num: 4, Size: 4, Base: BaseUint32},  // distance
	{Num: 5, Size: 1, Base: BaseEnum},    // type
	{Num: 6, Size: 16, Base: BaseString}, // name
}

var fileCreatorFields = []FieldDef{
	{Num: 0, Size: 2, Base: BaseUint16}, // software_version
	{Num: 1, Size: 1, Base: BaseUint8},  // hardware_version
}

// EventCode is a FIT profile event enum value. Only the timer event is
// exercised by a course file.
const EventTimer uint8 = 0

// EventType is a FIT profile event_type enum value.
const (
	EventTypeStart uint8 = 0
	EventTypeStop  uint8 = 4
)

// FileTypeCourse is the file_id.type enum value for a course file.
const FileTypeCourse uint8 = 6

// GarminManufacturer is the file_id.manufacturer enum value for "garmin",
// used as a conservative, widely-accepted default.
const GarminManufacturer uint16 = 1

func definitionMessageSize(fields []FieldDef) int {
	return 6 + 3*len(fields)
}

func dataMessageSize(fields []FieldDef) int {
	total := 1
	for _, f := range fields {
		total += int(f.Size)
	}
	return total
}
