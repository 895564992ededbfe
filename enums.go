package coursepointer

import "github.com/lucasjlepore/coursepointer/pointtype"

// Sport is the FIT profile sport enum, restricted to the values the
// original course-file contract actually exercises. Values match the
// vendor's public profile numeric codes.
type Sport uint8

const (
	SportGeneric            Sport = 0
	SportRunning            Sport = 1
	SportCycling            Sport = 2
	SportTransition         Sport = 3
	SportFitnessEquipment   Sport = 4
	SportSwimming           Sport = 5
	SportBasketball         Sport = 6
	SportSoccer             Sport = 7
	SportTennis             Sport = 8
	SportAmericanFootball   Sport = 9
	SportTraining           Sport = 10
	SportWalking            Sport = 11
	SportCrossCountrySkiing Sport = 12
	SportAlpineSkiing       Sport = 13
	SportSnowboarding       Sport = 14
	SportRowing             Sport = 15
	SportMountaineering     Sport = 16
	SportHiking             Sport = 17
	SportMultisport         Sport = 18
	SportPaddling           Sport = 19
	SportFlying             Sport = 20
	SportEBiking            Sport = 21
	SportMotorcycling       Sport = 22
	SportBoating            Sport = 23
	SportDriving            Sport = 24
	SportGolf               Sport = 25
	SportHangGliding        Sport = 26
	SportHorsebackRiding    Sport = 27
	SportHunting            Sport = 28
	SportFishing            Sport = 29
	SportInlineSkating      Sport = 30
	SportRockClimbing       Sport = 31
	SportSailing            Sport = 32
	SportIceSkating         Sport = 33
	SportSkyDiving          Sport = 34
	SportSnowshoeing        Sport = 35
	SportSnowmobiling       Sport = 36
)

var sportNames = map[Sport]string{
	SportGeneric: "generic", SportRunning: "running", SportCycling: "cycling",
	SportTransition: "transition", SportFitnessEquipment: "fitness_equipment",
	SportSwimming: "swimming", SportBasketball: "basketball", SportSoccer: "soccer",
	SportTennis: "tennis", SportAmericanFootball: "american_football",
	SportTraining: "training", SportWalking: "walking",
	SportCrossCountrySkiing: "cross_country_skiing", SportAlpineSkiing: "alpine_skiing",
	SportSnowboarding: "snowboarding", SportRowing: "rowing",
	SportMountaineering: "mountaineering", SportHiking: "hiking",
	SportMultisport: "multisport", SportPaddling: "paddling", SportFlying: "flying",
	SportEBiking: "e_biking", SportMotorcycling: "motorcycling", SportBoating: "boating",
	SportDriving: "driving", SportGolf: "golf", SportHangGliding: "hang_gliding",
	SportHorsebackRiding: "horseback_riding", SportHunting: "hunting", SportFishing: "fishing",
	SportInlineSkating: "inline_skating", SportRockClimbing: "rock_climbing",
	SportSailing: "sailing", SportIceSkating: "ice_skating", SportSkyDiving: "sky_diving",
	SportSnowshoeing: "snowshoeing", SportSnowmobiling: "snowmobiling",
}

func (s Sport) String() string {
	if n, ok := sportNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseSport resolves a case-insensitive sport name to its enum value,
// defaulting to SportGeneric when unrecognized. Names use the same
// snake_case spelling as the FIT profile.
func ParseSport(name string) Sport {
	lname := toSnakeLower(name)
	for s, n := range sportNames {
		if n == lname {
			return s
		}
	}
	return SportGeneric
}

func toSnakeLower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		if r == '-' || r == ' ' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

// CoursePointType is the closed enumeration of course-point type codes
// from the vendor's public profile; it is owned by the pointtype package
// and re-exported here so the assembler and encoder can use it without
// importing pointtype directly in every file.
type CoursePointType = pointtype.CoursePointType

// Re-exported course-point type constants, kept in the same order as the
// vendor's public profile.
const (
	CoursePointGeneric         = pointtype.Generic
	CoursePointSummit          = pointtype.Summit
	CoursePointValley          = pointtype.Valley
	CoursePointWater           = pointtype.Water
	CoursePointFood            = pointtype.Food
	CoursePointDanger          = pointtype.Danger
	CoursePointLeft            = pointtype.Left
	CoursePointRight           = pointtype.Right
	CoursePointStraight        = pointtype.Straight
	CoursePointFirstAid        = pointtype.FirstAid
	CoursePointFourthCategory  = pointtype.FourthCategory
	CoursePointThirdCategory   = pointtype.ThirdCategory
	CoursePointSecondCategory  = pointtype.SecondCategory
	CoursePointFirstCategory   = pointtype.FirstCategory
	CoursePointHorsCategory    = pointtype.HorsCategory
	CoursePointSprint          = pointtype.Sprint
	CoursePointLeftFork        = pointtype.LeftFork
	CoursePointRightFork       = pointtype.RightFork
	CoursePointMiddleFork      = pointtype.MiddleFork
	CoursePointSlightLeft      = pointtype.SlightLeft
	CoursePointSharpLeft       = pointtype.SharpLeft
	CoursePointSlightRight     = pointtype.SlightRight
	CoursePointSharpRight      = pointtype.SharpRight
	CoursePointUTurn           = pointtype.UTurn
	CoursePointSegmentStart    = pointtype.SegmentStart
	CoursePointSegmentEnd      = pointtype.SegmentEnd
	CoursePointCampsite        = pointtype.Campsite
	CoursePointAidStation      = pointtype.AidStation
	CoursePointRestArea        = pointtype.RestArea
	CoursePointGeneralDistance = pointtype.GeneralDistance
	CoursePointService         = pointtype.Service
	CoursePointEnergyGel       = pointtype.EnergyGel
	CoursePointSportsDrink     = pointtype.SportsDrink
	CoursePointMileMarker      = pointtype.MileMarker
	CoursePointCheckpoint      = pointtype.Checkpoint
	CoursePointShelter         = pointtype.Shelter
	CoursePointMeetingSpot     = pointtype.MeetingSpot
	CoursePointOverlook        = pointtype.Overlook
	CoursePointToilet          = pointtype.Toilet
	CoursePointShower          = pointtype.Shower
	CoursePointGear            = pointtype.Gear
	CoursePointSharpCurve      = pointtype.SharpCurve
	CoursePointSteepIncline    = pointtype.SteepIncline
	CoursePointTunnel          = pointtype.Tunnel
	CoursePointBridge          = pointtype.Bridge
	CoursePointObstacle        = pointtype.Obstacle
	CoursePointCrossing        = pointtype.Crossing
	CoursePointStore           = pointtype.Store
	CoursePointTransition      = pointtype.Transition
	CoursePointNavaid          = pointtype.Navaid
	CoursePointTransport       = pointtype.Transport
	CoursePointAlert           = pointtype.Alert
	CoursePointInfo            = pointtype.Info
)
