package series

import (
	"regexp"
	"strings"
)

var buildingNames = map[string]string{
	"5":  "البرنامج الموحد (السنة التحضيرية)",
	"33": "الهندسة",
	"34": "العلوم الطبية التطبيقية",
	"35": "إدارة الاعمال",
	"36": "العلوم والدراسات الانسانية",
	"49": "التربية",
	"54": "هندسة وعلوم الحاسب",
	"55": "الطب",
	"62": "الصيدلة",
	"63": "طب الاسنان",
}

// RoomInfo is a room string decoded from one of the registrar's encodings.
type RoomInfo struct {
	Raw          string
	Known        bool
	BuildingCode string
	BuildingName string
	Floor        string
	Wing         string
	Label        string
}

var (
	// "54-1 A 12": building-floor wing room
	dashRoom = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)\s+([A-Za-z])\s+(\d+)$`)
	// "54 2 1 A A12": building block floor wing room
	spaceRoom = regexp.MustCompile(`^(\d+)\s+(\d+)\s+(\d+)\s+([A-Za-z])\s+([A-Za-z]?\d+)$`)
)

// ParseRoom decodes raw. Unrecognized strings return Known=false.
func ParseRoom(raw string) RoomInfo {
	raw = strings.TrimSpace(raw)
	info := RoomInfo{Raw: raw}

	if m := dashRoom.FindStringSubmatch(raw); m != nil {
		wing := strings.ToUpper(m[3])
		info.Known = true
		info.BuildingCode = m[1]
		info.BuildingName = buildingNames[m[1]]
		info.Floor = m[2]
		info.Wing = wing
		info.Label = wing + m[4]
		return info
	}

	if m := spaceRoom.FindStringSubmatch(raw); m != nil {
		wing := strings.ToUpper(m[4])
		token := strings.ToUpper(m[5])
		info.Known = true
		info.BuildingCode = m[1]
		info.BuildingName = buildingNames[m[1]]
		info.Floor = m[3]
		info.Wing = wing
		if strings.HasPrefix(token, wing) {
			info.Label = token
		} else {
			info.Label = wing + token
		}
		return info
	}

	return info
}

// DisplayLocation prefers "<label> <building>" for known encodings and the
// raw string otherwise.
func (r RoomInfo) DisplayLocation() string {
	preferred := strings.TrimSpace(strings.Join(nonEmpty(r.Label, r.BuildingName), " "))
	if preferred == "" {
		return r.Raw
	}
	return preferred
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
