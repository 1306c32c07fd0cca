package logic

// SensorProfile describes a supported temperature sensor part.
type SensorProfile struct {
	ID        string
	Address   uint16
	ResultReg uint8
}

// DefaultProfile is the part fitted to the reference board.
const DefaultProfile = "11X"

// Profiles lists the supported parts. Selection is explicit; nothing scans
// the bus to pick one.
var Profiles = []SensorProfile{
	{ID: "11X", Address: 0x48, ResultReg: 0x00},
	{ID: "116", Address: 0x49, ResultReg: 0x00},
	{ID: "006", Address: 0x41, ResultReg: 0x01},
}

// LookupProfile returns the profile with the given identifier.
func LookupProfile(id string) (SensorProfile, bool) {
	for _, p := range Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return SensorProfile{}, false
}
