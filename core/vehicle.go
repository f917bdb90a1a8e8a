package core

import (
	"path/filepath"
	"strings"
)

// Vehicle is the canonical (Korean) model name a manual belongs to.
type Vehicle string

// VehicleUnknown is assigned to manuals whose file name matches no known model.
const VehicleUnknown Vehicle = "unknown"

type vehicleEntry struct {
	name    Vehicle
	code    string   // Upper-case code used by API clients
	aliases []string // Lower-case substrings matched against file names
}

// Order matters: the first entry whose alias matches wins.
var vehicleTable = []vehicleEntry{
	{name: "그랜저", code: "GRANDEUR", aliases: []string{"그랜저", "granjer", "granzer", "grandeur"}},
	{name: "싼타페", code: "SANTAFE", aliases: []string{"싼타페", "santafe", "santa fe", "santa"}},
	{name: "쏘나타", code: "SONATA", aliases: []string{"쏘나타", "sonata"}},
	{name: "아반떼", code: "AVANTE", aliases: []string{"아반떼", "avante", "elantra"}},
	{name: "코나", code: "KONA", aliases: []string{"코나", "kona"}},
	{name: "투싼", code: "TUCSON", aliases: []string{"투싼", "tucson"}},
	{name: "펠리세이드", code: "PALISADE", aliases: []string{"펠리세이드", "팰리세이드", "palisade"}},
}

// ClassifyVehicle derives the vehicle model from a manual's file name.
func ClassifyVehicle(fileName string) Vehicle {
	name := strings.ToLower(fileName)
	for _, entry := range vehicleTable {
		for _, alias := range entry.aliases {
			if strings.Contains(name, alias) {
				return entry.name
			}
		}
	}
	return VehicleUnknown
}

// VehicleByCode resolves a client code (e.g. "SANTAFE") or a canonical name.
// The second return value is false when nothing matches.
func VehicleByCode(code string) (Vehicle, bool) {
	trimmed := strings.TrimSpace(code)
	upper := strings.ToUpper(trimmed)
	for _, entry := range vehicleTable {
		if entry.code == upper || string(entry.name) == trimmed {
			return entry.name, true
		}
	}
	return "", false
}

// Code returns the client code for a known vehicle, or "" otherwise.
func (v Vehicle) Code() string {
	for _, entry := range vehicleTable {
		if entry.name == v {
			return entry.code
		}
	}
	return ""
}

// KnownVehicles lists every canonical vehicle name in table order.
func KnownVehicles() []Vehicle {
	out := make([]Vehicle, len(vehicleTable))
	for i, entry := range vehicleTable {
		out[i] = entry.name
	}
	return out
}

// DocumentID derives a stable document identifier from a file name: the
// vehicle code when the name classifies, otherwise the lower-cased file stem.
func DocumentID(fileName string) string {
	if code := ClassifyVehicle(fileName).Code(); code != "" {
		return strings.ToLower(code)
	}
	base := filepath.Base(fileName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.TrimSpace(stem))
}
