package material

import "sort"

// Medium describes the sound propagation medium between surfaces.
type Medium struct {
	Name        string
	Speed       float32 // speed of sound, m/s
	Density     float32 // kg/m³
	Impedance   float32 // Rayl
	Attenuation float32 // absorption coefficient, dB/m/kHz
}

var media = map[string]Medium{
	"air": {
		Name:        "Air (20°C)",
		Speed:       343.0,
		Density:     1.204,
		Impedance:   413.0,
		Attenuation: 0.0012,
	},
	"water": {
		Name:        "Water (20°C)",
		Speed:       1482.0,
		Density:     998.0,
		Impedance:   1.48e6,
		Attenuation: 0.0003,
	},
	"glass": {
		Name:        "Glass",
		Speed:       5640.0,
		Density:     2500.0,
		Impedance:   1.41e7,
		Attenuation: 0.0001,
	},
	"earth": {
		Name:        "Earth (soil)",
		Speed:       1800.0,
		Density:     1600.0,
		Impedance:   2.88e6,
		Attenuation: 0.05,
	},
}

// Air is the default propagation medium.
func Air() Medium {
	return media["air"]
}

// GetMedium resolves a medium by name, falling back to air.
func GetMedium(name string) Medium {
	if m, ok := media[keyOf(name)]; ok {
		return m
	}
	return media["air"]
}

// MediumNames returns the known medium names.
func MediumNames() []string {
	names := make([]string, 0, len(media))
	for name := range media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
