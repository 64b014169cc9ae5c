// Package icons maps weather condition codes to card icon classes.
package icons

type Icon string

const (
	IconUndefined       Icon = ""
	IconClearDay        Icon = "clear-day"
	IconRain            Icon = "rain"
	IconThunderstorms   Icon = "thunderstorms"
	IconSnow            Icon = "snow"
	IconFog             Icon = "fog"
	IconCloudy          Icon = "cloudy"
	IconPartlyCloudyDay Icon = "partly-cloudy-day"
)

var byCode = map[int]Icon{
	1000: IconClearDay, // sunny
	3200: IconClearDay, // not available

	1063: IconRain,
	1072: IconRain,
	1150: IconRain,
	1153: IconRain,
	1168: IconRain,
	1171: IconRain,
	1180: IconRain,
	1183: IconRain,
	1186: IconRain,
	1189: IconRain,
	1192: IconRain,
	1195: IconRain,
	1198: IconRain,
	1204: IconRain,
	1207: IconRain,
	1240: IconRain,
	1243: IconRain,
	1246: IconRain,
	1252: IconRain,
	1273: IconRain,
	1276: IconRain,
	2001: IconRain,

	1087: IconThunderstorms,

	1066: IconSnow,
	1114: IconSnow,
	1117: IconSnow,
	1210: IconSnow,
	1213: IconSnow,
	1216: IconSnow,
	1219: IconSnow,
	1222: IconSnow,
	1225: IconSnow,
	1237: IconSnow,
	1255: IconSnow,
	1258: IconSnow,
	1261: IconSnow,
	1264: IconSnow,
	1279: IconSnow,
	1282: IconSnow,

	1135: IconFog,
	1147: IconFog, // dust

	1006: IconCloudy,
	1009: IconCloudy,
	1030: IconCloudy,

	1003: IconPartlyCloudyDay,
}

// Classify returns the icon class for a condition code, or IconUndefined for
// codes it does not know. Callers add no icon class for IconUndefined.
func Classify(code int) Icon {
	return byCode[code]
}

// Defined reports whether i names an icon class.
func (i Icon) Defined() bool {
	return i != IconUndefined
}
