// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import "github.com/vorlif/spreak/localize"

// conditionIcons maps the condition part of an icon code (without the d/n suffix) to emoji for
// day and night
var conditionIcons = map[string]map[bool]string{
	"01": {true: "☀️", false: "🌙"},  // clear sky
	"02": {true: "🌤️", false: "☁️"}, // few clouds
	"03": {true: "⛅", false: "☁️"},  // scattered clouds
	"04": {true: "☁️", false: "☁️"}, // broken clouds
	"09": {true: "🌧️", false: "🌧️"}, // shower rain
	"10": {true: "🌦️", false: "🌧️"}, // rain
	"11": {true: "⛈️", false: "⛈️"}, // thunderstorm
	"13": {true: "❄️", false: "❄️"}, // snow
	"50": {true: "🌫️", false: "🌫️"}, // mist
}

const unknownConditionIcon = "❔"

var i18nVars = map[string]localize.MsgID{
	"sunday":      "Sunday",
	"monday":      "Monday",
	"tuesday":     "Tuesday",
	"wednesday":   "Wednesday",
	"thursday":    "Thursday",
	"friday":      "Friday",
	"saturday":    "Saturday",
	"low":         "Low",
	"high":        "High",
	"humidity":    "Humidity",
	"forecastfor": "Forecast for",
	"fetched":     "Fetched",
}

// ConditionIcon returns the emoji for an icon code like "10d". Codes ending in "n" are night
// icons, everything else is treated as day.
func ConditionIcon(code string) string {
	if len(code) < 2 {
		return unknownConditionIcon
	}
	icons, ok := conditionIcons[code[:2]]
	if !ok {
		return unknownConditionIcon
	}
	isDay := code[len(code)-1] != 'n'
	return icons[isDay]
}
