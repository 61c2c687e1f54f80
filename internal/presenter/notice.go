// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"errors"

	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/daily-forecast/internal/forecast"
)

// Notice is a transient user notice for a failed forecast request.
type Notice int

const (
	NoticeInvalidURL Notice = iota + 1
	NoticeConnection
	NoticeHTTPStatus
	NoticeRead
)

var noticeMessages = map[Notice]localize.MsgID{
	NoticeInvalidURL: "Invalid location, unable to build a request URL",
	NoticeConnection: "Unable to connect to the weather service",
	NoticeHTTPStatus: "The weather service returned an error",
	NoticeRead:       "Unable to read the weather service response",
}

// String returns the untranslated notice message
func (n Notice) String() string {
	if msg, ok := noticeMessages[n]; ok {
		return string(msg)
	}
	return "unknown notice"
}

// NoticeFor maps a forecast error to the notice shown to the user. Parse failures and unknown
// errors have no notice and return false.
func NoticeFor(err error) (Notice, bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, forecast.ErrInvalidURL):
		return NoticeInvalidURL, true
	case errors.Is(err, forecast.ErrHTTPStatus):
		return NoticeHTTPStatus, true
	case errors.Is(err, forecast.ErrRead):
		return NoticeRead, true
	case errors.Is(err, forecast.ErrConnection):
		return NoticeConnection, true
	default:
		return 0, false
	}
}
