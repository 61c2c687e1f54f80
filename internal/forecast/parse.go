// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package forecast

import (
	"encoding/json"
	"fmt"
)

// payload mirrors the consumed subset of the daily forecast response. Pointer fields are used to
// tell missing values apart from zero values.
type payload struct {
	List *[]day `json:"list"`
}

type day struct {
	Dt       *int64       `json:"dt"`
	Temp     *temperature `json:"temp"`
	Humidity *float64     `json:"humidity"`
	Weather  []condition  `json:"weather"`
}

type temperature struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type condition struct {
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// Parse converts a daily forecast payload into a Collection. Any missing or wrongly typed field
// aborts the whole parse; no partial result is returned.
func Parse(body []byte, f Format) (Collection, error) {
	var res payload
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if res.List == nil {
		return nil, fmt.Errorf("%w: missing list", ErrParse)
	}

	list := *res.List
	records := make(Collection, 0, len(list))
	for i, entry := range list {
		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("%w: list element %d: %s", ErrParse, i, err)
		}
		cond := entry.Weather[0]
		records = append(records, NewRecord(f, *entry.Dt, *entry.Temp.Min, *entry.Temp.Max, *entry.Humidity,
			*cond.Description, *cond.Icon))
	}

	return records, nil
}

func (d day) validate() error {
	switch {
	case d.Dt == nil:
		return fmt.Errorf("missing dt")
	case d.Temp == nil:
		return fmt.Errorf("missing temp")
	case d.Temp.Min == nil:
		return fmt.Errorf("missing temp.min")
	case d.Temp.Max == nil:
		return fmt.Errorf("missing temp.max")
	case d.Humidity == nil:
		return fmt.Errorf("missing humidity")
	case len(d.Weather) == 0:
		return fmt.Errorf("missing weather")
	case d.Weather[0].Description == nil:
		return fmt.Errorf("missing weather[0].description")
	case d.Weather[0].Icon == nil:
		return fmt.Errorf("missing weather[0].icon")
	}
	return nil
}
