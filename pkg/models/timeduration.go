package models

import (
	"time"
)

type TimeDuration time.Duration

func (d TimeDuration) String() string {
	return time.Duration(d).String()
}

func (d TimeDuration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *TimeDuration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = TimeDuration(parsed)
	return nil
}

func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *TimeDuration) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	return d.UnmarshalText(data)
}
