package ragbot

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Time wraps time.Time so it can travel through database/sql in a single
// format regardless of the driver.
type Time struct {
	T time.Time
}

func (t Time) Value() (driver.Value, error) {
	return t.T, nil
}

func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.T = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.T = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Time", src)
	}
}

// formats the sqlite driver may hand back for timestamp columns
var timeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func (t *Time) parse(s string) error {
	for _, format := range timeFormats {
		parsed, err := time.Parse(format, s)
		if err == nil {
			t.T = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q into Time", s)
}

func (t Time) IsZero() bool {
	return t.T.IsZero()
}

func (t Time) Before(other Time) bool {
	return t.T.Before(other.T)
}
