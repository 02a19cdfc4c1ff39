package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the textual form every timestamp takes in the
// database. Storing timestamps as this exact TEXT shape is what lets the
// calendar queries use SQLite's date() and strftime() directly.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// LocalDateTime is a wall-clock timestamp without a timezone, persisted as
// ISO-8601 TEXT.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{t.Truncate(time.Second)}
}

func NowLocal() LocalDateTime {
	return NewLocalDateTime(time.Now())
}

func LocalDateTimePtr(t time.Time) *LocalDateTime {
	ldt := NewLocalDateTime(t)
	return &ldt
}

func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range []string{LocalDateTimeLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return LocalDateTime{t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("cannot parse %q as local date time", s)
}

func (t LocalDateTime) String() string {
	return t.Format(LocalDateTimeLayout)
}

// Value implements the driver.Valuer interface for TEXT storage
func (t LocalDateTime) Value() (driver.Value, error) {
	return t.Format(LocalDateTimeLayout), nil
}

// Scan implements the sql.Scanner interface
func (t *LocalDateTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = LocalDateTime{}
		return nil
	case time.Time:
		*t = NewLocalDateTime(v)
		return nil
	case string:
		parsed, err := ParseLocalDateTime(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseLocalDateTime(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return errors.New("unsupported column type for local date time")
	}
}

// GormDataType keeps GORM from treating the embedded time.Time as a native
// timestamp column.
func (LocalDateTime) GormDataType() string {
	return "text"
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(LocalDateTimeLayout) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid local date time %s", s)
	}
	parsed, err := ParseLocalDateTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
