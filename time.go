package jsonpickle

import (
	"time"

	"github.com/pkg/errors"
)

// StructTime is a broken-down calendar time, the structural counterpart of a
// time.Time instant. It reduces field by field, so unlike the instant form it
// stays readable inside documents.
type StructTime struct {
	Year       int
	Month      time.Month
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Weekday    time.Weekday
	YearDay    int
}

// NewStructTime breaks t down into its calendar components.
func NewStructTime(t time.Time) StructTime {
	return StructTime{
		Year:       t.Year(),
		Month:      t.Month(),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
		Weekday:    t.Weekday(),
		YearDay:    t.YearDay(),
	}
}

// Time reassembles the broken-down form into an instant in loc.
func (st StructTime) Time(loc *time.Location) time.Time {
	return time.Date(st.Year, st.Month, st.Day, st.Hour, st.Minute, st.Second, st.Nanosecond, loc)
}

func (st StructTime) Reduce() (string, []interface{}) {
	return "jsonpickle.StructTime", []interface{}{
		st.Year, int(st.Month), st.Day, st.Hour, st.Minute, st.Second,
		st.Nanosecond, int(st.Weekday), st.YearDay,
	}
}

func structTimeFactory(args ...interface{}) (interface{}, error) {
	if len(args) != 9 {
		return nil, errors.Errorf("jsonpickle: StructTime takes 9 arguments, got %d", len(args))
	}
	fields := make([]int64, len(args))
	for i, arg := range args {
		n, err := toInt64(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "StructTime argument %d", i)
		}
		fields[i] = n
	}
	return StructTime{
		Year:       int(fields[0]),
		Month:      time.Month(fields[1]),
		Day:        int(fields[2]),
		Hour:       int(fields[3]),
		Minute:     int(fields[4]),
		Second:     int(fields[5]),
		Nanosecond: int(fields[6]),
		Weekday:    time.Weekday(fields[7]),
		YearDay:    int(fields[8]),
	}, nil
}

// timeFactory is the raw-state constructor for time.Time: the payload is the
// canonical MarshalBinary form, fed back in without going through time.Date.
func timeFactory(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("jsonpickle: time.Time takes a single binary payload, got %d arguments", len(args))
	}
	payload, ok := args[0].([]byte)
	if !ok {
		return nil, errors.Errorf("jsonpickle: time.Time payload is %T, not []byte", args[0])
	}
	var t time.Time
	if err := t.UnmarshalBinary(payload); err != nil {
		return nil, errors.Wrap(err, "unmarshaling time payload")
	}
	return t, nil
}

func durationReduce(obj interface{}) (string, []interface{}, error) {
	d, ok := obj.(time.Duration)
	if !ok {
		return "", nil, errors.Errorf("jsonpickle: expected time.Duration, got %T", obj)
	}
	return "time.Duration", []interface{}{int64(d)}, nil
}

func durationFactory(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("jsonpickle: time.Duration takes 1 argument, got %d", len(args))
	}
	n, err := toInt64(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "time.Duration argument")
	}
	return time.Duration(n), nil
}
