// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"fmt"
	"math"
	"time"

	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installDate wires a thin Date surface (spec §3 Supplemented features):
// getTime/valueOf/toISOString/toString plus the common field getters,
// enough for timestamps and formatting without a full ECMAScript calendar
// (no setters, no locale-aware formatting — out of scope per Non-goals'
// silence, but not needed by any scenario this repo targets).
func installDate(v *vm.VM) {
	proto := v.Protos.Date

	asDate := func(this value.Value) (*vm.DateHandle, bool) {
		d, ok := this.AsObject().(*vm.DateHandle)
		return d, ok
	}

	method(v, proto, "getTime", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		d, ok := asDate(this)
		if !ok {
			return value.UndefinedValue, fmt.Errorf("TypeError: not a Date")
		}
		return value.Num(d.Millis), nil
	})

	method(v, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		d, ok := asDate(this)
		if !ok {
			return value.UndefinedValue, fmt.Errorf("TypeError: not a Date")
		}
		return value.Num(d.Millis), nil
	})

	method(v, proto, "toISOString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		d, ok := asDate(this)
		if !ok {
			return value.UndefinedValue, fmt.Errorf("TypeError: not a Date")
		}
		return value.Str(dateToTime(d.Millis).UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		d, ok := asDate(this)
		if !ok || math.IsNaN(d.Millis) {
			return value.Str("Invalid Date"), nil
		}
		return value.Str(dateToTime(d.Millis).UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (UTC)")), nil
	})

	dateGetter := func(name string, extract func(time.Time) int) {
		method(v, proto, name, 0, func(this value.Value, args []value.Value) (value.Value, error) {
			d, ok := asDate(this)
			if !ok || math.IsNaN(d.Millis) {
				return value.Num(nan()), nil
			}
			return value.Num(float64(extract(dateToTime(d.Millis).UTC()))), nil
		})
	}
	dateGetter("getFullYear", func(t time.Time) int { return t.Year() })
	dateGetter("getMonth", func(t time.Time) int { return int(t.Month()) - 1 })
	dateGetter("getDate", func(t time.Time) int { return t.Day() })
	dateGetter("getDay", func(t time.Time) int { return int(t.Weekday()) })
	dateGetter("getHours", func(t time.Time) int { return t.Hour() })
	dateGetter("getMinutes", func(t time.Time) int { return t.Minute() })
	dateGetter("getSeconds", func(t time.Time) int { return t.Second() })
	dateGetter("getMilliseconds", func(t time.Time) int { return t.Nanosecond() / 1e6 })

	ctorFunction(v, "Date", 0, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		millis := dateArgsToMillis(args)
		return value.FromObj(vm.NewDate(proto, millis)), nil
	})
}

func dateToTime(millis float64) time.Time {
	return time.UnixMilli(int64(millis))
}

// dateArgsToMillis implements the common `new Date(...)` overloads: no
// args (now), a single numeric epoch, a parseable ISO string, or
// (year, month, day, hours, minutes, seconds, ms) components.
func dateArgsToMillis(args []value.Value) float64 {
	switch len(args) {
	case 0:
		return float64(time.Now().UnixMilli())
	case 1:
		a := args[0]
		if a.IsString() {
			s, _ := a.ToString()
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				t, err = time.Parse("2006-01-02", s)
			}
			if err != nil {
				return nan()
			}
			return float64(t.UnixMilli())
		}
		n, _ := a.ToNumber()
		return n
	default:
		get := func(i int, def int) int {
			if i >= len(args) {
				return def
			}
			n, _ := args[i].ToNumber()
			return int(n)
		}
		year := get(0, 1970)
		month := get(1, 0)
		day := get(2, 1)
		hour := get(3, 0)
		min := get(4, 0)
		sec := get(5, 0)
		ms := get(6, 0)
		t := time.Date(year, time.Month(month+1), day, hour, min, sec, ms*1e6, time.UTC)
		return float64(t.UnixMilli())
	}
}
