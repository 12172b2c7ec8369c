// Package telemetry defines the telemetry record and its line format.
//
// One record is written per emission as a single newline-terminated line:
//
//	{"gas":412,"sound":87,"water":0,"temp":23.4,"humidity":41,"motion":0,"vibration":1}
//
// Field order is fixed. A climate value that has never been read is written
// as the bare token nan, which is what consumers of the serial stream expect.
package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// NaN is the sentinel token for a missing climate value on the wire.
const NaN = "nan"

// ErrNotRecord is returned by ParseLine for lines that are not telemetry records.
var ErrNotRecord = errors.New("telemetry: not a record")

// Value is a floating-point reading that may be absent.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a present Value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// Record is one telemetry emission.
type Record struct {
	Gas       int
	Sound     int
	Water     int
	Temp      Value
	Humidity  Value
	Motion    bool
	Vibration bool
}

// FormatLine renders r in the wire format, including the trailing newline.
func FormatLine(r Record) []byte {
	b := make([]byte, 0, 96)
	b = append(b, `{"gas":`...)
	b = strconv.AppendInt(b, int64(r.Gas), 10)
	b = append(b, `,"sound":`...)
	b = strconv.AppendInt(b, int64(r.Sound), 10)
	b = append(b, `,"water":`...)
	b = strconv.AppendInt(b, int64(r.Water), 10)
	b = append(b, `,"temp":`...)
	b = appendValue(b, r.Temp)
	b = append(b, `,"humidity":`...)
	b = appendValue(b, r.Humidity)
	b = append(b, `,"motion":`...)
	b = appendFlag(b, r.Motion)
	b = append(b, `,"vibration":`...)
	b = appendFlag(b, r.Vibration)
	b = append(b, "}\n"...)
	return b
}

func appendValue(b []byte, v Value) []byte {
	if !v.Valid || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return append(b, NaN...)
	}
	return strconv.AppendFloat(b, v.V, 'f', -1, 64)
}

func appendFlag(b []byte, on bool) []byte {
	if on {
		return append(b, '1')
	}
	return append(b, '0')
}

// wireRecord mirrors the line with optional fields so that missing keys and
// nan both decode as "no value".
type wireRecord struct {
	Gas       *float64 `json:"gas"`
	Sound     *float64 `json:"sound"`
	Water     *float64 `json:"water"`
	Temp      *float64 `json:"temp"`
	Humidity  *float64 `json:"humidity"`
	Motion    *float64 `json:"motion"`
	Vibration *float64 `json:"vibration"`
}

// ParseLine decodes one line of the telemetry stream. Surrounding whitespace
// is ignored; lines that do not start with '{' return ErrNotRecord. Missing
// integer fields decode as zero.
func ParseLine(line []byte) (Record, error) {
	t := bytes.TrimSpace(line)
	if len(t) == 0 || t[0] != '{' {
		return Record{}, ErrNotRecord
	}
	t = bytes.ReplaceAll(t, []byte(NaN), []byte("null"))

	var w wireRecord
	if err := json.Unmarshal(t, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrNotRecord, err)
	}
	r := Record{
		Gas:       int(deref(w.Gas)),
		Sound:     int(deref(w.Sound)),
		Water:     int(deref(w.Water)),
		Motion:    deref(w.Motion) == 1,
		Vibration: deref(w.Vibration) == 1,
	}
	if w.Temp != nil {
		r.Temp = Some(*w.Temp)
	}
	if w.Humidity != nil {
		r.Humidity = Some(*w.Humidity)
	}
	return r, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// jsonRecord is the strict-JSON form used off the serial stream (MQTT,
// HTTP), where missing values are null rather than nan.
type jsonRecord struct {
	Gas       int      `json:"gas"`
	Sound     int      `json:"sound"`
	Water     int      `json:"water"`
	Temp      *float64 `json:"temp"`
	Humidity  *float64 `json:"humidity"`
	Motion    int      `json:"motion"`
	Vibration int      `json:"vibration"`
}

// MarshalJSON encodes r as strict JSON with null for missing climate values.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(r))
}

// UnmarshalJSON decodes the strict-JSON form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var j jsonRecord
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Record{
		Gas:       j.Gas,
		Sound:     j.Sound,
		Water:     j.Water,
		Motion:    j.Motion == 1,
		Vibration: j.Vibration == 1,
	}
	if j.Temp != nil {
		r.Temp = Some(*j.Temp)
	}
	if j.Humidity != nil {
		r.Humidity = Some(*j.Humidity)
	}
	return nil
}

func toJSON(r Record) jsonRecord {
	j := jsonRecord{
		Gas:       r.Gas,
		Sound:     r.Sound,
		Water:     r.Water,
		Temp:      optional(r.Temp),
		Humidity:  optional(r.Humidity),
		Motion:    flag(r.Motion),
		Vibration: flag(r.Vibration),
	}
	return j
}

func optional(v Value) *float64 {
	if !v.Valid || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return nil
	}
	x := v.V
	return &x
}

func flag(on bool) int {
	if on {
		return 1
	}
	return 0
}
