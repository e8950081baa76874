// Public domain.

// Package trace defines the station trace record consumed by the
// collection core: one single-channel waveform recording with its
// identity codes, physical attributes, and an annotation store.
//
// The core never reads waveform samples.  A Record carries only the
// metadata needed for grouping, deduplication and colocation decisions,
// plus a mutable key/value parameter store used to annotate failures.
package trace

import (
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/unit"
)

// ProcessLevel is the coarse processing maturity of a recording.
type ProcessLevel int

const (
	RawCounts         ProcessLevel = iota // V0
	UncorrectedUnits                      // V1
	CorrectedUnits                        // V2
	DerivedTimeSeries                     // V3
)

var levelCodes = [...]string{"V0", "V1", "V2", "V3"}

var levelDescriptions = [...]string{
	"raw counts",
	"uncorrected physical units",
	"corrected physical units",
	"derived time series",
}

// Code returns the short level code, "V0" through "V3".
func (l ProcessLevel) Code() string {
	if l < 0 || int(l) >= len(levelCodes) {
		return "V?"
	}
	return levelCodes[l]
}

func (l ProcessLevel) String() string {
	if l < 0 || int(l) >= len(levelDescriptions) {
		return "unknown process level"
	}
	return levelDescriptions[l]
}

// ParseProcessLevel accepts either a short code ("V2") or a long
// description ("corrected physical units").
func ParseProcessLevel(s string) (ProcessLevel, error) {
	for i, c := range levelCodes {
		if s == c || s == levelDescriptions[i] {
			return ProcessLevel(i), nil
		}
	}
	return 0, errors.Newf("unknown process level %q", s)
}

// Structure types that disqualify a sensor as free-field.  A record
// whose structure type mentions none of these is taken as free-field.
var nonFreeStructures = []string{
	"building",
	"bridge",
	"dam",
	"borehole",
	"hole",
	"crest",
	"toe",
	"foundation",
	"body",
	"roof",
	"floor",
}

// FailureKey is the parameter key under which Fail records its reason.
const FailureKey = "failure"

// Record is a single-channel waveform recording.  The collection core
// treats identity and physical attributes as read-only and mutates only
// the parameter store.
type Record struct {
	Network  string
	Station  string
	Channel  string
	Location string

	// Decimal degrees, east positive.  NaN marks a missing coordinate.
	Latitude  float64
	Longitude float64

	SampleCount int
	SampleRate  float64 // Hz

	// StartTime at its zero value, or at the Unix epoch exactly, is the
	// unset sentinel: real data loses no preference contest to it.
	StartTime time.Time

	ProcessLevel ProcessLevel
	SourceFormat string

	// StructureType is free text from the station metadata, e.g.
	// "Free field sensor" or "Building".  See FreeField.
	StructureType string

	params map[string]interface{}
}

// ID returns the canonical NET.STA.LOC.CHA identifier.
func (r *Record) ID() string {
	return r.Network + "." + r.Station + "." + r.Location + "." + r.Channel
}

// Instrument returns the instrument code, the first two characters of
// the channel code.
func (r *Record) Instrument() string {
	if len(r.Channel) < 2 {
		return r.Channel
	}
	return r.Channel[:2]
}

// FreeField reports whether the sensor is free-field.  Absent explicit
// structure-type evidence to the contrary, a sensor is free-field.
func (r *Record) FreeField() bool {
	st := strings.ToLower(r.StructureType)
	for _, s := range nonFreeStructures {
		if strings.Contains(st, s) {
			return false
		}
	}
	return true
}

// HasCoordinates reports whether both coordinates are present.
func (r *Record) HasCoordinates() bool {
	return !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude)
}

// Coord returns the station position as a globe coordinate.  Both
// longitudes fed to a distance computation use the same east-positive
// sign, so the Meeus west-positive convention drops out of the result.
func (r *Record) Coord() globe.Coord {
	return globe.Coord{
		Lat: unit.AngleFromDeg(r.Latitude),
		Lon: unit.AngleFromDeg(r.Longitude),
	}
}

// StartTimeUnset reports whether the start time is the unset sentinel.
func (r *Record) StartTimeUnset() bool {
	return r.StartTime.IsZero() || r.StartTime.Unix() == 0
}

// Fail annotates the record with a failure reason.  The record is not
// removed from any collection; failure is a soft, inspectable state.
// Reasons are additive in the sense that the first one sticks: a record
// already failed keeps its original reason.
func (r *Record) Fail(reason string) {
	if r.HasParameter(FailureKey) {
		return
	}
	r.SetParameter(FailureKey, reason)
}

// Failed returns the failure reason, if any.
func (r *Record) Failed() (reason string, ok bool) {
	v, ok := r.Parameter(FailureKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// SetParameter adds to the record's set of arbitrary metadata.
func (r *Record) SetParameter(key string, value interface{}) {
	if r.params == nil {
		r.params = make(map[string]interface{})
	}
	r.params[key] = value
}

// Parameter retrieves arbitrary metadata by key.
func (r *Record) Parameter(key string) (interface{}, bool) {
	v, ok := r.params[key]
	return v, ok
}

// HasParameter reports whether the key is set.
func (r *Record) HasParameter(key string) bool {
	_, ok := r.params[key]
	return ok
}

// ParameterKeys returns the set parameter keys in unspecified order.
func (r *Record) ParameterKeys() []string {
	keys := make([]string, 0, len(r.params))
	for k := range r.params {
		keys = append(keys, k)
	}
	return keys
}

// DeleteParameter removes a key from the parameter store.
func (r *Record) DeleteParameter(key string) {
	delete(r.params, key)
}

// Clone returns a deep copy of the record.  Parameter values are copied
// by assignment; the store holds scalars and strings.
func (r *Record) Clone() *Record {
	c := *r
	if r.params != nil {
		c.params = make(map[string]interface{}, len(r.params))
		for k, v := range r.params {
			c.params[k] = v
		}
	}
	return &c
}
