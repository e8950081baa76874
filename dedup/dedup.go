// Public domain.

// Package dedup decides whether two trace records are duplicate
// recordings of the same physical channel, and which of two duplicates
// to keep.
//
// Records can duplicate each other without sharing a full identity
// tuple: the same recording ingested through two agencies may differ in
// network code while sitting a few meters apart.  Equality is therefore
// by identity or by geophysical proximity, and survivors are picked by
// a deterministic multi-key preference cascade.
package dedup

import (
	"github.com/cockroachdb/errors"
	"github.com/soniakeys/meeus/v3/globe"

	"github.com/seismotools/gmcoll/trace"
)

// SurfaceDistance returns the great-circle surface distance between two
// station positions in meters, on the IAU 1976 Earth ellipsoid.
// A missing coordinate on either record is a hard error: a silently
// "not duplicate" answer would let bad metadata reintroduce duplicate
// data downstream.
func SurfaceDistance(a, b *trace.Record) (float64, error) {
	if !a.HasCoordinates() {
		return 0, errors.Newf("record %s is missing coordinates", a.ID())
	}
	if !b.HasCoordinates() {
		return 0, errors.Newf("record %s is missing coordinates", b.ID())
	}
	return globe.Earth76.Distance(a.Coord(), b.Coord()) * 1000, nil
}

// AreDuplicates reports whether two records represent the same physical
// recording.  Records with equal identity tuples are duplicates
// regardless of coordinates.  Otherwise they are duplicates when the
// station, location and channel codes all match and the surface
// distance between them is under maxDistTolerance meters.
func AreDuplicates(a, b *trace.Record, maxDistTolerance float64) (bool, error) {
	if a.ID() == b.ID() {
		return true, nil
	}
	d, err := SurfaceDistance(a, b)
	if err != nil {
		return false, err
	}
	return a.Station == b.Station &&
		a.Location == b.Location &&
		a.Channel == b.Channel &&
		d < maxDistTolerance, nil
}

// ChoosePreferred picks which of two duplicate records to keep.  The
// return value is always a or b, never a new record.
//
// The cascade, each stage breaking ties only on an exact tie above:
//
//  1. process level rank in levelPref, lower index wins
//  2. source format rank in formatPref, evaluated only when both
//     formats are listed, lower index wins
//  3. a real start time beats the unset sentinel
//  4. larger sample count wins
//  5. higher sampling rate wins; on a full tie a wins
//
// The order is policy: prefer more processed data, then more trusted
// ingestion formats, then more complete timing, then more samples, then
// higher resolution.
//
// Every record's process level must appear in levelPref; an unmapped
// level indicates misconfiguration and is an error.
func ChoosePreferred(a, b *trace.Record,
	levelPref []trace.ProcessLevel, formatPref []string) (*trace.Record, error) {

	ra, err := levelRank(a, levelPref)
	if err != nil {
		return nil, err
	}
	rb, err := levelRank(b, levelPref)
	if err != nil {
		return nil, err
	}
	switch {
	case ra < rb:
		return a, nil
	case ra > rb:
		return b, nil
	}

	fa := formatRank(a.SourceFormat, formatPref)
	fb := formatRank(b.SourceFormat, formatPref)
	if fa >= 0 && fb >= 0 {
		switch {
		case fa < fb:
			return a, nil
		case fa > fb:
			return b, nil
		}
	}

	switch {
	case a.StartTimeUnset() && !b.StartTimeUnset():
		return b, nil
	case !a.StartTimeUnset() && b.StartTimeUnset():
		return a, nil
	}

	switch {
	case a.SampleCount > b.SampleCount:
		return a, nil
	case b.SampleCount > a.SampleCount:
		return b, nil
	}

	if b.SampleRate > a.SampleRate {
		return b, nil
	}
	return a, nil
}

func levelRank(r *trace.Record, pref []trace.ProcessLevel) (int, error) {
	for i, l := range pref {
		if r.ProcessLevel == l {
			return i, nil
		}
	}
	return 0, errors.Newf(
		"process level %s of record %s not in preference list",
		r.ProcessLevel.Code(), r.ID())
}

func formatRank(format string, pref []string) int {
	for i, f := range pref {
		if format == f {
			return i
		}
	}
	return -1
}
