// Public domain.

package gcprog

import (
	"io"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/seismotools/gmcoll/trace"
)

// traceJSON is one element of the trace inventory array.  Coordinate
// pointers distinguish absent from zero; an absent coordinate becomes
// NaN on the record and surfaces as a hard error should the dedup pass
// ever need a distance for it.
type traceJSON struct {
	Network  string `json:"network"`
	Station  string `json:"station"`
	Channel  string `json:"channel"`
	Location string `json:"location"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	SampleCount  int     `json:"sample_count"`
	SamplingRate float64 `json:"sampling_rate"`

	StartTime time.Time `json:"start_time"`

	ProcessLevel  string `json:"process_level"`
	SourceFormat  string `json:"source_format"`
	StructureType string `json:"structure_type"`
}

// readTraces decodes a JSON array of trace records.  Unlike the
// quietly-skipping readers of observation formats, a record that does
// not parse is a fatal input error: a dropped trace here silently
// changes grouping and dedup outcomes downstream.
func readTraces(r io.Reader) ([]*trace.Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var tjs []traceJSON
	if err := json.Unmarshal(b, &tjs); err != nil {
		return nil, err
	}
	if len(tjs) == 0 {
		return nil, errors.New("no trace records in input")
	}

	records := make([]*trace.Record, len(tjs))
	for i, tj := range tjs {
		if tj.Network == "" || tj.Station == "" || len(tj.Channel) < 2 {
			return nil, errors.Newf(
				"trace %d: network, station and a two-character channel are required", i)
		}
		level, err := trace.ParseProcessLevel(tj.ProcessLevel)
		if err != nil {
			return nil, errors.Wrapf(err, "trace %d", i)
		}
		rec := &trace.Record{
			Network:       tj.Network,
			Station:       tj.Station,
			Channel:       tj.Channel,
			Location:      tj.Location,
			Latitude:      math.NaN(),
			Longitude:     math.NaN(),
			SampleCount:   tj.SampleCount,
			SampleRate:    tj.SamplingRate,
			StartTime:     tj.StartTime,
			ProcessLevel:  level,
			SourceFormat:  tj.SourceFormat,
			StructureType: tj.StructureType,
		}
		if tj.Latitude != nil {
			rec.Latitude = *tj.Latitude
		}
		if tj.Longitude != nil {
			rec.Longitude = *tj.Longitude
		}
		records[i] = rec
	}
	return records, nil
}
