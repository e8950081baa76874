// Public domain.

// Package collection assembles trace records into a deduplicated,
// station-grouped collection ready for downstream metric computation.
//
// A Collection owns an ordered list of groups and runs them through a
// group, ungroup, dedup, regroup lifecycle at construction.  Group
// tags and group-scoped parameters survive the rebuild through an
// explicit carry-over step keyed by canonical group identity.
// Duplicate removal and colocation conflicts are resolved
// automatically and logged, never raised; structural invariant
// violations (bad input, inconsistent tags) abort construction with no
// partial collection returned.
package collection

import (
	"fmt"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/seismotools/gmcoll/group"
	"github.com/seismotools/gmcoll/trace"
)

// ErrInconsistentTags is returned when group tags carry more than one
// distinct label across a collection.
var ErrInconsistentTags = errors.New(
	"only one label allowed within a collection")

// Config carries the knobs consumed by the collection lifecycle.  It is
// passed explicitly at construction; there is no ambient config state.
type Config struct {
	// MaxDistTolerance is the surface distance in meters under which
	// two records with matching station, location and channel codes
	// are duplicates.
	MaxDistTolerance float64

	// ProcessLevelPreference ranks process levels, most preferred
	// first.  Every level present in the data must be listed.
	ProcessLevelPreference []trace.ProcessLevel

	// FormatPreference ranks source formats, most preferred first.
	// Formats not listed simply don't participate in tie-breaking.
	FormatPreference []string

	// ColocationPreference ranks two-character instrument code
	// patterns for SelectColocated.
	ColocationPreference []string

	// DropNonFree drops groups whose first record is not free-field
	// at ingest.
	DropNonFree bool

	// HandleDuplicates runs the dedup pass at construction.
	HandleDuplicates bool

	// Logger receives informational events for duplicate removal and
	// colocation conflicts.  Nil means no logging.
	Logger *zap.Logger
}

// DefaultConfig returns the stock configuration: 500 m duplicate
// tolerance, corrected data preferred over raw, accelerometers
// preferred over broadband for colocated stations.
func DefaultConfig() Config {
	return Config{
		MaxDistTolerance: 500,
		ProcessLevelPreference: []trace.ProcessLevel{
			trace.CorrectedUnits,
			trace.UncorrectedUnits,
			trace.RawCounts,
			trace.DerivedTimeSeries,
		},
		ColocationPreference: []string{"HN?", "BN?", "HH?", "BH?"},
		DropNonFree:          true,
		HandleDuplicates:     true,
	}
}

// Collection is the full ordered set of station groups for one
// processing run, typically one seismic event.
type Collection struct {
	groups []*group.Group
	cfg    Config
	log    *zap.Logger
}

// New builds a collection from assembled groups.  Ingest optionally
// drops non-free-field groups, dedups, regroups and validates.
// Input errors and tag inconsistency are fatal; no partial collection
// is returned.
func New(groups []*group.Group, cfg Config) (*Collection, error) {
	kept := make([]*group.Group, 0, len(groups))
	for i, g := range groups {
		if g == nil || len(g.Records) == 0 {
			return nil, errors.Newf(
				"collection input %d is not a group of trace records", i)
		}
		for _, r := range g.Records {
			if r == nil {
				return nil, errors.Newf(
					"collection input %d contains a nil trace record", i)
			}
		}
		if cfg.DropNonFree && !g.Records[0].FreeField() {
			continue
		}
		kept = append(kept, g)
	}

	c := &Collection{groups: kept, cfg: cfg, log: cfg.Logger}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if cfg.HandleDuplicates && len(c.groups) > 0 {
		if err := c.handleDuplicates(); err != nil {
			return nil, err
		}
	}
	c.Regroup()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromRecords builds a collection from a flat record list, wrapping
// each record in its own group and letting the lifecycle cluster them.
func FromRecords(records []*trace.Record, cfg Config) (*Collection, error) {
	groups := make([]*group.Group, len(records))
	for i, r := range records {
		if r == nil {
			return nil, errors.Newf("record %d is nil", i)
		}
		groups[i] = &group.Group{Records: []*trace.Record{r}}
	}
	return New(groups, cfg)
}

// Groups returns the ordered groups of the collection.  The slice is
// the collection's own; annotating records through it is how callers
// and the colocation pass mark failures.
func (c *Collection) Groups() []*group.Group {
	return c.groups
}

// Len returns the number of groups.
func (c *Collection) Len() int {
	return len(c.groups)
}

// NPassed counts groups with no failed records.
func (c *Collection) NPassed() int {
	n := 0
	for _, g := range c.groups {
		if g.Passed() {
			n++
		}
	}
	return n
}

// NFailed counts groups with at least one failed record.
func (c *Collection) NFailed() int {
	return len(c.groups) - c.NPassed()
}

func (c *Collection) String() string {
	return fmt.Sprintf("%d station group(s) in collection:\n"+
		"    %d group(s) passed checks.\n"+
		"    %d group(s) failed checks.\n",
		len(c.groups), c.NPassed(), c.NFailed())
}

// Validate checks the single-label invariant: the label component of
// every group tag must agree across the collection, with untagged
// groups contributing an empty label.
func (c *Collection) Validate() error {
	labels := make(map[string]bool)
	for _, g := range c.groups {
		label := ""
		if g.Tag != "" {
			parts := strings.Split(g.Tag, "_")
			if len(parts) != 3 {
				return errors.Newf(
					"invalid tag %q on group %s: want event_station_label",
					g.Tag, g.ID())
			}
			label = parts[2]
		}
		labels[label] = true
	}
	if len(labels) > 1 {
		all := make([]string, 0, len(labels))
		for l := range labels {
			all = append(all, l)
		}
		return errors.Wrapf(ErrInconsistentTags, "labels %q", all)
	}
	return nil
}

// Copy returns a deep copy.  Collections never share group objects.
func (c *Collection) Copy() *Collection {
	groups := make([]*group.Group, len(c.groups))
	for i, g := range c.groups {
		groups[i] = g.Clone()
	}
	return &Collection{groups: groups, cfg: c.cfg, log: c.log}
}

// Select returns a new collection holding deep copies of the groups
// matching the given glob patterns on network, station and instrument
// codes.  Empty patterns match everything.  Matching is
// case-insensitive, as station metadata casing varies by agency.
func (c *Collection) Select(network, station, instrument string) (*Collection, error) {
	var sel []*group.Group
	for _, g := range c.groups {
		ok, err := matchAll(
			[2]string{network, g.Network()},
			[2]string{station, g.Station()},
			[2]string{instrument, g.Instrument()})
		if err != nil {
			return nil, err
		}
		if ok {
			sel = append(sel, g.Clone())
		}
	}
	return &Collection{groups: sel, cfg: c.cfg, log: c.log}, nil
}

func matchAll(pairs ...[2]string) (bool, error) {
	for _, p := range pairs {
		pattern, name := p[0], p[1]
		if pattern == "" {
			continue
		}
		ok, err := path.Match(strings.ToUpper(pattern), strings.ToUpper(name))
		if err != nil {
			return false, errors.Wrapf(err, "pattern %q", pattern)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Append combines two collections into a new one, rerunning the full
// lifecycle over deep copies so duplicates across the two inputs are
// resolved and the tag invariant is rechecked.
func (c *Collection) Append(other *Collection) (*Collection, error) {
	if other == nil {
		return nil, errors.New("cannot append a nil collection")
	}
	groups := make([]*group.Group, 0, len(c.groups)+len(other.groups))
	for _, g := range c.groups {
		groups = append(groups, g.Clone())
	}
	for _, g := range other.groups {
		groups = append(groups, g.Clone())
	}
	return New(groups, c.cfg)
}
