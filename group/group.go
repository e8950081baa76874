// Public domain.

// Package group clusters trace records into station groups.
//
// A group holds the records believed to come from one physical
// station/instrument deployment: same network, station, instrument code
// and free-field status.  Some networks overload the location code to
// distinguish independent co-installed sensors; for those, groups are
// additionally split per location code.
package group

import (
	"github.com/seismotools/gmcoll/trace"
)

// NetworksUsingLocation lists network codes that use the location field
// to indicate different sensors at roughly the same location (the
// Bureau of Reclamation does, at the time of this writing).  Groups in
// these networks are split per distinct location code.
var NetworksUsingLocation = map[string]bool{
	"RE": true,
}

// Group is an ordered sequence of records sharing station identity and
// free-field status.  Tag and Parameters are group-scoped metadata,
// distinct from per-record parameters, and are preserved across
// regrouping by the collection container.
type Group struct {
	Records []*trace.Record

	// Tag is an event/station/label triple serialized as
	// "event_station_label".  Empty when unset.
	Tag string

	Parameters map[string]interface{}
}

// ID returns the canonical group identifier used to key carry-over of
// tag and parameter state across regrouping.  For networks that use
// location codes the location is part of the identity.
func (g *Group) ID() string {
	if len(g.Records) == 0 {
		return ""
	}
	r := g.Records[0]
	id := r.Network + "." + r.Station + "." + r.Instrument()
	if NetworksUsingLocation[r.Network] {
		id += "." + r.Location
	}
	return id
}

// NetSta returns the NET.STA identifier shared by all members.
func (g *Group) NetSta() string {
	if len(g.Records) == 0 {
		return ""
	}
	return g.Records[0].Network + "." + g.Records[0].Station
}

// Network returns the network code shared by all members.
func (g *Group) Network() string {
	if len(g.Records) == 0 {
		return ""
	}
	return g.Records[0].Network
}

// Station returns the station code shared by all members.
func (g *Group) Station() string {
	if len(g.Records) == 0 {
		return ""
	}
	return g.Records[0].Station
}

// Instrument returns the two-character instrument code shared by all
// members.
func (g *Group) Instrument() string {
	if len(g.Records) == 0 {
		return ""
	}
	return g.Records[0].Instrument()
}

// FreeField reports the free-field status of the group, taken from its
// first member.
func (g *Group) FreeField() bool {
	if len(g.Records) == 0 {
		return true
	}
	return g.Records[0].FreeField()
}

// Passed reports whether no member record carries a failure annotation.
func (g *Group) Passed() bool {
	for _, r := range g.Records {
		if _, failed := r.Failed(); failed {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	c := &Group{Tag: g.Tag}
	if g.Records != nil {
		c.Records = make([]*trace.Record, len(g.Records))
		for i, r := range g.Records {
			c.Records[i] = r.Clone()
		}
	}
	if g.Parameters != nil {
		c.Parameters = make(map[string]interface{}, len(g.Parameters))
		for k, v := range g.Parameters {
			c.Parameters[k] = v
		}
	}
	return c
}

// Build clusters a flat record list into station groups.
//
// Two records belong to the same cluster iff network, station,
// instrument code and free-field status all match.  Components are
// computed by union-find over a pairwise scan; the O(n²) cost is
// accepted since n is the trace count of a single event.  Cluster
// membership is order-independent; group order follows first
// appearance in the input, as does record order within a group.
// Singleton clusters are preserved as their own group, never dropped.
//
// Clusters in networks listed in NetworksUsingLocation are further
// partitioned into one group per distinct location code.
func Build(records []*trace.Record) []*Group {
	parent := make([]int, len(records))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			if sameStation(records[i], records[j]) {
				parent[find(j)] = find(i)
			}
		}
	}

	var order []int
	members := make(map[int][]*trace.Record)
	for i, r := range records {
		root := find(i)
		if _, seen := members[root]; !seen {
			order = append(order, root)
		}
		members[root] = append(members[root], r)
	}

	var groups []*Group
	for _, root := range order {
		groups = append(groups, splitLocation(members[root])...)
	}
	return groups
}

func sameStation(a, b *trace.Record) bool {
	return a.Network == b.Network &&
		a.Station == b.Station &&
		a.Instrument() == b.Instrument() &&
		a.FreeField() == b.FreeField()
}

// splitLocation partitions a cluster by location code when its network
// uses location codes for co-installed sensors, and otherwise returns
// the cluster as a single group.
func splitLocation(cluster []*trace.Record) []*Group {
	if !NetworksUsingLocation[cluster[0].Network] {
		return []*Group{{Records: cluster}}
	}
	var order []string
	byLoc := make(map[string][]*trace.Record)
	for _, r := range cluster {
		if _, seen := byLoc[r.Location]; !seen {
			order = append(order, r.Location)
		}
		byLoc[r.Location] = append(byLoc[r.Location], r)
	}
	groups := make([]*Group, len(order))
	for i, loc := range order {
		groups[i] = &Group{Records: byLoc[loc]}
	}
	return groups
}
