// Public domain.

package collection

import (
	"go.uber.org/zap"

	"github.com/seismotools/gmcoll/dedup"
	"github.com/seismotools/gmcoll/group"
	"github.com/seismotools/gmcoll/trace"
)

// tagParam is the record parameter key used to stamp the group tag
// onto member records so it survives the flatten/rebuild cycle.
const tagParam = "tag"

// carryover is the snapshot of one group's tag and parameters, keyed
// by canonical group identity across a regroup.
type carryover struct {
	tag    string
	params map[string]interface{}
}

// gatherGroupParams snapshots group-scoped state before the groups are
// deconstructed, and stamps each group's tag onto its member records.
// The stamp is the fallback for groups whose canonical identity is not
// present in the snapshot after rebuilding.
func (c *Collection) gatherGroupParams() map[string]carryover {
	snap := make(map[string]carryover)
	for _, g := range c.groups {
		if g.Tag != "" || len(g.Parameters) > 0 {
			co := carryover{tag: g.Tag}
			if len(g.Parameters) > 0 {
				co.params = make(map[string]interface{}, len(g.Parameters))
				for k, v := range g.Parameters {
					co.params[k] = v
				}
			}
			snap[g.ID()] = co
		}
		for _, r := range g.Records {
			r.SetParameter(tagParam, g.Tag)
		}
	}
	return snap
}

// insertGroupParams restores snapshotted tag and parameter state onto
// rebuilt groups by canonical identity, falling back to the tag
// stamped on the first member record.
func insertGroupParams(groups []*group.Group, snap map[string]carryover) {
	for _, g := range groups {
		if len(g.Records) == 0 {
			continue
		}
		if co, ok := snap[g.ID()]; ok {
			g.Tag = co.tag
			if co.params != nil {
				g.Parameters = make(map[string]interface{}, len(co.params))
				for k, v := range co.params {
					g.Parameters[k] = v
				}
			}
		}
		if g.Tag == "" {
			if v, ok := g.Records[0].Parameter(tagParam); ok {
				g.Tag, _ = v.(string)
			}
		}
	}
}

// flatten returns all member records of all groups in group order.
func (c *Collection) flatten() []*trace.Record {
	var records []*trace.Record
	for _, g := range c.groups {
		records = append(records, g.Records...)
	}
	return records
}

// Regroup deconstructs the current groups and re-derives them from the
// flat record list, preserving tag and parameter state.  It is invoked
// by the constructor and can be rerun whenever record membership has
// been modified externally.
func (c *Collection) Regroup() {
	snap := c.gatherGroupParams()
	groups := group.Build(c.flatten())
	insertGroupParams(groups, snap)
	c.groups = groups
}

// handleDuplicates flattens the collection to individual records and
// keeps a single survivor per duplicate set.  Each record is compared
// in original order against the records already kept; on a duplicate
// the preference cascade decides whether the newcomer evicts the
// incumbent or is discarded.  Either way the loser is logged as an
// informational event, not raised: this is a lossy, accepted-risk
// merge.  Survivors are left as singleton groups for Regroup.
func (c *Collection) handleDuplicates() error {
	snap := c.gatherGroupParams()
	records := c.flatten()

	var kept []*trace.Record
	for _, cand := range records {
		dupAt := -1
		for i, k := range kept {
			dup, err := dedup.AreDuplicates(cand, k, c.cfg.MaxDistTolerance)
			if err != nil {
				return err
			}
			if dup {
				dupAt = i
				break
			}
		}
		if dupAt < 0 {
			kept = append(kept, cand)
			continue
		}

		incumbent := kept[dupAt]
		pref, err := dedup.ChoosePreferred(cand, incumbent,
			c.cfg.ProcessLevelPreference, c.cfg.FormatPreference)
		if err != nil {
			return err
		}
		if pref == cand {
			kept[dupAt] = cand
			c.logRemoved(incumbent)
		} else {
			c.logRemoved(cand)
		}
	}

	groups := make([]*group.Group, len(kept))
	for i, r := range kept {
		groups[i] = &group.Group{Records: []*trace.Record{r}}
	}
	insertGroupParams(groups, snap)
	c.groups = groups
	return nil
}

func (c *Collection) logRemoved(r *trace.Record) {
	c.log.Info("duplicate trace removed from collection",
		zap.String("id", r.ID()),
		zap.String("source_format", r.SourceFormat))
}
