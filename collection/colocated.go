// Public domain.

package collection

import (
	"strings"

	"go.uber.org/zap"

	"github.com/seismotools/gmcoll/group"
)

// SelectColocated detects colocated instruments and keeps the
// preferred instrument type.  Groups are clustered by network+station
// identity only; within each multi-group cluster the ranked instrument
// patterns are walked in order and the first pattern matching any
// group's instrument code picks the winner.  Records of every other
// group in the cluster are annotated as failed, naming the winning
// instrument.  When no pattern matches, every group in the cluster is
// failed with a no-preference-match reason.  Nothing is removed;
// failure is a soft, inspectable state.
//
// When a pattern matches more than one group, the first matching group
// in collection order supplies the winning instrument code.  Clusters
// of a single group are untouched.  A nil preference falls back to the
// configured colocation preference.
func (c *Collection) SelectColocated(preference []string) {
	if preference == nil {
		preference = c.cfg.ColocationPreference
	}

	var order []string
	clusters := make(map[string][]*group.Group)
	for _, g := range c.groups {
		ns := g.NetSta()
		if _, seen := clusters[ns]; !seen {
			order = append(order, ns)
		}
		clusters[ns] = append(clusters[ns], g)
	}

	for _, ns := range order {
		cluster := clusters[ns]
		if len(cluster) < 2 {
			continue
		}

		winner := ""
		for _, pat := range preference {
			for _, g := range cluster {
				if matchInstrument(pat, g.Instrument()) {
					winner = g.Instrument()
					break
				}
			}
			if winner != "" {
				break
			}
		}

		if winner == "" {
			for _, g := range cluster {
				failGroup(g, "no instruments match entries in the "+
					"colocated instrument preference list for this station")
			}
			c.log.Info("no colocated instrument preference matched",
				zap.String("station", ns))
			continue
		}

		for _, g := range cluster {
			if g.Instrument() != winner {
				failGroup(g, "colocated with "+winner+" instrument")
			}
		}
		c.log.Info("colocated instruments resolved",
			zap.String("station", ns),
			zap.String("kept_instrument", winner))
	}
}

// matchInstrument matches a preference pattern against a two-character
// instrument code.  Only the first two pattern characters are
// significant; "HN?" selects instrument code "HN".
func matchInstrument(pattern, inst string) bool {
	if len(pattern) > 2 {
		pattern = pattern[:2]
	}
	return pattern != "" && strings.HasPrefix(inst, pattern)
}

func failGroup(g *group.Group, reason string) {
	for _, r := range g.Records {
		r.Fail(reason)
	}
}
