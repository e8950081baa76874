// Public domain.

package gcprog

import (
	"fmt"
	"io"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"

	"github.com/seismotools/gmcoll/collection"
	"github.com/seismotools/gmcoll/trace"
)

// describe prints the verbose per-trace report.
func describe(w io.Writer, c *collection.Collection) {
	fmt.Fprintln(w, versionString)
	for _, g := range c.Groups() {
		status := "passed"
		if !g.Passed() {
			status = "failed"
		}
		tag := g.Tag
		if tag == "" {
			tag = "(untagged)"
		}
		fmt.Fprintf(w, "%s  %d record(s)  %s  %s\n",
			g.ID(), len(g.Records), status, tag)
		for _, r := range g.Records {
			fmt.Fprintf(w, "  %-16s %s  %s  %6d pts %6.1f Hz  %s\n",
				r.ID(), position(r), r.ProcessLevel.Code(),
				r.SampleCount, r.SampleRate, r.SourceFormat)
			if reason, failed := r.Failed(); failed {
				fmt.Fprintf(w, "    failed: %s\n", reason)
			}
		}
	}
	fmt.Fprint(w, c)
}

func position(r *trace.Record) string {
	if !r.HasCoordinates() {
		return "(no coordinates)"
	}
	return fmt.Sprintf("%v %v",
		sexa.FmtAngle(unit.AngleFromDeg(r.Latitude)),
		sexa.FmtAngle(unit.AngleFromDeg(r.Longitude)))
}
