// Public domain.

// Package gcprog implements the gmcoll command.
package gcprog

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/soniakeys/exit"
	"go.uber.org/zap"

	"github.com/seismotools/gmcoll/collection"
)

const versionString = "gmcoll version 0.1 Go source."
const copyrightString = "Public domain."

func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	cfg := readConfig(cl)

	if cl.quiet {
		cfg.Logger = zap.NewNop()
	} else {
		logger, err := zap.NewDevelopment()
		if err != nil {
			exit.Log(err)
		}
		defer logger.Sync()
		cfg.Logger = logger
	}
	if cl.nonFree {
		cfg.DropNonFree = false
	}

	// open trace inventory
	var f *os.File
	if cl.fnTraces == "-" {
		f = os.Stdin
		cl.fnTraces = "input stream"
	} else {
		var err error
		f, err = os.Open(cl.fnTraces)
		if err != nil {
			exit.Log(err)
		}
		defer f.Close()
	}

	records, err := readTraces(f)
	if err != nil {
		exit.Log(fmt.Sprintf("%s: %s", cl.fnTraces, err))
	}

	c, err := collection.FromRecords(records, cfg)
	if err != nil {
		exit.Log(err)
	}
	if cl.colocate {
		c.SelectColocated(nil)
	}

	if cl.describe {
		describe(os.Stdout, c)
	} else {
		summarize(os.Stdout, c)
	}
}

type commandLine struct {
	fnConfig string // config file
	fnTraces string // trace inventory
	describe bool   // -d option
	colocate bool   // -colocate option
	nonFree  bool   // -nonfree option
	quiet    bool   // -q option
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.fnConfig, "c", "", "")
	flag.BoolVar(&cl.describe, "d", false, "")
	flag.BoolVar(&cl.colocate, "colocate", false, "")
	flag.BoolVar(&cl.nonFree, "nonfree", false, "")
	flag.BoolVar(&cl.quiet, "q", false, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: gmcoll [options] <tracefile>   consolidate traces in file
       gmcoll [options] -             consolidate traces from stdin
       gmcoll -h                      display help and quick reference
       gmcoll -v                      display version and copyright

Options:
       -c <config-file>
       -d          describe groups and traces in detail
       -colocate   keep only the preferred instrument per station
       -nonfree    keep non-free-field traces
       -q          suppress informational logging
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() != 1:
		flag.Usage()
		os.Exit(1)
	}
	cl.fnTraces = flag.Arg(0)
	return &cl
}

func printHelp() {
	fmt.Println(`
Gmcoll consolidates heterogeneous seismic waveform trace records into a
canonical, deduplicated collection of per-station groups.  Input is a
JSON array of trace records; output is a summary of the resulting
groups with pass/fail status.

Trace record fields:
   network, station, channel, location
   latitude, longitude       decimal degrees
   sample_count
   sampling_rate             Hz
   start_time                RFC 3339, optional
   process_level             V0 raw counts
                             V1 uncorrected physical units
                             V2 corrected physical units
                             V3 derived time series
   source_format
   structure_type            optional; non-free-field evidence

Config file (YAML):
   duplicate:
     max_dist_tolerance:         meters
     process_level_preference:   e.g. [V2, V1, V0, V3]
     format_preference:          e.g. [cosmos, dmg]
   colocated:
     preference:                 e.g. ["HN?", "BN?", "HH?", "BH?"]

For full documentation:
   go doc github.com/seismotools/gmcoll`)
}

func summarize(w io.Writer, c *collection.Collection) {
	fmt.Fprintln(w, versionString)
	fmt.Fprintf(w, "%-20s %4s %8s  %s\n", "Group", "Loc", "Records", "Status")
	for _, g := range c.Groups() {
		status := "passed"
		if !g.Passed() {
			status = "failed"
		}
		loc := g.Records[0].Location
		if loc == "" {
			loc = "--"
		}
		fmt.Fprintf(w, "%-20s %4s %8d  %s\n",
			g.ID(), loc, len(g.Records), status)
	}
	fmt.Fprint(w, c)
}
