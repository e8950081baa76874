/*
Command gmcoll consolidates heterogeneous seismic waveform trace records
into a canonical, deduplicated, correctly grouped collection of
per-station recordings.

Contents

	Program overview
	Command line usage
	File formats
	Algorithm outline

Program overview

Input is a JSON array of trace records, one per single-channel waveform
recording, possibly duplicated across file formats or agencies.  Output
is a summary of the resulting station groups with pass/fail status.

Sample run.  Given a file evt.json holding six records of station ABC
ingested once as raw counts and once as corrected physical units, plus
a colocated broadband instrument, "gmcoll -colocate evt.json" prints

	gmcoll version 0.1 Go source.
	Group                 Loc  Records  Status
	CI.ABC.HN              --        3  passed
	CI.ABC.BH              --        3  failed
	2 station group(s) in collection:
	    1 group(s) passed checks.
	    1 group(s) failed checks.

The three raw-counts duplicates have been discarded in favor of their
corrected twins, and the broadband group is annotated as failed because
an accelerometer is colocated with it and preferred.  Failed groups are
retained, not removed, so the exclusion is auditable; run with -d to
see per-record failure reasons.

Command line usage

Invoking the program without command line arguments (or with invalid
arguments) shows this usage prompt.

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

File formats

The trace inventory is a JSON array.  Each element carries the fields
network, station, channel, location, latitude, longitude, sample_count,
sampling_rate, start_time (RFC 3339, optional), process_level (V0
through V3), source_format and structure_type.  A structure type
mentioning a building, bridge, dam or similar structure marks the
record as not free-field.

The optional config file is YAML with two sections.  Section duplicate
holds max_dist_tolerance in meters, process_level_preference and
format_preference (ranked lists, most preferred first).  Section
colocated holds preference, a ranked list of two-character instrument
code patterns such as "HN?".

Algorithm outline

1.  Records are clustered into station groups: two records share a
group when network, station, instrument code (the first two channel
characters) and free-field status all match.  Networks known to
overload the location code to distinguish co-installed sensors are
further split per location.

2.  Duplicates are detected pairwise.  Two records duplicate each
other when their full identity tuples match, or when station, location
and channel codes match and the great-circle surface distance between
their coordinates is under the configured tolerance.

3.  One survivor is kept per duplicate set, chosen by a deterministic
cascade: preferred process level, then preferred source format, then a
real start time over an unset one, then more samples, then higher
sampling rate.  Losers are logged and discarded, and survivors are
regrouped; group tags and parameters survive the rebuild.

4.  With -colocate, stations carrying more than one instrument type
keep only the most preferred type; all records of the other groups are
annotated as failed, naming the winning instrument.
*/
package main
