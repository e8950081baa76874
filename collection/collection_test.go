// Public domain.

package collection_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seismotools/gmcoll/collection"
	"github.com/seismotools/gmcoll/group"
	"github.com/seismotools/gmcoll/trace"
)

func rec(net, sta, cha, loc string) *trace.Record {
	return &trace.Record{
		Network: net, Station: sta, Channel: cha, Location: loc,
		Latitude: 34, Longitude: -118,
		SampleCount: 10000, SampleRate: 100,
		ProcessLevel: trace.CorrectedUnits,
		SourceFormat: "cosmos",
	}
}

func TestDedupKeepsPreferredLevel(t *testing.T) {
	// same channel ingested as raw counts and as corrected physical
	// units: the corrected record survives
	raw := rec("CI", "ABC", "HNZ", "")
	raw.ProcessLevel = trace.RawCounts
	cor := rec("CI", "ABC", "HNZ", "")

	core, logs := observer.New(zap.InfoLevel)
	cfg := collection.DefaultConfig()
	cfg.Logger = zap.New(core)

	c, err := collection.FromRecords([]*trace.Record{raw, cor}, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	require.Len(t, c.Groups()[0].Records, 1)
	assert.Equal(t, trace.CorrectedUnits, c.Groups()[0].Records[0].ProcessLevel)

	// the removal is logged, not raised
	removed := logs.FilterMessage("duplicate trace removed from collection")
	assert.Equal(t, 1, removed.Len())
}

func TestDedupAcrossNetworks(t *testing.T) {
	// same recording through two agencies: differing network codes,
	// colocated within meters
	a := rec("CI", "ABC", "HNZ", "")
	b := rec("NP", "ABC", "HNZ", "")
	b.Latitude = 34.00001
	b.SampleCount = 20000

	c, err := collection.FromRecords([]*trace.Record{a, b}, collection.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 20000, c.Groups()[0].Records[0].SampleCount)
}

func TestTagParameterRoundTrip(t *testing.T) {
	groups := group.Build([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
		rec("CI", "ABC", "HNE", ""),
		rec("CI", "DEF", "HNZ", ""),
	})
	require.Len(t, groups, 2)
	groups[0].Tag = "evt1_ABC_default"
	groups[0].Parameters = map[string]interface{}{"reviewed": true}
	groups[1].Tag = "evt1_DEF_default"

	c, err := collection.New(groups, collection.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	byID := make(map[string]*group.Group)
	for _, g := range c.Groups() {
		byID[g.ID()] = g
	}
	require.Contains(t, byID, "CI.ABC.HN")
	assert.Equal(t, "evt1_ABC_default", byID["CI.ABC.HN"].Tag)
	assert.Equal(t, true, byID["CI.ABC.HN"].Parameters["reviewed"])
	assert.Equal(t, "evt1_DEF_default", byID["CI.DEF.HN"].Tag)

	// state also survives a standalone regroup
	c.Regroup()
	c.Regroup()
	for _, g := range c.Groups() {
		if g.ID() == "CI.ABC.HN" {
			assert.Equal(t, "evt1_ABC_default", g.Tag)
			assert.Equal(t, true, g.Parameters["reviewed"])
		}
	}
}

func TestInconsistentTags(t *testing.T) {
	groups := group.Build([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
		rec("CI", "DEF", "HNZ", ""),
	})
	groups[0].Tag = "evt_sta_A"
	groups[1].Tag = "evt_sta_B"

	_, err := collection.New(groups, collection.DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, collection.ErrInconsistentTags)
}

func TestMalformedTag(t *testing.T) {
	groups := group.Build([]*trace.Record{rec("CI", "ABC", "HNZ", "")})
	groups[0].Tag = "notatriple"
	_, err := collection.New(groups, collection.DefaultConfig())
	assert.Error(t, err)
}

func TestInvalidInput(t *testing.T) {
	cfg := collection.DefaultConfig()
	_, err := collection.New([]*group.Group{nil}, cfg)
	assert.Error(t, err)

	_, err = collection.New([]*group.Group{{}}, cfg)
	assert.Error(t, err)

	_, err = collection.FromRecords([]*trace.Record{nil}, cfg)
	assert.Error(t, err)
}

func TestDropNonFree(t *testing.T) {
	free := rec("CI", "ABC", "HNZ", "")
	mounted := rec("CI", "DEF", "HNZ", "")
	mounted.StructureType = "Building"

	cfg := collection.DefaultConfig()
	c, err := collection.FromRecords([]*trace.Record{free, mounted}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	cfg.DropNonFree = false
	c, err = collection.FromRecords([]*trace.Record{free, mounted}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestSelectColocated(t *testing.T) {
	c, err := collection.FromRecords([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
		rec("CI", "ABC", "HNN", ""),
		rec("CI", "ABC", "BNZ", ""),
	}, collection.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	c.SelectColocated([]string{"HN?", "BN?"})
	assert.Equal(t, 1, c.NPassed())
	assert.Equal(t, 1, c.NFailed())
	for _, g := range c.Groups() {
		switch g.Instrument() {
		case "HN":
			assert.True(t, g.Passed())
		case "BN":
			for _, r := range g.Records {
				reason, failed := r.Failed()
				require.True(t, failed)
				assert.Equal(t, "colocated with HN instrument", reason)
			}
		}
	}
	// groups are retained, not removed
	assert.Equal(t, 2, c.Len())
}

func TestSelectColocatedNoMatch(t *testing.T) {
	c, err := collection.FromRecords([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
		rec("CI", "ABC", "BNZ", ""),
	}, collection.DefaultConfig())
	require.NoError(t, err)

	c.SelectColocated([]string{"XX?"})
	assert.Equal(t, 0, c.NPassed())
	for _, g := range c.Groups() {
		reason, failed := g.Records[0].Failed()
		require.True(t, failed)
		assert.Contains(t, reason, "no instruments match")
	}
}

func TestSelectColocatedSingletonUntouched(t *testing.T) {
	c, err := collection.FromRecords([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
		rec("CI", "DEF", "BNZ", ""),
	}, collection.DefaultConfig())
	require.NoError(t, err)

	c.SelectColocated([]string{"HN?"})
	assert.Equal(t, 2, c.NPassed())
}

func TestSelect(t *testing.T) {
	c, err := collection.FromRecords([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
		rec("CI", "DEF", "HNZ", ""),
		rec("NP", "GHI", "BNZ", ""),
	}, collection.DefaultConfig())
	require.NoError(t, err)

	sel, err := c.Select("CI", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, sel.Len())

	sel, err = c.Select("", "", "B?")
	require.NoError(t, err)
	require.Equal(t, 1, sel.Len())
	assert.Equal(t, "NP.GHI.BN", sel.Groups()[0].ID())

	// case-insensitive, like the station metadata it matches
	sel, err = c.Select("ci", "a*", "")
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Len())

	// selection never shares group objects with the source
	sel.Groups()[0].Records[0].Fail("selected copy only")
	assert.Equal(t, 3, c.NPassed())
}

func TestCopyIsDeep(t *testing.T) {
	c, err := collection.FromRecords([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
	}, collection.DefaultConfig())
	require.NoError(t, err)

	cp := c.Copy()
	cp.Groups()[0].Records[0].Fail("copy only")
	assert.Equal(t, 1, c.NPassed())
	assert.Equal(t, 0, cp.NPassed())
}

func TestAppend(t *testing.T) {
	cfg := collection.DefaultConfig()
	a, err := collection.FromRecords([]*trace.Record{rec("CI", "ABC", "HNZ", "")}, cfg)
	require.NoError(t, err)
	b, err := collection.FromRecords([]*trace.Record{
		rec("CI", "DEF", "HNZ", ""),
		rec("CI", "ABC", "HNZ", ""), // duplicate of a's record
	}, cfg)
	require.NoError(t, err)

	sum, err := a.Append(b)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Len())
}

func TestDedupPropagatesDistanceError(t *testing.T) {
	a := rec("CI", "ABC", "HNZ", "")
	b := rec("NP", "ABC", "HNZ", "")
	b.Latitude = math.NaN()
	_, err := collection.FromRecords([]*trace.Record{a, b}, collection.DefaultConfig())
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	c, err := collection.FromRecords([]*trace.Record{
		rec("CI", "ABC", "HNZ", ""),
	}, collection.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, c.String(), "1 station group(s)")
}
