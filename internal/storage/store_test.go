package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/san-kum/shatterblade/internal/config"
	"github.com/san-kum/shatterblade/internal/experiment"
	"github.com/san-kum/shatterblade/internal/metrics"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result() *experiment.Result {
	return &experiment.Result{
		Scenario: "tap-throw",
		Seed:     9,
		Session:  uuid.New(),
		Samples: []metrics.Sample{
			{Time: 0.5, Mode: "sword", Free: 15},
			{Time: 1, Mode: "expanded", Reforming: 3, Locked: 12, Residual: 0.25, Switches: 1},
			{Time: 1.5, Mode: "sword", Locked: 15, Switches: 2, Holstered: true},
		},
		Metrics:    map[string]float64{"mode_switches": 2},
		StepsTaken: 3,
		Events: []physics.Event{
			{Kind: physics.EventDamage},
			{Kind: physics.EventDamage},
			{Kind: physics.EventStagger},
		},
		Pulses: 4,
	}
}

func TestSaveAndLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	res := result()
	id, err := st.Save(config.DefaultConfig(), res)
	require.NoError(t, err)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "tap-throw", meta.Scenario)
	assert.Equal(t, res.Session.String(), meta.Session)
	assert.Equal(t, int64(9), meta.Seed)
	assert.Equal(t, 3, meta.Steps)
	assert.Equal(t, map[string]int{"damage": 2, "stagger": 1}, meta.Events)
	assert.Equal(t, 2.0, meta.Metrics["mode_switches"])

	samples, err := st.LoadSamples(id)
	require.NoError(t, err)
	assert.Equal(t, res.Samples, samples)
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(config.DefaultConfig(), result())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(st.baseDir, "stray"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("missing")
	assert.ErrorIs(t, err, ErrUnknownRun)
	_, err = st.LoadSamples("missing")
	assert.ErrorIs(t, err, ErrUnknownRun)
}

func TestMalformedSamples(t *testing.T) {
	st := New(t.TempDir())
	dir := filepath.Join(st.baseDir, "broken")
	require.NoError(t, os.MkdirAll(dir, 0755))
	bad := "time,mode,free,reforming,locked,residual,violations,switches,holstered\nx,sword,0,0,0,0,0,0,false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, samplesFile), []byte(bad), 0644))

	_, err := st.LoadSamples("broken")
	assert.ErrorIs(t, err, ErrBadSamples)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	res := result()
	id, err := st.Save(config.DefaultConfig(), res)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, id))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, id, got.Run.ID)
	assert.Equal(t, res.Samples, got.Samples)
	assert.Contains(t, buf.String(), `"residual": 0.25`)

	_, err = st.Export("nope")
	assert.ErrorIs(t, err, ErrUnknownRun)
}
