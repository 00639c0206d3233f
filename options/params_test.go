package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjettp/visual-system-simulator/pipeline"
)

func TestParseValueMap(t *testing.T) {
	params, err := ParseValueMap([]byte(`{
		"presbyopia_onoff": true,
		"presbyopia_near_point": 50,
		"myopiahyperopia_onoff": false,
		"myopiahyperopia_mnh": 72.5,
		"a_string": "ignored",
		"nested": {"also": "ignored"}
	}`))
	require.NoError(t, err)

	on, ok := params.Bool("presbyopia_onoff")
	assert.True(t, ok)
	assert.True(t, on)

	np, ok := params.Number("presbyopia_near_point")
	assert.True(t, ok)
	assert.Equal(t, 50.0, np)

	mnh, ok := params.Number("myopiahyperopia_mnh")
	assert.True(t, ok)
	assert.Equal(t, 72.5, mnh)

	// non-scalar entries are dropped, not errors
	_, ok = params["a_string"]
	assert.False(t, ok)
	_, ok = params["nested"]
	assert.False(t, ok)
}

func TestParseValueMapRejectsMalformedJSON(t *testing.T) {
	_, err := ParseValueMap([]byte(`{`))
	assert.Error(t, err)
}

func TestLoadValueMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"presbyopia_onoff": true}`), 0o644))

	params, err := LoadValueMap(path)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ValueMap{"presbyopia_onoff": pipeline.Bool(true)}, params)
}

func TestLoadValueMapMissingFile(t *testing.T) {
	_, err := LoadValueMap(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestWatchValueMapReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	updates := make(chan pipeline.ValueMap, 1)
	watcher, err := WatchValueMap(path, func(params pipeline.ValueMap) {
		select {
		case updates <- params:
		default:
		}
	})
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"myopiahyperopia_onoff": true}`), 0o644))

	select {
	case params := <-updates:
		on, ok := params.Bool("myopiahyperopia_onoff")
		assert.True(t, ok)
		assert.True(t, on)
	case <-time.After(5 * time.Second):
		t.Fatal("no parameter reload observed")
	}
}
