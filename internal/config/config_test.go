package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Adjust())
	require.Equal(t, algo.HeuristicNone, cfg.Heuristic)
	require.True(t, cfg.PrioritizeConflicts)
	require.Equal(t, 7200*time.Second, cfg.Cutoff())
	require.Equal(t, "output_cbs-h.yaml", cfg.Output)

	opts := cfg.SolverOptions()
	def := algo.DefaultOptions()
	require.Equal(t, def.Heuristic, opts.Heuristic)
	require.Equal(t, def.PrioritizeConflicts, opts.PrioritizeConflicts)
	require.Equal(t, def.Cutoff, opts.Cutoff)
	require.Equal(t, def.PairNodeLimit, opts.PairNodeLimit)
}

func TestDecodeString(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.DecodeString(`
heuristics = "wdg"
prioritize-conflicts = false
rectangle-reasoning = true
cutoff-time = 1.5
max-mdds = 10
seed = 42
screen = 2
`))
	require.NoError(t, cfg.Adjust())
	require.Equal(t, algo.HeuristicWDG, cfg.Heuristic)
	require.Equal(t, "WDG", cfg.Heuristics)

	opts := cfg.SolverOptions()
	require.False(t, opts.PrioritizeConflicts)
	require.True(t, opts.RectangleReasoning)
	require.Equal(t, 1500*time.Millisecond, opts.Cutoff)
	require.Equal(t, 10, opts.MaxMDDs)
	require.Equal(t, int64(42), opts.Seed)
	require.Equal(t, 2, cfg.Screen)
}

func TestDecodeRejectsUnknownItems(t *testing.T) {
	cfg := GetDefaultConfig()
	err := cfg.DecodeString("heuristics = \"CG\"\nbogus = 1\n")
	require.True(t, errors.ErrConfigUnknownItem.Equal(err))
	require.Contains(t, err.Error(), "bogus")

	err = cfg.DecodeString("heuristics = ")
	require.True(t, errors.ErrDecodeConfig.Equal(err))
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cbsh.toml")
	require.NoError(t, os.WriteFile(path, []byte("heuristics = \"DG\"\ncorridor-reasoning = true\n"), 0o644))
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.DecodeFile(path))
	require.NoError(t, cfg.Adjust())
	require.Equal(t, algo.HeuristicDG, cfg.Heuristic)
	require.True(t, cfg.CorridorReasoning)

	err := GetDefaultConfig().DecodeFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, errors.ErrDecodeConfig.Equal(err))
}

func TestAdjustRejects(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		want   interface{ Equal(error) bool }
	}{
		{"heuristic", func(c *Config) { c.Heuristics = "XYZ" }, errors.ErrUnknownHeuristic},
		{"cutoff", func(c *Config) { c.CutoffTime = -1 }, errors.ErrConfigInvalid},
		{"max mdds", func(c *Config) { c.MaxMDDs = -2 }, errors.ErrConfigInvalid},
		{"pair limit", func(c *Config) { c.PairNodeLimit = -1 }, errors.ErrConfigInvalid},
		{"screen", func(c *Config) { c.Screen = 3 }, errors.ErrConfigInvalid},
		{"warehouse", func(c *Config) { c.WarehouseWidth = -1 }, errors.ErrConfigInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tc.modify(cfg)
			err := cfg.Adjust()
			require.True(t, tc.want.Equal(err), "got %v", err)
		})
	}
}

func TestAdjustFillsDefaults(t *testing.T) {
	cfg := &Config{Heuristics: "cg"}
	require.NoError(t, cfg.Adjust())
	require.Equal(t, 64, cfg.PairNodeLimit)
	require.Equal(t, "output_cbs-h.yaml", cfg.Output)
	require.Equal(t, algo.HeuristicCG, cfg.Heuristic)
}

func TestToml(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Heuristics = "CG"
	out, err := cfg.Toml()
	require.NoError(t, err)

	back := &Config{}
	require.NoError(t, back.DecodeString(out))
	require.Equal(t, cfg, back)
}
