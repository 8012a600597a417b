// Package config holds the solver configuration shared by the command
// line and the optional TOML file.
package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/elektrokombinacija/cbsh-mapf/internal/algo"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
)

const (
	defaultCutoffTime    = 7200.0
	defaultPairNodeLimit = 64
	defaultOutput        = "output_cbs-h.yaml"
	maxScreen            = 2
)

// Config is the full solver configuration.
type Config struct {
	Input       string `toml:"input" json:"input"`
	Output      string `toml:"output" json:"output"`
	MetricsFile string `toml:"metrics-file" json:"metrics-file"`

	Heuristics          string  `toml:"heuristics" json:"heuristics"`
	PrioritizeConflicts bool    `toml:"prioritize-conflicts" json:"prioritize-conflicts"`
	RectangleReasoning  bool    `toml:"rectangle-reasoning" json:"rectangle-reasoning"`
	CorridorReasoning   bool    `toml:"corridor-reasoning" json:"corridor-reasoning"`
	TargetReasoning     bool    `toml:"target-reasoning" json:"target-reasoning"`
	CutoffTime          float64 `toml:"cutoff-time" json:"cutoff-time"`
	MaxMDDs             int     `toml:"max-mdds" json:"max-mdds"`
	PairNodeLimit       int     `toml:"pair-node-limit" json:"pair-node-limit"`
	Seed                int64   `toml:"seed" json:"seed"`

	Screen         int `toml:"screen" json:"screen"`
	WarehouseWidth int `toml:"warehouse-width" json:"warehouse-width"`

	// Heuristic is Heuristics parsed by Adjust.
	Heuristic algo.HeuristicKind `toml:"-" json:"-"`
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() *Config {
	return &Config{
		Output:              defaultOutput,
		Heuristics:          algo.HeuristicNone.String(),
		PrioritizeConflicts: true,
		CutoffTime:          defaultCutoffTime,
		PairNodeLimit:       defaultPairNodeLimit,
	}
}

// Adjust validates the configuration and fills derived fields.
func (c *Config) Adjust() error {
	h, err := algo.ParseHeuristic(c.Heuristics)
	if err != nil {
		return err
	}
	c.Heuristic = h
	c.Heuristics = h.String()

	switch {
	case c.CutoffTime < 0:
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("cutoff-time %v must not be negative", c.CutoffTime))
	case c.MaxMDDs < 0:
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("max-mdds %d must not be negative", c.MaxMDDs))
	case c.PairNodeLimit < 0:
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("pair-node-limit %d must not be negative", c.PairNodeLimit))
	case c.Screen < 0 || c.Screen > maxScreen:
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("screen %d must be between 0 and %d", c.Screen, maxScreen))
	case c.WarehouseWidth < 0:
		return errors.ErrConfigInvalid.GenWithStackByArgs(fmt.Sprintf("warehouse-width %d must not be negative", c.WarehouseWidth))
	}
	if c.PairNodeLimit == 0 {
		c.PairNodeLimit = defaultPairNodeLimit
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
	return nil
}

// Cutoff returns CutoffTime as a duration.
func (c *Config) Cutoff() time.Duration {
	return time.Duration(c.CutoffTime * float64(time.Second))
}

// SolverOptions builds the search options. Logger, clock, metrics and
// observer are left for the caller.
func (c *Config) SolverOptions() algo.Options {
	return algo.Options{
		Heuristic:           c.Heuristic,
		PrioritizeConflicts: c.PrioritizeConflicts,
		RectangleReasoning:  c.RectangleReasoning,
		CorridorReasoning:   c.CorridorReasoning,
		TargetReasoning:     c.TargetReasoning,
		Cutoff:              c.Cutoff(),
		MaxMDDs:             c.MaxMDDs,
		PairNodeLimit:       c.PairNodeLimit,
		Seed:                c.Seed,
	}
}

// DecodeFile loads a TOML file over c. Unknown keys are rejected.
func (c *Config) DecodeFile(path string) error {
	metaData, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.ErrDecodeConfig.GenWithStackByArgs(fmt.Sprintf("%s: %v", path, err))
	}
	return checkUndecodedItems(metaData)
}

// DecodeString is DecodeFile for an in-memory document.
func (c *Config) DecodeString(data string) error {
	metaData, err := toml.Decode(data, c)
	if err != nil {
		return errors.ErrDecodeConfig.GenWithStackByArgs(err.Error())
	}
	return checkUndecodedItems(metaData)
}

// Toml encodes c as TOML.
func (c *Config) Toml() (string, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", errors.Trace(err)
	}
	return b.String(), nil
}

func checkUndecodedItems(metaData toml.MetaData) error {
	undecoded := metaData.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	items := make([]string, 0, len(undecoded))
	for _, item := range undecoded {
		items = append(items, item.String())
	}
	return errors.ErrConfigUnknownItem.GenWithStackByArgs(strings.Join(items, ","))
}
