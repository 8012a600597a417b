package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"gopkg.in/yaml.v3"
)

// Step is one entry of an agent schedule.
type Step struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	T int `yaml:"t"`
}

// Statistics is the statistics block of an output document.
type Statistics struct {
	Cost    int     `yaml:"cost"`
	Runtime float64 `yaml:"runtime"`
}

// WriteSchedule encodes a solution as an output document. Agents are
// listed in index order and each lists exactly its own path.
func WriteSchedule(w io.Writer, g *core.Grid, sol *core.Solution, runtime time.Duration) error {
	stats := &yaml.Node{}
	if err := stats.Encode(Statistics{Cost: sol.Cost, Runtime: runtime.Seconds()}); err != nil {
		return errors.ErrWriteOutput.GenWithStackByArgs(err.Error())
	}

	schedule := &yaml.Node{Kind: yaml.MappingNode}
	for i, p := range sol.Paths {
		steps := &yaml.Node{}
		if err := steps.Encode(stepsOf(g, p)); err != nil {
			return errors.ErrWriteOutput.GenWithStackByArgs(err.Error())
		}
		for _, s := range steps.Content {
			s.Style = yaml.FlowStyle
		}
		schedule.Content = append(schedule.Content, scalar("agent"+strconv.Itoa(i)), steps)
	}

	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("statistics"), stats,
		scalar("schedule"), schedule,
	}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return errors.ErrWriteOutput.GenWithStackByArgs(err.Error())
	}
	return enc.Close()
}

// SaveSchedule writes a solution to a YAML file.
func SaveSchedule(path string, g *core.Grid, sol *core.Solution, runtime time.Duration) error {
	var buf bytes.Buffer
	if err := WriteSchedule(&buf, g, sol, runtime); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func stepsOf(g *core.Grid, p core.Path) []Step {
	steps := make([]Step, len(p))
	for t, loc := range p {
		c := g.Cell(loc)
		steps[t] = Step{X: c.X, Y: c.Y, T: t}
	}
	return steps
}

// ScheduleDocument is a decoded output document.
type ScheduleDocument struct {
	Statistics Statistics
	Paths      []core.Path
}

// ReadSchedule decodes an output document against grid g. Steps must be
// listed with t = 0, 1, 2, ... and agent keys must cover 0..n-1.
func ReadSchedule(r io.Reader, g *core.Grid) (*ScheduleDocument, error) {
	var raw struct {
		Statistics Statistics `yaml:"statistics"`
		Schedule   yaml.Node  `yaml:"schedule"`
	}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.ErrDecodeInput.GenWithStackByArgs(err.Error())
	}
	if raw.Schedule.Kind != yaml.MappingNode {
		return nil, errors.ErrDecodeInput.GenWithStackByArgs("schedule must be a mapping of agents")
	}

	n := len(raw.Schedule.Content) / 2
	doc := &ScheduleDocument{Statistics: raw.Statistics, Paths: make([]core.Path, n)}
	seen := make([]bool, n)
	for k := 0; k+1 < len(raw.Schedule.Content); k += 2 {
		key, val := raw.Schedule.Content[k], raw.Schedule.Content[k+1]
		i, err := strconv.Atoi(strings.TrimPrefix(key.Value, "agent"))
		if err != nil || !strings.HasPrefix(key.Value, "agent") || i < 0 || i >= n || seen[i] {
			return nil, errors.ErrDecodeInput.GenWithStackByArgs(fmt.Sprintf("unexpected schedule key %q", key.Value))
		}
		seen[i] = true

		var steps []Step
		if err := val.Decode(&steps); err != nil {
			return nil, errors.ErrDecodeInput.GenWithStackByArgs(fmt.Sprintf("%s: %v", key.Value, err))
		}
		p := make(core.Path, len(steps))
		for t, s := range steps {
			if s.T != t {
				return nil, errors.ErrDecodeInput.GenWithStackByArgs(fmt.Sprintf("%s: step %d has t=%d", key.Value, t, s.T))
			}
			c := core.Cell{X: s.X, Y: s.Y}
			if !g.InBounds(c) {
				return nil, errors.ErrDecodeInput.GenWithStackByArgs(fmt.Sprintf("%s: %v is outside the grid", key.Value, c))
			}
			p[t] = g.Loc(c)
		}
		doc.Paths[i] = p
	}
	return doc, nil
}

// LoadSchedule reads an output document from a file.
func LoadSchedule(path string, g *core.Grid) (*ScheduleDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrDecodeInput.GenWithStackByArgs(fmt.Sprintf("%s: %v", path, err))
	}
	defer f.Close()
	doc, err := ReadSchedule(f, g)
	if err != nil {
		return nil, errors.Annotate(err, path)
	}
	return doc, nil
}
