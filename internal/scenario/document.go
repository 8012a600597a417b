// Package scenario reads and writes the YAML documents of the solver: the
// input instance, the output schedule and the legacy agents file. It also
// generates benchmark instances.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
	"github.com/elektrokombinacija/cbsh-mapf/internal/errors"
	"gopkg.in/yaml.v3"
)

// Document is the input YAML layout.
type Document struct {
	Map    MapDocument     `yaml:"map"`
	Agents []AgentDocument `yaml:"agents"`
}

// MapDocument describes the grid.
type MapDocument struct {
	Dimensions [2]int   `yaml:"dimensions,flow"`
	Obstacles  [][2]int `yaml:"obstacles"`
}

// AgentDocument is one agent of the input.
type AgentDocument struct {
	Name  string `yaml:"name,omitempty"`
	Start [2]int `yaml:"start,flow"`
	Goal  [2]int `yaml:"goal,flow"`
}

// Load reads an instance from a YAML file.
func Load(path string) (*core.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrDecodeInput.GenWithStackByArgs(fmt.Sprintf("%s: %v", path, err))
	}
	defer f.Close()
	inst, err := Decode(f)
	if err != nil {
		return nil, errors.Annotate(err, path)
	}
	return inst, nil
}

// Decode reads an instance document and validates it.
func Decode(r io.Reader) (*core.Instance, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.ErrDecodeInput.GenWithStackByArgs(err.Error())
	}
	return doc.Instance()
}

// Instance converts the document to a validated instance.
func (d *Document) Instance() (*core.Instance, error) {
	w, h := d.Map.Dimensions[0], d.Map.Dimensions[1]
	if w <= 0 || h <= 0 {
		return nil, errors.ErrInvalidInstance.GenWithStackByArgs(fmt.Sprintf("map dimensions %dx%d must be positive", w, h))
	}
	obstacles := make([]core.Cell, 0, len(d.Map.Obstacles))
	for _, o := range d.Map.Obstacles {
		obstacles = append(obstacles, core.Cell{X: o[0], Y: o[1]})
	}
	inst := core.NewInstance(core.NewGrid(w, h, obstacles))
	for _, a := range d.Agents {
		inst.AddAgent(core.Cell{X: a.Start[0], Y: a.Start[1]}, core.Cell{X: a.Goal[0], Y: a.Goal[1]})
	}
	if err := inst.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return inst, nil
}

// NewDocument converts an instance to its input document.
func NewDocument(inst *core.Instance) *Document {
	g := inst.Grid
	d := &Document{Map: MapDocument{Dimensions: [2]int{g.Width, g.Height}}}
	for loc := 0; loc < g.Size(); loc++ {
		if g.Blocked(loc) {
			c := g.Cell(loc)
			d.Map.Obstacles = append(d.Map.Obstacles, [2]int{c.X, c.Y})
		}
	}
	for i, a := range inst.Agents {
		d.Agents = append(d.Agents, AgentDocument{
			Name:  fmt.Sprintf("agent%d", i),
			Start: [2]int{a.Start.X, a.Start.Y},
			Goal:  [2]int{a.Goal.X, a.Goal.Y},
		})
	}
	return d
}

// WriteInstance encodes inst as an input document.
func WriteInstance(w io.Writer, inst *core.Instance) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(inst)); err != nil {
		return errors.ErrWriteOutput.GenWithStackByArgs(err.Error())
	}
	return enc.Close()
}

// SaveInstance writes inst to a YAML file.
func SaveInstance(path string, inst *core.Instance) error {
	var buf bytes.Buffer
	if err := WriteInstance(&buf, inst); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ErrWriteOutput.GenWithStackByArgs(fmt.Sprintf("%s: %v", path, err))
	}
	return nil
}
