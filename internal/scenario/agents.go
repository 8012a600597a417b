package scenario

import (
	"bytes"
	"fmt"
	"io"

	"github.com/elektrokombinacija/cbsh-mapf/internal/core"
)

// WriteAgents writes the legacy agents file: the agent count on the first
// line, then one "sx,sy,gx,gy," line per agent.
func WriteAgents(w io.Writer, inst *core.Instance) error {
	if _, err := fmt.Fprintln(w, len(inst.Agents)); err != nil {
		return err
	}
	for _, a := range inst.Agents {
		if _, err := fmt.Fprintf(w, "%d,%d,%d,%d,\n", a.Start.X, a.Start.Y, a.Goal.X, a.Goal.Y); err != nil {
			return err
		}
	}
	return nil
}

// SaveAgents writes the legacy agents file to path.
func SaveAgents(path string, inst *core.Instance) error {
	var buf bytes.Buffer
	if err := WriteAgents(&buf, inst); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
