package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

// CSV writes one row per output time: time,S,E,I,R.
type CSV struct {
	W io.Writer
}

func (c *CSV) Render(_ string, tr *sim.Trajectory) error {
	return WriteCSV(c.W, tr)
}

func WriteCSV(w io.Writer, tr *sim.Trajectory) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, epidemic.CompartmentNames[:]...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for k, x := range tr.States {
		row[0] = strconv.FormatFloat(tr.Times[k], 'g', -1, 64)
		for i, v := range x {
			row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
