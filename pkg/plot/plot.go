// Package plot renders transfer curves next to the measured reference
// samples. Purely a reporting layer; nothing in the solvers depends on it.
package plot

import (
	"fmt"
	"sort"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"sidamp/pkg/fit"
)

func xys(samples []fit.Sample) plotter.XYs {
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = s.Vin
		pts[i].Y = s.Vout
	}
	return pts
}

// TransferPNG writes a PNG comparing the measured reference scatter with
// one or more solved or fitted curves.
func TransferPNG(path, title string, reference []fit.Sample, curves map[string][]fit.Sample) error {
	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = "Vin (V)"
	p.Y.Label.Text = "Vout (V)"
	p.Legend.Top = true

	if len(reference) > 0 {
		if err := plotutil.AddScatters(p, "measured", xys(reference)); err != nil {
			return fmt.Errorf("adding reference scatter: %w", err)
		}
	}

	names := make([]string, 0, len(curves))
	for name := range curves {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]interface{}, 0, 2*len(curves))
	for _, name := range names {
		args = append(args, name, xys(curves[name]))
	}
	if len(args) > 0 {
		if err := plotutil.AddLines(p, args...); err != nil {
			return fmt.Errorf("adding curves: %w", err)
		}
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
