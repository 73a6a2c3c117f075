/*
Copyright 2022 The Katalyst Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/kubewharf/katalyst-membound/pkg/bound"
	"github.com/kubewharf/katalyst-membound/pkg/config/generic"
)

var seriesColors = []color.Color{
	color.RGBA{R: 0x57, G: 0x4b, B: 0x60, A: 0xff},
	color.RGBA{R: 0xd3, G: 0xd0, B: 0xcb, A: 0xff},
	color.RGBA{R: 0x8a, G: 0x9b, B: 0x8e, A: 0xff},
}

const (
	barWidth    = 7 * vg.Millimeter
	panelWidth  = 9 * vg.Centimeter
	panelHeight = 10 * vg.Centimeter
)

// series is one target in a panel: measured bars with the headroom up to
// the bound stacked on top.
type series struct {
	name     string
	bounds   []float64
	measured []float64
	overhead []Overhead
}

type panel struct {
	title  string
	xLabel string
	ticks  []string
	series []series
}

// panelGroup puts targets that share a formula family into one panel.
func panelGroup(s bound.Scenario) string {
	switch {
	case s.Kind == bound.MemoryKindSPM:
		return "SPM"
	case s.Hit:
		return "LLC HIT"
	default:
		return "LLC MISS + Hyper"
	}
}

func buildPanels(r *Report) []panel {
	var panels []panel

	isolation := map[string]int{}
	for _, t := range r.Targets {
		group := panelGroup(t.Scenario)
		i, ok := isolation[group]
		if !ok {
			i = len(panels)
			isolation[group] = i
			panels = append(panels, panel{
				title:  "Isolation\n" + group,
				xLabel: "Burst Length",
				ticks:  itoa(r.BurstLengths),
			})
		}
		panels[i].series = append(panels[i].series, seriesOf(t.Name, t.Isolation))
	}

	interference := map[string]int{}
	for _, t := range r.Targets {
		if len(t.Interference) == 0 {
			continue
		}
		group := panelGroup(t.Scenario)
		i, ok := interference[group]
		if !ok {
			i = len(panels)
			interference[group] = i
			panels = append(panels, panel{
				title:  fmt.Sprintf("Interference, burst %d\n%s", r.InterferenceBurstLength, group),
				xLabel: "Contending initiators",
				ticks:  itoa(r.ContentionLevels),
			})
		}
		panels[i].series = append(panels[i].series, seriesOf(t.Name, t.Interference))
	}

	return panels
}

func seriesOf(name string, rows []Row) series {
	s := series{name: name}
	for _, row := range rows {
		s.bounds = append(s.bounds, float64(row.Bound))
		s.measured = append(s.measured, row.Measured)
		s.overhead = append(s.overhead, row.Overhead)
	}
	return s
}

func itoa(values []int) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		res = append(res, strconv.Itoa(v))
	}
	return res
}

func (pn panel) plot() (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = pn.title
	p.X.Label.Text = pn.xLabel
	p.Y.Label.Text = "Number of cycles"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Legend.Left = true

	n := len(pn.series)
	top := 0.0
	for k, s := range pn.series {
		measured, err := plotter.NewBarChart(plotter.Values(s.measured), barWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "measured bars of %s", s.name)
		}
		measured.Color = seriesColors[k%len(seriesColors)]
		measured.Offset = barOffset(k, n)

		headroom := make(plotter.Values, len(s.bounds))
		for i := range s.bounds {
			headroom[i] = math.Max(s.bounds[i]-s.measured[i], 0)
			top = math.Max(top, math.Max(s.bounds[i], s.measured[i]))
		}
		upper, err := plotter.NewBarChart(headroom, barWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "bound bars of %s", s.name)
		}
		upper.Color = color.White
		upper.StackOn(measured)

		labels, err := overheadLabels(s, k, measured.Offset)
		if err != nil {
			return nil, errors.Wrapf(err, "labels of %s", s.name)
		}

		p.Add(measured, upper, labels)
		p.Legend.Add(s.name, measured)
		p.Legend.Add(s.name+" - UB", upper)
	}

	p.Y.Max = top * (1.25 + 0.1*float64(n))
	p.NominalX(pn.ticks...)
	return p, nil
}

// barOffset centers the k-th of n bar series around its tick.
func barOffset(k, n int) vg.Length {
	return vg.Length(float64(k)-float64(n-1)/2) * barWidth
}

// overheadLabels prints the overhead of every bound above its bar; the
// labels of later series are lifted so they do not overlap.
func overheadLabels(s series, k int, offset vg.Length) (*plotter.Labels, error) {
	xys := make(plotter.XYs, len(s.bounds))
	texts := make([]string, len(s.bounds))
	for i := range s.bounds {
		xys[i].X = float64(i)
		xys[i].Y = math.Max(s.bounds[i], s.measured[i]) * (1.03 + 0.1*float64(k))
		texts[i] = s.overhead[i].String()
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	labels.XOffset = offset
	return labels, nil
}

// RenderCharts draws every panel side by side and saves the figure once
// per format as measurements_<burst>.<format> in dir.
func RenderCharts(dir string, r *Report, formats []string) ([]string, error) {
	panels := buildPanels(r)
	if len(panels) == 0 {
		return nil, nil
	}

	plots := make([]*plot.Plot, 0, len(panels))
	for _, pn := range panels {
		p, err := pn.plot()
		if err != nil {
			return nil, errors.Wrapf(err, "plot %q", pn.title)
		}
		plots = append(plots, p)
	}

	width := vg.Length(len(plots)) * panelWidth
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      5 * vg.Millimeter,
		PadTop:    3 * vg.Millimeter,
		PadBottom: 3 * vg.Millimeter,
		PadLeft:   3 * vg.Millimeter,
		PadRight:  3 * vg.Millimeter,
	}

	var written []string
	for _, format := range formats {
		var c vg.CanvasWriterTo
		switch format {
		case generic.ChartFormatSVG:
			c = vgsvg.New(width, panelHeight)
		case generic.ChartFormatPDF:
			c = vgpdf.New(width, panelHeight)
		default:
			return written, errors.Errorf("unsupported chart format %q", format)
		}

		dc := draw.New(c)
		for i, p := range plots {
			p.Draw(tiles.At(dc, i, 0))
		}

		path := filepath.Join(dir, fmt.Sprintf("measurements_%d.%s", r.InterferenceBurstLength, format))
		if err := writeCanvas(path, c); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCanvas(path string, c vg.CanvasWriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create chart %s", path)
	}
	if _, err := c.WriteTo(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write chart %s", path)
	}
	return f.Close()
}
