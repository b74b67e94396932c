// Command map-plot renders the landmark map from a simulation summary
// (output_file.json) as a standalone HTML scatter chart, one series per
// landmark, in world-frame coordinates.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gurion-robotics/slamsim/internal/dataio"
)

var (
	input  = flag.String("in", dataio.SummaryFileName, "Path to the simulation summary JSON")
	output = flag.String("out", "landmark_map.html", "Path to write the HTML chart")
)

func main() {
	flag.Parse()

	if err := render(*input, *output); err != nil {
		fmt.Fprintf(os.Stderr, "map-plot: %v\n", err)
		os.Exit(1)
	}
	log.Printf("wrote %s", *output)
}

func render(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read summary: %w", err)
	}
	var summary dataio.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return fmt.Errorf("failed to parse summary: %w", err)
	}

	// Symmetric axis ranges keep the world frame square.
	maxAbs := 0.0
	for _, lm := range summary.LandMarks {
		for _, p := range lm.Coordinates {
			if math.Abs(p.X) > maxAbs {
				maxAbs = math.Abs(p.X)
			}
			if math.Abs(p.Y) > maxAbs {
				maxAbs = math.Abs(p.Y)
			}
		}
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Landmark Map",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Landmark Map (world frame)",
			Subtitle: fmt.Sprintf("runtime=%d ticks, %d landmarks", summary.SystemRuntime, summary.NumLandmarks),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	for _, lm := range summary.LandMarks {
		points := make([]opts.ScatterData, 0, len(lm.Coordinates))
		for _, p := range lm.Coordinates {
			points = append(points, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
		name := lm.ID
		if lm.Description != "" {
			name = fmt.Sprintf("%s (%s)", lm.ID, lm.Description)
		}
		scatter.AddSeries(name, points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
