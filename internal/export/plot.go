package export

import (
	"fmt"
	"image/color"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/statemetrics/internal/model"
)

// labelRankCutoff marks the states called out by name on the plot: anything
// in the top 3 of either ranking.
const labelRankCutoff = 3

// WriteScatterPlot renders crime rate (X) against average median price (Y),
// one point per state with both metrics defined, and saves it as a PNG.
// States with an undefined operand are left off the plot entirely.
func WriteScatterPlot(table *model.ResultTable, outputPath string) error {
	var pts plotter.XYs
	var labels plotter.XYLabels

	for _, r := range table.Records {
		if r.AvgMedianPrice == nil || r.CrimeRatePer100k == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: *r.CrimeRatePer100k, Y: *r.AvgMedianPrice})

		if topRanked(r) {
			labels.XYs = append(labels.XYs, plotter.XY{X: *r.CrimeRatePer100k, Y: *r.AvgMedianPrice})
			labels.Labels = append(labels.Labels, r.StateCode)
		}
	}

	p := plot.New()
	p.Title.Text = "Crime Rate vs. Median Housing Price by State\n" + correlationCaption(table.Correlation)
	p.X.Label.Text = "Violent Crime Rate per 100,000 people"
	p.Y.Label.Text = "Average Median Housing Price"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return eris.Wrap(err, "export: build scatter")
	}
	scatter.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	if len(labels.Labels) > 0 {
		lbl, err := plotter.NewLabels(labels)
		if err != nil {
			return eris.Wrap(err, "export: build labels")
		}
		p.Add(lbl)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, outputPath); err != nil {
		return eris.Wrap(err, "export: save plot")
	}

	zap.L().Info("wrote scatter plot",
		zap.String("path", outputPath),
		zap.Int("points", len(pts)),
	)
	return nil
}

func topRanked(r model.StateRecord) bool {
	return (r.CrimeRank != nil && *r.CrimeRank <= labelRankCutoff) ||
		(r.PriceRank != nil && *r.PriceRank <= labelRankCutoff)
}

func correlationCaption(corr *float64) string {
	if corr == nil {
		return "correlation: undefined"
	}
	return fmt.Sprintf("correlation: %.4f", *corr)
}
