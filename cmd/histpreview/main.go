// Histogram preview tool - interactive visualization with sliders.
//
// Draws a synthetic experimental reference next to the blurred density
// of samples drawn from it, to explore how n_samples and sigma shape
// the working histogram before committing to a run config.
//
// Usage: go run ./cmd/histpreview
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/remd/restraint"
)

const (
	windowWidth  = 1000
	windowHeight = 640
	plotWidth    = 620
	plotHeight   = 420
	panelWidth   = windowWidth - plotWidth - 30
)

// PreviewParams holds the grid and sampling parameters under the sliders.
type PreviewParams struct {
	NSamples  int
	Sigma     float32
	Peak1Mean float32
	Peak2Mean float32
	Peak1Wt   float32
	Seed      uint32
}

func defaultParams() PreviewParams {
	return PreviewParams{
		NSamples:  50,
		Sigma:     0.2,
		Peak1Mean: 1.0,
		Peak2Mean: 2.2,
		Peak1Wt:   0.6,
		Seed:      12345,
	}
}

const (
	nBins    = 40
	binWidth = 0.1
)

// regenerate rebuilds the reference, draws samples from it, and blurs
// them onto the grid.
func regenerate(params PreviewParams, reference, blurred []float64) error {
	peaks := []restraint.Peak{
		{Mean: float64(params.Peak1Mean), Sigma: 0.25, Weight: float64(params.Peak1Wt)},
		{Mean: float64(params.Peak2Mean), Sigma: 0.3, Weight: 1 - float64(params.Peak1Wt)},
	}
	ref, err := restraint.ReferenceFromPeaks(nBins, binWidth, peaks)
	if err != nil {
		return err
	}
	copy(reference, ref)

	// Sample from the mixture: pick a peak by weight, then its normal.
	src := rand.NewSource(uint64(params.Seed))
	rng := rand.New(src)
	samples := make([]float64, params.NSamples)
	for i := range samples {
		p := peaks[0]
		if rng.Float64() >= p.Weight {
			p = peaks[1]
		}
		samples[i] = distuv.Normal{Mu: p.Mean, Sigma: p.Sigma, Src: src}.Rand()
	}

	blur := restraint.NewBlurToGrid(0, binWidth, float64(params.Sigma))
	blur.Grid(samples, blurred)
	return nil
}

// drawHistogram renders a grid as bars within the plot rectangle.
func drawHistogram(grid []float64, x, y, w, h int32, scale float64, col rl.Color) {
	barW := w / int32(len(grid))
	for i, v := range grid {
		barH := int32(v / scale * float64(h))
		if barH > h {
			barH = h
		}
		rl.DrawRectangle(x+int32(i)*barW, y+h-barH, barW-1, barH, col)
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Histogram Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	reference := make([]float64, nBins)
	blurred := make([]float64, nBins)
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			if err := regenerate(params, reference, blurred); err != nil {
				// Degenerate slider combinations just keep the last grid.
				fmt.Println(err)
			}
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Plot area: reference in gray behind, blurred samples in blue.
		scale := 0.0
		for _, v := range reference {
			if v > scale {
				scale = v
			}
		}
		for _, v := range blurred {
			if v > scale {
				scale = v
			}
		}
		if scale == 0 {
			scale = 1
		}

		drawHistogram(reference, 10, 10, plotWidth, plotHeight, scale, rl.LightGray)
		drawHistogram(blurred, 10, 10, plotWidth, plotHeight, scale, rl.Fade(rl.Blue, 0.6))
		rl.DrawRectangleLines(10, 10, plotWidth, plotHeight, rl.DarkGray)

		statsY := int32(plotHeight + 25)
		rl.DrawText("gray: experimental reference   blue: blurred sample density", 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("%d bins x %.2f nm, grid 0 - %.1f nm", nBins, binWidth, float64(nBins)*binWidth), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(plotWidth + 20)
		panelY := float32(10)

		rl.DrawText("Blur Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Sigma slider
		rl.DrawText("Sigma (blur width, nm)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSigma := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.02", "0.8",
			params.Sigma, 0.02, 0.8,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Sigma), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSigma != params.Sigma {
			params.Sigma = newSigma
			needsRegen = true
		}
		panelY += 35

		// Sample count slider
		rl.DrawText("Samples per window", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSamples := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"2", "500",
			float32(params.NSamples), 2, 500,
		)
		rl.DrawText(fmt.Sprintf("%d", params.NSamples), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSamples) != params.NSamples {
			params.NSamples = int(newSamples)
			needsRegen = true
		}
		panelY += 35

		// Peak 1 mean slider
		rl.DrawText("Peak 1 mean (nm)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newP1 := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.2", "3.8",
			params.Peak1Mean, 0.2, 3.8,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Peak1Mean), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newP1 != params.Peak1Mean {
			params.Peak1Mean = newP1
			needsRegen = true
		}
		panelY += 35

		// Peak 2 mean slider
		rl.DrawText("Peak 2 mean (nm)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newP2 := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.2", "3.8",
			params.Peak2Mean, 0.2, 3.8,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Peak2Mean), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newP2 != params.Peak2Mean {
			params.Peak2Mean = newP2
			needsRegen = true
		}
		panelY += 35

		// Peak 1 weight slider
		rl.DrawText("Peak 1 weight", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newWt := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.05", "0.95",
			params.Peak1Wt, 0.05, 0.95,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Peak1Wt), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newWt != params.Peak1Wt {
			params.Peak1Wt = newWt
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Resample") {
			params.Seed = uint32(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsRegen = true
		}

		rl.EndDrawing()
	}
}
