package core

import "sync"

const avgWindow uint8 = 30

type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [avgWindow]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			MStimes: [avgWindow]float64{0},
		}
	})
	return nil
}

// MetricsUpdate folds one frame's wall time into the rolling averages.
func MetricsUpdate(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	metricsState.MStimes[metricsState.FrameAVGCounter] = frameMS
	if metricsState.FrameAVGCounter == avgWindow-1 {
		for i := uint8(0); i < avgWindow; i++ {
			metricsState.MSavg += metricsState.MStimes[i]
		}
		metricsState.MSavg /= float64(avgWindow)
	}
	metricsState.FrameAVGCounter++
	metricsState.FrameAVGCounter %= avgWindow

	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	metricsState.Frames++
}

func MetricsFPS() float64 {
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	return metricsState.FPS, metricsState.MSavg
}
