package vizdata

import "f1led-go/types"

// SampleRateMs is the cadence of the built-in dataset.
const SampleRateMs = 500

var sampleDrivers = [types.NumDrivers]uint32{1, 2, 4, 10, 11, 14, 16, 18, 20, 22, 23, 24, 27, 31, 40, 44, 55, 63, 77, 81}

// Board LED numbers (1-based), one row per frame, columns as sampleDrivers.
var sampleLEDs = [...][types.NumDrivers]uint8{
	{25, 29, 47, 40, 48, 13, 65, 11, 53, 9, 50, 85, 39, 95, 18, 51, 75, 51, 57, 60},
	{25, 30, 47, 41, 48, 14, 66, 11, 53, 9, 50, 86, 40, 96, 19, 51, 75, 51, 57, 60},
	{26, 30, 47, 42, 48, 14, 66, 11, 54, 10, 50, 86, 41, 96, 19, 51, 76, 51, 57, 61},
	{26, 31, 48, 42, 48, 14, 66, 11, 54, 10, 50, 87, 41, 1, 20, 51, 76, 51, 57, 61},
	{26, 31, 48, 43, 49, 15, 67, 12, 54, 10, 50, 87, 42, 1, 20, 51, 77, 51, 57, 61},
	{26, 31, 48, 43, 49, 15, 67, 12, 54, 10, 50, 87, 42, 1, 20, 51, 77, 51, 57, 62},
	{26, 31, 48, 43, 49, 15, 67, 12, 54, 10, 50, 87, 42, 1, 21, 51, 77, 51, 58, 62},
	{27, 32, 48, 44, 49, 16, 67, 13, 54, 10, 50, 88, 43, 2, 21, 51, 78, 51, 58, 62},
	{27, 32, 48, 44, 49, 16, 67, 13, 54, 11, 50, 88, 43, 2, 22, 51, 79, 51, 58, 63},
	{27, 32, 48, 44, 49, 17, 68, 13, 54, 11, 50, 88, 43, 3, 22, 51, 79, 51, 58, 63},
}

var sample = buildSample()

func buildSample() types.VisualizationData {
	frames := make([]types.UpdateFrame, len(sampleLEDs))
	for i, row := range sampleLEDs {
		ps := make([]types.DriverPosition, types.NumDrivers)
		for j, led := range row {
			ps[j] = types.DriverPosition{Driver: sampleDrivers[j], LED: int(led) - 1}
		}
		frames[i].Drivers = ps
	}
	return types.VisualizationData{UpdateRateMs: SampleRateMs, Frames: frames}
}

// Sample returns the hand-made 10-frame lap excerpt. Read-only.
func Sample() types.VisualizationData { return sample }
