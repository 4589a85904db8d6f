package history

import (
	"fmt"
	"math"
	"time"
)

type TrendPoint struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Mode              string    `json:"mode"`
	FileCount         int       `json:"file_count"`
	FunctionCount     int       `json:"function_count"`
	ExternalCount     int       `json:"external_count"`
	DeltaFiles        int       `json:"delta_files"`
	DeltaFunctions    int       `json:"delta_functions"`
	DeltaExternals    int       `json:"delta_externals"`
	FunctionGrowthPct float64   `json:"function_growth_pct"`
	AvgFunctions      float64   `json:"avg_functions"`
	AvgExternals      float64   `json:"avg_externals"`
	WindowHours       float64   `json:"window_hours"`
}

type TrendReport struct {
	ProjectKey    string       `json:"project_key"`
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}

// BuildTrendReport turns chronologically ordered snapshots into per-run
// deltas with moving averages over window.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			ID:            current.ID,
			Timestamp:     current.Timestamp,
			Mode:          current.Mode,
			FileCount:     current.FileCount,
			FunctionCount: current.FunctionCount,
			ExternalCount: current.ExternalCount,
		}
		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaFunctions = current.FunctionCount - prev.FunctionCount
			point.DeltaExternals = current.ExternalCount - prev.ExternalCount
			if prev.FunctionCount > 0 {
				point.FunctionGrowthPct = round2(float64(point.DeltaFunctions) / float64(prev.FunctionCount) * 100)
			}
		}

		avgFunctions, avgExternals := movingAverages(snapshots, i, window)
		point.AvgFunctions = round2(avgFunctions)
		point.AvgExternals = round2(avgExternals)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		ProjectKey:    normalizeKey(projectKey),
		SchemaVersion: SchemaVersion,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverages(snapshots []Snapshot, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(snapshots[index].FunctionCount), float64(snapshots[index].ExternalCount)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	var functions, externals, count int
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		functions += snapshots[i].FunctionCount
		externals += snapshots[i].ExternalCount
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(functions) / float64(count), float64(externals) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
