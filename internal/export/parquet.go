package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

type lapRow struct {
	LapNumber     int32   `parquet:"name=lap_number, type=INT32"`
	StartMs       int64   `parquet:"name=start_ms, type=INT64"`
	EndMs         int64   `parquet:"name=end_ms, type=INT64"`
	LapTimeS      float64 `parquet:"name=lap_time_s, type=DOUBLE"`
	StrokeCount   int32   `parquet:"name=stroke_count, type=INT32"`
	StrokeRateSpm float64 `parquet:"name=stroke_rate_spm, type=DOUBLE"`
	StrokeRateHz  float64 `parquet:"name=stroke_rate_hz, type=DOUBLE"`
	StrokeLengthM float64 `parquet:"name=stroke_length_m, type=DOUBLE"`
	VelocityMPerS float64 `parquet:"name=velocity_m_per_s, type=DOUBLE"`
	StrokeIndex   float64 `parquet:"name=stroke_index, type=DOUBLE"`
	StrokeType    string  `parquet:"name=stroke_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

type sampleRow struct {
	TimestampMs int64   `parquet:"name=timestamp_ms, type=INT64"`
	AccelX      float64 `parquet:"name=accel_x, type=DOUBLE"`
	AccelY      float64 `parquet:"name=accel_y, type=DOUBLE"`
	AccelZ      float64 `parquet:"name=accel_z, type=DOUBLE"`
	GyroX       float64 `parquet:"name=gyro_x, type=DOUBLE"`
	GyroY       float64 `parquet:"name=gyro_y, type=DOUBLE"`
	GyroZ       float64 `parquet:"name=gyro_z, type=DOUBLE"`
	HeartRate   float64 `parquet:"name=heart_rate, type=DOUBLE"`
	StrokeType  string  `parquet:"name=stroke_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// Session writes <id>_laps.parquet and <id>_samples.parquet into dir and
// returns the paths written. Samples are skipped when there are none.
func Session(dir, sessionID string, laps []analysis.LapMetrics, samples []analysis.Sample) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	lapsPath := filepath.Join(dir, sessionID+"_laps.parquet")
	if err := WriteLaps(lapsPath, laps); err != nil {
		return nil, fmt.Errorf("write laps parquet: %w", err)
	}
	paths = append(paths, lapsPath)

	if len(samples) > 0 {
		samplesPath := filepath.Join(dir, sessionID+"_samples.parquet")
		if err := WriteSamples(samplesPath, samples); err != nil {
			return paths, fmt.Errorf("write samples parquet: %w", err)
		}
		paths = append(paths, samplesPath)
	}
	return paths, nil
}

// WriteLaps writes one row per lap
func WriteLaps(path string, laps []analysis.LapMetrics) error {
	rows := make([]any, len(laps))
	for i, l := range laps {
		rows[i] = lapRow{
			LapNumber:     int32(l.LapNumber),
			StartMs:       l.StartMs,
			EndMs:         l.EndMs,
			LapTimeS:      l.LapTimeSeconds,
			StrokeCount:   int32(l.StrokeCount),
			StrokeRateSpm: l.StrokeRateSpm,
			StrokeRateHz:  l.StrokeRatePerSecond,
			StrokeLengthM: l.StrokeLengthMeters,
			VelocityMPerS: l.VelocityMetersPerSecond,
			StrokeIndex:   l.StrokeIndex,
			StrokeType:    l.StrokeType,
		}
	}
	return write(path, new(lapRow), rows)
}

// WriteSamples writes one row per sample. Missing channels are NaN.
func WriteSamples(path string, samples []analysis.Sample) error {
	rows := make([]any, len(samples))
	for i, s := range samples {
		rows[i] = sampleRow{
			TimestampMs: s.Timestamp,
			AccelX:      valueOrNaN(s.AccelX),
			AccelY:      valueOrNaN(s.AccelY),
			AccelZ:      valueOrNaN(s.AccelZ),
			GyroX:       valueOrNaN(s.GyroX),
			GyroY:       valueOrNaN(s.GyroY),
			GyroZ:       valueOrNaN(s.GyroZ),
			HeartRate:   valueOrNaN(s.HeartRate),
			StrokeType:  s.StrokeType,
		}
	}
	return write(path, new(sampleRow), rows)
}

func write(path string, schema any, rows []any) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
