// Package fitlaps extracts lap summaries from FIT activity files. Garmin's
// ORIGINAL download is a zip that usually holds a .fit rather than a .tcx, so
// this is the second-chance path for interval enrichment.
package fitlaps

import (
	"bytes"
	"log/slog"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/bndxn/secure-app/pkg/domain/format"
)

// IntervalRows decodes a FIT file and returns one formatted display row per
// lap message, in file order. Like the TCX extractor it returns nil on zero
// laps or any decode failure. FIT laps carry an average speed, so pace is
// derived from speed when the field is populated.
func IntervalRows(data []byte) []string {
	fitDec := decoder.New(bytes.NewReader(data))

	var rows []string
	for fitDec.Next() {
		fitData, err := fitDec.Decode()
		if err != nil {
			slog.Warn("fit decode error", "error", err)
			return nil
		}

		for _, msg := range fitData.Messages {
			if msg.Num != typedef.MesgNumLap {
				continue
			}
			lap := mesgdef.NewLap(&msg)
			rows = append(rows, format.FormatIntervalRow(
				intensityLabel(lap.Intensity),
				lapDistance(lap),
				lapDuration(lap),
				lapAvgSpeed(lap),
				lapAvgHR(lap),
			))
		}
	}
	return rows
}

// Raw FIT fields use sentinel "invalid" values and fixed scales:
// elapsed time ms, distance cm, speed mm/s.

func lapDuration(lap *mesgdef.Lap) *float64 {
	if lap.TotalElapsedTime == basetype.Uint32Invalid {
		return nil
	}
	v := float64(lap.TotalElapsedTime) / 1000
	return &v
}

func lapDistance(lap *mesgdef.Lap) *float64 {
	if lap.TotalDistance == basetype.Uint32Invalid {
		return nil
	}
	v := float64(lap.TotalDistance) / 100
	return &v
}

func lapAvgSpeed(lap *mesgdef.Lap) *float64 {
	if lap.EnhancedAvgSpeed != basetype.Uint32Invalid {
		v := float64(lap.EnhancedAvgSpeed) / 1000
		return &v
	}
	if lap.AvgSpeed != basetype.Uint16Invalid {
		v := float64(lap.AvgSpeed) / 1000
		return &v
	}
	return nil
}

func lapAvgHR(lap *mesgdef.Lap) *float64 {
	if lap.AvgHeartRate == basetype.Uint8Invalid {
		return nil
	}
	v := float64(lap.AvgHeartRate)
	return &v
}

func intensityLabel(intensity typedef.Intensity) string {
	switch intensity {
	case typedef.IntensityActive:
		return "Active"
	case typedef.IntensityRest:
		return "Rest"
	case typedef.IntensityWarmup:
		return "Warmup"
	case typedef.IntensityCooldown:
		return "Cooldown"
	default:
		return "lap"
	}
}
