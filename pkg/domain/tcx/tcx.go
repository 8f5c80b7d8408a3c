// Package tcx extracts lap summaries from Garmin Training Center XML files.
// Lap data is best-effort enrichment: any parse problem yields "no data"
// rather than an error.
package tcx

import (
	"encoding/xml"
	"log/slog"
	"strconv"

	"github.com/bndxn/secure-app/pkg/domain/format"
)

// Namespace is the TrainingCenterDatabase v2 schema all activity exports use.
const Namespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"

type document struct {
	XMLName xml.Name `xml:"TrainingCenterDatabase"`
	Laps    []lap    `xml:"Activities>Activity>Lap"`
}

// Numeric lap fields are decoded as strings because Garmin exports sometimes
// contain empty elements, which strconv treats as absent rather than invalid.
type lap struct {
	TotalTimeSeconds string `xml:"TotalTimeSeconds"`
	DistanceMeters   string `xml:"DistanceMeters"`
	Intensity        string `xml:"Intensity"`
	AvgHeartRate     string `xml:"AverageHeartRateBpm>Value"`
}

// IntervalRows parses a TCX document and returns one formatted display row
// per lap, in document order. It returns nil (not an empty slice) when the
// document has no laps or cannot be parsed; callers treat both as "no
// interval data". TCX carries no average speed, so pace always derives from
// distance/duration.
func IntervalRows(data []byte) []string {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		slog.Warn("tcx parse error", "error", err)
		return nil
	}

	var rows []string
	for _, l := range doc.Laps {
		label := l.Intensity
		if label == "" {
			label = "lap"
		}
		rows = append(rows, format.FormatIntervalRow(
			label,
			parseFloat(l.DistanceMeters),
			parseFloat(l.TotalTimeSeconds),
			nil, // avg speed not present in this format
			parseFloat(l.AvgHeartRate),
		))
	}
	return rows
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
