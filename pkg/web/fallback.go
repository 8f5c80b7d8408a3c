package web

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/bndxn/secure-app/pkg/types"
)

const fallbackRunLimit = 15

// FormatRunsFallback builds a plain HTML list from the stored runs for
// bundles that carry no pre-rendered list. Missing fields render as "?",
// heart rate is never available at this level of detail.
func FormatRunsFallback(runs []types.ActivityRecord) string {
	if len(runs) == 0 {
		return "<ul><li>No recent runs.</li></ul>"
	}
	if len(runs) > fallbackRunLimit {
		runs = runs[:fallbackRunLimit]
	}

	var b strings.Builder
	b.WriteString("<ul>")
	for _, r := range runs {
		date := "?"
		if fields := strings.Fields(r.StartTimeLocal); len(fields) > 0 {
			date = fields[0]
		}

		name := "Run"
		if r.Name != nil && *r.Name != "" {
			name = *r.Name
		}

		dist := "?"
		if r.DistanceKm != nil {
			dist = strconv.FormatFloat(*r.DistanceKm, 'f', -1, 64)
		}

		dur := "?"
		if r.DurationMin != nil {
			total := int(*r.DurationMin)
			dur = fmt.Sprintf("%d:%02d", total/60, total%60)
		}

		b.WriteString(fmt.Sprintf("<li>%s - %s, %s km, %s, avg HR N/A</li>", date, html.EscapeString(name), dist, dur))
	}
	b.WriteString("</ul>")
	return b.String()
}
