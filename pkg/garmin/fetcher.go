package garmin

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	shared "github.com/bndxn/secure-app/pkg"
	"github.com/bndxn/secure-app/pkg/domain/fitlaps"
	"github.com/bndxn/secure-app/pkg/domain/format"
	"github.com/bndxn/secure-app/pkg/domain/tcx"
	"github.com/bndxn/secure-app/pkg/types"
)

// Fetcher pulls recent activities from Garmin Connect and normalizes them
// into domain records, enriching runs with per-lap interval rows.
type Fetcher struct {
	api       API
	cacheRoot string
	logger    *slog.Logger
}

func NewFetcher(api API, cacheRoot string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{api: api, cacheRoot: cacheRoot, logger: logger}
}

// FetchRecent logs in, lists the most recent activities and returns them as
// normalized records in platform order (most recent first). Running
// activities carry interval rows when lap data could be extracted; enrichment
// failures degrade to an empty interval list, never to a failed fetch.
func (f *Fetcher) FetchRecent(ctx context.Context, count int) ([]types.ActivityRecord, error) {
	if err := f.api.Login(ctx); err != nil {
		return nil, fmt.Errorf("garmin login: %w", err)
	}
	defer f.api.Logout(ctx)

	scratch := filepath.Join(f.cacheRoot, shared.ScratchDirName)
	f.wipeScratch(scratch)
	defer f.wipeScratch(scratch)

	activities, err := f.api.ListActivities(ctx, 0, count)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	f.logger.Info("Fetched activities", "count", len(activities))

	records := make([]types.ActivityRecord, 0, len(activities))
	for _, a := range activities {
		rec := normalize(a)
		if rec.ActivityType == "running" && rec.ActivityID != 0 {
			rows, source := f.intervalsFor(ctx, rec.ActivityID, scratch)
			rec.Intervals = rows
			f.logger.Info("Interval extraction", "activity_id", rec.ActivityID, "source", source, "laps", len(rows))
		}
		records = append(records, rec)
	}
	return records, nil
}

// normalize maps a platform record into the domain shape: meters become
// kilometers rounded to 2 decimals, seconds become minutes rounded to 1.
// Records missing the primary identifier fall back to the original one so
// interval enrichment still has an id to download with.
func normalize(a Activity) types.ActivityRecord {
	id := a.ActivityID
	if id == 0 {
		id = a.ActivityIDOriginal
	}
	rec := types.ActivityRecord{
		ActivityID:     id,
		StartTimeLocal: a.StartTimeLocal,
		ActivityType:   a.ActivityType.TypeKey,
	}
	if a.Distance != nil {
		km := format.RoundKm(*a.Distance / 1000)
		rec.DistanceKm = &km
	}
	if a.Duration != nil {
		mins := format.RoundMinutes(*a.Duration / 60)
		rec.DurationMin = &mins
	}
	if a.ActivityName != "" {
		name := a.ActivityName
		rec.Name = &name
	} else if a.ActivityNameOriginal != "" {
		name := a.ActivityNameOriginal
		rec.Name = &name
	}
	return rec
}

// intervalsFor tries the TCX export first, then falls back to the original
// device archive, which may carry either a .tcx or a .fit file. Downloaded
// files are staged under the scratch directory so a cycle leaves nothing
// behind outside it.
func (f *Fetcher) intervalsFor(ctx context.Context, activityID int64, scratch string) ([]string, string) {
	if data, err := f.api.DownloadActivity(ctx, activityID, FormatTCX); err == nil {
		f.stage(scratch, fmt.Sprintf("%d.tcx", activityID), data)
		if rows := tcx.IntervalRows(data); rows != nil {
			return rows, "tcx"
		}
	} else {
		f.logger.Warn("TCX download failed", "activity_id", activityID, "error", err)
	}

	data, err := f.api.DownloadActivity(ctx, activityID, FormatOriginal)
	if err != nil {
		f.logger.Warn("Original download failed", "activity_id", activityID, "error", err)
		return nil, "none"
	}
	zipPath := f.stage(scratch, fmt.Sprintf("%d.zip", activityID), data)
	if zipPath == "" {
		return nil, "none"
	}

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		f.logger.Warn("Original archive unreadable", "activity_id", activityID, "error", err)
		return nil, "none"
	}
	defer archive.Close()

	if entry := readArchiveEntry(&archive.Reader, ".tcx"); entry != nil {
		if rows := tcx.IntervalRows(entry); rows != nil {
			return rows, "original-tcx"
		}
	}
	if entry := readArchiveEntry(&archive.Reader, ".fit"); entry != nil {
		if rows := fitlaps.IntervalRows(entry); rows != nil {
			return rows, "original-fit"
		}
	}
	return nil, "none"
}

// stage writes downloaded bytes into the scratch directory and returns the
// full path, or "" if staging failed.
func (f *Fetcher) stage(scratch, name string, data []byte) string {
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		f.logger.Warn("Scratch dir create failed", "dir", scratch, "error", err)
		return ""
	}
	path := filepath.Join(scratch, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.logger.Warn("Scratch write failed", "path", path, "error", err)
		return ""
	}
	return path
}

// readArchiveEntry returns the contents of the first archive entry with the
// given extension, or nil if there is none or it cannot be read.
func readArchiveEntry(r *zip.Reader, ext string) []byte {
	for _, file := range r.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ext) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil
		}
		return data
	}
	return nil
}

// wipeScratch empties the scratch directory. The basename guard refuses to
// touch any directory not named after the dedicated scratch dir, so a
// misconfigured cache root can never cause a wipe outside it.
func (f *Fetcher) wipeScratch(dir string) {
	if filepath.Base(filepath.Clean(dir)) != shared.ScratchDirName {
		f.logger.Warn("Refusing to wipe non-scratch directory", "dir", dir)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("Scratch dir unreadable", "dir", dir, "error", err)
		}
		return
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			f.logger.Warn("Scratch entry removal failed", "name", entry.Name(), "error", err)
		}
	}
}
