package garmin

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	shared "github.com/bndxn/secure-app/pkg"
)

type mockAPI struct {
	LoginFunc    func(ctx context.Context) error
	ListFunc     func(ctx context.Context, start, limit int) ([]Activity, error)
	DownloadFunc func(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error)
	logoutCalls  int
}

func (m *mockAPI) Login(ctx context.Context) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return nil
}

func (m *mockAPI) ListActivities(ctx context.Context, start, limit int) ([]Activity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, start, limit)
	}
	return nil, nil
}

func (m *mockAPI) DownloadActivity(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, activityID, format)
	}
	return nil, errors.New("no download configured")
}

func (m *mockAPI) Logout(ctx context.Context) {
	m.logoutCalls++
}

const sampleTCX = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Running">
      <Lap StartTime="2026-02-24T07:00:00Z">
        <TotalTimeSeconds>300</TotalTimeSeconds>
        <DistanceMeters>1000</DistanceMeters>
        <AverageHeartRateBpm><Value>165</Value></AverageHeartRateBpm>
        <Intensity>Active</Intensity>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func floatPtr(v float64) *float64 { return &v }

func TestFetchRecentNormalizesAndEnriches(t *testing.T) {
	api := &mockAPI{
		ListFunc: func(ctx context.Context, start, limit int) ([]Activity, error) {
			run := Activity{
				ActivityID:           101,
				ActivityNameOriginal: "Morning Run",
				StartTimeLocal:       "2026-02-24 07:00:00",
				Distance:             floatPtr(10000),
				Duration:             floatPtr(3600),
			}
			run.ActivityType.TypeKey = "running"

			ride := Activity{
				ActivityID:     102,
				ActivityName:   "Commute",
				StartTimeLocal: "2026-02-23 08:00:00",
			}
			ride.ActivityType.TypeKey = "cycling"
			return []Activity{run, ride}, nil
		},
		DownloadFunc: func(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
			if activityID != 101 {
				t.Errorf("unexpected download for activity %d", activityID)
			}
			if format != FormatTCX {
				return nil, errors.New("not available")
			}
			return []byte(sampleTCX), nil
		},
	}

	f := NewFetcher(api, t.TempDir(), nil)
	records, err := f.FetchRecent(context.Background(), 30)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	run := records[0]
	if run.DistanceKm == nil || *run.DistanceKm != 10 {
		t.Errorf("DistanceKm = %v, want 10", run.DistanceKm)
	}
	if run.DurationMin == nil || *run.DurationMin != 60 {
		t.Errorf("DurationMin = %v, want 60", run.DurationMin)
	}
	if run.Name == nil || *run.Name != "Morning Run" {
		t.Errorf("Name = %v, want Morning Run", run.Name)
	}
	if len(run.Intervals) != 1 {
		t.Fatalf("got %d intervals, want 1", len(run.Intervals))
	}
	want := "Active - 1km - 5:00 (duration) - 5:00 min/km pace - 165 HR"
	if run.Intervals[0] != want {
		t.Errorf("interval = %q, want %q", run.Intervals[0], want)
	}

	// Non-running activities are never enriched.
	if records[1].Intervals != nil {
		t.Errorf("cycling activity got intervals %v", records[1].Intervals)
	}
	if api.logoutCalls != 1 {
		t.Errorf("logout called %d times, want 1", api.logoutCalls)
	}
}

func TestFetchRecentFallsBackToOriginalActivityID(t *testing.T) {
	var downloadedID int64
	api := &mockAPI{
		ListFunc: func(ctx context.Context, start, limit int) ([]Activity, error) {
			run := Activity{
				ActivityIDOriginal: 202,
				StartTimeLocal:     "2026-02-24 07:00:00",
			}
			run.ActivityType.TypeKey = "running"
			return []Activity{run}, nil
		},
		DownloadFunc: func(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
			downloadedID = activityID
			return []byte(sampleTCX), nil
		},
	}

	f := NewFetcher(api, t.TempDir(), nil)
	records, err := f.FetchRecent(context.Background(), 30)
	if err != nil {
		t.Fatalf("FetchRecent: %v", err)
	}
	if records[0].ActivityID != 202 {
		t.Errorf("ActivityID = %d, want fallback id 202", records[0].ActivityID)
	}
	if downloadedID != 202 {
		t.Errorf("enrichment downloaded id %d, want 202", downloadedID)
	}
	if len(records[0].Intervals) != 1 {
		t.Errorf("got %d intervals, want 1", len(records[0].Intervals))
	}
}

func TestFetchRecentLoginFailureIsFatal(t *testing.T) {
	api := &mockAPI{
		LoginFunc: func(ctx context.Context) error { return errors.New("bad credentials") },
	}

	f := NewFetcher(api, t.TempDir(), nil)
	if _, err := f.FetchRecent(context.Background(), 30); err == nil {
		t.Fatal("expected error when login fails")
	}
	if api.logoutCalls != 0 {
		t.Errorf("logout called %d times after failed login, want 0", api.logoutCalls)
	}
}

func TestIntervalsForFallsBackToOriginalArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("activity_101.tcx")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(sampleTCX)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	api := &mockAPI{
		DownloadFunc: func(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
			if format == FormatOriginal {
				return buf.Bytes(), nil
			}
			return nil, errors.New("tcx export unavailable")
		},
	}

	f := NewFetcher(api, t.TempDir(), nil)
	scratch := filepath.Join(t.TempDir(), shared.ScratchDirName)
	rows, source := f.intervalsFor(context.Background(), 101, scratch)
	if source != "original-tcx" {
		t.Errorf("source = %q, want original-tcx", source)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestIntervalsForAllDownloadsFail(t *testing.T) {
	api := &mockAPI{
		DownloadFunc: func(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
			return nil, errors.New("gone")
		},
	}

	f := NewFetcher(api, t.TempDir(), nil)
	scratch := filepath.Join(t.TempDir(), shared.ScratchDirName)
	rows, source := f.intervalsFor(context.Background(), 101, scratch)
	if rows != nil || source != "none" {
		t.Errorf("got rows=%v source=%q, want nil/none", rows, source)
	}
}

func TestWipeScratchRefusesForeignDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "precious-data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(file, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(&mockAPI{}, t.TempDir(), nil)
	f.wipeScratch(dir)

	if _, err := os.Stat(file); err != nil {
		t.Errorf("file in non-scratch directory was removed: %v", err)
	}
}

func TestWipeScratchEmptiesScratchDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), shared.ScratchDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "101.tcx")
	if err := os.WriteFile(file, []byte("<tcx/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(&mockAPI{}, t.TempDir(), nil)
	f.wipeScratch(dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("scratch dir itself should survive: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch dir still has %d entries", len(entries))
	}
}
