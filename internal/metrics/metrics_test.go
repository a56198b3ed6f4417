package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	RecordDBQuery("select", "tracks", 10*time.Millisecond, nil)
	if got := testutil.ToFloat64(DBQueryDuration.WithLabelValues("select", "tracks")); got == 0 {
		t.Error("expected duration histogram to observe a sample")
	}

	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "playlists"))
	RecordDBQuery("insert", "playlists", 5*time.Millisecond, errors.New("constraint failed"))
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "playlists"))
	if after != before+1 {
		t.Errorf("expected error counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestRecordDBQuery_NoErrorDoesNotIncrementErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "albums"))
	RecordDBQuery("select", "albums", time.Millisecond, nil)
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "albums"))
	if after != before {
		t.Errorf("error counter should not change on success, got %v -> %v", before, after)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/v1/catalog/tracks", "200"))
	RecordAPIRequest("GET", "/v1/catalog/tracks", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/v1/catalog/tracks", "200"))
	if after != before+1 {
		t.Errorf("expected requests counter to increment by 1, got %v -> %v", before, after)
	}
	if got := testutil.ToFloat64(APIRequestDuration.WithLabelValues("GET", "/v1/catalog/tracks")); got == 0 {
		t.Error("expected duration histogram to observe a sample")
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("expected gauge to increment, got %v -> %v", before, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("expected gauge to return to baseline, got %v", got)
	}
}

func TestRecordJobRun(t *testing.T) {
	before := testutil.ToFloat64(JobRunsTotal.WithLabelValues("popular-content", "success"))
	RecordJobRun("popular-content", 2*time.Second, nil)
	after := testutil.ToFloat64(JobRunsTotal.WithLabelValues("popular-content", "success"))
	if after != before+1 {
		t.Errorf("expected success counter to increment by 1, got %v -> %v", before, after)
	}

	beforeFail := testutil.ToFloat64(JobRunsTotal.WithLabelValues("integrity-watchdog", "failure"))
	RecordJobRun("integrity-watchdog", time.Second, errors.New("scan failed"))
	afterFail := testutil.ToFloat64(JobRunsTotal.WithLabelValues("integrity-watchdog", "failure"))
	if afterFail != beforeFail+1 {
		t.Errorf("expected failure counter to increment by 1, got %v -> %v", beforeFail, afterFail)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	const n = 50
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			RecordDBQuery("select", "tracks", time.Microsecond, nil)
			RecordAPIRequest("GET", "/v1/catalog/tracks", "200", time.Microsecond)
			TrackActiveRequest(true)
			TrackActiveRequest(false)
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
}
