package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDatasetLoad(t *testing.T) {
	before := testutil.ToFloat64(DatasetLoadsTotal.WithLabelValues("keeper", "ok"))
	ObserveDatasetLoad("keeper", "ok", 42, 150*time.Millisecond)

	if got := testutil.ToFloat64(DatasetLoadsTotal.WithLabelValues("keeper", "ok")); got != before+1 {
		t.Fatalf("loads=%v want %v", got, before+1)
	}
	if got := testutil.ToFloat64(DatasetRows.WithLabelValues("keeper")); got != 42 {
		t.Fatalf("rows gauge=%v want 42", got)
	}
}

func TestObserveResultCache(t *testing.T) {
	hits := testutil.ToFloat64(ResultCacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(ResultCacheLookupsTotal.WithLabelValues("miss"))

	ObserveResultCache(true)
	ObserveResultCache(false)
	ObserveResultCache(false)

	if got := testutil.ToFloat64(ResultCacheLookupsTotal.WithLabelValues("hit")); got != hits+1 {
		t.Fatalf("hits=%v", got)
	}
	if got := testutil.ToFloat64(ResultCacheLookupsTotal.WithLabelValues("miss")); got != misses+2 {
		t.Fatalf("misses=%v", got)
	}
}
