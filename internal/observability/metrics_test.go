package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/tlgen/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(combinators.WithLabelValues("type"))
	RecordCombinators("type", 3)
	RecordErrorEntries("pattern", 1)
	RecordFiles("api", 3)
	RecordPass("api", 12*time.Millisecond, true)

	if got := testutil.ToFloat64(combinators.WithLabelValues("type")); got != before+3 {
		t.Fatalf("expected %v combinators, got %v", before+3, got)
	}
}

func TestWriteTextfile(t *testing.T) {
	testlog.Start(t)
	RecordFiles("errors", 1)
	path := filepath.Join(t.TempDir(), "tlgen.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `tlgen_output_files_total{pipeline="errors"}`) {
		t.Fatalf("expected files counter in textfile:\n%s", data)
	}
}
