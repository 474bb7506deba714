package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inputHeader = ",order_id,product_id,user_id,order_number,add_to_cart_order,reordered,days_since_prior_order,eval_set,order_dow,order_hour_of_day,order_number_max,ord_size,aisle_id,department_id,target\n"

func writeFixture(t *testing.T) (configFile string, resultDir string) {
	t.Helper()
	root := t.TempDir()

	var b strings.Builder
	b.WriteString(inputHeader)
	line := 0
	for _, userID := range []int{30, 10, 20} {
		rows := [][]string{
			{"1", "101", "1", "", "prior", "1", "5"},
			{"2", "101", "1", "4", "prior", "1", "5"},
			{"2", "102", "2", "4", "prior", "2", "9"},
			{"3", "101", "1", "6", "train", "1", "5"},
		}
		for _, r := range rows {
			orderID := userID*10 + int(r[0][0]-'0')
			fmt.Fprintf(&b, "%d,%d,%s,%d,%s,%s,0,%s,%s,2,9,3,2,%s,%s,0\n",
				line, orderID, r[1], userID, r[0], r[2], r[3], r[4], r[5], r[6])
			line++
		}
	}
	source := filepath.Join(root, "merged.csv")
	require.NoError(t, os.WriteFile(source, []byte(b.String()), 0o644))

	resultDir = filepath.Join(root, "results")
	configFile = filepath.Join(root, "reorder.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(fmt.Sprintf(`
source:
  path: %q
engine:
  partition_count: 2
  worker_count: 2
storage:
  type: "filesystem"
  dir: %q
`, source, resultDir)), 0o644))
	return configFile, resultDir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestRun_EndToEnd(t *testing.T) {
	configFile, resultDir := writeFixture(t)

	out := execute(t, "run", "--config", configFile, "--log-level", "warn")
	assert.Contains(t, out, "computed: 2")
	assert.Contains(t, out, "merged rows: 6")

	assert.FileExists(t, filepath.Join(resultDir, "assignment.yaml"))
	assert.FileExists(t, filepath.Join(resultDir, "joined_current.csv"))

	out = execute(t, "compute", "--config", configFile, "--log-level", "warn")
	assert.Contains(t, out, "computed: 0")
	assert.Contains(t, out, "skipped: 2")

	out = execute(t, "merge", "--config", configFile, "--log-level", "warn")
	assert.Contains(t, out, "merged rows: 6")
}

func TestRun_PushesEngineMetrics(t *testing.T) {
	configFile, _ := writeFixture(t)

	type pushed struct {
		method string
		path   string
		body   string
	}
	var (
		mu       sync.Mutex
		requests []pushed
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, pushed{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = fmt.Fprintf(f, "metrics:\n  push_url: %q\n  job: \"reorder-batch\"\n", gateway.URL)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out := execute(t, "run", "--config", configFile, "--log-level", "warn")
	assert.Contains(t, out, "merged rows: 6")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPut, requests[0].method)
	assert.Equal(t, "/metrics/job/reorder-batch", requests[0].path)
	assert.Contains(t, requests[0].body, "reorder_partitions_computed_total")
	assert.Contains(t, requests[0].body, "reorder_merged_rows")
}

func TestAssign_ReportsPartitions(t *testing.T) {
	configFile, _ := writeFixture(t)

	out := execute(t, "assign", "--config", configFile, "--log-level", "error")
	assert.Contains(t, out, "partitions: 2")
	assert.Contains(t, out, "users: 3")
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = parseLogLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = parseLogLevel("loud")
	require.Error(t, err)
}
