package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chainbench/internal/config"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	testclock "k8s.io/utils/clock/testing"
)

type harness struct {
	app    *App
	dir    string
	clock  *testclock.FakePassiveClock
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(dataDir, 0o755))

	h := &harness{
		dir:    dir,
		clock:  testclock.NewFakePassiveClock(time.UnixMilli(1700000000000)),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = &App{
		Config: &config.Config{
			Data:    config.DataConfig{Dir: dataDir},
			Results: config.ResultsConfig{LogPath: filepath.Join(dir, "analysis.txt")},
			Bench:   config.BenchConfig{Seed: 42},
		},
		Logger: testr.New(t),
		Clock:  h.clock,
		Stdout: h.stdout,
		Stderr: h.stderr,
	}
	return h
}

func (h *harness) writeInput(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.app.Config.Data.Dir, name), []byte(content), 0o644))
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.app.Run(context.Background(), args)
}

func (h *harness) logLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(h.app.Config.Results.LogPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

const cars = `Car,MPG
Ford Pinto,25
AMC Hornet,18
Toyota Corona,24

,30
Volkswagen 1131 Deluxe Sedan,26
Peugeot 504,25
`

func TestBenchmarkRun(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)

	require.Equal(t, 0, h.run("cars.csv", "4"))
	assert.Empty(t, h.stderr.String())

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "Number of lines evaluated: 4\n\nAlready sorted list:\n  Insert time (s): "))
	for _, heading := range []string{"Already sorted list:", "Shuffled list:", "Reversed list:"} {
		assert.Contains(t, out, "\n"+heading+"\n")
	}
	assert.Equal(t, 3, strings.Count(out, "  Insert time (s): "))
	assert.Equal(t, 3, strings.Count(out, "  Search time (s): "))
	assert.Equal(t, 3, strings.Count(out, "  Delete time (s): "))

	lines := h.logLines(t)
	require.Len(t, lines, 3)
	for i, label := range []string{"sorted", "shuffled", "reversed"} {
		fields := strings.Split(lines[i], ",")
		require.Len(t, fields, 6)
		assert.Equal(t, "1700000000000", fields[0])
		assert.Equal(t, label, fields[1])
		assert.Equal(t, "4", fields[2])
		for _, secs := range fields[3:] {
			dot := strings.IndexByte(secs, '.')
			require.NotEqual(t, -1, dot, secs)
			assert.Len(t, secs[dot+1:], 9, secs)
		}
	}
}

func TestBenchmarkCountCappedByAvailableKeys(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)

	require.Equal(t, 0, h.run("cars.csv", "1000"))
	assert.Contains(t, h.stdout.String(), "Number of lines evaluated: 5\n")
}

func TestRepeatedRunsAppendWithNonDecreasingTimestamps(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)

	require.Equal(t, 0, h.run("cars.csv", "3"))
	h.clock.SetTime(h.clock.Now().Add(1500 * time.Millisecond))
	require.Equal(t, 0, h.run("cars.csv", "3"))

	lines := h.logLines(t)
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "1700000000000,sorted,3,"))
	assert.True(t, strings.HasPrefix(lines[3], "1700000001500,sorted,3,"))
}

func TestHeaderOnlyInput(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "empty.csv", "Car,MPG\n")

	require.Equal(t, 0, h.run("empty.csv", "10"))
	assert.Equal(t, "No data read from file.\n", h.stdout.String())
	assert.Nil(t, h.logLines(t))
}

func TestZeroLimitReadsNothing(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)

	require.Equal(t, 0, h.run("cars.csv", "0"))
	assert.Equal(t, "No data read from file.\n", h.stdout.String())
	assert.Nil(t, h.logLines(t))
}

func TestNegativeLimitReadsNothing(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)

	require.Equal(t, 0, h.run("cars.csv", "-5"))
	assert.Equal(t, "No data read from file.\n", h.stdout.String())
	assert.Empty(t, h.stderr.String())
	assert.Nil(t, h.logLines(t))
}

func TestRootHelp(t *testing.T) {
	h := newHarness(t)

	for _, flag := range []string{"-h", "--help"} {
		require.Equal(t, 0, h.run(flag), flag)
		assert.Contains(t, h.stdout.String(), "chainbench <input file> <number of lines>")
		assert.Contains(t, h.stdout.String(), "./summary")
		assert.Nil(t, h.logLines(t))
	}
}

func TestInputNamedLikeSubcommand(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "summary", cars)

	require.Equal(t, 0, h.run("./summary", "2"))
	assert.Contains(t, h.stdout.String(), "Number of lines evaluated: 2")
	assert.Len(t, h.logLines(t), 3)
}

func TestWrongArgumentCount(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{{}, {"cars.csv"}, {"cars.csv", "1", "2"}} {
		assert.Equal(t, 1, h.run(args...), args)
		assert.Equal(t, usageLine+"\n", h.stderr.String())
		assert.Empty(t, h.stdout.String())
	}
}

func TestNonIntegerLimit(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)

	assert.Equal(t, 1, h.run("cars.csv", "ten"))
	assert.Contains(t, h.stderr.String(), `number of lines must be an integer, got "ten"`)
}

func TestMissingInputFile(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("missing.csv", "10"))
	assert.True(t, strings.HasPrefix(h.stderr.String(), "Error reading file: "))
	assert.Contains(t, h.stderr.String(), "missing.csv")
	assert.Empty(t, h.stdout.String())
	assert.Nil(t, h.logLines(t))
}

func TestLogAppendFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)
	h.app.Config.Results.LogPath = filepath.Join(h.dir, "no-such-dir", "analysis.txt")

	assert.Equal(t, 0, h.run("cars.csv", "2"))
	assert.Contains(t, h.stdout.String(), "Number of lines evaluated: 2")
	assert.True(t, strings.HasPrefix(h.stderr.String(), "Error writing "+h.app.Config.Results.LogPath+": "))
}

func TestSummaryCommand(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)
	require.Equal(t, 0, h.run("cars.csv", "3"))
	require.Equal(t, 0, h.run("cars.csv", "3"))

	require.Equal(t, 0, h.run("summary"))
	out := h.stdout.String()
	assert.Contains(t, out, "MEAN (s)")
	assert.Contains(t, out, "shuffled")

	require.Equal(t, 0, h.run("summary", "--format", "json"))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "sorted", decoded[0]["order"])
	assert.Equal(t, float64(2), decoded[0]["runs"])

	assert.Equal(t, 1, h.run("summary", "--format", "yaml"))
	assert.Contains(t, h.stderr.String(), `unknown format "yaml"`)
}

func TestSummaryWithoutLog(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("summary"))
	assert.Equal(t, "No results recorded.\n", h.stdout.String())
}

func TestExportCommand(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)
	require.Equal(t, 0, h.run("cars.csv", "5"))

	out := filepath.Join(h.dir, "results.xlsx")
	require.Equal(t, 0, h.run("export", out))
	assert.Equal(t, "Exported 3 records (3 groups) to "+out+"\n", h.stdout.String())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Runs")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestResultStoreAndHistory(t *testing.T) {
	h := newHarness(t)
	h.writeInput(t, "cars.csv", cars)
	h.app.Config.Results.DSN = filepath.Join(h.dir, "results.db")

	require.Equal(t, 0, h.run("cars.csv", "3"))
	assert.Empty(t, h.stderr.String())

	require.Equal(t, 0, h.run("history", "--limit", "5"))
	lines := strings.Split(strings.TrimSuffix(h.stdout.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.Contains(t, lines[1], "1700000000000,sorted,3,")
	assert.Contains(t, lines[3], "1700000000000,reversed,3,")
	assert.Contains(t, lines[1], filepath.Join(h.app.Config.Data.Dir, "cars.csv"))
}

func TestHistoryRequiresDSN(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("history"))
	assert.Contains(t, h.stderr.String(), "BENCH_RESULTS_DSN is not set")
}

func TestGenerateThenBenchmark(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("generate", "--rows", "300", "--seed", "7"))
	generated := filepath.Join(h.app.Config.Data.Dir, "generated.csv")
	assert.Equal(t, "Generated 300 rows in "+generated+"\n", h.stdout.String())

	require.Equal(t, 0, h.run("generated.csv", "250"))
	assert.Contains(t, h.stdout.String(), "Number of lines evaluated: 250\n")

	out := filepath.Join(h.dir, "keys.xlsx")
	require.Equal(t, 0, h.run("generate", "--rows", "20", "--out", out))
	require.Equal(t, 0, h.run(out, "5"))
	assert.Contains(t, h.stdout.String(), "Number of lines evaluated: 5\n")

	assert.Equal(t, 1, h.run("generate", "--rows", "0"))
	assert.Equal(t, 1, h.run("generate", "--format", "parquet"))
}
