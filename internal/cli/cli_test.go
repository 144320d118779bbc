package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
	"github.com/stretchr/testify/require"
)

func writeRoster(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "diakens.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestNewRootCmd_hasSubcommands(t *testing.T) {
	root := NewRootCmd("1.2.3")
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"generate", "validate"} {
		if !names[want] {
			t.Errorf("expected subcommand %q", want)
		}
	}
	require.Equal(t, "1.2.3", root.Version)
}

func TestGenerate_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	rosterPath := writeRoster(t, dir, "A\nB\nC\nD\nE\nF\nG\nH\n")
	out := filepath.Join(dir, "data")

	stdout, err := run(t, "generate",
		"--roster", rosterPath,
		"--context", filepath.Join(dir, "konteks.txt"),
		"--out", out,
		"-m", "1", "-s", "2", "--context-size", "4",
		"--reference-date", "2026-01-20")
	require.NoError(t, err)

	path := filepath.Join(out, "diaken_diensbeurte_feb_2026_tot_feb_2026.csv")
	require.Equal(t, path, strings.TrimSpace(stdout))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"sondag_datum,diaken_1,diaken_2,diaken_3,diaken_4\n"+
			"2026-02-01,A,B,C,D\n"+
			"2026-02-08,E,F,G,H\n"+
			"2026-02-15,A,B,C,D\n"+
			"2026-02-22,E,F,G,H\n",
		string(data))
}

func TestGenerate_JSONWithCurrentMonth(t *testing.T) {
	dir := t.TempDir()
	rosterPath := writeRoster(t, dir, "A\nB,C\nD\nE\nF\nG\nH\nI\nJ\nK\nL\n")

	stdout, err := run(t, "generate",
		"--roster", rosterPath,
		"--context", filepath.Join(dir, "konteks.txt"),
		"-m", "1", "-c", "--seed", "5", "-f", "json", "--context-size", "4",
		"--reference-date", "2026-02-14")
	require.NoError(t, err)

	var resp models.ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Equal(t, "2026-02-01", resp.FirstShift)
	require.Len(t, resp.Shifts, 4)
	for _, sh := range resp.Shifts {
		require.Len(t, sh.Members, 4)
	}
}

func TestGenerate_EmptyRoster(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "data")
	_, err := run(t, "generate", "--roster", filepath.Join(dir, "missing.txt"), "--out", out)
	require.True(t, errors.Is(err, scheduler.ErrEmptyRoster))

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr), "no output directory on failure")
}

func TestGenerate_BadStrategy(t *testing.T) {
	dir := t.TempDir()
	rosterPath := writeRoster(t, dir, "A\nB\nC\nD\n")
	_, err := run(t, "generate", "--roster", rosterPath, "-s", "3")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	rosterPath := writeRoster(t, dir, "A\nB,C\nD\n")

	stdout, err := run(t, "validate", "--roster", rosterPath)
	require.NoError(t, err)
	require.Contains(t, stdout, "3 entries, 4 members, 1 groups")
	require.Contains(t, stdout, "warning")

	rosterPath = writeRoster(t, dir, "A\nB\n")
	_, err = run(t, "validate", "--roster", rosterPath)
	require.True(t, errors.Is(err, scheduler.ErrNotEnoughDistinctMembers))
}
