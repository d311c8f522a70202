package root

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhang-san-er/task-tools/internal/storage"
)

// run executes the CLI against a private database and config.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	flags.db, flags.config, flags.verbose = "", "", false
	t.Setenv("BOUNTY_DB", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--db", filepath.Join(dir, "bounty.db"),
		"--config", filepath.Join(dir, "config.yaml"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPaidChallengeFlow(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "Run", "5k", "--kind", "paid", "--cost", "5", "--reward", "30", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, `"Run 5k"`)

	_, err = run(t, dir, "do", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claimed first")

	out, err = run(t, dir, "claim", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "-5 entry")

	out, err = run(t, dir, "do", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "+30")
	assert.Contains(t, out, "25")

	out, err = run(t, dir, "records", "--task", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run 5k")
	assert.Contains(t, out, "cost 5")
}

func TestDryRunDoesNotComplete(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "Stretch", "--reward", "10")
	require.NoError(t, err)

	out, err := run(t, dir, "do", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would complete")

	out, err = run(t, dir, "records")
	require.NoError(t, err)
	assert.Contains(t, out, "(no records)")
}

func TestRewardsRedeemAndRefund(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "records", "add", "Old win", "--points", "80")
	require.NoError(t, err)

	out, err := run(t, dir, "rewards", "redeem", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rest day")
	assert.Contains(t, out, "30")

	out, err = run(t, dir, "rewards", "history")
	require.NoError(t, err)
	var redemption string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Rest day") {
			redemption = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, redemption)

	out, err = run(t, dir, "rewards", "refund", redemption)
	require.NoError(t, err)
	assert.Contains(t, out, "+50")

	out, err = run(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "80")

	_, err = run(t, dir, "rewards", "redeem", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMoveAndList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := run(t, dir, "add", name)
		require.NoError(t, err)
	}

	out, err := run(t, dir, "move", "3", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `#1 "gamma"`)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "gamma"), strings.Index(out, "alpha"))

	_, err = run(t, dir, "move", "1", "x")
	require.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")

	_, err = run(t, dir, "config", "init")
	require.Error(t, err)

	out, err = run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "allow_overdraft: true")
	assert.Contains(t, out, filepath.Join(dir, "bounty.db"))
}

func TestRewardsEdit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "rewards", "edit", "1", "--name", "Lazy Sunday", "--cost", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Lazy Sunday")
	assert.Contains(t, out, "40")

	out, err = run(t, dir, "rewards", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lazy Sunday")
	assert.NotContains(t, out, "Rest day")

	_, err = run(t, dir, "rewards", "edit", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	_, err = run(t, dir, "rewards", "edit", "1", "--cost=-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	_, err = run(t, dir, "rewards", "disable", "1")
	require.NoError(t, err)
	_, err = run(t, dir, "rewards", "edit", "1", "--description", "sleep in")
	require.NoError(t, err)
	out, err = run(t, dir, "rewards", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "sleep in")
	assert.Contains(t, out, "disabled", "editing keeps the active flag")
}

func TestStatusCountsAchievements(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "Walk", "--reward", "5")
	require.NoError(t, err)
	_, err = run(t, dir, "do", "1")
	require.NoError(t, err)

	out, err := run(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Achievements (1/11)")
}

func TestDoctorCleansBackups(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(dir, "bounty.db"))
	require.NoError(t, err)
	require.NoError(t, storage.NewDocumentRepo(db).Put(ctx, storage.Document{
		Key:     storage.KeyRecords,
		Version: storage.CurrentVersion(storage.KeyRecords),
		Data:    []byte(`{"records":"nope"}`),
	}))
	require.NoError(t, db.Close())

	out, err := run(t, dir, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "records.corrupt")
	assert.Contains(t, out, "--clean")
	assert.Contains(t, out, "rewards v")

	out, err = run(t, dir, "doctor", "--clean")
	require.NoError(t, err)
	assert.Contains(t, out, "removed records.corrupt")

	out, err = run(t, dir, "doctor")
	require.NoError(t, err)
	assert.NotContains(t, out, "corrupt")
}
