package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestUpgrade_LegacyTasks(t *testing.T) {
	legacy := `{"tasks":[
		{"id":"a","name":"Run","type":"main","points":10,"entryCost":3,"isCompleted":false,"createdAt":"2024-03-01T08:00:00.000Z"},
		{"id":"b","name":"Fast","type":"demon","points":20,"entryCost":5,"isRepeatable":false,"dailyLimit":0}
	]}`

	out, v, err := Upgrade(KeyTasks, 0, []byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion(KeyTasks), v)

	doc := decode(t, out)
	tasks := doc["tasks"].([]any)
	require.Len(t, tasks, 2)

	a := tasks[0].(map[string]any)
	assert.Equal(t, "standard", a["taskKind"])
	assert.Equal(t, float64(10), a["rewardPoints"])
	assert.NotContains(t, a, "entryCost")
	assert.NotContains(t, a, "type")
	assert.Equal(t, true, a["isRepeatable"])
	assert.Equal(t, false, a["isClaimed"])
	assert.Equal(t, false, a["isStarted"])
	assert.Equal(t, float64(1), a["dailyLimit"])

	b := tasks[1].(map[string]any)
	assert.Equal(t, "paid_challenge", b["taskKind"])
	assert.Equal(t, float64(5), b["entryCost"])
	assert.Equal(t, false, b["isRepeatable"])
	assert.Equal(t, float64(1), b["dailyLimit"])
}

func TestUpgrade_UserHealthRename(t *testing.T) {
	out, v, err := Upgrade(KeyUser, 0, []byte(`{"level":2,"totalPoints":40,"health":150}`))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	doc := decode(t, out)
	assert.Equal(t, float64(150), doc["experience"])
	assert.NotContains(t, doc, "health")
	assert.Equal(t, float64(0), doc["currentPoints"])
}

func TestUpgrade_UserHealthDoesNotClobberExperience(t *testing.T) {
	out, _, err := Upgrade(KeyUser, 0, []byte(`{"health":150,"experience":20}`))
	require.NoError(t, err)

	doc := decode(t, out)
	assert.Equal(t, float64(20), doc["experience"])
	assert.NotContains(t, doc, "health")
}

func TestUpgrade_RecordsCoerceDates(t *testing.T) {
	legacy := `{"records":[
		{"id":"r1","taskName":"Run","points":10,"taskType":"main","completedAt":"2024-03-01T08:00:00.000Z"},
		{"id":"r2","taskId":"t2","taskName":"Fast","points":20,"cost":5,"taskType":"demon","completedAt":1709280000000},
		{"id":"r3","taskId":"","taskName":"Old","points":1,"completedAt":"not a date"}
	]}`

	out, _, err := Upgrade(KeyRecords, 0, []byte(legacy))
	require.NoError(t, err)

	records := decode(t, out)["records"].([]any)
	require.Len(t, records, 3)

	r1 := records[0].(map[string]any)
	assert.Equal(t, "2024-03-01T08:00:00Z", r1["completedAt"])
	assert.Equal(t, float64(10), r1["pointsAwarded"])
	assert.NotContains(t, r1, "taskId")

	r2 := records[1].(map[string]any)
	assert.Equal(t, "2024-03-01T08:00:00Z", r2["completedAt"])
	assert.Equal(t, float64(5), r2["costPaid"])
	assert.Equal(t, "paid_challenge", r2["taskKind"])

	r3 := records[2].(map[string]any)
	assert.NotContains(t, r3, "taskId")
	assert.NotContains(t, r3, "completedAt")
}

func TestUpgrade_RecordsZonelessDatesAreLocal(t *testing.T) {
	legacy := `{"records":[
		{"id":"r1","taskName":"Run","points":1,"completedAt":"2024-03-01T08:30:00"},
		{"id":"r2","taskName":"Run","points":1,"completedAt":"2024-03-01 21:15:00"},
		{"id":"r3","taskName":"Run","points":1,"completedAt":"2024-03-01"}
	]}`

	out, _, err := Upgrade(KeyRecords, 0, []byte(legacy))
	require.NoError(t, err)
	records := decode(t, out)["records"].([]any)
	require.Len(t, records, 3)

	at := func(i int) time.Time {
		t.Helper()
		v, err := time.Parse(time.RFC3339Nano, records[i].(map[string]any)["completedAt"].(string))
		require.NoError(t, err)
		return v
	}
	assert.True(t, at(0).Equal(time.Date(2024, 3, 1, 8, 30, 0, 0, time.Local)))
	assert.True(t, at(1).Equal(time.Date(2024, 3, 1, 21, 15, 0, 0, time.Local)))
	assert.True(t, at(2).Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestUpgrade_RewardsRename(t *testing.T) {
	out, _, err := Upgrade(KeyRewards, 0, []byte(`{"rewards":[{"id":"1","name":"Rest day","cost":50}],"redeemedRewards":[{"id":"x","rewardId":"1","cost":50,"redeemedAt":"2024-03-01"}]}`))
	require.NoError(t, err)

	doc := decode(t, out)
	rewards := doc["rewards"].([]any)
	assert.Equal(t, true, rewards[0].(map[string]any)["isActive"])
	redemptions := doc["redemptions"].([]any)
	require.Len(t, redemptions, 1)
	assert.Equal(t, "2024-03-01T00:00:00Z", redemptions[0].(map[string]any)["redeemedAt"])
}

func TestUpgrade_CurrentIsUntouched(t *testing.T) {
	raw := []byte(`{"records":[]}`)
	out, v, err := Upgrade(KeyRecords, CurrentVersion(KeyRecords), raw)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion(KeyRecords), v)
	assert.Equal(t, raw, out)
}

func TestUpgrade_RejectsNewerVersion(t *testing.T) {
	_, _, err := Upgrade(KeyTasks, CurrentVersion(KeyTasks)+1, []byte(`{}`))
	assert.Error(t, err)
}

func TestUpgrade_EmptyDocument(t *testing.T) {
	out, _, err := Upgrade(KeyTasks, 0, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[]}`, string(out))
}
