package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// migration upgrades a decoded document by exactly one version.
type migration func(doc map[string]any) error

// chains holds the ordered migrations per document key. The current version of
// a key is the length of its chain; a document at version v runs chain[v:].
var chains = map[string][]migration{
	KeyTasks:   {tasksV0ToV1, tasksV1ToV2, tasksV2ToV3},
	KeyUser:    {userV0ToV1},
	KeyRecords: {recordsV0ToV1},
	KeyRewards: {rewardsV0ToV1},
}

// CurrentVersion returns the schema version new documents are written at.
func CurrentVersion(key string) int {
	return len(chains[key])
}

// Upgrade brings raw document data from version to the current version of key.
// Documents already current are returned untouched.
func Upgrade(key string, version int, raw []byte) ([]byte, int, error) {
	chain, ok := chains[key]
	if !ok {
		return nil, 0, fmt.Errorf("upgrade: unknown document %q", key)
	}
	if version < 0 {
		version = 0
	}
	if version > len(chain) {
		return nil, 0, fmt.Errorf("upgrade %s: version %d is newer than supported %d", key, version, len(chain))
	}
	if version == len(chain) {
		return raw, version, nil
	}

	doc := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("upgrade %s: decode: %w", key, err)
		}
	}

	for v := version; v < len(chain); v++ {
		if err := chain[v](doc); err != nil {
			return nil, 0, fmt.Errorf("upgrade %s v%d->v%d: %w", key, v, v+1, err)
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("upgrade %s: encode: %w", key, err)
	}
	return out, len(chain), nil
}

// Legacy task kinds used "main" and "demon".
func legacyKind(v any) string {
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "demon", "paid_challenge":
		return "paid_challenge"
	default:
		return "standard"
	}
}

func tasksV0ToV1(doc map[string]any) error {
	return eachObject(doc, "tasks", func(t map[string]any) {
		if _, ok := t["taskKind"]; !ok {
			t["taskKind"] = legacyKind(t["type"])
		}
		delete(t, "type")
		rename(t, "points", "rewardPoints")
		for _, f := range []string{"createdAt", "claimedAt", "completedAt", "expiresAt"} {
			coerceTime(t, f)
		}
	})
}

func tasksV1ToV2(doc map[string]any) error {
	return eachObject(doc, "tasks", func(t map[string]any) {
		backfill(t, "isRepeatable", true)
		backfill(t, "isClaimed", false)
		backfill(t, "isStarted", false)
		backfill(t, "isCompleted", false)
	})
}

func tasksV2ToV3(doc map[string]any) error {
	return eachObject(doc, "tasks", func(t map[string]any) {
		kind := legacyKind(t["taskKind"])
		t["taskKind"] = kind
		if kind != "paid_challenge" {
			delete(t, "entryCost")
		}
		if n, ok := number(t["dailyLimit"]); !ok || n < 1 {
			t["dailyLimit"] = 1
		}
	})
}

func userV0ToV1(doc map[string]any) error {
	if h, ok := doc["health"]; ok {
		if _, has := doc["experience"]; !has {
			doc["experience"] = h
		}
		delete(doc, "health")
	}
	backfill(doc, "totalPoints", 0)
	backfill(doc, "currentPoints", 0)
	backfill(doc, "experience", 0)
	backfill(doc, "level", 1)
	return nil
}

func recordsV0ToV1(doc map[string]any) error {
	return eachObject(doc, "records", func(r map[string]any) {
		rename(r, "points", "pointsAwarded")
		rename(r, "cost", "costPaid")
		if _, ok := r["taskKind"]; !ok {
			r["taskKind"] = legacyKind(r["taskType"])
		}
		delete(r, "taskType")
		// Legacy records carry no task id and stay matched by name.
		if s, ok := r["taskId"].(string); ok && strings.TrimSpace(s) == "" {
			delete(r, "taskId")
		}
		coerceTime(r, "completedAt")
	})
}

func rewardsV0ToV1(doc map[string]any) error {
	rename(doc, "redeemedRewards", "redemptions")
	if err := eachObject(doc, "rewards", func(r map[string]any) {
		backfill(r, "isActive", true)
	}); err != nil {
		return err
	}
	return eachObject(doc, "redemptions", func(r map[string]any) {
		coerceTime(r, "redeemedAt")
	})
}

func eachObject(doc map[string]any, field string, fn func(map[string]any)) error {
	raw, ok := doc[field]
	if !ok || raw == nil {
		doc[field] = []any{}
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("%s: expected array, got %T", field, raw)
	}
	kept := list[:0]
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fn(obj)
		kept = append(kept, obj)
	}
	doc[field] = kept
	return nil
}

func rename(m map[string]any, from, to string) {
	v, ok := m[from]
	if !ok {
		return
	}
	if _, exists := m[to]; !exists {
		m[to] = v
	}
	delete(m, from)
}

func backfill(m map[string]any, field string, def any) {
	if v, ok := m[field]; !ok || v == nil {
		m[field] = def
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// timeLayouts pairs each accepted layout with the zone used when the text
// carries none. Date-times without an offset are local wall time; a bare
// date is midnight UTC, as Date.parse reads both.
var timeLayouts = []struct {
	layout string
	loc    *time.Location
}{
	{time.RFC3339Nano, time.UTC},
	{"2006-01-02T15:04:05", time.Local},
	{"2006-01-02 15:04:05", time.Local},
	{"2006-01-02", time.UTC},
	{"Mon Jan 02 2006 15:04:05 GMT-0700", time.UTC},
}

// coerceTime rewrites a date field to RFC 3339. Strings in a known layout and
// epoch milliseconds are converted; anything unreadable is dropped so the
// owning record still loads.
func coerceTime(m map[string]any, field string) {
	v, ok := m[field]
	if !ok {
		return
	}
	switch x := v.(type) {
	case nil:
		delete(m, field)
	case string:
		s := strings.TrimSpace(x)
		if i := strings.Index(s, " ("); i > 0 {
			// Date.toString() appends a zone name: "GMT+0800 (China Standard Time)".
			s = s[:i]
		}
		for _, l := range timeLayouts {
			if t, err := time.ParseInLocation(l.layout, s, l.loc); err == nil {
				m[field] = t.Format(time.RFC3339Nano)
				return
			}
		}
		delete(m, field)
	default:
		ms, ok := number(v)
		if !ok {
			delete(m, field)
			return
		}
		m[field] = time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano)
	}
}
