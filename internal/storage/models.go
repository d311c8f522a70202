package storage

import (
	"encoding/json"
	"strings"
	"time"
)

// Document keys, one per store.
const (
	KeyTasks   = "tasks"
	KeyUser    = "user"
	KeyRecords = "records"
	KeyRewards = "rewards"
)

const backupSuffix = ".corrupt"

// BackupKey names the copy kept of an unreadable document.
func BackupKey(key string) string { return key + backupSuffix }

func IsBackupKey(key string) bool { return strings.HasSuffix(key, backupSuffix) }

// Document is a versioned JSON payload persisted under a key.
type Document struct {
	Key       string
	Version   int
	Data      json.RawMessage
	CreatedAt *time.Time
	UpdatedAt time.Time
}
