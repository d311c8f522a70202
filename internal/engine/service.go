package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zhang-san-er/task-tools/internal/storage"
)

// Options configures a Service.
type Options struct {
	// Now is the wall clock; every operation reads it once.
	Now    func() time.Time
	Logger *log.Logger

	// StrictBalance refuses spending beyond the current balance. The default
	// permits overdraft.
	StrictBalance bool
	// StartingPoints seeds the balance of a brand-new user document.
	StartingPoints int64

	DefaultDailyLimit int
	DefaultRepeatable bool
}

func DefaultOptions() Options {
	return Options{
		Now:               time.Now,
		DefaultDailyLimit: DefaultDailyLimit,
		DefaultRepeatable: true,
	}
}

// Service owns the four stores, persists each as its own document, and
// orchestrates operations that span them.
type Service struct {
	mu   sync.Mutex
	docs *storage.DocumentRepo
	log  *log.Logger
	now  func() time.Time
	opts Options

	tasks   *TaskBoard
	economy *Economy
	ledger  *Ledger
	rewards *RewardCatalog
}

type store uint8

const (
	storeTasks store = 1 << iota
	storeEconomy
	storeLedger
	storeRewards

	storeAll = storeTasks | storeEconomy | storeLedger | storeRewards
)

type tasksDoc struct {
	Tasks []Task `json:"tasks"`
}

type recordsDoc struct {
	Records []CompletionRecord `json:"records"`
}

type rewardsDoc struct {
	Rewards     []Reward           `json:"rewards"`
	Redemptions []RedemptionRecord `json:"redemptions"`
}

// NewService loads (and migrates) every store document from db.
func NewService(ctx context.Context, db *sql.DB, opts Options) (*Service, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.DefaultDailyLimit < 1 {
		opts.DefaultDailyLimit = DefaultDailyLimit
	}

	s := &Service{
		docs: storage.NewDocumentRepo(db),
		log:  opts.Logger,
		now:  opts.Now,
		opts: opts,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) load(ctx context.Context) error {
	var dirty store

	td, changed, err := loadDoc[tasksDoc](ctx, s, storage.KeyTasks)
	if err != nil {
		return err
	}
	if changed {
		dirty |= storeTasks
	}
	s.tasks = NewTaskBoard(td.Tasks)
	if n := s.tasks.EnsureAllTasksHaveOrder(); n > 0 {
		s.log.Printf("assigned order to %d tasks", n)
		dirty |= storeTasks
	}

	state, changed, err := loadDoc[EconomyState](ctx, s, storage.KeyUser)
	if err != nil {
		return err
	}
	if changed {
		dirty |= storeEconomy
	}
	missing, err := s.isMissing(ctx, storage.KeyUser)
	if err != nil {
		return err
	}
	if missing && s.opts.StartingPoints != 0 {
		state.TotalPoints = state.TotalPoints.Add(decimal.NewFromInt(s.opts.StartingPoints))
	}
	s.economy = NewEconomy(state, s.opts.StrictBalance)
	if !s.economy.State().Equal(state) {
		dirty |= storeEconomy
	}

	rd, changed, err := loadDoc[recordsDoc](ctx, s, storage.KeyRecords)
	if err != nil {
		return err
	}
	if changed {
		dirty |= storeLedger
	}
	s.ledger = NewLedger(rd.Records)

	wd, changed, err := loadDoc[rewardsDoc](ctx, s, storage.KeyRewards)
	if err != nil {
		return err
	}
	if changed {
		dirty |= storeRewards
	}
	missing, err = s.isMissing(ctx, storage.KeyRewards)
	if err != nil {
		return err
	}
	if missing {
		wd.Rewards = DefaultRewards()
		dirty |= storeRewards
	}
	s.rewards = NewRewardCatalog(wd.Rewards, wd.Redemptions)

	return s.persist(ctx, dirty)
}

func (s *Service) isMissing(ctx context.Context, key string) (bool, error) {
	doc, err := s.docs.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return doc == nil, nil
}

// loadDoc decodes the document under key after upgrading it, and reports
// whether the stored form needs rewriting. A document that cannot be decoded
// is copied aside under storage.BackupKey(key) and the zero value is
// returned; nothing decoded before the failure is kept.
func loadDoc[T any](ctx context.Context, s *Service, key string) (T, bool, error) {
	var zero T
	doc, err := s.docs.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if doc == nil {
		return zero, false, nil
	}

	var out T
	data, version, err := storage.Upgrade(key, doc.Version, doc.Data)
	if err == nil {
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		s.log.Printf("document %s unreadable, starting fresh: %v", key, err)
		backup := *doc
		backup.Key = storage.BackupKey(key)
		backup.UpdatedAt = time.Time{}
		if !json.Valid(backup.Data) {
			quoted, _ := json.Marshal(string(backup.Data))
			backup.Data = quoted
		}
		if perr := s.docs.Put(ctx, backup); perr != nil {
			return zero, false, fmt.Errorf("back up %s: %w", key, perr)
		}
		return zero, true, nil
	}
	if version != doc.Version {
		s.log.Printf("document %s upgraded v%d -> v%d", key, doc.Version, version)
		return out, true, nil
	}
	return out, false, nil
}

func (s *Service) encode(which store) ([]storage.Document, error) {
	var docs []storage.Document
	add := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		docs = append(docs, storage.Document{
			Key:     key,
			Version: storage.CurrentVersion(key),
			Data:    data,
		})
		return nil
	}

	if which&storeTasks != 0 {
		if err := add(storage.KeyTasks, tasksDoc{Tasks: s.tasks.snapshot()}); err != nil {
			return nil, err
		}
	}
	if which&storeEconomy != 0 {
		if err := add(storage.KeyUser, s.economy.State()); err != nil {
			return nil, err
		}
	}
	if which&storeLedger != 0 {
		if err := add(storage.KeyRecords, recordsDoc{Records: s.ledger.Records()}); err != nil {
			return nil, err
		}
	}
	if which&storeRewards != 0 {
		if err := add(storage.KeyRewards, rewardsDoc{Rewards: s.rewards.Rewards(), Redemptions: s.rewards.Redemptions()}); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (s *Service) persist(ctx context.Context, which store) error {
	if which == 0 {
		return nil
	}
	docs, err := s.encode(which)
	if err != nil {
		return err
	}
	return s.docs.PutAll(ctx, docs...)
}

type snapshot struct {
	tasks   []Task
	economy EconomyState
	records []CompletionRecord
	catalog catalogSnapshot
}

func (s *Service) snapshot(which store) snapshot {
	var snap snapshot
	if which&storeTasks != 0 {
		snap.tasks = s.tasks.snapshot()
	}
	if which&storeEconomy != 0 {
		snap.economy = s.economy.State()
	}
	if which&storeLedger != 0 {
		snap.records = s.ledger.snapshot()
	}
	if which&storeRewards != 0 {
		snap.catalog = s.rewards.snapshot()
	}
	return snap
}

func (s *Service) restore(which store, snap snapshot) {
	if which&storeTasks != 0 {
		s.tasks.restore(snap.tasks)
	}
	if which&storeEconomy != 0 {
		s.economy.state = snap.economy
	}
	if which&storeLedger != 0 {
		s.ledger.restore(snap.records)
	}
	if which&storeRewards != 0 {
		s.rewards.restore(snap.catalog)
	}
}

// mutate runs fn against the stores named in which and persists them in one
// transaction. If fn rejects or the write fails, the in-memory stores are
// put back as they were. Callers hold s.mu.
func (s *Service) mutate(ctx context.Context, which store, fn func(now time.Time) error) error {
	snap := s.snapshot(which)
	if err := fn(s.now()); err != nil {
		s.restore(which, snap)
		return err
	}
	if err := s.persist(ctx, which); err != nil {
		s.restore(which, snap)
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Reload discards in-memory state and reads every document again.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Now exposes the service clock so callers agree on "today".
func (s *Service) Now() time.Time { return s.now() }

func newID() string { return uuid.NewString() }
