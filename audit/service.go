package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions recorded by the services.
const (
	ActionRegister        = "user.register"
	ActionLogin           = "user.login"
	ActionLoginFailed     = "user.login_failed"
	ActionLogout          = "user.logout"
	ActionChangePassword  = "user.change_password"
	ActionUpdateProfile   = "user.update_profile"
	ActionDeleteAccount   = "user.delete"
	ActionCharacterCreate = "character.create"
	ActionCharacterUpdate = "character.update"
	ActionCharacterDelete = "character.delete"
	ActionLevelUp         = "character.level_up"
	ActionGrantExperience = "character.grant_experience"
	ActionLearnSkill      = "character.learn_skill"
	ActionCatalogSeed     = "admin.catalog_seed"
)

// Entry holds one audit event. Trace ID and client IP come from the context
// passed to Record.
type Entry struct {
	UserID      *int64
	CharacterID *int64
	Username    string
	Action      string
	Request     interface{}
	Response    interface{}
	Error       string
	DurationMs  int
}

// Recorder accepts audit events. Implementations must not block.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}

// Service writes audit entries asynchronously in batches.
type Service struct {
	db        *gorm.DB
	ch        chan *model.AuditLog
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	logger    *zap.Logger
	batchSize int
	interval  time.Duration
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, cfg config.AuditConfig, logger *zap.Logger) *Service {
	buf := cfg.BufferSize
	if buf <= 0 {
		buf = 1024
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	svc := &Service{
		db:        db,
		ch:        make(chan *model.AuditLog, buf),
		stopCh:    make(chan struct{}),
		logger:    logger,
		batchSize: batch,
		interval:  interval,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Record enqueues an entry for async DB write. When the buffer is full or
// the service is stopped the entry is dropped with a warning.
func (svc *Service) Record(ctx context.Context, e Entry) {
	select {
	case <-svc.stopCh:
		svc.logger.Warn("audit stopped, dropping entry", zap.String("action", e.Action))
		return
	default:
	}

	reqJSON, _ := json.Marshal(e.Request)
	respJSON, _ := json.Marshal(e.Response)
	record := &model.AuditLog{
		TraceID:     TraceIDFromContext(ctx),
		UserID:      e.UserID,
		CharacterID: e.CharacterID,
		Username:    e.Username,
		Action:      e.Action,
		Request:     datatypes.JSON(reqJSON),
		Response:    datatypes.JSON(respJSON),
		Error:       e.Error,
		IP:          ClientIPFromContext(ctx),
		DurationMs:  e.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", e.Action))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, svc.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed",
				zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= svc.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= svc.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Ptr is a small helper for the optional ID fields of Entry.
func Ptr(v int64) *int64 { return &v }
