package audit

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/model"
	"github.com/kasuganosora/middleearth/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{}, nop())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestRecord_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{}, nop())

	ctx := WithClientIP(WithTraceID(context.Background(), "trace-123"), "127.0.0.1")
	svc.Record(ctx, Entry{
		UserID:      Ptr(2),
		CharacterID: Ptr(1),
		Username:    "frodo",
		Action:      ActionLevelUp,
		Request:     map[string]int64{"character_id": 1},
		Response:    map[string]int{"level": 2},
		DurationMs:  42,
	})

	// Stop flushes remaining entries
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "frodo", logs[0].Username)
	assert.Equal(t, ActionLevelUp, logs[0].Action)
	assert.Equal(t, "127.0.0.1", logs[0].IP)
	assert.Equal(t, 42, logs[0].DurationMs)
	require.NotNil(t, logs[0].CharacterID)
	assert.Equal(t, int64(1), *logs[0].CharacterID)
	assert.JSONEq(t, `{"level":2}`, string(logs[0].Response))
}

func TestRecord_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{BatchSize: 10}, nop())

	for i := 0; i < 25; i++ {
		svc.Record(context.Background(), Entry{Action: "batch"})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(25), count)
}

func TestRecord_TimerFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{FlushInterval: 20 * time.Millisecond}, nop())
	defer svc.Stop(context.Background())

	svc.Record(context.Background(), Entry{Action: "timer_test"})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AuditLog{}).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{}, nop())
	svc.Stop(context.Background())
	svc.Stop(context.Background()) // must not panic
}

func TestRecord_AfterStopDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{}, nop())
	svc.Stop(context.Background())

	svc.Record(context.Background(), Entry{Action: "late"})

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestRecord_NilFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{}, nop())

	svc.Record(context.Background(), Entry{Action: ActionLoginFailed})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].CharacterID)
	assert.Nil(t, logs[0].UserID)
	assert.Empty(t, logs[0].TraceID)
}

func TestRecord_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, config.AuditConfig{BufferSize: 4, BatchSize: 1000, FlushInterval: time.Hour}, nop())

	// must not block or panic once the buffer is full
	for i := 0; i < 100; i++ {
		svc.Record(context.Background(), Entry{Action: "flood"})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.LessOrEqual(t, count, int64(100))
	assert.Greater(t, count, int64(0))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Record(context.Background(), Entry{Action: "x"})
}
