package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/db"
	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

// mockSender is a test double for the web push sender.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedAlertState(t *testing.T, gdb *gorm.DB, endpoint, deviceID string) {
	t.Helper()

	require.NoError(t, gdb.Create(&model.PushSubscription{
		Endpoint: endpoint,
		P256DH:   "test_p256dh",
		Auth:     "test_auth",
	}).Error)
	require.NoError(t, gdb.Create(&model.SubscriptionDevice{
		Endpoint: endpoint,
		DeviceID: deviceID,
	}).Error)
	require.NoError(t, gdb.Create(&model.WaterQuality{
		DeviceID:   deviceID,
		Turbidity:  3.0,
		TDS:        650,
		PH:         7.0,
		AlertLevel: "warning",
	}).Error)
}

func TestWorkerPoolDispatch(t *testing.T) {
	wp := NewWorkerPool(1, newTestDB(t), &webpush.Options{})

	wp.Dispatch("A1")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "A1", job)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerSendsAlert(t *testing.T) {
	gdb := newTestDB(t)
	seedAlertState(t, gdb, "https://example.com/push", "A1")

	wp := NewWorkerPool(1, gdb, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "Water quality alert for A1: High TDS (650 ppm)", string(payload))
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("A1")
	wg.Wait()
}

func TestWorkerDeletesExpiredSubscription(t *testing.T) {
	gdb := newTestDB(t)
	seedAlertState(t, gdb, "https://example.com/expired", "A1")

	wp := NewWorkerPool(1, gdb, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("A1")

	assert.Eventually(t, func() bool {
		var count int64
		gdb.Model(&model.PushSubscription{}).Count(&count)
		return count == 0
	}, 2*time.Second, 20*time.Millisecond, "expired subscription should be deleted")

	var mappings int64
	require.NoError(t, gdb.Model(&model.SubscriptionDevice{}).Count(&mappings).Error)
	assert.Equal(t, int64(0), mappings)
}

func TestWorkerNoSubscriptions(t *testing.T) {
	gdb := newTestDB(t)

	wp := NewWorkerPool(1, gdb, &webpush.Options{})
	sent := false
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			sent = true
			return &http.Response{StatusCode: http.StatusCreated, Body: io.NopCloser(bytes.NewBufferString(""))}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("ghost-device")
	time.Sleep(100 * time.Millisecond)
	assert.False(t, sent, "no notification should be sent without subscriptions")
}
