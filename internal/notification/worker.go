package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
	"github.com/ginxFromYt/ARDUINO-API/internal/waterquality"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans out water-quality alert notifications. The ingestor
// dispatches a device id whenever a reading classifies as warning or
// critical; a worker notifies every browser subscribed to that device.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case deviceID := <-wp.jobs:
			wp.notifyForDevice(ctx, deviceID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert job for a device. Never blocks the ingest path:
// if the pool is saturated the job is dropped with a log line.
func (wp *WorkerPool) Dispatch(deviceID string) {
	select {
	case wp.jobs <- deviceID:
	default:
		log.Printf("notification queue full, dropping alert for device %s", deviceID)
	}
}

// notifyForDevice loads the device's subscriptions and latest reading and
// pushes an alert message to each subscriber.
func (wp *WorkerPool) notifyForDevice(ctx context.Context, deviceID string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_devices sd ON sd.endpoint = push_subscriptions.endpoint").
		Where("sd.device_id = ?", deviceID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for device %s: %v", deviceID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var latest model.WaterQuality
	err = wp.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("error fetching latest reading for device %s: %v", deviceID, err)
		return
	}

	detail := "threshold exceeded"
	if err == nil {
		detail = waterquality.Describe(latest.Turbidity, latest.TDS, latest.PH)
	}
	message := fmt.Sprintf("Water quality alert for %s: %s", deviceID, detail)

	log.Printf("sending %d alert notifications for device %s", len(subscriptions), deviceID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification pushes a single message and removes the subscription if
// the push service reports it gone.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		if err := wp.db.WithContext(ctx).
			Where("endpoint = ?", sub.Endpoint).
			Delete(&model.SubscriptionDevice{}).Error; err != nil {
			log.Printf("failed to delete device mappings for %s: %v", sub.Endpoint, err)
		}
	}
}
