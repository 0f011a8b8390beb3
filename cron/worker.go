package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"inkwell/config"
	"inkwell/services/booking"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingExpire = "booking:expire"
	TypeBookingSweep  = "booking:sweep"
)

// expirePayload identifies the reservation a one-shot expiry task was
// scheduled for. The handler runs a full sweep either way; the ID is kept
// for the task log.
type expirePayload struct {
	BookingID string `json:"bookingId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ExpiryScheduler enqueues the one-shot expiry check for a new reservation.
type ExpiryScheduler struct {
	client *asynq.Client
}

func NewExpiryScheduler() *ExpiryScheduler {
	return &ExpiryScheduler{client: asynq.NewClient(redisOpts())}
}

// ScheduleExpiry enqueues a booking:expire task slightly past the timeout
// window so the sweep cutoff has definitely been crossed when it runs.
func (s *ExpiryScheduler) ScheduleExpiry(_ context.Context, bookingID string, after time.Duration) error {
	payload, err := json.Marshal(expirePayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeBookingExpire, payload)
	_, err = s.client.Enqueue(task, asynq.ProcessIn(after+5*time.Second))
	return err
}

// InitExpiryWorker runs the async worker and the periodic sweep in the
// background. The per-booking task is the prompt path; the minutely sweep
// is the safety net that frees abandoned checkouts even if the task was
// lost, with no client polling involved.
func InitExpiryWorker(bookingSvc booking.Service) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingExpire, handleExpireTask(bookingSvc))
	mux.HandleFunc(TypeBookingSweep, handleSweepTask(bookingSvc))

	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	go runSweepScheduler()
}

func handleExpireTask(bookingSvc booking.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p expirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryWorker] invalid expire payload: %v", err)
			return err
		}
		n, err := bookingSvc.ExpireStale(ctx)
		if err != nil {
			log.Printf("[ExpiryWorker] expiry for booking %s failed: %v", p.BookingID, err)
			return err
		}
		if n > 0 {
			log.Printf("[ExpiryWorker] expired %d reservation(s) (triggered by %s)", n, p.BookingID)
		}
		return nil
	}
}

func handleSweepTask(bookingSvc booking.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		_, err := bookingSvc.ExpireStale(ctx)
		return err
	}
}

func runSweepScheduler() {
	scheduler := asynq.NewScheduler(redisOpts(), nil)
	if _, err := scheduler.Register("@every 1m", asynq.NewTask(TypeBookingSweep, nil)); err != nil {
		log.Printf("[ExpiryWorker] failed to register sweep: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[ExpiryWorker] sweep scheduler stopped: %v", err)
	}
}
