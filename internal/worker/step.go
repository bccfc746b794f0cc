package worker

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/jobs"
	"github.com/geocoder89/campushub/internal/notifications"
	"github.com/geocoder89/campushub/internal/observability"
)

const maxErrorLen = 500

// ProcessOne claims and runs at most one job. The bool reports whether a job
// was claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	w.metrics.Claimed()
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	// a claimed job is finished even when shutdown starts mid-flight
	runCtx, cancelRun := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.JobTimeout)
	defer cancelRun()

	start := time.Now()
	err = w.execute(runCtx, j)

	if err != nil {
		outcome := w.handleFailure(runCtx, j, err)
		w.observe(j.Type, outcome, time.Since(start))
		return true, nil
	}

	err = w.repo.MarkDone(runCtx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(runCtx, j.ID, "mark_done_failed: "+err.Error())
		w.observe(j.Type, observability.JobDeadLettered, time.Since(start))
		return true, err
	}

	w.observe(j.Type, observability.JobDone, time.Since(start))
	w.log.Debug("job done", "job_id", j.ID, "type", j.Type)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	kind, ok := notifications.KindForJobType(j.Type)
	if !ok {
		return jobs.ErrInvalidJobType
	}

	p, err := jobs.DecodePayload(j)
	if err != nil {
		return err
	}

	return w.notifier.SendBookingNotification(ctx, notifications.BookingNotification{
		Kind:    kind,
		Payload: p,
	})
}

// handleFailure reschedules with backoff, or dead-letters when the job can
// never succeed or has used its attempt budget.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) observability.JobOutcome {
	msg := cause.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}

	if isPermanent(cause) || j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.Error("mark job failed", "job_id", j.ID, "err", err)
		}
		w.log.Warn("job dead-lettered", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "err", cause)
		return observability.JobDeadLettered
	}

	runAt := w.now().Add(w.backoff(j.Attempts))
	if err := w.repo.Reschedule(ctx, j.ID, runAt, msg); err != nil {
		w.log.Error("reschedule job", "job_id", j.ID, "err", err)
	}
	w.log.Info("job rescheduled", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts+1, "run_at", runAt, "err", cause)
	return observability.JobRetried
}

func isPermanent(err error) bool {
	return errors.Is(err, jobs.ErrInvalidJobType) ||
		errors.Is(err, jobs.ErrInvalidJobPayload) ||
		errors.Is(err, jobs.ErrPayloadTypeMismatch)
}

func (w *Worker) observe(jobType string, outcome observability.JobOutcome, d time.Duration) {
	w.metrics.Finished(outcome, d)
	if w.prom == nil {
		return
	}
	result := outcome.String()
	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
}
