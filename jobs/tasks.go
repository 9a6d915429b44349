package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/interport-cargo/interport/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotificationEmail mails a ledger entry to its recipient.
	TaskNotificationEmail = "notification:email"
)

// taskNamespace seeds deterministic task ids so a notification is mailed once.
var taskNamespace = uuid.MustParse("8d7b4c63-5f0e-4a52-9d0b-8f0f6a7f3c11")

// NotificationEmailPayload describes one notification email.
type NotificationEmailPayload struct {
	ResponseID int64  `json:"response_id"`
	Audience   string `json:"audience"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// Validate checks the payload carries everything the mailer needs.
func (p NotificationEmailPayload) Validate() error {
	if p.ResponseID <= 0 {
		return errors.New("jobs: response id required")
	}
	if p.To == "" || p.Subject == "" {
		return errors.New("jobs: recipient and subject required")
	}
	return nil
}

// NotificationTaskID derives the asynq task id for a ledger entry.
func NotificationTaskID(responseID int64) string {
	return uuid.NewSHA1(taskNamespace, []byte("response:"+strconv.FormatInt(responseID, 10))).String()
}

// NewNotificationEmailTask constructs the asynq task.
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, data,
		asynq.Queue(QueueDefault),
		asynq.TaskID(NotificationTaskID(payload.ResponseID)),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	), nil
}

// Mailer delivers a plain text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationEmailJob handles TaskNotificationEmail.
type NotificationEmailJob struct {
	mailer  Mailer
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewNotificationEmailJob wires the handler.
func NewNotificationEmailJob(mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotificationEmailJob {
	return &NotificationEmailJob{mailer: mailer, logger: logger, metrics: metrics}
}

// Handle decodes and sends one email. Malformed payloads are not retried.
func (j *NotificationEmailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.mailer == nil {
		return errors.New("notification email: handler not configured")
	}
	tracker := j.metrics.Track(TaskNotificationEmail)
	defer func() { err = tracker.End(err) }()

	var payload NotificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("notification email: decode: %v: %w", err, asynq.SkipRetry)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("notification email: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With(slog.Int64("response_id", payload.ResponseID), slog.String("audience", payload.Audience))
	if err := j.mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
		logger.Error("send notification email", slog.Any("error", err))
		return err
	}
	j.metrics.EmailSent(payload.Audience)
	logger.Info("notification email sent")
	return nil
}
