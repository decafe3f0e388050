package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"imageingest/internal/logger"
	"imageingest/internal/models"
)

// Moderation decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Decision is sent by the moderation workflow once a submission is judged.
type Decision struct {
	Decision   string `json:"decision"`
	StagedPath string `json:"staged_path"`
	SubjectID  int64  `json:"subject_id"`
}

// DecisionHandler is implemented by the ingest service.
type DecisionHandler interface {
	Promote(ctx context.Context, stagedPath string, subjectID int64) (*models.Promotion, error)
	Delete(ctx context.Context, path string) models.Deletion
}

// ParseDecision decodes and checks one decision message.
func ParseDecision(data []byte) (Decision, error) {
	var d Decision
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("decode decision: %w", err)
	}
	d.Decision = strings.ToLower(strings.TrimSpace(d.Decision))
	if d.StagedPath == "" {
		return d, errors.New("decision without staged_path")
	}
	switch d.Decision {
	case DecisionApprove:
		if d.SubjectID <= 0 {
			return d, errors.New("approve decision without subject_id")
		}
	case DecisionReject:
	default:
		return d, fmt.Errorf("unknown decision %q", d.Decision)
	}
	return d, nil
}

// Apply promotes approved assets and deletes rejected ones.
func Apply(ctx context.Context, h DecisionHandler, d Decision) error {
	switch d.Decision {
	case DecisionApprove:
		_, err := h.Promote(ctx, d.StagedPath, d.SubjectID)
		return err
	case DecisionReject:
		h.Delete(ctx, d.StagedPath)
		return nil
	default:
		return fmt.Errorf("unknown decision %q", d.Decision)
	}
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// DecisionConsumer applies moderation decisions read from Kafka.
type DecisionConsumer struct {
	r       messageReader
	h       DecisionHandler
	backoff time.Duration
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewDecisionConsumer(r messageReader, h DecisionHandler) *DecisionConsumer {
	return &DecisionConsumer{r: r, h: h, backoff: time.Second}
}

// Run blocks until ctx is cancelled or the reader is closed. Bad messages
// and failed decisions are logged and skipped; nothing is retried. Read
// errors pause the loop for the backoff interval.
func (c *DecisionConsumer) Run(ctx context.Context) error {
	defer c.r.Close()
	l := logger.Ctx(ctx)

	for {
		msg, err := c.r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("events.DecisionConsumer: reader closed: %w", err)
			}
			l.Error().Err(err).Msg("error reading decision")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}
		d, err := ParseDecision(msg.Value)
		if err != nil {
			l.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping decision")
			continue
		}
		if err := Apply(ctx, c.h, d); err != nil {
			l.Error().Err(err).
				Str("decision", d.Decision).
				Str("staged_path", d.StagedPath).
				Int64(logger.FieldSubject, d.SubjectID).
				Msg("error applying decision")
		}
	}
}
