package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cascade/internal/history/models"
	historyStore "cascade/internal/history/store/history"
	id "cascade/pkg/domain"
)

type capturedMessage struct {
	key   string
	value []byte
}

// capturePublisher records publishes and can fail on demand.
type capturePublisher struct {
	messages []capturedMessage
	failures int
}

func (p *capturePublisher) Publish(_ context.Context, key string, value []byte) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, capturedMessage{key: key, value: value})
	return nil
}

type OutboxWorkerSuite struct {
	suite.Suite
	store     *historyStore.InMemory
	publisher *capturePublisher
	worker    *Worker

	companyID id.CompanyID
	projectID id.ProjectID
	now       time.Time
}

func TestOutboxWorkerSuite(t *testing.T) {
	suite.Run(t, new(OutboxWorkerSuite))
}

func (s *OutboxWorkerSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *OutboxWorkerSuite) SetupTest() {
	s.store = historyStore.NewInMemory()
	s.publisher = &capturePublisher{}
	s.worker = New(s.store, s.publisher, WithBatchSize(10))
	s.companyID = id.NewCompanyID()
	s.projectID = id.NewProjectID()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *OutboxWorkerSuite) append(action models.Action, at time.Time) *models.Entry {
	e, err := models.NewEntry(id.NewHistoryID(), s.projectID, s.companyID, action, id.NewUserID(), at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Append(context.Background(), e))
	return e
}

// TestDrain verifies publish order, keying and publish bookkeeping.
func (s *OutboxWorkerSuite) TestDrain() {
	s.Run("publishes rows oldest first keyed by project", func() {
		first := s.append(models.ActionCreated, s.now)
		second := s.append(models.ActionUpdated, s.now.Add(time.Minute))

		err := s.worker.drain(context.Background())
		s.NoError(err)
		s.Require().Len(s.publisher.messages, 2)
		s.Equal(s.projectID.String(), s.publisher.messages[0].key)
		s.Contains(string(s.publisher.messages[0].value), first.ID.String())
		s.Contains(string(s.publisher.messages[1].value), second.ID.String())
	})

	s.Run("published rows are not drained again", func() {
		s.append(models.ActionCreated, s.now)
		s.Require().NoError(s.worker.drain(context.Background()))
		before := len(s.publisher.messages)

		s.Require().NoError(s.worker.drain(context.Background()))
		s.Len(s.publisher.messages, before)
	})

	s.Run("failed publish leaves the row for the next tick", func() {
		s.append(models.ActionDeleted, s.now)
		s.publisher.failures = 1

		err := s.worker.drain(context.Background())
		s.Error(err)
		s.Empty(s.publisher.messages)

		s.Require().NoError(s.worker.drain(context.Background()))
		s.Len(s.publisher.messages, 1)
	})

	s.Run("empty outbox is a no-op", func() {
		s.NoError(s.worker.drain(context.Background()))
		s.Empty(s.publisher.messages)
	})
}

// TestRun verifies the loop stops when the context is cancelled.
func (s *OutboxWorkerSuite) TestRun() {
	s.Run("returns when context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.worker.Run(ctx)
		}()

		cancel()
		select {
		case err := <-done:
			s.ErrorIs(err, context.Canceled)
		case <-time.After(time.Second):
			s.Fail("worker did not stop after cancellation")
		}
	})
}
