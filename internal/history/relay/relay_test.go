package relay_test

//go:generate mockgen -source=relay.go -destination=mocks/mocks.go -package=mocks Publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medledger/internal/history"
	"medledger/internal/history/relay"
	"medledger/internal/history/relay/mocks"
	"medledger/internal/history/store/memory"
)

type RelaySuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	publisher *mocks.MockPublisher
	store     *memory.InMemoryStore
	metrics   *history.Metrics
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.store = memory.NewInMemoryStore()
	s.metrics = history.NewMetrics(prometheus.NewRegistry())
}

func (s *RelaySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RelaySuite) seed(n int) {
	for i := 0; i < n; i++ {
		s.Require().NoError(s.store.Append(context.Background(), &history.Entry{
			ID:        uuid.New(),
			Kind:      history.KindPatientRegistered,
			Outcome:   history.OutcomeSuccess,
			PatientID: 1,
			Timestamp: time.Now(),
		}))
	}
}

func (s *RelaySuite) TestDrainPublishesInBatches() {
	s.seed(5)
	worker := relay.NewWorker(s.store, s.publisher, relay.WithBatchSize(2), relay.WithMetrics(s.metrics))

	var sizes []int
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []history.OutboxRecord) error {
			sizes = append(sizes, len(records))
			return nil
		}).Times(3)

	n, err := worker.Drain(context.Background())
	s.Require().NoError(err)
	s.Equal(5, n)
	s.Equal([]int{2, 2, 1}, sizes)
	s.Equal(5.0, testutil.ToFloat64(s.metrics.Relayed))

	pending, err := s.store.Pending(context.Background(), 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *RelaySuite) TestPublishFailureLeavesRecordsPending() {
	s.seed(3)
	worker := relay.NewWorker(s.store, s.publisher, relay.WithMetrics(s.metrics))

	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Len(3)).Return(errors.New("broker down"))

	n, err := worker.Drain(context.Background())
	s.Require().Error(err)
	s.Zero(n)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RelayFailures))

	pending, err := s.store.Pending(context.Background(), 10)
	s.Require().NoError(err)
	s.Len(pending, 3)
}

func (s *RelaySuite) TestDrainEmptyOutbox() {
	worker := relay.NewWorker(s.store, s.publisher)
	n, err := worker.Drain(context.Background())
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RelaySuite) TestRunStopsOnCancel() {
	s.seed(1)
	worker := relay.NewWorker(s.store, s.publisher, relay.WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Len(1)).
		DoAndReturn(func(context.Context, []history.OutboxRecord) error {
			cancel()
			return nil
		})

	err := worker.Run(ctx)
	s.ErrorIs(err, context.Canceled)
}
