//go:build integration

package roster_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"medledger/internal/identity/roster"
	"medledger/pkg/platform/sentinel"
	"medledger/pkg/testutil/containers"
)

type RedisRosterSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	roster *roster.Redis
}

func TestRedisRosterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRosterSuite))
}

func (s *RedisRosterSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.roster = roster.NewRedis(s.redis.Client, "")
}

func (s *RedisRosterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRosterSuite) TestAddAndLookup() {
	ctx := context.Background()
	s.Require().NoError(s.roster.Add(ctx, 7, "Dr Cuddy"))
	s.Require().NoError(s.roster.Add(ctx, 7, "Dr Cuddy"))
	s.ErrorIs(s.roster.Add(ctx, 7, "Dr Foreman"), sentinel.ErrConflict)

	name, found, err := s.roster.Lookup(ctx, 7)
	s.Require().NoError(err)
	s.True(found)
	s.Equal("Dr Cuddy", name)

	_, found, err = s.roster.Lookup(ctx, 8)
	s.Require().NoError(err)
	s.False(found)
}

// TestConcurrentConflictingAdds verifies exactly one name wins for an id.
func (s *RedisRosterSuite) TestConcurrentConflictingAdds() {
	ctx := context.Background()
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for _, n := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := s.roster.Add(ctx, 99, name); err == nil {
				successes.Add(1)
			} else if err == sentinel.ErrConflict {
				conflicts.Add(1)
			}
		}(n)
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(len(names)-1), conflicts.Load())
}
