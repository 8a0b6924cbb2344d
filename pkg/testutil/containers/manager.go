//go:build integration

// Package containers starts shared infrastructure for integration tests.
// Containers are started once per test binary and reused across suites;
// Ryuk reaps them when the process exits.
package containers

import (
	"sync"
	"testing"
)

type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
	kafka    *KafkaContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres returns a migrated Postgres instance, starting it on first use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}

// GetKafka returns a Redpanda broker speaking the Kafka protocol.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kafka == nil {
		m.kafka = NewKafkaContainer(t)
	}
	return m.kafka
}
