//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	accessModels "medledger/internal/access/models"
	documentModels "medledger/internal/documents/models"
	identityModels "medledger/internal/identity/models"
	"medledger/internal/registry"
	"medledger/internal/registry/store/postgres"
	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
	"medledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	tx       *registry.PostgresTx
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.tx = registry.NewPostgresTx(s.postgres.DB, 10*time.Second)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), containers.RegistryTables...))
}

func (s *PostgresStoreSuite) seed(ctx context.Context) {
	s.Require().NoError(s.store.CreateDoctor(ctx, &identityModels.Doctor{
		ID: 1, Name: "Dr House", Wallet: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", RegisteredAt: time.Now(),
	}))
	s.Require().NoError(s.store.CreatePatient(ctx, &identityModels.Patient{
		ID: 1, Name: "Alice", Wallet: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", RegisteredAt: time.Now(),
	}))
}

func (s *PostgresStoreSuite) TestConcurrentPatientIDsAreUnique() {
	ctx := context.Background()
	const goroutines = 40

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[domain.PatientID]bool)
		dups atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
				id, err := s.store.NextPatientID(txCtx)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if seen[id] {
					dups.Add(1)
				}
				seen[id] = true
				return nil
			})
		}()
	}
	wg.Wait()

	s.Zero(dups.Load())
	s.Len(seen, goroutines)
}

func (s *PostgresStoreSuite) TestDoctorUniqueness() {
	ctx := context.Background()
	s.seed(ctx)

	err := s.store.CreateDoctor(ctx, &identityModels.Doctor{
		ID: 2, Name: "Dr Wilson", Wallet: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", RegisteredAt: time.Now(),
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	byWallet, err := s.store.FindDoctorByWallet(ctx, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	s.Require().NoError(err)
	s.Equal(domain.DoctorID(1), byWallet.ID)
}

func (s *PostgresStoreSuite) TestGrantIdempotence() {
	ctx := context.Background()
	s.seed(ctx)
	grant := &accessModels.Grant{PatientID: 1, DoctorID: 1, GrantedAt: time.Now()}

	created, err := s.store.PutGrant(ctx, grant)
	s.Require().NoError(err)
	s.True(created)
	created, err = s.store.PutGrant(ctx, grant)
	s.Require().NoError(err)
	s.False(created)

	removed, err := s.store.DeleteGrant(ctx, 1, 1)
	s.Require().NoError(err)
	s.True(removed)
	removed, err = s.store.DeleteGrant(ctx, 1, 1)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *PostgresStoreSuite) TestDocumentTombstones() {
	ctx := context.Background()
	s.seed(ctx)

	for _, name := range []string{"Flu", "Cold"} {
		_, err := s.store.AppendDocument(ctx, &documentModels.Document{
			PatientID: 1, DoctorID: 1, DiseaseName: name, ContentRef: "sha256-aa", UploadedAt: time.Now(),
		})
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.MarkDeleted(ctx, 1, 0, 1, time.Now()))
	s.ErrorIs(s.store.MarkDeleted(ctx, 1, 0, 1, time.Now()), sentinel.ErrNotFound)

	idx, err := s.store.AppendDocument(ctx, &documentModels.Document{
		PatientID: 1, DoctorID: 1, DiseaseName: "Asthma", ContentRef: "sha256-bb", UploadedAt: time.Now(),
	})
	s.Require().NoError(err)
	s.Equal(domain.DocumentIndex(2), idx)

	docs, err := s.store.ListDocuments(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(docs, 3)
	s.True(docs[0].IsDeleted())
	s.Equal(domain.DoctorID(1), docs[0].DeletedBy)
	s.Equal("Cold", docs[1].DiseaseName)
}

func (s *PostgresStoreSuite) TestRollbackLeavesNoState() {
	ctx := context.Background()
	s.seed(ctx)

	err := s.tx.RunInTx(registry.WithPatientScope(ctx, 1), func(txCtx context.Context) error {
		if _, err := s.store.PutGrant(txCtx, &accessModels.Grant{PatientID: 1, DoctorID: 1, GrantedAt: time.Now()}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Require().Error(err)

	ok, err := s.store.HasGrant(ctx, 1, 1)
	s.Require().NoError(err)
	s.False(ok)
}
