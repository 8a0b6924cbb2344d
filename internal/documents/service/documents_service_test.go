package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store Gate ContentStore HistoryRecorder

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

	accessservice "medledger/internal/access/service"
	"medledger/internal/authz"
	"medledger/internal/contentstore"
	docmetrics "medledger/internal/documents/metrics"
	"medledger/internal/documents/models"
	"medledger/internal/documents/service/mocks"
	"medledger/internal/history"
	historymemory "medledger/internal/history/store/memory"
	"medledger/internal/identity/roster"
	identityservice "medledger/internal/identity/service"
	identityModels "medledger/internal/identity/models"
	"medledger/internal/registry"
	registrymemory "medledger/internal/registry/store/memory"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
)

const (
	patientWallet = domain.WalletAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	doctorWallet  = domain.WalletAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	otherWallet   = domain.WalletAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

// DocumentServiceSuite runs the document list against real identity, grant,
// gate and history collaborators sharing one transaction runner.
type DocumentServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *registrymemory.InMemoryStore
	history  *historymemory.InMemoryStore
	content  *contentstore.InMemory
	identity *identityservice.Service
	access   *accessservice.Service
	metrics  *docmetrics.Metrics
	service  *Service
}

func TestDocumentServiceSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = registrymemory.NewInMemoryStore()
	s.history = historymemory.NewInMemoryStore()
	s.content = contentstore.NewInMemory()
	recorder := history.NewRecorder(s.history)
	tx := registry.NewShardedTx()

	rosterSource := roster.NewInMemory()
	s.identity = identityservice.New(s.store, rosterSource, recorder, identityservice.WithTx(tx))
	s.access = accessservice.New(s.store, recorder, accessservice.WithTx(tx))
	s.metrics = docmetrics.New(prometheus.NewRegistry())
	s.service = New(s.store, authz.New(s.access), recorder,
		WithTx(tx),
		WithContentStore(s.content),
		WithMetrics(s.metrics),
	)

	patient, err := s.identity.RegisterPatient(s.ctx, "P1", patientWallet)
	s.Require().NoError(err)
	s.Require().Equal(domain.PatientID(1), patient.ID)

	s.Require().NoError(s.identity.RegisterDoctorRoster(s.ctx, 1, "D1"))
	doctor, err := s.identity.RegisterDoctor(s.ctx, 1, "D1", doctorWallet)
	s.Require().NoError(err)
	s.Require().Equal(domain.DoctorID(1), doctor.ID)

	s.Require().NoError(s.identity.RegisterDoctorRoster(s.ctx, 2, "D2"))
	_, err = s.identity.RegisterDoctor(s.ctx, 2, "D2", otherWallet)
	s.Require().NoError(err)
}

func asDoctor(id uint64, wallet domain.WalletAddress) models.Requestor {
	return models.Requestor{Role: domain.RoleDoctor, ID: id, Wallet: wallet}
}

func asPatient(id uint64) models.Requestor {
	return models.Requestor{Role: domain.RolePatient, ID: id, Wallet: patientWallet}
}

func (s *DocumentServiceSuite) upload(diseaseName string) (*models.UploadReceipt, error) {
	return s.service.StoreAndUpload(s.ctx, models.UploadRequest{
		PatientID:    1,
		DoctorID:     1,
		DiseaseName:  diseaseName,
		Description:  "mild case",
		ActingWallet: doctorWallet,
	}, []byte("scan:"+diseaseName))
}

func (s *DocumentServiceSuite) assertCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Truef(dErrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func (s *DocumentServiceSuite) TestGrantUploadRevokeRegrantScenario() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))

	docs, err := s.service.ListDocuments(s.ctx, 1, asDoctor(1, doctorWallet))
	s.Require().NoError(err)
	s.Empty(docs)

	receipt, err := s.upload("Flu")
	s.Require().NoError(err)
	s.Equal(domain.DocumentIndex(0), receipt.Index)

	docs, err = s.service.ListDocuments(s.ctx, 1, asDoctor(1, doctorWallet))
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(domain.DocumentIndex(0), docs[0].Index)

	s.Require().NoError(s.access.RevokeAccess(s.ctx, 1, 1, patientWallet))
	_, err = s.service.ListDocuments(s.ctx, 1, asDoctor(1, doctorWallet))
	s.assertCode(err, dErrors.CodeForbidden)

	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	docs, err = s.service.ListDocuments(s.ctx, 1, asDoctor(1, doctorWallet))
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("Flu", docs[0].DiseaseName)
}

func (s *DocumentServiceSuite) TestUnregisteredDoctorCannotUpload() {
	_, err := s.service.UploadDocument(s.ctx, models.UploadRequest{
		PatientID:    1,
		DoctorID:     99,
		ContentRef:   "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		DiseaseName:  "Flu",
		ActingWallet: doctorWallet,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeForbidden))

	docs, err := s.store.ListDocuments(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *DocumentServiceSuite) TestUploadRoundTrip() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	ref, err := s.content.Put(s.ctx, []byte("cid-bytes"))
	s.Require().NoError(err)

	receipt, err := s.service.UploadDocument(s.ctx, models.UploadRequest{
		PatientID:    1,
		DoctorID:     1,
		ContentRef:   ref,
		DiseaseName:  "Flu",
		Description:  "mild case",
		ActingWallet: doctorWallet,
	})
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, receipt.EntryID)
	s.NotZero(receipt.Sequence)

	entry, err := s.history.Get(s.ctx, receipt.EntryID)
	s.Require().NoError(err)
	s.Equal(history.KindDocumentUploaded, entry.Kind)
	s.Equal(history.OutcomeSuccess, entry.Outcome)
	s.Require().NotNil(entry.DocumentIndex)
	s.Equal(receipt.Index, *entry.DocumentIndex)

	for _, requestor := range []models.Requestor{asDoctor(1, doctorWallet), asPatient(1)} {
		docs, err := s.service.ListDocuments(s.ctx, 1, requestor)
		s.Require().NoError(err)
		s.Require().Len(docs, 1)
		s.Equal(ref, docs[0].ContentRef)
		s.Equal("Flu", docs[0].DiseaseName)
		s.Equal("mild case", docs[0].Description)
		s.Equal(receipt.Index, docs[0].Index)
	}
	s.Equal(1.0, testutil.ToFloat64(s.metrics.DocumentsUploaded))
}

func (s *DocumentServiceSuite) TestUploadPreconditions() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	stored, err := s.content.Put(s.ctx, []byte("x"))
	s.Require().NoError(err)

	base := models.UploadRequest{PatientID: 1, DoctorID: 1, ContentRef: stored, DiseaseName: "Flu", ActingWallet: doctorWallet}

	cases := []struct {
		name   string
		mutate func(*models.UploadRequest)
		code   dErrors.Code
	}{
		{"unknown patient", func(r *models.UploadRequest) { r.PatientID = 42 }, dErrors.CodeNotFound},
		{"wallet is not the doctor's", func(r *models.UploadRequest) { r.ActingWallet = otherWallet }, dErrors.CodeUnauthorized},
		{"doctor without grant", func(r *models.UploadRequest) { r.DoctorID = 2; r.ActingWallet = otherWallet }, dErrors.CodeForbidden},
		{"content not stored", func(r *models.UploadRequest) { r.ContentRef = contentstore.RefFor([]byte("never")) }, dErrors.CodeNotFound},
		{"missing disease name", func(r *models.UploadRequest) { r.DiseaseName = "  " }, dErrors.CodeBadRequest},
		{"missing ref", func(r *models.UploadRequest) { r.ContentRef = "" }, dErrors.CodeBadRequest},
		{"missing wallet", func(r *models.UploadRequest) { r.ActingWallet = "" }, dErrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := base
			tc.mutate(&req)
			_, err := s.service.UploadDocument(s.ctx, req)
			s.assertCode(err, tc.code)
		})
	}

	docs, err := s.store.ListDocuments(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(docs)

	entries, err := s.history.ListByPatient(s.ctx, 1, 0)
	s.Require().NoError(err)
	failures := 0
	for _, e := range entries {
		if e.Kind == history.KindDocumentUploaded {
			s.Equal(history.OutcomeFailure, e.Outcome)
			failures++
		}
	}
	// "unknown patient" is recorded against patient 42.
	s.Equal(len(cases)-1, failures)
}

func (s *DocumentServiceSuite) TestRevokedDoctorIsLockedOut() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	_, err := s.upload("Flu")
	s.Require().NoError(err)
	s.Require().NoError(s.access.RevokeAccess(s.ctx, 1, 1, patientWallet))

	_, err = s.upload("Cold")
	s.assertCode(err, dErrors.CodeForbidden)

	err = s.service.DeleteDocument(s.ctx, 1, 0, doctorWallet)
	s.assertCode(err, dErrors.CodeForbidden)

	_, err = s.service.ListDocuments(s.ctx, 1, asDoctor(1, doctorWallet))
	s.assertCode(err, dErrors.CodeForbidden)

	_, _, err = s.service.FetchContent(s.ctx, 1, 0, asDoctor(1, doctorWallet))
	s.assertCode(err, dErrors.CodeForbidden)

	docs, err := s.service.ListDocuments(s.ctx, 1, asPatient(1))
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *DocumentServiceSuite) TestDeleteLeavesTombstone() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	for _, name := range []string{"Flu", "Cold", "Measles"} {
		_, err := s.upload(name)
		s.Require().NoError(err)
	}

	s.Require().NoError(s.service.DeleteDocument(s.ctx, 1, 1, doctorWallet))

	docs, err := s.service.ListDocuments(s.ctx, 1, asPatient(1))
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(domain.DocumentIndex(0), docs[0].Index)
	s.Equal(domain.DocumentIndex(2), docs[1].Index)
	s.Equal("Measles", docs[1].DiseaseName)

	s.Run("deleted index is terminal", func() {
		err := s.service.DeleteDocument(s.ctx, 1, 1, doctorWallet)
		s.assertCode(err, dErrors.CodeNotFound)
		_, _, err = s.service.FetchContent(s.ctx, 1, 1, asPatient(1))
		s.assertCode(err, dErrors.CodeNotFound)
	})

	s.Run("next upload never reuses the index", func() {
		receipt, err := s.upload("Mumps")
		s.Require().NoError(err)
		s.Equal(domain.DocumentIndex(3), receipt.Index)
	})

	s.Run("out of range index", func() {
		err := s.service.DeleteDocument(s.ctx, 1, 40, doctorWallet)
		s.assertCode(err, dErrors.CodeNotFound)
	})

	s.Run("wallet that is not a doctor", func() {
		err := s.service.DeleteDocument(s.ctx, 1, 0, patientWallet)
		s.assertCode(err, dErrors.CodeUnauthorized)
	})
}

func (s *DocumentServiceSuite) TestGrantedDoctorMayDeleteOthersUploads() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 2, patientWallet))
	_, err := s.upload("Flu")
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteDocument(s.ctx, 1, 0, otherWallet))
	doc, err := s.store.FindDocument(s.ctx, 1, 0)
	s.Require().NoError(err)
	s.True(doc.IsDeleted())
	s.Equal(domain.DoctorID(2), doc.DeletedBy)
}

func (s *DocumentServiceSuite) TestListAuthorization() {
	cases := []struct {
		name      string
		requestor models.Requestor
		code      dErrors.Code
	}{
		{"patient reading another record", models.Requestor{Role: domain.RolePatient, ID: 2, Wallet: patientWallet}, dErrors.CodeForbidden},
		{"patient id with foreign wallet", models.Requestor{Role: domain.RolePatient, ID: 1, Wallet: otherWallet}, dErrors.CodeUnauthorized},
		{"doctor without grant", asDoctor(2, otherWallet), dErrors.CodeForbidden},
		{"doctor id with foreign wallet", asDoctor(1, otherWallet), dErrors.CodeUnauthorized},
		{"unknown doctor", asDoctor(7, doctorWallet), dErrors.CodeNotFound},
		{"unknown role", models.Requestor{Role: "nurse", ID: 1, Wallet: doctorWallet}, dErrors.CodeForbidden},
		{"no wallet", models.Requestor{Role: domain.RolePatient, ID: 1}, dErrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			docs, err := s.service.ListDocuments(s.ctx, 1, tc.requestor)
			s.assertCode(err, tc.code)
			s.Nil(docs)
		})
	}

	_, err := s.service.ListDocuments(s.ctx, 9, asPatient(9))
	s.assertCode(err, dErrors.CodeNotFound)
}

func (s *DocumentServiceSuite) TestListDocumentsByDoctor() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 2, patientWallet))
	_, err := s.upload("Flu")
	s.Require().NoError(err)
	_, err = s.service.StoreAndUpload(s.ctx, models.UploadRequest{
		PatientID: 1, DoctorID: 2, DiseaseName: "Cold", ActingWallet: otherWallet,
	}, []byte("scan:cold"))
	s.Require().NoError(err)

	docs, err := s.service.ListDocumentsByDoctor(s.ctx, 1, 2, asPatient(1))
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("Cold", docs[0].DiseaseName)
	s.Equal(domain.DocumentIndex(1), docs[0].Index)

	s.Require().NoError(s.access.RevokeAccess(s.ctx, 1, 2, patientWallet))
	_, err = s.service.ListDocumentsByDoctor(s.ctx, 1, 2, asDoctor(2, otherWallet))
	s.assertCode(err, dErrors.CodeForbidden)
}

func (s *DocumentServiceSuite) TestFetchContent() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))
	_, err := s.upload("Flu")
	s.Require().NoError(err)

	data, doc, err := s.service.FetchContent(s.ctx, 1, 0, asDoctor(1, doctorWallet))
	s.Require().NoError(err)
	s.Equal([]byte("scan:Flu"), data)
	s.Equal("Flu", doc.DiseaseName)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Reads.WithLabelValues("fetch", "doctor")))
}

func (s *DocumentServiceSuite) TestGrantChangeSerializesWithUpload() {
	s.Require().NoError(s.access.GrantAccess(s.ctx, 1, 1, patientWallet))

	done := make(chan error)
	go func() {
		done <- s.access.RevokeAccess(s.ctx, 1, 1, patientWallet)
	}()
	_, uploadErr := s.upload("Flu")
	s.Require().NoError(<-done)

	docs, err := s.store.ListDocuments(s.ctx, 1)
	s.Require().NoError(err)
	if uploadErr == nil {
		s.Len(docs, 1)
	} else {
		s.assertCode(uploadErr, dErrors.CodeForbidden)
		s.Empty(docs)
	}
	_, err = s.upload("Cold")
	s.assertCode(err, dErrors.CodeForbidden)
}

// DocumentServiceMockSuite covers collaborator failures.
type DocumentServiceMockSuite struct {
	suite.Suite
	ctx     context.Context
	store   *mocks.MockStore
	gate    *mocks.MockGate
	content *mocks.MockContentStore
	history *mocks.MockHistoryRecorder
	service *Service
}

func TestDocumentServiceMockSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceMockSuite))
}

func (s *DocumentServiceMockSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.store = mocks.NewMockStore(ctrl)
	s.gate = mocks.NewMockGate(ctrl)
	s.content = mocks.NewMockContentStore(ctrl)
	s.history = mocks.NewMockHistoryRecorder(ctrl)
	s.service = New(s.store, s.gate, s.history, WithContentStore(s.content))
}

func (s *DocumentServiceMockSuite) expectAuthorized() {
	s.store.EXPECT().FindPatient(gomock.Any(), domain.PatientID(1)).
		Return(&identityModels.Patient{ID: 1, Wallet: patientWallet}, nil).AnyTimes()
	s.store.EXPECT().FindDoctor(gomock.Any(), domain.DoctorID(1)).
		Return(&identityModels.Doctor{ID: 1, Wallet: doctorWallet}, nil).AnyTimes()
	s.gate.EXPECT().Require(gomock.Any(), domain.PatientID(1), domain.DoctorID(1)).Return(nil).AnyTimes()
}

func (s *DocumentServiceMockSuite) request() models.UploadRequest {
	return models.UploadRequest{PatientID: 1, DoctorID: 1, DiseaseName: "Flu", ActingWallet: doctorWallet}
}

func (s *DocumentServiceMockSuite) TestContentPutFailureLeavesNoState() {
	s.expectAuthorized()
	s.content.EXPECT().Put(gomock.Any(), []byte("scan")).Return(domain.ContentRef(""), sentinel.ErrUnavailable)
	s.history.EXPECT().RecordFailure(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, entry history.Entry, cause error) {
			s.Equal(history.KindDocumentUploaded, entry.Kind)
			s.True(dErrors.HasCode(cause, dErrors.CodeExternalDependencyFailure))
		})

	_, err := s.service.StoreAndUpload(s.ctx, s.request(), []byte("scan"))
	s.True(dErrors.HasCode(err, dErrors.CodeExternalDependencyFailure))
}

func (s *DocumentServiceMockSuite) TestUnauthorizedStoreAndUploadNeverWrites() {
	s.store.EXPECT().FindPatient(gomock.Any(), domain.PatientID(1)).Return(&identityModels.Patient{ID: 1}, nil)
	s.store.EXPECT().FindDoctor(gomock.Any(), domain.DoctorID(1)).Return(&identityModels.Doctor{ID: 1, Wallet: doctorWallet}, nil)
	s.gate.EXPECT().Require(gomock.Any(), domain.PatientID(1), domain.DoctorID(1)).
		Return(dErrors.New(dErrors.CodeForbidden, "doctor is not authorized for this patient"))
	s.history.EXPECT().RecordFailure(gomock.Any(), gomock.Any(), gomock.Any())

	_, err := s.service.StoreAndUpload(s.ctx, s.request(), []byte("scan"))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *DocumentServiceMockSuite) TestContentStoreUnavailableOnHas() {
	s.content.EXPECT().Has(gomock.Any(), domain.ContentRef("sha256-abc")).Return(false, errors.New("dial tcp: timeout"))
	s.history.EXPECT().RecordFailure(gomock.Any(), gomock.Any(), gomock.Any())

	req := s.request()
	req.ContentRef = "sha256-abc"
	_, err := s.service.UploadDocument(s.ctx, req)
	s.True(dErrors.HasCode(err, dErrors.CodeExternalDependencyFailure))
}

func (s *DocumentServiceMockSuite) TestHistoryFailureAbortsUpload() {
	s.expectAuthorized()
	s.content.EXPECT().Has(gomock.Any(), domain.ContentRef("sha256-abc")).Return(true, nil)
	s.store.EXPECT().AppendDocument(gomock.Any(), gomock.Any()).Return(domain.DocumentIndex(0), nil)
	s.history.EXPECT().Record(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "history persistence failed"))
	s.history.EXPECT().RecordFailure(gomock.Any(), gomock.Any(), gomock.Any())

	req := s.request()
	req.ContentRef = "sha256-abc"
	receipt, err := s.service.UploadDocument(s.ctx, req)
	s.Nil(receipt)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *DocumentServiceMockSuite) TestFetchContentMissingBlob() {
	s.expectAuthorized()
	s.store.EXPECT().FindDocument(gomock.Any(), domain.PatientID(1), domain.DocumentIndex(0)).
		Return(&models.Document{Index: 0, PatientID: 1, ContentRef: "bafy-external", UploadedAt: time.Now()}, nil)
	s.content.EXPECT().Get(gomock.Any(), domain.ContentRef("bafy-external")).Return(nil, sentinel.ErrNotFound)

	_, _, err := s.service.FetchContent(s.ctx, 1, 0, asDoctor(1, doctorWallet))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DocumentServiceMockSuite) TestNoContentStoreConfigured() {
	svc := New(s.store, s.gate, s.history)
	s.history.EXPECT().RecordFailure(gomock.Any(), gomock.Any(), gomock.Any())

	_, err := svc.StoreAndUpload(s.ctx, s.request(), []byte("scan"))
	s.True(dErrors.HasCode(err, dErrors.CodeExternalDependencyFailure))

	_, _, err = svc.FetchContent(s.ctx, 1, 0, asPatient(1))
	s.True(dErrors.HasCode(err, dErrors.CodeExternalDependencyFailure))
}
