package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medledger/internal/documents/handler/mocks"
	"medledger/internal/documents/models"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/testutil"
)

const doctorWallet = domain.WalletAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

type DocumentHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestDocumentHandlerSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlerSuite))
}

func (s *DocumentHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), testutil.Sessions, 1024).Register(s.router)
}

func (s *DocumentHandlerSuite) send(req *http.Request) *http.Response {
	return testutil.DoRequest(s.router, testutil.AsWallet(s.T(), req, doctorWallet)).Result()
}

func (s *DocumentHandlerSuite) TestUploadByRef() {
	receipt := &models.UploadReceipt{Index: 0, ContentRef: "bafy-ref", EntryID: uuid.New(), Sequence: 3, CommittedAt: time.Now()}
	s.service.EXPECT().UploadDocument(gomock.Any(), models.UploadRequest{
		PatientID:    1,
		DoctorID:     2,
		ContentRef:   "bafy-ref",
		DiseaseName:  "Flu",
		Description:  "mild case",
		ActingWallet: doctorWallet,
	}).Return(receipt, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/patients/1/documents", map[string]any{
		"doctor_id": 2, "disease_name": "Flu", "description": "mild case", "content_ref": "bafy-ref",
	})
	rr := testutil.DoRequest(s.router, testutil.AsWallet(s.T(), req, doctorWallet))
	s.Require().Equal(http.StatusCreated, rr.Code)
	got := testutil.UnmarshalResponse[models.UploadReceipt](s.T(), rr)
	s.Equal(receipt.EntryID, got.EntryID)
	s.Equal(uint64(3), got.Sequence)
}

func (s *DocumentHandlerSuite) TestUploadInlineContent() {
	s.service.EXPECT().StoreAndUpload(gomock.Any(), gomock.Any(), []byte("scan")).
		Return(&models.UploadReceipt{Index: 4}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/patients/1/documents", map[string]any{
		"doctor_id": 2, "disease_name": "Flu", "content": []byte("scan"),
	})
	s.Equal(http.StatusCreated, s.send(req).StatusCode)
}

func (s *DocumentHandlerSuite) TestUploadRejectsBadBodies() {
	s.Run("both content and ref", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/patients/1/documents", map[string]any{
			"doctor_id": 2, "disease_name": "Flu", "content": []byte("scan"), "content_ref": "bafy",
		})
		s.Equal(http.StatusBadRequest, s.send(req).StatusCode)
	})

	s.Run("neither content nor ref", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/patients/1/documents", map[string]any{
			"doctor_id": 2, "disease_name": "Flu",
		})
		s.Equal(http.StatusBadRequest, s.send(req).StatusCode)
	})

	s.Run("body over the limit", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/patients/1/documents", map[string]any{
			"doctor_id": 2, "disease_name": "Flu", "content": []byte(strings.Repeat("x", 2048)),
		})
		s.Equal(http.StatusBadRequest, s.send(req).StatusCode)
	})
}

func (s *DocumentHandlerSuite) TestUploadForbidden() {
	s.service.EXPECT().UploadDocument(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeForbidden, "doctor is not authorized for this patient"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/patients/1/documents", map[string]any{
		"doctor_id": 2, "disease_name": "Flu", "content_ref": "bafy-ref",
	})
	rr := testutil.DoRequest(s.router, testutil.AsWallet(s.T(), req, doctorWallet))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *DocumentHandlerSuite) TestList() {
	requestor := models.Requestor{Role: domain.RoleDoctor, ID: 2, Wallet: doctorWallet}

	s.Run("all documents", func() {
		s.service.EXPECT().ListDocuments(gomock.Any(), domain.PatientID(1), requestor).
			Return([]*models.Document{{Index: 0, DiseaseName: "Flu"}}, nil)
		rr := testutil.DoRequest(s.router, testutil.AsWallet(s.T(),
			testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?role=doctor&requestor_id=2"), doctorWallet))
		s.Require().Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[struct {
			Documents []documentResponse `json:"documents"`
		}](s.T(), rr)
		s.Require().Len(resp.Documents, 1)
		s.Equal("Flu", resp.Documents[0].DiseaseName)
	})

	s.Run("empty list is an array", func() {
		s.service.EXPECT().ListDocuments(gomock.Any(), domain.PatientID(1), requestor).Return([]*models.Document{}, nil)
		rr := testutil.DoRequest(s.router, testutil.AsWallet(s.T(),
			testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?role=doctor&requestor_id=2"), doctorWallet))
		s.JSONEq(`{"documents":[]}`, rr.Body.String())
	})

	s.Run("filtered by doctor", func() {
		s.service.EXPECT().ListDocumentsByDoctor(gomock.Any(), domain.PatientID(1), domain.DoctorID(3), requestor).
			Return([]*models.Document{}, nil)
		req := testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?role=doctor&requestor_id=2&doctor_id=3")
		s.Equal(http.StatusOK, s.send(req).StatusCode)
	})

	s.Run("denied is an error not an empty list", func() {
		s.service.EXPECT().ListDocuments(gomock.Any(), domain.PatientID(1), requestor).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "doctor is not authorized for this patient"))
		req := testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?role=doctor&requestor_id=2")
		s.Equal(http.StatusForbidden, s.send(req).StatusCode)
	})

	s.Run("missing role", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?requestor_id=2")
		s.Equal(http.StatusBadRequest, s.send(req).StatusCode)
	})

	s.Run("missing requestor id", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?role=patient")
		s.Equal(http.StatusBadRequest, s.send(req).StatusCode)
	})
}

func (s *DocumentHandlerSuite) TestDelete() {
	s.service.EXPECT().DeleteDocument(gomock.Any(), domain.PatientID(1), domain.DocumentIndex(0), doctorWallet).Return(nil)
	s.Equal(http.StatusNoContent, s.send(testutil.NewRequest(s.T(), http.MethodDelete, "/patients/1/documents/0")).StatusCode)

	s.service.EXPECT().DeleteDocument(gomock.Any(), domain.PatientID(1), domain.DocumentIndex(5), doctorWallet).
		Return(dErrors.New(dErrors.CodeNotFound, "document not found"))
	s.Equal(http.StatusNotFound, s.send(testutil.NewRequest(s.T(), http.MethodDelete, "/patients/1/documents/5")).StatusCode)

	s.Equal(http.StatusBadRequest, s.send(testutil.NewRequest(s.T(), http.MethodDelete, "/patients/1/documents/-1")).StatusCode)
}

func (s *DocumentHandlerSuite) TestContent() {
	requestor := models.Requestor{Role: domain.RolePatient, ID: 1, Wallet: doctorWallet}
	s.service.EXPECT().FetchContent(gomock.Any(), domain.PatientID(1), domain.DocumentIndex(0), requestor).
		Return([]byte("scan"), &models.Document{ContentRef: "sha256-ab"}, nil)

	rr := testutil.DoRequest(s.router, testutil.AsWallet(s.T(),
		testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents/0/content?role=patient&requestor_id=1"), doctorWallet))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("scan", rr.Body.String())
	s.Equal("application/octet-stream", rr.Header().Get("Content-Type"))
	s.Equal("sha256-ab", rr.Header().Get("X-Content-Ref"))
}

func (s *DocumentHandlerSuite) TestRequiresSession() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/patients/1/documents?role=patient&requestor_id=1"))
	s.Equal(http.StatusUnauthorized, rr.Code)
}
