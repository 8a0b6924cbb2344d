package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Reader

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medledger/internal/history"
	"medledger/internal/history/handler/mocks"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/testutil"
)

const wallet = domain.WalletAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")

type HistoryHandlerSuite struct {
	suite.Suite
	reader *mocks.MockReader
	router chi.Router
}

func TestHistoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(HistoryHandlerSuite))
}

func (s *HistoryHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.reader = mocks.NewMockReader(ctrl)
	s.router = chi.NewRouter()
	New(s.reader, slog.New(slog.NewTextHandler(io.Discard, nil)), testutil.Sessions).Register(s.router)
}

func (s *HistoryHandlerSuite) get(path string) int {
	req := testutil.AsWallet(s.T(), testutil.NewRequest(s.T(), http.MethodGet, path), wallet)
	return testutil.DoRequest(s.router, req).Code
}

func (s *HistoryHandlerSuite) TestGet() {
	id := uuid.New()
	s.reader.EXPECT().Get(gomock.Any(), id, wallet).
		Return(&history.Entry{ID: id, Kind: history.KindAccessGranted, Sequence: 4}, nil)

	req := testutil.AsWallet(s.T(), testutil.NewRequest(s.T(), http.MethodGet, "/history/"+id.String()), wallet)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code)
	entry := testutil.UnmarshalResponse[history.Entry](s.T(), rr)
	s.Equal(uint64(4), entry.Sequence)

	s.Equal(http.StatusBadRequest, s.get("/history/not-a-uuid"))

	other := uuid.New()
	s.reader.EXPECT().Get(gomock.Any(), other, wallet).Return(nil, dErrors.New(dErrors.CodeNotFound, "history entry not found"))
	s.Equal(http.StatusNotFound, s.get("/history/"+other.String()))
}

func (s *HistoryHandlerSuite) TestListByPatient() {
	s.reader.EXPECT().ListByPatient(gomock.Any(), domain.PatientID(1), wallet, 0).Return([]*history.Entry{}, nil)
	s.Equal(http.StatusOK, s.get("/patients/1/history"))

	s.reader.EXPECT().ListByPatient(gomock.Any(), domain.PatientID(1), wallet, 25).Return([]*history.Entry{}, nil)
	s.Equal(http.StatusOK, s.get("/patients/1/history?limit=25"))

	s.Equal(http.StatusBadRequest, s.get("/patients/1/history?limit=0"))
	s.Equal(http.StatusBadRequest, s.get("/patients/1/history?limit=abc"))

	s.reader.EXPECT().ListByPatient(gomock.Any(), domain.PatientID(2), wallet, 0).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "wallet does not control this patient"))
	s.Equal(http.StatusUnauthorized, s.get("/patients/2/history"))
}
