package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rpsms/sms-organizer-backend/internal/api/response"
	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/services"
	"github.com/rpsms/sms-organizer-backend/tests/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// SystemHandlerTestSuite is the test suite for SystemHandler
type SystemHandlerTestSuite struct {
	suite.Suite
	echo            *echo.Echo
	handler         *SystemHandler
	mockMessageRepo *mocks.MockMessageRepository
	mockFilterRepo  *mocks.MockFilterRepository
	config          services.RetentionConfig
}

// SetupTest runs before each test
func (s *SystemHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockMessageRepo = new(mocks.MockMessageRepository)
	s.mockFilterRepo = new(mocks.MockFilterRepository)
	s.config = services.RetentionConfig{AutoDeleteDays: 30}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	retention := services.NewRetentionService(s.mockMessageRepo, s.mockFilterRepo,
		func() services.RetentionConfig { return s.config }, nil, time.Hour, logger)
	summary := services.NewSummaryService(s.mockMessageRepo, nil, 24*time.Hour, logger)

	s.handler = NewSystemHandler(retention, summary)
}

// TearDownTest runs after each test
func (s *SystemHandlerTestSuite) TearDownTest() {
	s.mockMessageRepo.AssertExpectations(s.T())
	s.mockFilterRepo.AssertExpectations(s.T())
}

// TestSystemHandlerTestSuite runs the test suite
func TestSystemHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SystemHandlerTestSuite))
}

// Helper function to create a test context
func (s *SystemHandlerTestSuite) createContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	return c, rec
}

// ==================== Sweep Tests ====================

// TestSweep_Success tests an on-demand retention pass
func (s *SystemHandlerTestSuite) TestSweep_Success() {
	old := models.Message{ID: 1, Address: "+15550142", Body: "ancient",
		Timestamp: time.Now().Add(-31 * 24 * time.Hour).UnixMilli()}
	fresh := models.Message{ID: 2, Address: "+15550142", Body: "recent",
		Timestamp: time.Now().UnixMilli()}
	c, rec := s.createContext(http.MethodPost, "/api/retention/sweep")

	s.mockMessageRepo.On("GetAll", mock.Anything).Return([]models.Message{old, fresh}, nil)
	s.mockFilterRepo.On("GetAll", mock.Anything).Return([]models.Filter{}, nil)
	s.mockMessageRepo.On("DeleteByID", mock.Anything, uint(1)).Return(nil)

	err := s.handler.Sweep(c)

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp response.APIResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	s.True(resp.Success)
	data := resp.Data.(map[string]interface{})
	s.Equal(float64(1), data["deleted"])
}

// TestSweep_StorageFailure tests a sweep abandoned on a failed read
func (s *SystemHandlerTestSuite) TestSweep_StorageFailure() {
	c, rec := s.createContext(http.MethodPost, "/api/retention/sweep")

	s.mockMessageRepo.On("GetAll", mock.Anything).Return(nil, errors.New("database error"))

	err := s.handler.Sweep(c)

	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
}

// ==================== RetentionConfig Tests ====================

// TestRetentionConfig_ReflectsProvider tests the config view
func (s *SystemHandlerTestSuite) TestRetentionConfig_ReflectsProvider() {
	s.config = services.RetentionConfig{AutoDeleteDays: 7, AutoDeleteCodes: true}
	c, rec := s.createContext(http.MethodGet, "/api/retention/config")

	err := s.handler.RetentionConfig(c)

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp response.APIResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	data := resp.Data.(map[string]interface{})
	s.Equal(float64(7), data["auto_delete_days"])
	s.Equal(true, data["auto_delete_codes"])
}

// ==================== Summary Tests ====================

// TestSummary_Success tests the 24-hour digest
func (s *SystemHandlerTestSuite) TestSummary_Success() {
	now := time.Now().UnixMilli()
	messages := []models.Message{
		{ID: 1, Timestamp: now, Read: false},
		{ID: 2, Timestamp: now, Read: true, IsCode: true},
		{ID: 3, Timestamp: now, Read: false, IsPromotional: true},
	}
	c, rec := s.createContext(http.MethodGet, "/api/summary")

	s.mockMessageRepo.On("GetByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return(messages, nil)

	err := s.handler.Summary(c)

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp response.APIResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	s.True(resp.Success)
	data := resp.Data.(map[string]interface{})
	s.Equal(float64(3), data["total"])
	s.Equal(float64(2), data["unread"])
	s.Equal(float64(1), data["codes"])
}

// TestSummary_StorageFailure tests handling of a failed read
func (s *SystemHandlerTestSuite) TestSummary_StorageFailure() {
	c, rec := s.createContext(http.MethodGet, "/api/summary")

	s.mockMessageRepo.On("GetByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("database error"))

	err := s.handler.Summary(c)

	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
}
