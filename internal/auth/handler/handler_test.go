package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"certifly/internal/auth/handler/mocks"
	"certifly/internal/auth/models"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      chi.Router
	user        *models.User
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(s.mockService, logger)
	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	h.Register(s.router)

	s.user = models.NewUser(id.UserID(uuid.New()), "7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV",
		time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) authed(req *http.Request) *http.Request {
	return testutil.AsUser(req, s.user.ID)
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("returns token and user", func() {
		expiresAt := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
		s.mockService.EXPECT().Authenticate(gomock.Any(), models.LoginRequest{
			Message: "hello", Signature: "sig", PublicKey: s.user.WalletAddress.String(),
		}).Return(&models.LoginResult{Token: "tok", ExpiresAt: expiresAt, User: s.user, Created: true}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
			"message": "hello", "signature": " sig ", "publicKey": s.user.WalletAddress.String(),
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.DecodeJSON[LoginResponse](s.T(), rr)
		s.Equal("tok", resp.Token)
		s.Equal(s.user.ID.String(), resp.User.ID)
		s.Equal(s.user.DisplayName, resp.User.FullName)
		s.Equal(s.user.WalletAddress.String(), resp.User.WalletAddress)
	})

	s.Run("missing fields are rejected before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{"message": "hello"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("unknown fields are a bad request", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/auth/login", `{"message":"a","signature":"b","publicKey":"c","extra":1}`)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("invalid signature is unauthorized", func() {
		s.mockService.EXPECT().Authenticate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonInvalidSignature, "invalid signature"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", map[string]string{
			"message": "hello", "signature": "sig", "publicKey": "key",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

func (s *AuthHandlerSuite) TestMe() {
	s.Run("returns the current user", func() {
		s.mockService.EXPECT().Me(gomock.Any(), s.user.ID).Return(s.user, nil)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me")))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "id", s.user.ID.String())
	})

	s.Run("profile is the same view", func() {
		s.mockService.EXPECT().Me(gomock.Any(), s.user.ID).Return(s.user, nil)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/profile")))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "wallet_address", s.user.WalletAddress.String())
	})

	s.Run("missing identity is unauthorized", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"))

		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("unknown user is not found", func() {
		s.mockService.EXPECT().Me(gomock.Any(), s.user.ID).Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me")))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *AuthHandlerSuite) TestUpdateProfile() {
	s.Run("updates name", func() {
		updated := *s.user
		updated.DisplayName = "Ada"
		s.mockService.EXPECT().UpdateProfile(gomock.Any(), s.user.ID, gomock.Any()).
			DoAndReturn(func(_ any, _ id.UserID, u models.ProfileUpdate) (*models.User, error) {
				s.Require().NotNil(u.DisplayName)
				s.Equal("Ada", *u.DisplayName)
				s.Nil(u.Email)
				return &updated, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/profile", map[string]string{"fullName": " Ada "})
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.DecodeJSON[ProfileResponse](s.T(), rr)
		s.Equal("Ada", resp.User.FullName)
	})

	s.Run("invalid email is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/profile", map[string]string{"email": "nope"})
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("empty body is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/profile", map[string]string{})
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *AuthHandlerSuite) TestLogout() {
	expiresAt := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)

	s.Run("revokes the current credential", func() {
		s.mockService.EXPECT().Logout(gomock.Any(), s.user.ID, "jti-1", expiresAt).Return(nil)

		req := testutil.WithToken(s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/auth/logout")), "jti-1", expiresAt)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("revocation failure is internal", func() {
		s.mockService.EXPECT().Logout(gomock.Any(), s.user.ID, "jti-2", expiresAt).
			Return(dErrors.Wrap(errors.New("redis down"), dErrors.CodeInternal, "failed to revoke token"))

		req := testutil.WithToken(s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/auth/logout")), "jti-2", expiresAt)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
	})
}
