package store

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/storage"
	storagemock "github.com/kiosk-news/kiosk/internal/storage/mock"
)

// toastRecorder collects toasts emitted by stores under test.
type toastRecorder struct {
	successes []string
	infos     []string
	errors    []string
}

func (t *toastRecorder) Success(msg string) { t.successes = append(t.successes, msg) }
func (t *toastRecorder) Info(msg string)    { t.infos = append(t.infos, msg) }
func (t *toastRecorder) Error(msg string)   { t.errors = append(t.errors, msg) }

func testUser() *entities.User {
	return &entities.User{
		ID:    "u1",
		Name:  "name",
		Email: "mail@example.com",
		Role:  entities.UserRole,
	}
}

// newLogoutStorage returns a storage mock permitting the purge Logout does.
func newLogoutStorage(ctrl *gomock.Controller) *storagemock.MockStorage {
	st := storagemock.NewMockStorage(ctrl)
	st.EXPECT().Delete(gomock.Any(), storage.TokenKey, storage.UserKey).Return(nil)

	return st
}

func signedToken(exp time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		panic(err)
	}

	return token
}
