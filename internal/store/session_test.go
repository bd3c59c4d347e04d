package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk-news/kiosk/internal/newsapi"
	apimock "github.com/kiosk-news/kiosk/internal/newsapi/mock"
	"github.com/kiosk-news/kiosk/internal/storage"
	storagemock "github.com/kiosk-news/kiosk/internal/storage/mock"
)

func newSessionTest(t *testing.T) (*Session, *apimock.MockClient, *storagemock.MockStorage, *toastRecorder) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	api := apimock.NewMockClient(ctrl)
	st := storagemock.NewMockStorage(ctrl)
	tr := &toastRecorder{}

	return NewSession(api, st, tr), api, st, tr
}

func TestSession_Register(t *testing.T) {
	s, api, st, tr := newSessionTest(t)
	user := testUser()

	api.EXPECT().Register(gomock.Any(), "name", "mail@example.com", "pass").Return(&newsapi.AuthResponse{
		Token: "jwt",
		User:  user,
	}, nil)
	st.EXPECT().Set(gomock.Any(), storage.TokenKey, []byte("jwt")).Return(nil)
	st.EXPECT().Set(gomock.Any(), storage.UserKey, gomock.Any()).Return(nil)

	out, err := s.Register(context.Background(), "name", "mail@example.com", "pass")
	require.NoError(t, err)
	assert.Equal(t, user, out)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	assert.Equal(t, user.ID, s.User().ID)
	assert.NotEmpty(t, tr.successes)
}

func TestSession_Register_failure(t *testing.T) {
	s, api, _, tr := newSessionTest(t)

	api.EXPECT().Register(gomock.Any(), "name", "mail@example.com", "pass").
		Return(nil, &newsapi.Error{Status: http.StatusConflict, Message: "email taken"})

	_, err := s.Register(context.Background(), "name", "mail@example.com", "pass")
	require.Error(t, err)

	// no session established
	_, err = s.Token()
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Nil(t, s.User())
	assert.NotEmpty(t, tr.errors)
}

func TestSession_Login(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	api.EXPECT().Login(gomock.Any(), "mail@example.com", "pass").Return(&newsapi.AuthResponse{
		Token: "jwt",
		User:  testUser(),
	}, nil)
	st.EXPECT().Set(gomock.Any(), storage.TokenKey, []byte("jwt")).Return(nil)
	st.EXPECT().Set(gomock.Any(), storage.UserKey, gomock.Any()).Return(nil)

	require.NoError(t, s.Login(context.Background(), "mail@example.com", "pass"))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
}

func TestSession_Login_failure(t *testing.T) {
	s, api, _, tr := newSessionTest(t)

	api.EXPECT().Login(gomock.Any(), "mail@example.com", "pass").
		Return(nil, &newsapi.Error{Status: http.StatusUnauthorized, Message: "wrong password"})

	require.Error(t, s.Login(context.Background(), "mail@example.com", "pass"))

	_, err := s.Token()
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.NotEmpty(t, tr.errors)
}

func TestSession_Logout(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	api.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(&newsapi.AuthResponse{
		Token: "jwt",
		User:  testUser(),
	}, nil)
	st.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, s.Login(context.Background(), "mail@example.com", "pass"))

	// both persisted entries are purged together
	st.EXPECT().Delete(gomock.Any(), storage.TokenKey, storage.UserKey).Return(nil)

	s.Logout(context.Background())

	_, err := s.Token()
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Nil(t, s.User())
}

func TestSession_Restore(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	persisted, err := json.Marshal(testUser())
	require.NoError(t, err)

	fresh := testUser()
	fresh.Name = "renamed"

	st.EXPECT().Get(gomock.Any(), storage.TokenKey).Return([]byte("jwt"), nil)
	st.EXPECT().Get(gomock.Any(), storage.UserKey).Return(persisted, nil)
	api.EXPECT().Me(gomock.Any(), "jwt").Return(fresh, nil)
	st.EXPECT().Set(gomock.Any(), storage.TokenKey, []byte("jwt")).Return(nil)
	st.EXPECT().Set(gomock.Any(), storage.UserKey, gomock.Any()).Return(nil)

	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, "renamed", s.User().Name)
}

func TestSession_Restore_rejected(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	persisted, err := json.Marshal(testUser())
	require.NoError(t, err)

	st.EXPECT().Get(gomock.Any(), storage.TokenKey).Return([]byte("jwt"), nil)
	st.EXPECT().Get(gomock.Any(), storage.UserKey).Return(persisted, nil)
	api.EXPECT().Me(gomock.Any(), "jwt").
		Return(nil, &newsapi.Error{Status: http.StatusUnauthorized, Message: "invalid token"})
	// the stale session is dropped
	st.EXPECT().Delete(gomock.Any(), storage.TokenKey, storage.UserKey).Return(nil)

	require.Error(t, s.Restore(context.Background()))

	_, err = s.Token()
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Nil(t, s.User())
}

func TestSession_Restore_offline(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	persisted, err := json.Marshal(testUser())
	require.NoError(t, err)

	st.EXPECT().Get(gomock.Any(), storage.TokenKey).Return([]byte("jwt"), nil)
	st.EXPECT().Get(gomock.Any(), storage.UserKey).Return(persisted, nil)
	api.EXPECT().Me(gomock.Any(), "jwt").Return(nil, errors.New("connection refused"))

	// a transport failure keeps the stale session
	require.NoError(t, s.Restore(context.Background()))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	assert.NotNil(t, s.User())
}

func TestSession_Restore_empty(t *testing.T) {
	s, _, st, _ := newSessionTest(t)

	st.EXPECT().Get(gomock.Any(), storage.TokenKey).Return(nil, storage.ErrNotFound)

	require.NoError(t, s.Restore(context.Background()))
	assert.Nil(t, s.User())
}

func TestSession_Token_expired(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	expired := signedToken(time.Now().Add(-time.Hour))

	api.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(&newsapi.AuthResponse{
		Token: expired,
		User:  testUser(),
	}, nil)
	st.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, s.Login(context.Background(), "mail@example.com", "pass"))

	_, err := s.Token()
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestSession_Token_opaque(t *testing.T) {
	s, api, st, _ := newSessionTest(t)

	api.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(&newsapi.AuthResponse{
		Token: "not-a-jwt",
		User:  testUser(),
	}, nil)
	st.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, s.Login(context.Background(), "mail@example.com", "pass"))

	// opaque tokens are left for the backend to judge
	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", token)
}
