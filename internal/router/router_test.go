package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/repositories/memory"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngImage  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 17)...)
	jpegImage = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 16)...)
)

type stubUploader struct{ names []string }

func (s *stubUploader) Upload(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	return "https://cdn.test/" + name, nil
}

type testServer struct {
	t        *testing.T
	e        *echo.Echo
	uploader *stubUploader
	logs     *logtest.Hook
}

type account struct {
	id    string
	token string
}

func newTestServer(t *testing.T, withUploader bool) *testServer {
	t.Helper()
	store := memory.NewStore()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	deps := Dependencies{
		Users:               store.Users(),
		Posts:               store.Posts(),
		Comments:            store.Comments(),
		Notifications:       store.Notifications(),
		Issuer:              auth.NewTokenIssuer("test-secret", 2*time.Hour),
		Revocations:         auth.NewMemoryRevocationStore(),
		MaxUploadBytes:      1 << 20,
		DefaultProfileImage: "https://img.test/default.png",
		Logger:              logger,
	}
	s := &testServer{t: t, logs: hook}
	if withUploader {
		s.uploader = &stubUploader{}
		deps.Uploader = s.uploader
	}
	s.e = New(deps)
	return s
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(path, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(username string) account {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/users/signup", "", signupBody(username))
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decode(s.t, rec)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	return account{id: user["id"].(string), token: data["token"].(string)}
}

func signupBody(username string) map[string]string {
	return map[string]string{
		"username":         username,
		"first_name":       "Test",
		"last_name":        "User",
		"email":            username + "@example.com",
		"password":         "Passw0rd",
		"password_confirm": "Passw0rd",
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, rec)
	require.Equal(t, true, body["success"], rec.Body.String())
	return body["data"].(map[string]interface{})
}

func TestSignupUsernameLength(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/users/signup", "", signupBody("abc"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	fields := body["fields"].([]interface{})
	require.NotEmpty(t, fields)
	assert.Equal(t, "username", fields[0].(map[string]interface{})["field"])

	rec = s.do(http.MethodPost, "/users/signup", "", signupBody("abcd"))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSignupTrimsBeforeValidating(t *testing.T) {
	s := newTestServer(t, false)

	body := signupBody("abc")
	body["username"] = "  abc  "
	rec := s.do(http.MethodPost, "/users/signup", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	fields := decode(t, rec)["fields"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "username", fields[0].(map[string]interface{})["field"])

	body = signupBody("abcd")
	body["username"] = "  abcd  "
	body["first_name"] = " "
	rec = s.do(http.MethodPost, "/users/signup", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	fields = decode(t, rec)["fields"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "first_name", fields[0].(map[string]interface{})["field"])

	body["first_name"] = " Test "
	rec = s.do(http.MethodPost, "/users/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := data(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "abcd", user["username"])
	assert.Equal(t, "Test", user["first_name"])

	rec = s.do(http.MethodPost, "/users/login", "", map[string]string{"username": " abcd ", "password": "Passw0rd"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBlankTextIsRejected(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signup("alice")

	rec := s.do(http.MethodPost, "/users/"+alice.id+"/posts", alice.token, map[string]string{"text": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	fields := decode(t, rec)["fields"].([]interface{})
	assert.Equal(t, "text", fields[0].(map[string]interface{})["field"])

	postID := createPost(t, s, alice, "  hello  ")
	rec = s.do(http.MethodGet, "/posts/"+postID, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", data(t, rec)["post"].(map[string]interface{})["text"])

	rec = s.do(http.MethodPut, "/posts/"+postID, alice.token, map[string]string{"text": "\t\n"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/posts/"+postID+"/comments", alice.token, map[string]string{"text": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	fields = decode(t, rec)["fields"].([]interface{})
	assert.Equal(t, "text", fields[0].(map[string]interface{})["field"])
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	s := newTestServer(t, false)
	s.signup("alice")

	rec := s.do(http.MethodPost, "/users/signup", "", signupBody("alice"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username already in use", decode(t, rec)["error"])
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t, false)
	s.signup("alice")

	rec := s.do(http.MethodPost, "/users/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/users/login", "", map[string]string{"username": "alice", "password": "Passw0rd"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := data(t, rec)["token"].(string)

	rec = s.do(http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := data(t, rec)["users"].([]interface{})
	require.Len(t, users, 1)
	assert.NotContains(t, users[0].(map[string]interface{}), "password")

	rec = s.do(http.MethodPost, "/users/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token revoked", decode(t, rec)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFriendRequestFlow(t *testing.T) {
	s := newTestServer(t, false)
	alice, bob := s.signup("alice"), s.signup("bobby")

	rec := s.do(http.MethodPost, "/users/"+bob.id+"/requests", alice.token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/users/"+bob.id+"/requests", alice.token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/users/"+bob.id+"/requests", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	requests := data(t, rec)["requests"].([]interface{})
	require.Len(t, requests, 1)
	assert.Equal(t, alice.id, requests[0].(map[string]interface{})["id"])

	rec = s.do(http.MethodPut, "/users/"+bob.id+"/addfriend", bob.token, map[string]string{"friend": alice.id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "added", data(t, rec)["action"])

	rec = s.do(http.MethodGet, "/users/"+alice.id+"/friends", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	friends := data(t, rec)["friends"].([]interface{})
	require.Len(t, friends, 1)
	assert.Equal(t, bob.id, friends[0].(map[string]interface{})["id"])

	rec = s.do(http.MethodGet, "/users/"+alice.id+"/userslist", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, data(t, rec)["users"])

	rec = s.do(http.MethodDelete, "/users/"+bob.id+"/requests/"+alice.id, bob.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutatingAnotherUserIsForbidden(t *testing.T) {
	s := newTestServer(t, false)
	alice, bob := s.signup("alice"), s.signup("bobby")

	rec := s.do(http.MethodPut, "/users/"+bob.id, alice.token, map[string]string{"first_name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/users/"+bob.id, alice.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/users/"+bob.id+"/posts", alice.token, map[string]string{"text": "impersonation"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func createPost(t *testing.T, s *testServer, a account, text string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/users/"+a.id+"/posts", a.token, map[string]string{"text": text})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return data(t, rec)["post"].(map[string]interface{})["id"].(string)
}

func TestDeletedPostTakesCommentsWithIt(t *testing.T) {
	s := newTestServer(t, false)
	alice, bob := s.signup("alice"), s.signup("bobby")
	postID := createPost(t, s, alice, "hello world")

	rec := s.do(http.MethodPost, "/posts/"+postID+"/comments", bob.token, map[string]string{"text": "hi alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	commentID := data(t, rec)["comment"].(map[string]interface{})["id"].(string)

	rec = s.do(http.MethodGet, "/posts/"+postID+"/comments/"+commentID, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	author := data(t, rec)["comment"].(map[string]interface{})["author"].(map[string]interface{})
	assert.Equal(t, "bobby", author["username"])

	rec = s.do(http.MethodDelete, "/posts/"+postID, bob.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/posts/"+postID, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := data(t, rec)["report"].(map[string]interface{})
	assert.Len(t, report["completed"], 2)

	rec = s.do(http.MethodGet, "/posts/"+postID+"/comments/"+commentID, alice.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/posts/"+postID, alice.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signup("alice")

	rec := s.do(http.MethodGet, "/posts/not-an-id", alice.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", decode(t, rec)["error"])
}

func TestFeedAndLikes(t *testing.T) {
	s := newTestServer(t, false)
	alice, bob, carol := s.signup("alice"), s.signup("bobby"), s.signup("carol")
	rec := s.do(http.MethodPut, "/users/"+alice.id+"/addfriend", alice.token, map[string]string{"friend": bob.id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	createPost(t, s, alice, "first")
	bobPost := createPost(t, s, bob, "second")
	createPost(t, s, carol, "not a friend")

	rec = s.do(http.MethodPut, "/posts/"+bobPost+"/like", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "added", data(t, rec)["action"])

	rec = s.do(http.MethodGet, "/users/"+alice.id+"/feed", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	posts := body["data"].(map[string]interface{})["posts"].([]interface{})
	require.Len(t, posts, 2)
	for _, p := range posts {
		post := p.(map[string]interface{})
		assert.NotEqual(t, "not a friend", post["text"])
		if post["id"] == bobPost {
			assert.Equal(t, true, post["is_liked"])
		}
	}
	assert.Equal(t, float64(2), body["meta"].(map[string]interface{})["totalItems"])

	rec = s.do(http.MethodGet, "/users/"+alice.id+"/feed?limit=1&page=2", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["data"].(map[string]interface{})["posts"], 1)
	assert.Equal(t, false, body["meta"].(map[string]interface{})["hasNextPage"])

	rec = s.do(http.MethodGet, "/posts/"+bobPost+"/likes", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), data(t, rec)["count"])

	rec = s.do(http.MethodPut, "/posts/"+bobPost+"/like", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "removed", data(t, rec)["action"])
	assert.Empty(t, data(t, rec)["likes"])
}

func TestImageUploads(t *testing.T) {
	s := newTestServer(t, true)
	alice := s.signup("alice")
	postID := createPost(t, s, alice, "with a picture")

	rec := s.upload("/posts/"+postID+"/image", alice.token, "cat.png", "image/png", pngImage)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := data(t, rec)["post"].(map[string]interface{})
	assert.Equal(t, "https://cdn.test/"+s.uploader.names[0], post["post_image"])

	rec = s.upload("/posts/"+postID+"/image", alice.token, "notes.txt", "text/plain", []byte("text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.upload("/posts/"+postID+"/image", alice.token, "evil.png", "image/png", []byte("<html><script>alert(1)</script></html>"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Len(t, s.uploader.names, 1)

	rec = s.upload("/users/"+alice.id+"/newprofileimage", alice.token, "me.jpg", "image/jpeg", jpegImage)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := data(t, rec)["user"].(map[string]interface{})
	assert.Contains(t, user["profile_image"], "https://cdn.test/profiles/")
}

func TestImageUploadsWithoutMediaHost(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signup("alice")
	postID := createPost(t, s, alice, "no host")

	rec := s.upload("/posts/"+postID+"/image", alice.token, "cat.png", "image/png", pngImage)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIndexCounts(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signup("alice")
	postID := createPost(t, s, alice, "one")
	rec := s.do(http.MethodPost, "/posts/"+postID+"/comments", alice.token, map[string]string{"text": "self reply"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["numberOfUsers"])
	assert.Equal(t, float64(1), body["numberOfPosts"])
	assert.Equal(t, float64(1), body["numberOfComments"])
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t, false)
	alice, bob := s.signup("alice"), s.signup("bobby")
	rec := s.do(http.MethodPost, "/users/"+alice.id+"/requests", bob.token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/notifications/unread-count", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), data(t, rec)["count"])

	rec = s.do(http.MethodGet, "/notifications", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := data(t, rec)["notifications"].([]interface{})
	require.Len(t, list, 1)
	n := list[0].(map[string]interface{})
	assert.Equal(t, "friend_request", n["type"])
	assert.Equal(t, "bobby", n["actor"].(map[string]interface{})["username"])

	rec = s.do(http.MethodPut, "/notifications/read-all", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/notifications/unread-count", alice.token, nil)
	assert.Equal(t, float64(0), data(t, rec)["count"])
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t, false)
	alice, bob := s.signup("alice"), s.signup("bobby")
	bobPost := createPost(t, s, bob, "bob's post")
	rec := s.do(http.MethodPost, "/posts/"+bobPost+"/comments", alice.token, map[string]string{"text": "bye"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodDelete, "/users/"+alice.id, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := data(t, rec)["report"].(map[string]interface{})
	assert.Empty(t, report["skipped"])

	rec = s.do(http.MethodGet, "/users/"+alice.id, bob.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/posts/"+bobPost+"/comments", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, data(t, rec)["comments"])
}

func (s *testServer) logged(msg string) *logrus.Entry {
	s.t.Helper()
	for _, entry := range s.logs.AllEntries() {
		if entry.Message == msg {
			return entry
		}
	}
	return nil
}

func TestHandlersLogThroughInjectedLogger(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signup("alice")
	postID := createPost(t, s, alice, "short lived")

	rec := s.do(http.MethodDelete, "/posts/"+postID, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := s.logged("post deleted")
	require.NotNil(t, entry)
	assert.Equal(t, postID, entry.Data["post_id"])

	rec = s.do(http.MethodPost, "/users/logout", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entry = s.logged("token revoked")
	require.NotNil(t, entry)
	assert.Equal(t, alice.id, entry.Data["user_id"])

	login := s.do(http.MethodPost, "/users/login", "", map[string]string{"username": "alice", "password": "Passw0rd"})
	require.Equal(t, http.StatusOK, login.Code)
	token := data(t, login)["token"].(string)
	rec = s.do(http.MethodDelete, "/users/"+alice.id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry = s.logged("user deleted")
	require.NotNil(t, entry)
	assert.Equal(t, alice.id, entry.Data["user_id"])
}
