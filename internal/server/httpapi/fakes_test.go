package httpapi

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/services"
)

// ---- fakes ----

type fakeAccounts struct {
	registerIn  services.RegisterInput
	registerOut *models.Account
	registerErr error

	token    string
	loginErr error

	authOut *models.Account
	authErr error

	getOut *models.Account
	getErr error

	deleted   []int64
	deleteErr error
}

func (f *fakeAccounts) Register(_ context.Context, in services.RegisterInput) (*models.Account, error) {
	f.registerIn = in
	return f.registerOut, f.registerErr
}
func (f *fakeAccounts) Login(context.Context, string, string) (string, error) {
	return f.token, f.loginErr
}
func (f *fakeAccounts) Authenticate(context.Context, string) (*models.Account, error) {
	return f.authOut, f.authErr
}
func (f *fakeAccounts) Get(context.Context, int64) (*models.Account, error) {
	return f.getOut, f.getErr
}
func (f *fakeAccounts) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeProfiles struct {
	createIn  services.CreateProfileInput
	createOut *models.Profile
	createErr error

	batchIn  []string
	batchOut []*models.Profile

	getOut *models.Profile
	getErr error

	patchIn  models.ProfilePatch
	patchOut *models.Profile
	patchErr error

	deleteErr error

	uploaded  *models.Blob
	uploadOut *models.Profile
	uploadErr error

	avatar    *models.Blob
	avatarErr error
}

func (f *fakeProfiles) Create(_ context.Context, in services.CreateProfileInput) (*models.Profile, error) {
	f.createIn = in
	return f.createOut, f.createErr
}
func (f *fakeProfiles) Get(context.Context, string) (*models.Profile, error) {
	return f.getOut, f.getErr
}
func (f *fakeProfiles) Batch(_ context.Context, ids []string) ([]*models.Profile, error) {
	f.batchIn = ids
	return f.batchOut, nil
}
func (f *fakeProfiles) Patch(_ context.Context, _ string, p models.ProfilePatch) (*models.Profile, error) {
	f.patchIn = p
	return f.patchOut, f.patchErr
}
func (f *fakeProfiles) Delete(context.Context, string) error { return f.deleteErr }
func (f *fakeProfiles) UploadAvatar(_ context.Context, _ string, img *models.Blob) (*models.Profile, error) {
	f.uploaded = img
	return f.uploadOut, f.uploadErr
}
func (f *fakeProfiles) GetAvatar(context.Context, string) (*models.Blob, error) {
	return f.avatar, f.avatarErr
}

type fakeTeams struct {
	createIn  services.CreateTeamInput
	createOut *models.Team
	createErr error

	getOut *models.Team
	getErr error

	listOut []*models.Team

	patchIn  models.TeamPatch
	patchOut *models.Team

	coverOut *models.Team
	cover    *models.Blob
	coverErr error

	deleteErr error
}

func (f *fakeTeams) Create(_ context.Context, in services.CreateTeamInput) (*models.Team, error) {
	f.createIn = in
	return f.createOut, f.createErr
}
func (f *fakeTeams) Get(context.Context, uuid.UUID) (*models.Team, error) { return f.getOut, f.getErr }
func (f *fakeTeams) List(context.Context) ([]*models.Team, error)         { return f.listOut, nil }
func (f *fakeTeams) ListByProfessor(context.Context, uuid.UUID) ([]*models.Team, error) {
	return f.listOut, nil
}
func (f *fakeTeams) ListByStudent(context.Context, uuid.UUID) ([]*models.Team, error) {
	return f.listOut, nil
}
func (f *fakeTeams) Patch(_ context.Context, _ uuid.UUID, p models.TeamPatch) (*models.Team, error) {
	f.patchIn = p
	return f.patchOut, nil
}
func (f *fakeTeams) UploadCover(context.Context, uuid.UUID, *models.Blob) (*models.Team, error) {
	return f.coverOut, f.coverErr
}
func (f *fakeTeams) GetCover(context.Context, uuid.UUID) (*models.Blob, error) {
	return f.cover, f.coverErr
}
func (f *fakeTeams) Delete(context.Context, uuid.UUID) error { return f.deleteErr }

type fakeMembers struct {
	joinCode string
	joinUser uuid.UUID
	joinOut  *models.Membership
	joinErrs []error

	listOut []*models.Membership
	listErr error

	deleteErr error
}

func (f *fakeMembers) Join(_ context.Context, code string, user uuid.UUID) (*models.Membership, error) {
	f.joinCode, f.joinUser = code, user
	if len(f.joinErrs) > 0 {
		err := f.joinErrs[0]
		f.joinErrs = f.joinErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.joinOut, nil
}
func (f *fakeMembers) ListByCode(context.Context, string) ([]*models.Membership, error) {
	return f.listOut, f.listErr
}
func (f *fakeMembers) Delete(context.Context, uuid.UUID) error { return f.deleteErr }

type fakeConfigs struct {
	createIn  *models.MarketConfig
	createOut *models.MarketConfig
	createErr error

	getOut *models.MarketConfig
	getErr error

	patchIn   models.MarketConfigPatch
	updateOut *models.MarketConfig
	updated   bool
}

func (f *fakeConfigs) Create(_ context.Context, c *models.MarketConfig) (*models.MarketConfig, error) {
	f.createIn = c
	return f.createOut, f.createErr
}
func (f *fakeConfigs) Get(context.Context, uuid.UUID) (*models.MarketConfig, error) {
	return f.getOut, f.getErr
}
func (f *fakeConfigs) GetByTeam(context.Context, uuid.UUID) (*models.MarketConfig, error) {
	return f.getOut, f.getErr
}
func (f *fakeConfigs) Update(_ context.Context, _ uuid.UUID, p models.MarketConfigPatch) (*models.MarketConfig, error) {
	f.patchIn = p
	f.updated = true
	return f.updateOut, nil
}

// ---- helpers ----

func do(t *testing.T, h http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, method, target, []byte(body), "application/json")
}

// multipartBody builds a form with the given fields and, when data is not
// nil, a "file" part.
func multipartBody(t *testing.T, fields map[string]string, filename, fileType string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if data != nil {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
		h["Content-Type"] = []string{fileType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

var errBoom = errors.New("boom")
