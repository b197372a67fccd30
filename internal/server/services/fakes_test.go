package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/profileclient"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/accounts"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/marketconfigs"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/memberships"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/profiles"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/teams"
)

// uniqueViolation mimics what dbx.MapError produces for a pg 23505.
func uniqueViolation(constraint string) error {
	return dbx.MapError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})
}

// --- store ---

// fakeStore is an in-memory relational store shared by the fake
// repositories. It enforces the same unique constraints as the schema.
type fakeStore struct {
	mu sync.Mutex

	accounts      map[int64]*models.Account
	nextAccountID int64

	profiles map[string]*models.Profile

	teams       map[uuid.UUID]*models.Team
	nextTeamID  int64
	memberships map[uuid.UUID]*models.Membership
	configs     map[uuid.UUID]*models.MarketConfig

	// injected failures
	accountCreateErr error
	accountDeleteErr error
	teamCreateErrs   []error
	setPicErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:    map[int64]*models.Account{},
		profiles:    map[string]*models.Profile{},
		teams:       map[uuid.UUID]*models.Team{},
		memberships: map[uuid.UUID]*models.Membership{},
		configs:     map[uuid.UUID]*models.MarketConfig{},
	}
}

type fakeManager struct{ s *fakeStore }

func (m fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m fakeManager) Accounts(dbx.DBTX) accounts.Repository       { return fakeAccounts{m.s} }
func (m fakeManager) Profiles(dbx.DBTX) profiles.Repository       { return fakeProfiles{m.s} }
func (m fakeManager) Teams(dbx.DBTX) teams.Repository             { return fakeTeams{m.s} }
func (m fakeManager) Memberships(dbx.DBTX) memberships.Repository { return fakeMemberships{m.s} }
func (m fakeManager) MarketConfigs(dbx.DBTX) marketconfigs.Repository {
	return fakeConfigs{m.s}
}

// --- accounts ---

type fakeAccounts struct{ s *fakeStore }

func (r fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.accountCreateErr != nil {
		return nil, r.s.accountCreateErr
	}
	for _, x := range r.s.accounts {
		if x.EmailAddress == a.EmailAddress {
			return nil, uniqueViolation(accounts.EmailConstraint)
		}
		if x.Username == a.Username {
			return nil, uniqueViolation(accounts.UsernameConstraint)
		}
	}
	r.s.nextAccountID++
	c := *a
	c.ID = r.s.nextAccountID
	c.CreatedAt = time.Now()
	r.s.accounts[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *a
	return &out, nil
}

func (r fakeAccounts) GetByIdentifier(_ context.Context, identifier string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.EmailAddress == identifier || a.Username == identifier {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.EmailAddress == email {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeAccounts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.accountDeleteErr != nil {
		return r.s.accountDeleteErr
	}
	if _, ok := r.s.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

// --- profiles ---

type fakeProfiles struct{ s *fakeStore }

func (r fakeProfiles) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.profiles {
		if x.Username == p.Username {
			return nil, uniqueViolation(profiles.UsernameConstraint)
		}
	}
	if _, ok := r.s.profiles[p.AuthUserID]; ok {
		return nil, uniqueViolation(profiles.AuthUserIDConstraint)
	}
	c := *p
	c.ProfileID = int64(len(r.s.profiles) + 1)
	r.s.profiles[c.AuthUserID] = &c
	out := c
	return &out, nil
}

func (r fakeProfiles) GetByAuthID(_ context.Context, authID string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[authID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	return &out, nil
}

func (r fakeProfiles) GetByAuthIDs(_ context.Context, ids []string) ([]*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Profile
	// reverse order, callers must not rely on it
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := r.s.profiles[ids[i]]; ok {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeProfiles) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeProfiles) ExistsByAuthID(_ context.Context, authID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.profiles[authID]
	return ok, nil
}

func (r fakeProfiles) Update(_ context.Context, authID string, patch models.ProfilePatch) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[authID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Bio != nil {
		p.Bio = patch.Bio
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	out := *p
	return &out, nil
}

func (r fakeProfiles) SetProfilePic(_ context.Context, authID string, blobID string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.setPicErr != nil {
		return nil, r.s.setPicErr
	}
	p, ok := r.s.profiles[authID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.ProfilePicID = &blobID
	out := *p
	return &out, nil
}

func (r fakeProfiles) Delete(_ context.Context, authID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[authID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.profiles, authID)
	return nil
}

// --- teams ---

type fakeTeams struct{ s *fakeStore }

func (r fakeTeams) Create(_ context.Context, t *models.Team) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.teamCreateErrs) > 0 {
		err := r.s.teamCreateErrs[0]
		r.s.teamCreateErrs = r.s.teamCreateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	for _, x := range r.s.teams {
		if x.AccessCode == t.AccessCode {
			return nil, uniqueViolation(teams.AccessCodeConstraint)
		}
	}
	r.s.nextTeamID++
	c := *t
	c.TeamID = r.s.nextTeamID
	c.CreatedAt = time.Now()
	r.s.teams[c.PublicID] = &c
	out := c
	return &out, nil
}

func (r fakeTeams) GetByPublicID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r fakeTeams) GetByAccessCode(_ context.Context, code string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if t.AccessCode == code {
			out := *t
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeTeams) filter(keep func(*models.Team) bool) []*models.Team {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Team{}
	for _, t := range r.s.teams {
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

func (r fakeTeams) List(context.Context) ([]*models.Team, error) {
	return r.filter(func(*models.Team) bool { return true }), nil
}

func (r fakeTeams) ListByProfessor(_ context.Context, id uuid.UUID) ([]*models.Team, error) {
	return r.filter(func(t *models.Team) bool { return t.ProfessorID == id }), nil
}

func (r fakeTeams) ListByMember(_ context.Context, userID uuid.UUID) ([]*models.Team, error) {
	r.s.mu.Lock()
	joined := map[int64]bool{}
	for _, m := range r.s.memberships {
		if m.UserID == userID {
			joined[m.TeamID] = true
		}
	}
	r.s.mu.Unlock()
	return r.filter(func(t *models.Team) bool { return joined[t.TeamID] }), nil
}

// teamPicReferenced reports whether any stored team points at blobID.
func (s *fakeStore) teamPicReferenced(blobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.TeamPic != nil && *t.TeamPic == blobID {
			return true
		}
	}
	return false
}

func (r fakeTeams) Update(_ context.Context, id uuid.UUID, patch models.TeamPatch) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	out := *t
	return &out, nil
}

func (r fakeTeams) SetTeamPic(_ context.Context, id uuid.UUID, blobID string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.setPicErr != nil {
		return nil, r.s.setPicErr
	}
	t, ok := r.s.teams[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t.TeamPic = &blobID
	out := *t
	return &out, nil
}

func (r fakeTeams) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.s.teams, id)
	for k, m := range r.s.memberships {
		if m.TeamID == t.TeamID {
			delete(r.s.memberships, k)
		}
	}
	for k, c := range r.s.configs {
		if c.TeamID == t.TeamID {
			delete(r.s.configs, k)
		}
	}
	return nil
}

// --- memberships ---

type fakeMemberships struct{ s *fakeStore }

func (r fakeMemberships) Create(_ context.Context, m *models.Membership) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.memberships {
		if x.TeamID == m.TeamID && x.UserID == m.UserID {
			return nil, uniqueViolation(memberships.PairConstraint)
		}
	}
	c := *m
	c.MembershipID = int64(len(r.s.memberships) + 1)
	c.JoinedAt = time.Now()
	for _, t := range r.s.teams {
		if t.TeamID == m.TeamID {
			c.TeamPublicID = t.PublicID
		}
	}
	r.s.memberships[c.PublicID] = &c
	out := c
	return &out, nil
}

func (r fakeMemberships) Exists(_ context.Context, teamID int64, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.TeamID == teamID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeMemberships) GetByPublicID(_ context.Context, id uuid.UUID) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *m
	return &out, nil
}

func (r fakeMemberships) ListByTeam(_ context.Context, teamID int64) ([]*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Membership{}
	for _, m := range r.s.memberships {
		if m.TeamID == teamID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeMemberships) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.memberships[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.memberships, id)
	return nil
}

// --- market configs ---

type fakeConfigs struct{ s *fakeStore }

func (r fakeConfigs) Create(_ context.Context, c *models.MarketConfig) (*models.MarketConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.configs {
		if x.TeamID == c.TeamID {
			return nil, uniqueViolation(marketconfigs.TeamConstraint)
		}
	}
	cp := *c
	cp.ConfigID = int64(len(r.s.configs) + 1)
	for _, t := range r.s.teams {
		if t.TeamID == c.TeamID {
			cp.TeamPublicID = t.PublicID
		}
	}
	r.s.configs[cp.PublicID] = &cp
	out := cp
	return &out, nil
}

func (r fakeConfigs) ExistsForTeam(_ context.Context, teamID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.configs {
		if c.TeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeConfigs) GetByPublicID(_ context.Context, id uuid.UUID) (*models.MarketConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.configs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (r fakeConfigs) GetByTeamID(_ context.Context, teamID int64) (*models.MarketConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.configs {
		if c.TeamID == teamID {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeConfigs) Update(_ context.Context, c *models.MarketConfig) (*models.MarketConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.configs[c.PublicID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	r.s.configs[c.PublicID] = &cp
	out := cp
	return &out, nil
}

// --- blob store ---

type fakeBlobs struct {
	mu      sync.Mutex
	blobs   map[string]*models.Blob
	next    int
	putErr  error
	delErr  error
	deleted []string
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{blobs: map[string]*models.Blob{}} }

func (f *fakeBlobs) Put(_ context.Context, b *models.Blob) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.next++
	id := fmt.Sprintf("blob-%d", f.next)
	c := *b
	c.ID = id
	f.blobs[id] = &c
	return id, nil
}

func (f *fakeBlobs) Get(_ context.Context, id string) (*models.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeBlobs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.blobs, id)
	return nil
}

func (f *fakeBlobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

// --- profile collaborator ---

type fakeProfileCreator struct {
	err   error
	calls []profileclient.CreateProfileRequest
}

func (f *fakeProfileCreator) CreateProfile(_ context.Context, req profileclient.CreateProfileRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}

var errBoom = errors.New("boom")

func pngBlob() *models.Blob {
	return &models.Blob{
		Filename:    "cover.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
	}
}
