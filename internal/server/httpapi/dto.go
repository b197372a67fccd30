package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

// Wire types. Entities are mapped explicitly so internal columns such as
// row ids and password hashes never reach a client.

type accountResponse struct {
	ID           int64  `json:"id"`
	EmailAddress string `json:"email_address"`
	Username     string `json:"username"`
	IsActive     bool   `json:"is_active"`
	RoleID       int    `json:"role_id"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		EmailAddress: a.EmailAddress,
		Username:     a.Username,
		IsActive:     a.IsActive,
		RoleID:       a.RoleID,
	}
}

type registerRequest struct {
	EmailAddress string `json:"email_address"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type profileResponse struct {
	AuthUserID   string    `json:"auth_user_id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Bio          *string   `json:"bio"`
	Role         string    `json:"role"`
	ProfilePicID *string   `json:"profile_pic_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{
		AuthUserID:   p.AuthUserID,
		Username:     p.Username,
		FullName:     p.FullName,
		Bio:          p.Bio,
		Role:         p.Role,
		ProfilePicID: p.ProfilePicID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProfileResponses(ps []*models.Profile) []profileResponse {
	out := make([]profileResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfileResponse(p))
	}
	return out
}

// createProfileRequest also accepts the name parts sent by the auth
// service; full_name falls back to them.
type createProfileRequest struct {
	AuthUserID string  `json:"auth_user_id"`
	Username   string  `json:"username"`
	FullName   string  `json:"full_name"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Bio        *string `json:"bio"`
	Role       *string `json:"role"`
}

type batchProfilesRequest struct {
	ProfileIDs []string `json:"profile_ids"`
}

type patchProfileRequest struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
	Role     *string `json:"role"`
}

type teamResponse struct {
	PublicID    uuid.UUID `json:"public_id"`
	ProfessorID uuid.UUID `json:"professor_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	TeamPic     *string   `json:"team_pic"`
	AccessCode  string    `json:"access_code"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTeamResponse(t *models.Team) teamResponse {
	return teamResponse{
		PublicID:    t.PublicID,
		ProfessorID: t.ProfessorID,
		Name:        t.Name,
		Description: t.Description,
		TeamPic:     t.TeamPic,
		AccessCode:  t.AccessCode,
		CreatedAt:   t.CreatedAt,
	}
}

func toTeamResponses(ts []*models.Team) []teamResponse {
	out := make([]teamResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTeamResponse(t))
	}
	return out
}

type patchTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type joinRequest struct {
	AccessCode string `json:"access_code"`
	UserID     string `json:"user_id"`
}

type membershipResponse struct {
	PublicID uuid.UUID `json:"public_id"`
	TeamID   uuid.UUID `json:"team_id"`
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func toMembershipResponse(m *models.Membership) membershipResponse {
	return membershipResponse{
		PublicID: m.PublicID,
		TeamID:   m.TeamPublicID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
	}
}

func toMembershipResponses(ms []*models.Membership) []membershipResponse {
	out := make([]membershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMembershipResponse(m))
	}
	return out
}

// marketConfigRequest serves both create, where every setting except
// allowshortselling is required, and the partial PUT.
type marketConfigRequest struct {
	TeamID            *uuid.UUID `json:"teamid"`
	InitialCash       *float64   `json:"initialcash"`
	Currency          *string    `json:"currency"`
	MarketVolatility  *string    `json:"marketvolatility"`
	MarketLiquidity   *string    `json:"marketliquidity"`
	ThickSpeed        *string    `json:"thickspeed"`
	TransactionFee    *string    `json:"transactionfee"`
	EventFrequency    *string    `json:"eventfrequency"`
	DividendImpact    *string    `json:"dividendimpact"`
	CrashImpact       *string    `json:"crashimpact"`
	AllowShortSelling *bool      `json:"allowshortselling"`
}

func levelPtr(s *string) *models.Level {
	if s == nil {
		return nil
	}
	l := models.Level(*s)
	return &l
}

func (r marketConfigRequest) patch() models.MarketConfigPatch {
	p := models.MarketConfigPatch{
		InitialCash:       r.InitialCash,
		MarketVolatility:  levelPtr(r.MarketVolatility),
		MarketLiquidity:   levelPtr(r.MarketLiquidity),
		ThickSpeed:        levelPtr(r.ThickSpeed),
		TransactionFee:    levelPtr(r.TransactionFee),
		EventFrequency:    levelPtr(r.EventFrequency),
		DividendImpact:    levelPtr(r.DividendImpact),
		CrashImpact:       levelPtr(r.CrashImpact),
		AllowShortSelling: r.AllowShortSelling,
	}
	if r.Currency != nil {
		c := models.Currency(*r.Currency)
		p.Currency = &c
	}
	return p
}

// missing returns the first required create field that is absent.
func (r marketConfigRequest) missing() string {
	required := []struct {
		name string
		set  bool
	}{
		{"teamid", r.TeamID != nil},
		{"initialcash", r.InitialCash != nil},
		{"currency", r.Currency != nil},
		{"marketvolatility", r.MarketVolatility != nil},
		{"marketliquidity", r.MarketLiquidity != nil},
		{"thickspeed", r.ThickSpeed != nil},
		{"transactionfee", r.TransactionFee != nil},
		{"eventfrequency", r.EventFrequency != nil},
		{"dividendimpact", r.DividendImpact != nil},
		{"crashimpact", r.CrashImpact != nil},
	}
	for _, f := range required {
		if !f.set {
			return f.name
		}
	}
	return ""
}

type marketConfigResponse struct {
	PublicID          uuid.UUID `json:"publicid"`
	TeamID            uuid.UUID `json:"teamid"`
	InitialCash       float64   `json:"initialcash"`
	Currency          string    `json:"currency"`
	MarketVolatility  string    `json:"marketvolatility"`
	MarketLiquidity   string    `json:"marketliquidity"`
	ThickSpeed        string    `json:"thickspeed"`
	TransactionFee    string    `json:"transactionfee"`
	EventFrequency    string    `json:"eventfrequency"`
	DividendImpact    string    `json:"dividendimpact"`
	CrashImpact       string    `json:"crashimpact"`
	AllowShortSelling bool      `json:"allowshortselling"`
	CreatedAt         time.Time `json:"createdat"`
	UpdatedAt         time.Time `json:"updatedat"`
}

func toMarketConfigResponse(c *models.MarketConfig) marketConfigResponse {
	return marketConfigResponse{
		PublicID:          c.PublicID,
		TeamID:            c.TeamPublicID,
		InitialCash:       c.InitialCash,
		Currency:          string(c.Currency),
		MarketVolatility:  string(c.MarketVolatility),
		MarketLiquidity:   string(c.MarketLiquidity),
		ThickSpeed:        string(c.ThickSpeed),
		TransactionFee:    string(c.TransactionFee),
		EventFrequency:    string(c.EventFrequency),
		DividendImpact:    string(c.DividendImpact),
		CrashImpact:       string(c.CrashImpact),
		AllowShortSelling: c.AllowShortSelling,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
