package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/dbx"
	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/auth"
	"github.com/jaftdelgado/aureum-services/internal/server/config"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
	"github.com/jaftdelgado/aureum-services/internal/server/precheck"
	"github.com/jaftdelgado/aureum-services/internal/server/profileclient"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/accounts"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/repomanager"
	"github.com/jaftdelgado/aureum-services/internal/server/saga"
)

// Account field limits. Text limits count characters and follow the
// accounts columns.
const (
	MinPasswordLength = 8
	MaxEmailLength    = 50
	MaxUsernameLength = 50
	MaxFullNameLength = 100
)

const (
	msgEmailTaken         = "El correo electronico ya esta registrado."
	msgAccountUserTaken   = "El nombre de usuario ya esta registrado."
	msgInvalidCredentials = "Credenciales invalidas"
	msgProfileUnavailable = "El servicio de perfiles no esta disponible"
)

// ProfileCreator creates the profile that belongs to a new account.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, req profileclient.CreateProfileRequest) error
}

type RegisterInput struct {
	EmailAddress string
	Username     string
	Password     string
	FirstName    string
	LastName     string
}

type AccountService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	profiles                    ProfileCreator
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, profiles ProfileCreator,
	logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                          db,
		repomanager:                 m,
		profiles:                    profiles,
		logger:                      logger,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func (in *RegisterInput) normalize() error {
	in.EmailAddress = strings.TrimSpace(in.EmailAddress)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = sanitize(in.FirstName)
	in.LastName = sanitize(in.LastName)

	if _, err := mail.ParseAddress(in.EmailAddress); err != nil || strings.ContainsAny(in.EmailAddress, " <>") {
		return common.Validation("Correo electronico invalido")
	}
	if utf8.RuneCountInString(in.EmailAddress) > MaxEmailLength {
		return common.Validation(fmt.Sprintf("El correo electronico no puede exceder %d caracteres", MaxEmailLength))
	}
	if err := validateUsername(in.Username); err != nil {
		return err
	}
	if len(in.Password) < MinPasswordLength {
		return common.Validation("La contrasena debe tener al menos 8 caracteres")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return common.Validation(fmt.Sprintf("La contrasena no puede exceder %d bytes", auth.MaxPasswordBytes))
	}
	// the profile service stores first and last name joined
	if utf8.RuneCountInString(in.FirstName)+1+utf8.RuneCountInString(in.LastName) > MaxFullNameLength {
		return common.Validation(fmt.Sprintf("El nombre completo no puede exceder %d caracteres", MaxFullNameLength))
	}
	return nil
}

func validateUsername(username string) error {
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		return common.Validation("El nombre de usuario es obligatorio")
	case n > MaxUsernameLength:
		return common.Validation(fmt.Sprintf("El nombre de usuario no puede exceder %d caracteres", MaxUsernameLength))
	}
	return nil
}

// Register creates the account and then its profile in the profile
// service. When the profile call fails the account row is deleted again and
// an upstream error is returned, so a caller never sees an account without
// a profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	err := precheck.Ensure(ctx,
		precheck.Rule{Name: "account email", Message: msgEmailTaken, Exists: func(ctx context.Context) (bool, error) {
			return repo.ExistsByEmail(ctx, in.EmailAddress)
		}},
		precheck.Rule{Name: "account username", Message: msgAccountUserTaken, Exists: func(ctx context.Context) (bool, error) {
			return repo.ExistsByUsername(ctx, in.Username)
		}},
	)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.Unexpected("hash password", err)
	}

	var account *models.Account

	err = saga.Run(ctx, s.logger,
		saga.Step{
			Name: "insert_account",
			Do: func(ctx context.Context) error {
				created, err := repo.Create(ctx, &models.Account{
					EmailAddress:   in.EmailAddress,
					Username:       in.Username,
					HashedPassword: hash,
					IsActive:       true,
					RoleID:         models.DefaultRoleID,
				})
				if err != nil {
					return accountInsertError(err)
				}
				account = created
				return nil
			},
			Undo: func(ctx context.Context) error {
				if err := repo.Delete(ctx, account.ID); err != nil && !errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("delete account %d: %w", account.ID, err)
				}
				return nil
			},
		},
		saga.Step{
			Name: "create_profile",
			Do: func(ctx context.Context) error {
				req := profileclient.NewCreateProfileRequest(strconv.FormatInt(account.ID, 10),
					account.Username, in.FirstName, in.LastName)
				if err := s.profiles.CreateProfile(ctx, req); err != nil {
					return common.Upstream("create profile", msgProfileUnavailable, err)
				}
				return nil
			},
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

func accountInsertError(err error) error {
	switch {
	case dbx.IsConstraint(err, accounts.EmailConstraint):
		return common.Conflict(msgEmailTaken)
	case dbx.IsConstraint(err, accounts.UsernameConstraint):
		return common.Conflict(msgAccountUserTaken)
	default:
		return common.Unexpected("insert account", err)
	}
}

// Login checks the credentials of identifier (email or username) and issues
// an access token whose subject is the account id.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (string, error) {
	account, err := s.repomanager.Accounts(s.db).GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.Unauthorized(msgInvalidCredentials)
		}
		return "", common.Unexpected("login", err)
	}

	ok, err := auth.CheckPassword(account.HashedPassword, password)
	if err != nil {
		return "", common.Unexpected("check password", err)
	}
	if !ok || !account.IsActive {
		return "", common.Unauthorized(msgInvalidCredentials)
	}

	token, err := auth.GenerateToken(strconv.FormatInt(account.ID, 10), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.Unexpected("generate token", err)
	}
	return token, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("get account", "Cuenta no encontrada", err)
	}
	return account, nil
}

// Authenticate resolves a bearer token to its account.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	subject, err := auth.GetSubjectFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.Unauthorized("Token invalido o expirado")
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, common.Unauthorized("Token invalido o expirado")
	}
	account, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized("Token invalido o expirado")
		}
		return nil, err
	}
	return account, nil
}

// Delete removes an account. The profile in the profile service is left in
// place.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Accounts(s.db).Delete(ctx, id); err != nil {
		return lookupError("delete account", "Cuenta no encontrada", err)
	}
	return nil
}

// lookupError turns a repository error into a NotFound with msg or an
// unexpected failure.
func lookupError(op, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(msg)
	}
	return common.Unexpected(op, err)
}
