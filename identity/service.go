// Package identity manages player accounts: registration, login, logout,
// password changes and the user profile. Credentials are issued by the
// session store; passwords are bcrypt hashes.
package identity

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/config"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"github.com/kasuganosora/middleearth/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

const (
	minUsername = 3
	maxUsername = 150
	maxName     = 150
)

// Board drops characters from the leaderboard.
type Board interface {
	Untrack(ctx context.Context, characterID int64) error
}

// Config wires a Service. DB and Sessions are required.
type Config struct {
	DB       *gorm.DB
	Sessions *session.Store
	Security config.SecurityConfig
	Board    Board
	Audit    audit.Recorder
	Logger   *zap.Logger
}

type Service struct {
	db       *gorm.DB
	sessions *session.Store
	board    Board
	policy   config.PasswordPolicy
	cost     int
	audit    audit.Recorder
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(cfg Config) (*Service, error) {
	vb := apperr.NewValidationBuilder()
	if cfg.DB == nil {
		vb.RequiredField("db")
	}
	if cfg.Sessions == nil {
		vb.RequiredField("sessions")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}
	svc := &Service{
		db:       cfg.DB,
		sessions: cfg.Sessions,
		board:    cfg.Board,
		policy:   cfg.Security.Password,
		cost:     cfg.Security.BcryptCost,
		audit:    cfg.Audit,
		logger:   cfg.Logger,
		validate: validator.New(),
		now:      time.Now,
	}
	if svc.cost < bcrypt.MinCost || svc.cost > bcrypt.MaxCost {
		svc.cost = bcrypt.DefaultCost
	}
	if svc.audit == nil {
		svc.audit = audit.Nop{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc, nil
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *model.User   `json:"user"`
	Token     string        `json:"token"`
	ExpiresIn time.Duration `json:"-"`
	Reused    bool          `json:"-"`
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	ConfirmPassword   string `json:"confirm_password"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	PreferredLanguage string `json:"preferred_language"`
}

// Register creates the account and its empty profile, then signs the user
// in. Every problem with the input is reported in one validation error.
func (svc *Service) Register(ctx context.Context, in RegisterInput, ip string) (*AuthResult, error) {
	start := time.Now()
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.PreferredLanguage == "" {
		in.PreferredLanguage = model.LangPtBR
	}

	if err := svc.validateRegistration(ctx, in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), svc.cost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	now := svc.now()
	user := &model.User{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      string(hash),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		IsActive:          true,
		PreferredLanguage: in.PreferredLanguage,
		LastLoginAt:       &now,
		LastLoginIP:       ip,
	}
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile", "Characters").Create(user).Error; err != nil {
			if dbadapter.IsUniqueViolation(err) {
				return apperr.NewValidationBuilder().
					Field("username", "username or email is already registered").
					Build()
			}
			return apperr.Wrap(err, "create user")
		}
		profile := &model.UserProfile{UserID: user.ID, Achievements: datatypes.JSONSlice[string]{}}
		if err := tx.Create(profile).Error; err != nil {
			return apperr.Wrap(err, "create profile")
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := svc.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	svc.record(ctx, user, audit.ActionRegister, start, nil)
	svc.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return &AuthResult{User: user, Token: token, ExpiresIn: svc.sessions.TTL()}, nil
}

func (svc *Service) validateRegistration(ctx context.Context, in RegisterInput) error {
	vb := apperr.NewValidationBuilder()

	n := utf8.RuneCountInString(in.Username)
	switch {
	case n == 0:
		vb.RequiredField("username")
	case n < minUsername:
		vb.Fieldf("username", "must contain at least %d characters", minUsername)
	case n > maxUsername:
		vb.Fieldf("username", "must be at most %d characters", maxUsername)
	case !usernamePattern.MatchString(in.Username):
		vb.Field("username", "may contain only letters, digits and @/./+/-/_")
	}
	if in.Email == "" {
		vb.RequiredField("email")
	} else if err := svc.validate.Var(in.Email, "email,max=254"); err != nil {
		vb.Field("email", "must be a valid email address")
	}

	if !vb.Has("username") {
		taken, err := svc.exists(ctx, "username = ?", in.Username)
		if err != nil {
			return err
		}
		if taken {
			vb.Field("username", "this username is already taken")
		}
	}
	if !vb.Has("email") {
		taken, err := svc.exists(ctx, "email = ?", in.Email)
		if err != nil {
			return err
		}
		if taken {
			vb.Field("email", "this email is already registered")
		}
	}

	if in.Password == "" {
		vb.RequiredField("password")
	} else {
		CheckPassword(vb, "password", svc.policy, in.Password, in.Username, in.Email)
	}
	if in.Password != in.ConfirmPassword {
		vb.Field("confirm_password", "passwords do not match")
	}
	apperr.ValidateMaxLength(vb, "first_name", in.FirstName, maxName)
	apperr.ValidateMaxLength(vb, "last_name", in.LastName, maxName)
	apperr.ValidateEnum(vb, "preferred_language", in.PreferredLanguage, model.Languages)
	return vb.Build()
}

func (svc *Service) exists(ctx context.Context, query string, arg any) (bool, error) {
	var n int64
	if err := svc.db.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&n).Error; err != nil {
		return false, apperr.Wrap(err, "check user")
	}
	return n > 0, nil
}

// dummy returns a hash to compare against when the username is unknown, so
// that both paths cost one bcrypt comparison.
func (svc *Service) dummy() []byte {
	svc.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), svc.cost)
		if err != nil {
			svc.logger.Error("generate dummy hash", zap.Error(err))
		}
		svc.dummyHash = h
	})
	return svc.dummyHash
}

// Login checks the credentials and returns the user's live session, issuing
// one when none exists. A disabled account is only reported after the
// password has been verified.
func (svc *Service) Login(ctx context.Context, username, password, ip string) (*AuthResult, error) {
	start := time.Now()
	username = strings.TrimSpace(username)
	vb := apperr.NewValidationBuilder()
	if username == "" {
		vb.RequiredField("username")
	}
	if password == "" {
		vb.RequiredField("password")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	var user model.User
	err := svc.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	found := err == nil
	if err != nil && !dbadapter.IsNotFound(err) {
		return nil, apperr.Wrap(err, "load user")
	}

	hash := svc.dummy()
	if found {
		hash = []byte(user.PasswordHash)
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password)); cmpErr != nil || !found {
		failure := apperr.Unauthenticated("invalid username or password")
		svc.audit.Record(ctx, audit.Entry{Username: username, Action: audit.ActionLoginFailed, Error: failure.Error(),
			DurationMs: int(time.Since(start).Milliseconds())})
		return nil, failure
	}
	if !user.IsActive {
		return nil, apperr.AccountDisabled()
	}

	now := svc.now()
	if err := svc.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		UpdateColumns(map[string]any{"last_login_at": now, "last_login_ip": ip}).Error; err != nil {
		return nil, apperr.Wrap(err, "record login")
	}
	user.LastLoginAt = &now
	user.LastLoginIP = ip

	token, reused, err := svc.sessions.Obtain(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	svc.record(ctx, &user, audit.ActionLogin, start, nil)
	svc.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.Bool("session_reused", reused))
	return &AuthResult{User: &user, Token: token, ExpiresIn: svc.sessions.TTL(), Reused: reused}, nil
}

// Logout revokes the credential. Unknown or expired credentials are not an
// error.
func (svc *Service) Logout(ctx context.Context, token string) error {
	start := time.Now()
	uid, _ := svc.sessions.Verify(ctx, token)
	if err := svc.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	if uid > 0 {
		svc.record(ctx, &model.User{ID: uid}, audit.ActionLogout, start, nil)
	}
	return nil
}

// ChangePasswordInput carries a password change.
type ChangePasswordInput struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// ChangePassword replaces the password and ends every session of the user.
// A wrong current password is reported as a field error alongside any
// policy problems with the new one.
func (svc *Service) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	start := time.Now()
	user, err := svc.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	vb := apperr.NewValidationBuilder()
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		vb.Field("current_password", "current password is incorrect")
	}
	if in.NewPassword == "" {
		vb.RequiredField("new_password")
	} else {
		CheckPassword(vb, "new_password", svc.policy, in.NewPassword, user.Username, user.Email)
	}
	if in.NewPassword != in.ConfirmNewPassword {
		vb.Field("confirm_new_password", "passwords do not match")
	}
	if err := vb.Build(); err != nil {
		svc.record(ctx, user, audit.ActionChangePassword, start, err)
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), svc.cost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := svc.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", string(hash)).Error; err != nil {
		return apperr.Wrap(err, "update password")
	}
	if err := svc.sessions.RevokeAll(ctx, user.ID); err != nil {
		return err
	}
	svc.record(ctx, user, audit.ActionChangePassword, start, nil)
	svc.logger.Info("password changed", zap.Int64("user_id", user.ID))
	return nil
}

func (svc *Service) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := svc.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if dbadapter.IsNotFound(err) {
			return nil, apperr.Unauthenticated("account no longer exists")
		}
		return nil, apperr.Wrap(err, "load user")
	}
	return &user, nil
}

func (svc *Service) record(ctx context.Context, u *model.User, action string, start time.Time, err error) {
	e := audit.Entry{
		UserID:     audit.Ptr(u.ID),
		Username:   u.Username,
		Action:     action,
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		e.Error = err.Error()
	}
	svc.audit.Record(ctx, e)
}
