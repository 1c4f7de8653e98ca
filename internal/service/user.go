package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docvault/internal/apperr"
	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/session"
	"docvault/pkg/util"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles accounts, bearer tokens and profiles
type UserService struct {
	users       repository.IUserRepository
	departments repository.IDepartmentRepository
	tokens      *auth.TokenManager
	sessions    session.Store
	cfg         *config.Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewUserService creates a new user service
func NewUserService(repos *repository.Repositories, tokens *auth.TokenManager, sessions session.Store, cfg *config.Config, log zerolog.Logger) *UserService {
	return &UserService{
		users:       repos.Users,
		departments: repos.Departments,
		tokens:      tokens,
		sessions:    sessions,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// NewAccount is the input for creating a password account
type NewAccount struct {
	Email        string
	Password     string
	FullName     string
	DepartmentID string
}

// CreateUser validates and stores a password account
func (s *UserService) CreateUser(ctx context.Context, in NewAccount) (*model.User, error) {
	email := util.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(email) > config.MaxEmailLength {
		return nil, apperr.Validation("email exceeds maximum length")
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, apperr.Validation("invalid email format")
	}
	if len(in.Password) < config.MinPasswordLen {
		return nil, apperr.Validation("password must be at least %d characters", config.MinPasswordLen)
	}

	name := strings.TrimSpace(in.FullName)
	if name == "" {
		// derive from the local part
		name = strings.SplitN(email, "@", 2)[0]
	}
	if err := checkLength(name, "full name", config.MaxNameLength); err != nil {
		return nil, err
	}

	dept, err := s.departmentRef(ctx, in.DepartmentID)
	if err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(in.Password, s.cfg.Auth.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		DepartmentID: dept,
		WorkingHours: model.DefaultWorkingHours,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Conflict("user already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Signup creates an account and signs it in
func (s *UserService) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	user, err := s.CreateUser(ctx, NewAccount{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user", user.ID.Hex()).Msg("user signed up")
	return s.issue(user)
}

// Login checks a password and returns a fresh bearer token
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, util.NormalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	// external accounts have no password
	if user.PasswordHash == "" || !util.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return s.issue(user)
}

// Logout revokes the token until it would have expired anyway
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperr.Unauthorized("missing token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Authenticate validates a bearer token and returns its claims and user id
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, primitive.ObjectID, error) {
	claims, err := s.tokens.Parse(token)
	if errors.Is(err, auth.ErrExpiredToken) {
		return nil, primitive.NilObjectID, apperr.Unauthorized("token expired")
	}
	if err != nil {
		return nil, primitive.NilObjectID, apperr.Unauthorized("invalid token")
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, primitive.NilObjectID, apperr.Unavailable("session store unavailable")
	}
	if revoked {
		return nil, primitive.NilObjectID, apperr.Unauthorized("token revoked")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, primitive.NilObjectID, apperr.Unauthorized("invalid token subject")
	}
	return claims, userID, nil
}

// Profile returns the caller's account
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "get", "user")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields. A new password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd model.ProfileUpdate) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		name, err := required(*upd.FullName, "full name")
		if err != nil {
			return nil, err
		}
		if err := checkLength(name, "full name", config.MaxNameLength); err != nil {
			return nil, err
		}
		user.FullName = name
	}
	if upd.DepartmentID != nil {
		dept, err := s.departmentRef(ctx, *upd.DepartmentID)
		if err != nil {
			return nil, err
		}
		user.DepartmentID = dept
	}
	setString(&user.Designation, upd.Designation)
	setString(&user.Contact, upd.Contact)
	setString(&user.WorkingHours, upd.WorkingHours)
	setString(&user.EmployeeID, upd.EmployeeID)
	setString(&user.AvatarURL, upd.AvatarURL)
	setString(&user.Responsibilities, upd.Responsibilities)

	if upd.Password != nil {
		if len(*upd.Password) < config.MinPasswordLen {
			return nil, apperr.Validation("password must be at least %d characters", config.MinPasswordLen)
		}
		hash, err := util.HashPassword(*upd.Password, s.cfg.Auth.BCryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
		user.External = false
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeErr(err, "update", "user")
	}
	return user, nil
}

// ExternalLogin finds or creates the account for an identity confirmed by an
// OAuth provider and signs it in
func (s *UserService) ExternalLogin(ctx context.Context, email, name, avatarURL string) (*model.User, *model.AuthResponse, error) {
	email = util.NormalizeEmail(email)
	if err := util.ValidateEmail(email); err != nil {
		return nil, nil, apperr.Validation("provider returned an invalid email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user, err = s.users.Create(ctx, &model.User{
			Email:        email,
			FullName:     name,
			AvatarURL:    avatarURL,
			External:     true,
			WorkingHours: model.DefaultWorkingHours,
		})
		if err != nil {
			return nil, nil, storeErr(err, "create", "user")
		}
		s.log.Info().Str("user", user.ID.Hex()).Msg("external user created")
	case err != nil:
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	user.LastLogin = &now
	if user.AvatarURL == "" && avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, storeErr(err, "update", "user")
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, resp, nil
}

func (s *UserService) issue(user *model.User) (*model.AuthResponse, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{Token: token, ExpiresAt: claims.Expiry(), User: user}, nil
}

func (s *UserService) departmentRef(ctx context.Context, hex string) (*primitive.ObjectID, error) {
	id, err := parseOptionalID(hex, "department id")
	if err != nil || id == nil {
		return nil, err
	}
	if _, err := s.departments.FindByID(ctx, *id); err != nil {
		return nil, storeErr(err, "get", "department")
	}
	return id, nil
}

// userSummaries resolves user ids to their public reference fields
func userSummaries(ctx context.Context, users repository.IUserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.UserSummary, error) {
	out := make(map[primitive.ObjectID]*model.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range found {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
