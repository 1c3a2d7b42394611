package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/dailyfresh/app/jobs"
	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/app/repositories"
	"github.com/shashiranjanraj/dailyfresh/app/stores"
	"github.com/shashiranjanraj/dailyfresh/app/views"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/collection"
	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
	"github.com/shashiranjanraj/dailyfresh/pkg/orm"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
	"github.com/shashiranjanraj/dailyfresh/pkg/validate"
)

// Dispatcher queues background jobs; *queue.Manager implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

type RegisterInput struct {
	Username string `form:"user_name" validate:"required,max=150"`
	Password string `form:"pwd" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Allow    string `form:"allow" validate:"in=on"`
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"pwd" validate:"required"`
	Remember string `form:"remember"`
}

// LoginResult is returned on a successful login. Token is a bearer token
// for API clients.
type LoginResult struct {
	User  views.User `json:"user"`
	Token string     `json:"token"`
}

type AccountService struct {
	users         *repositories.UserRepository
	addresses     *repositories.AddressRepository
	goods         *repositories.GoodsRepository
	history       stores.HistoryStore
	queue         Dispatcher
	activationTTL time.Duration
}

func NewAccountService(
	users *repositories.UserRepository,
	addresses *repositories.AddressRepository,
	goods *repositories.GoodsRepository,
	history stores.HistoryStore,
	q Dispatcher,
	activationTTL time.Duration,
) *AccountService {
	return &AccountService{
		users:         users,
		addresses:     addresses,
		goods:         goods,
		history:       history,
		queue:         q,
		activationTTL: activationTTL,
	}
}

// Register creates an inactive account and queues its activation email.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs := validate.Struct(&in)
	if _, ok := errs["allow"]; ok {
		errs["allow"] = "Please accept the user agreement."
	}
	if _, ok := errs["pwd"]; !ok && len(in.Password) > auth.MaxPasswordBytes {
		errs["pwd"] = fmt.Sprintf("The pwd must not exceed %d bytes.", auth.MaxPasswordBytes)
	}
	if validate.HasErrors(errs) {
		return nil, invalid("Invalid registration data", errs)
	}

	taken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, unavailable(err)
	}
	if taken {
		return nil, usernameTaken()
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("account: hash password: %w", err)
	}
	u := &models.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		// A concurrent registration may have won the unique index.
		if taken, _ := s.users.UsernameExists(ctx, in.Username); taken {
			return nil, usernameTaken()
		}
		return nil, unavailable(err)
	}

	token, err := auth.ActivationToken(u.ID, s.activationTTL)
	if err != nil {
		return nil, err
	}
	job := &jobs.SendActivationEmail{To: u.Email, Username: u.Username, Token: token}
	if err := s.queue.Dispatch(ctx, job); err != nil {
		logger.WithCtx(ctx).Error("account: activation email not queued", "user_id", u.ID, "error", err)
	}
	logger.WithCtx(ctx).Info("account: registered", "user_id", u.ID)
	return u, nil
}

func usernameTaken() error {
	return &ValidationError{
		Message: "Username already exists",
		Fields:  map[string]string{"user_name": "The user_name has already been taken."},
		cause:   ErrUsernameTaken,
	}
}

// Activate marks the token's account active. A token for an account that
// is already active is treated as invalid.
func (s *AccountService) Activate(ctx context.Context, token string) error {
	userID, err := auth.ParseActivationToken(token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return ErrTokenExpired
	case err != nil:
		return ErrTokenInvalid
	}

	ok, err := s.users.Activate(ctx, userID)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return ErrTokenInvalid
	}
	logger.WithCtx(ctx).Info("account: activated", "user_id", userID)
	return nil
}

// Login checks credentials and issues an API token. Session handling is
// left to the caller.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, invalid("Incomplete data", errs)
	}

	u, err := s.users.FindByUsername(ctx, in.Username)
	if orm.IsNotFound(err) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return nil, ErrBadCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountNotActive
	}

	token, err := auth.IssueToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: views.NewUser(*u), Token: token}, nil
}

// UserInfo returns the profile page: the default address and the recently
// viewed SKUs, newest first. SKUs deleted since they were viewed are
// skipped.
func (s *AccountService) UserInfo(ctx context.Context, p *auth.Principal) (views.UserInfo, error) {
	if p == nil {
		return views.UserInfo{}, ErrNotAuthenticated
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return views.UserInfo{}, lookup(err)
	}
	addr, err := s.addresses.Default(ctx, p.UserID)
	if err != nil {
		return views.UserInfo{}, unavailable(err)
	}
	ids, err := s.history.Recent(ctx, p.UserID)
	if err != nil {
		return views.UserInfo{}, unavailable(err)
	}
	found, err := s.goods.FindSKUs(ctx, ids)
	if err != nil {
		return views.UserInfo{}, unavailable(err)
	}

	known := collection.Filter(ids, func(id uint) bool { _, ok := found[id]; return ok })
	info := views.UserInfo{
		User:    views.NewUser(*u),
		History: collection.Map(known, func(id uint) views.SKU { return views.NewSKU(found[id]) }),
	}
	if addr != nil {
		v := views.NewAddress(*addr)
		info.Address = &v
	}
	return info, nil
}
