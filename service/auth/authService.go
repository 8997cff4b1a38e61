package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/emmanueldavidson96/altbucks-server/model"
	userrepo "github.com/emmanueldavidson96/altbucks-server/repository/user"
	"github.com/emmanueldavidson96/altbucks-server/util/hash"
	jwtutil "github.com/emmanueldavidson96/altbucks-server/util/jwt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	// Exactly one role: settlement needs to know which accumulator moves.
	if req.IsTaskCreator == req.IsTaskEarner {
		return nil, "", ErrBadInput
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  hashed,
		IsTaskCreator: req.IsTaskCreator,
		IsTaskEarner:  req.IsTaskEarner,
	}

	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	role, _ := model.RoleOf(u)
	token, err := jwtutil.Issue(s.secret, u.ID, string(role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "users_email") ||
			strings.Contains(strings.ToLower(pgErr.Message), "email") {
			return ErrEmailTaken
		}
		return ErrBadInput
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	role, _ := model.RoleOf(u)
	token, err := jwtutil.Issue(s.secret, u.ID, string(role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
