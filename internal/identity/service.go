// Package identity resolves opaque caller tokens to user records and owns
// registration, login and profile glue. Credentials are stored as bcrypt
// hashes; nothing here keeps plaintext around.
package identity

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/caroya1/campus-market/internal/market"
)

type Store interface {
	market.TxManager
	market.UserRepo
}

type Service struct {
	store  Store
	tokens *TokenIssuer
}

func NewService(store Store, tokens *TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// Session is what register/login hand back to the client.
type Session struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

func (s *Service) Register(ctx context.Context, username, password, nickname, email string) (*Session, error) {
	if username == "" || password == "" {
		return nil, market.Validation(market.CodeInvalidInput, "username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &market.User{
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Email:        email,
		UserType:     "user",
	}
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.store.UserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return market.BusinessRule(market.CodeUsernameTaken, "username already exists")
		}
		return s.store.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, market.NotAuthorized(market.CodeBadCredentials, "invalid username or password")
	}
	return s.session(user)
}

// Resolve maps a bearer token to the user it was issued for.
func (s *Service) Resolve(ctx context.Context, token string) (*market.User, error) {
	username, err := s.tokens.Parse(token)
	if err != nil {
		return nil, market.NotAuthorized(market.CodeNotAuthorized, "invalid or expired token")
	}
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, market.NotAuthorized(market.CodeNotAuthorized, "invalid or expired token")
	}
	return user, nil
}

func (s *Service) UserByID(ctx context.Context, id int64) (*market.User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, market.NotFound(market.CodeUserNotFound, "user not found")
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, nickname, email, phone, gender string) (*market.User, error) {
	var out *market.User
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.store.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return market.NotFound(market.CodeUserNotFound, "user not found")
		}
		user.Nickname = nickname
		user.Email = email
		user.Phone = phone
		user.Gender = gender
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return err
		}
		out = user
		return nil
	})
	return out, err
}

func (s *Service) session(user *market.User) (*Session, error) {
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	nickname := user.Nickname
	if nickname == "" {
		nickname = user.Username
	}
	return &Session{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Nickname: nickname,
		Email:    user.Email,
		UserType: user.UserType,
	}, nil
}
