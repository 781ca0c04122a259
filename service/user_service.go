package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/annazecevic/catalog-service/domain"
	"github.com/annazecevic/catalog-service/dto"
	"github.com/annazecevic/catalog-service/repository"
	"github.com/annazecevic/catalog-service/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
}

type userService struct {
	users repository.Collection[domain.User]
}

func NewUserService(users repository.Collection[domain.User]) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error) {
	v := validation.New()
	username := v.Field("username", validation.Value(req.Username)).Trim().Check(
		validation.MinLength(3, "Username must be at least 3 characters."),
		validation.MaxLength(30, "Username must be at most 30 characters."),
		validation.Pattern(usernamePattern, "Username may only contain letters, digits, _ and -."),
	).Value()
	v.Field("password", validation.Value(req.Password)).Check(
		validation.MinLength(8, "Password must be at least 8 characters."),
	)
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := s.findByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Username: username, Password: string(hashedPassword)}
	user.Stamp(uuid.New().String(), time.Now())

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.findByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) findByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := s.users.FindBy(ctx, "username", username, "")
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return users[0], nil
}

func toUserResponse(u *domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DateCreated: u.DateCreated.Unix(),
	}
}
