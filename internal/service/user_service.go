package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/repository"
)

var (
	// ErrInvalidCredentials 用户不存在和口令错误返回同一个错误，避免枚举用户
	ErrInvalidCredentials = apperror.Unauthorized("Invalid username or password")
)

// 用户名会出现在 /profile/:username、/block/:username 路径里，只允许不需要转义的字符
var (
	usernameChars   = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)
	usernameHasWord = regexp.MustCompile(`[\p{L}\p{N}]`)
)

// UsernameMessage 用户名字符不合法时的提示
const UsernameMessage = "Usernames may only contain letters, numbers, dots, dashes and underscores."

// ValidUsername 字母数字加 . _ -，且至少有一个字母或数字（排除 "." ".."）
func ValidUsername(name string) bool {
	return usernameChars.MatchString(name) && usernameHasWord.MatchString(name)
}

// RegisterInput 注册字段
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Birthday  *time.Time
	Password  string
}

// UserService 身份：注册、登录校验、在线时间
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Touch(ctx context.Context, id uint) error
}

type userService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	validate  *validator.Validate
	now       func() time.Time
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService) UserService {
	return &userService{users: users, passwords: passwords, validate: validator.New(), now: time.Now}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := s.checkFields(in); err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Duplicate("username", "The username is already in use. Please select a different username")
	}
	taken, err = s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Duplicate("email", "The email address is already in use. Please select a different address")
	}

	hash, err := s.passwords.SetPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
		}
		return nil, err
	}

	now := s.now().UTC()
	u := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		Birthday:     in.Birthday,
		PasswordHash: hash,
		Joined:       now,
		LastSeen:     now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册时由 lower() 唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 翻译后的错误不带索引名，无法区分用户名还是邮箱
			return nil, apperror.Duplicate("", "The username or email address is already in use")
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) checkFields(in RegisterInput) error {
	required := []struct{ field, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return apperror.ValidationFailed(r.field, "This field is required.")
		}
	}
	if !ValidUsername(in.Username) {
		return apperror.ValidationFailed("username", UsernameMessage)
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return apperror.ValidationFailed("email", "Invalid email address.")
	}
	if in.Birthday == nil {
		return apperror.ValidationFailed("birthday", "This field is required.")
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.BurnCycles(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.passwords.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *userService) Touch(ctx context.Context, id uint) error {
	return s.users.TouchLastSeen(ctx, id, s.now().UTC())
}
