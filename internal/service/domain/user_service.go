package domain

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/auth"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

type UserService interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	ListUsers(ctx context.Context, p model.Pagination) (*model.PageResult[model.User], error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, params UpdateUserParams) (*model.User, error)
	ChangeUserRole(ctx context.Context, id uint, role model.UserRole) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) (*model.User, error)
}

type RegisterParams struct {
	Name     string         `json:"name" binding:"required,notblank"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=6"`
	Role     model.UserRole `json:"-"`
}

type UpdateUserParams struct {
	Name     util.Optional[string] `json:"name"`
	Email    util.Optional[string] `json:"email"`
	Password util.Optional[string] `json:"password"`
}

type userService struct {
	tx   repository.Transactor
	repo repository.UserRepo
}

var _ UserService = (*userService)(nil)

func NewUserService(tx repository.Transactor, userRepo repository.UserRepo) *userService {
	return &userService{
		tx:   tx,
		repo: userRepo,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)
	if name == "" || email == "" || params.Password == "" {
		return nil, service.Validation("Name, email and password are required")
	}
	role := params.Role
	if role == "" {
		role = model.RoleClient
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:           name,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		Balance:        decimal.Zero,
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.repo.WithTx(tx)
		if err := ensureEmailFree(ctx, users, email, 0); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func ensureEmailFree(ctx context.Context, users repository.UserRepo, email string, selfID uint) error {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailInUse
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.ComparePassword(user.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, p model.Pagination) (*model.PageResult[model.User], error) {
	p = p.Normalize()
	users, total, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(users, p, total), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, params UpdateUserParams) (*model.User, error) {
	var updated *model.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.repo.WithTx(tx)
		user, err := users.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}

		if err := apply(&user.Name, params.Name, "name"); err != nil {
			return err
		}
		user.Name = strings.TrimSpace(user.Name)
		if user.Name == "" {
			return service.Validation("Name is required")
		}

		if err := apply(&user.Email, params.Email, "email"); err != nil {
			return err
		}
		if params.Email.Set {
			user.Email = normalizeEmail(user.Email)
			if user.Email == "" {
				return service.Validation("Email is required")
			}
			if err := ensureEmailFree(ctx, users, user.Email, user.ID); err != nil {
				return err
			}
		}

		if password, ok := params.Password.Get(); ok {
			if password == "" {
				return service.Validation("Password is required")
			}
			hashed, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user.HashedPassword = hashed
		} else if params.Password.IsNull() {
			return service.Validation("password cannot be null")
		}

		if err := users.Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *userService) ChangeUserRole(ctx context.Context, id uint, role model.UserRole) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	var updated *model.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.repo.WithTx(tx)
		user, err := users.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		user.Role = role
		if err := users.Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) (*model.User, error) {
	var deleted *model.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.repo.WithTx(tx)
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if err := users.Delete(ctx, id); err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
