package auth

import (
	"context"
	"testing"
	"time"

	autherrors "github.com/eman-cickusic/leave-management/internal/auth/errors"
	"github.com/eman-cickusic/leave-management/internal/employee"
	employeeerrors "github.com/eman-cickusic/leave-management/internal/employee/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeAuthRepository struct {
	createFn     func(ctx context.Context, user *User) error
	getByEmailFn func(ctx context.Context, email string) (*User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*User, error)
}

func (f *fakeAuthRepository) Create(ctx context.Context, user *User) error {
	if f.createFn != nil {
		return f.createFn(ctx, user)
	}
	return nil
}

func (f *fakeAuthRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeEmployeeDirectory struct {
	findByIDFn func(ctx context.Context, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeDirectory) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func staffUser(t *testing.T) *User {
	t.Helper()
	eID := uuid.New()
	return &User{
		ID:         uuid.New(),
		EmployeeID: &eID,
		Email:      "hr@example.com",
		Password:   hashPassword(t, "s3cret!"),
		IsActive:   true,
		Role:       RoleStaff,
		FullName:   "Dana Ops",
	}
}

func parseClaims(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	return claims
}

func TestAuthService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	t.Run("success - issues tokens carrying identity claims", func(t *testing.T) {
		user := staffUser(t)
		repo := &fakeAuthRepository{
			getByEmailFn: func(ctx context.Context, email string) (*User, error) {
				assert.Equal(t, "hr@example.com", email)
				return user, nil
			},
		}
		svc := NewService(repo, &fakeEmployeeDirectory{}, zap.NewNop())

		access, refresh, resp, err := svc.Login(ctx, "hr@example.com", "s3cret!")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.Equal(t, RoleStaff, resp.Role)
		assert.Equal(t, "Dana Ops", resp.FullName)

		claims := parseClaims(t, access)
		assert.Equal(t, user.ID.String(), claims["user_id"])
		assert.Equal(t, user.EmployeeID.String(), claims["employee_id"])
		assert.Equal(t, RoleStaff, claims["role"])
	})

	t.Run("negative - wrong password", func(t *testing.T) {
		user := staffUser(t)
		repo := &fakeAuthRepository{
			getByEmailFn: func(ctx context.Context, email string) (*User, error) {
				return user, nil
			},
		}
		svc := NewService(repo, &fakeEmployeeDirectory{}, zap.NewNop())

		_, _, _, err := svc.Login(ctx, "hr@example.com", "wrong")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative - unknown email", func(t *testing.T) {
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		_, _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret!")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	t.Run("success - rotates both tokens", func(t *testing.T) {
		user := staffUser(t)
		repo := &fakeAuthRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*User, error) {
				assert.Equal(t, user.ID, id)
				return user, nil
			},
		}
		svc := NewService(repo, &fakeEmployeeDirectory{}, zap.NewNop())

		refresh, err := svc.(*service).generateToken(user, time.Hour)
		assert.NoError(t, err)

		newAccess, newRefresh, resp, err := svc.RefreshToken(ctx, refresh)

		assert.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)
		assert.Equal(t, user.Email, resp.Email)

		claims := parseClaims(t, newAccess)
		assert.Equal(t, RoleStaff, claims["role"])
	})

	t.Run("negative - garbage token", func(t *testing.T) {
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		_, _, _, err := svc.RefreshToken(ctx, "not-a-token")

		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("negative - expired token", func(t *testing.T) {
		user := staffUser(t)
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		expired, err := svc.(*service).generateToken(user, -time.Minute)
		assert.NoError(t, err)

		_, _, _, err = svc.RefreshToken(ctx, expired)

		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("negative - user no longer exists", func(t *testing.T) {
		user := staffUser(t)
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		refresh, err := svc.(*service).generateToken(user, time.Hour)
		assert.NoError(t, err)

		_, _, _, err = svc.RefreshToken(ctx, refresh)

		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()

	t.Run("success - staff employee gets the staff role", func(t *testing.T) {
		eID := uuid.New()
		var created *User
		repo := &fakeAuthRepository{
			createFn: func(ctx context.Context, user *User) error {
				created = user
				return nil
			},
		}
		employees := &fakeEmployeeDirectory{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				assert.Equal(t, eID.String(), id)
				return &employee.Employee{ID: eID, FullName: "Dana Ops", IsStaff: true}, nil
			},
		}
		svc := NewService(repo, employees, zap.NewNop())

		resp, err := svc.Register(ctx, RegisterRequest{
			EmployeeID: eID.String(),
			Email:      "dana@example.com",
			Password:   "s3cret!",
		})

		assert.NoError(t, err)
		assert.Equal(t, RoleStaff, resp.Role)
		assert.Equal(t, "Dana Ops", resp.FullName)
		if assert.NotNil(t, created) {
			assert.NotEqual(t, "s3cret!", created.Password)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cret!")))
			assert.True(t, created.IsActive)
		}
	})

	t.Run("negative - invalid employee id", func(t *testing.T) {
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		_, err := svc.Register(ctx, RegisterRequest{
			EmployeeID: "not-a-uuid",
			Email:      "dana@example.com",
			Password:   "s3cret!",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("negative - employee not found", func(t *testing.T) {
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		_, err := svc.Register(ctx, RegisterRequest{
			EmployeeID: uuid.NewString(),
			Email:      "dana@example.com",
			Password:   "s3cret!",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("negative - email already registered", func(t *testing.T) {
		eID := uuid.New()
		repo := &fakeAuthRepository{
			createFn: func(ctx context.Context, user *User) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}
		employees := &fakeEmployeeDirectory{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				return &employee.Employee{ID: eID, FullName: "Dana Ops"}, nil
			},
		}
		svc := NewService(repo, employees, zap.NewNop())

		_, err := svc.Register(ctx, RegisterRequest{
			EmployeeID: eID.String(),
			Email:      "dana@example.com",
			Password:   "s3cret!",
		})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestAuthService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("negative - invalid user id", func(t *testing.T) {
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		_, err := svc.GetMe(ctx, "nope")

		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})

	t.Run("negative - user not found", func(t *testing.T) {
		svc := NewService(&fakeAuthRepository{}, &fakeEmployeeDirectory{}, zap.NewNop())

		_, err := svc.GetMe(ctx, uuid.NewString())

		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})

	t.Run("success", func(t *testing.T) {
		user := staffUser(t)
		repo := &fakeAuthRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*User, error) {
				return user, nil
			},
		}
		svc := NewService(repo, &fakeEmployeeDirectory{}, zap.NewNop())

		resp, err := svc.GetMe(ctx, user.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, user.Email, resp.Email)
		assert.Equal(t, RoleStaff, resp.Role)
	})
}
