package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	leavetypeerrors "github.com/eman-cickusic/leave-management/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const OptionsCacheKey = "leavetypes:options"

// QuotaBackfiller seeds a quota for the new type on every existing balance.
// Implemented by the balance service; an interface here avoids a package cycle.
type QuotaBackfiller interface {
	BackfillForType(ctx context.Context, tx *sql.Tx, leaveTypeID uuid.UUID, defaultAllocation int) error
}

type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	GetByCode(ctx context.Context, code string) (LeaveTypeResponse, error)
	GetOptions(ctx context.Context) ([]LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	SeedDefaults(ctx context.Context) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	backfiller QuotaBackfiller
	rdb        *redis.Client
	sf         *singleflight.Group
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, backfiller QuotaBackfiller, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		backfiller: backfiller,
		rdb:        rdb,
		sf:         &singleflight.Group{},
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("create leave type requested", zap.String("code", req.Code))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt := &LeaveType{
		ID:                    uuid.New(),
		Code:                  req.Code,
		Name:                  req.Name,
		DefaultAllocation:     req.DefaultAllocation,
		MaxDaysPerRequest:     req.MaxDaysPerRequest,
		MinNoticeDays:         req.MinNoticeDays,
		RequiresDocumentation: req.RequiresDocumentation,
		IsPaid:                req.IsPaid,
	}

	if err := qtx.Create(ctx, lt); err != nil {
		if isUniqueViolation(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrDuplicateCode
		}
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	// Every existing balance gets a quota for the new type at its default
	// allocation, inside the same transaction as the type itself.
	if s.backfiller != nil {
		if err := s.backfiller.BackfillForType(ctx, tx, lt.ID, lt.DefaultAllocation); err != nil {
			s.logger.Error("backfill quotas for new leave type failed",
				zap.String("leave_type_id", lt.ID.String()),
				zap.Error(err),
			)
			return LeaveTypeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("create leave type success",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("code", lt.Code),
	)

	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(types), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) GetByCode(ctx context.Context, code string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

// GetOptions serves the registry listing from redis. Misses collapse through
// singleflight so a cold cache triggers a single database read.
func (s *service) GetOptions(ctx context.Context) ([]LeaveTypeResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result()
		if err == nil {
			var resp []LeaveTypeResponse
			if jsonErr := json.Unmarshal([]byte(cached), &resp); jsonErr == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(OptionsCacheKey, func() (any, error) {
		types, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		resp := mapToListResponse(types)

		if s.rdb != nil {
			if payload, jsonErr := json.Marshal(resp); jsonErr == nil {
				if setErr := s.rdb.Set(ctx, OptionsCacheKey, payload, 10*time.Minute).Err(); setErr != nil {
					s.logger.Warn("cache leave type options failed", zap.Error(setErr))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LeaveTypeResponse), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	lt.Name = req.Name
	lt.DefaultAllocation = req.DefaultAllocation
	lt.MaxDaysPerRequest = req.MaxDaysPerRequest
	lt.MinNoticeDays = req.MinNoticeDays
	lt.RequiresDocumentation = req.RequiresDocumentation
	lt.IsPaid = req.IsPaid

	if err := qtx.Update(ctx, lt); err != nil {
		return LeaveTypeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveTypeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	return mapToResponse(*lt), nil
}

// SeedDefaults installs the baseline registry when the table is empty.
func (s *service) SeedDefaults(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, seed := range DefaultLeaveTypes {
		_, err := s.Create(ctx, CreateLeaveTypeRequest{
			Code:                  seed.Code,
			Name:                  seed.Name,
			DefaultAllocation:     seed.DefaultAllocation,
			MaxDaysPerRequest:     seed.MaxDaysPerRequest,
			MinNoticeDays:         seed.MinNoticeDays,
			RequiresDocumentation: seed.RequiresDocumentation,
			IsPaid:                seed.IsPaid,
		})
		if err != nil && !errors.Is(err, leavetypeerrors.ErrDuplicateCode) {
			return err
		}
	}

	s.logger.Info("seeded default leave types", zap.Int("count", len(DefaultLeaveTypes)))
	return nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate leave type options cache failed", zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                    lt.ID.String(),
		Code:                  lt.Code,
		Name:                  lt.Name,
		DefaultAllocation:     lt.DefaultAllocation,
		MaxDaysPerRequest:     lt.MaxDaysPerRequest,
		MinNoticeDays:         lt.MinNoticeDays,
		RequiresDocumentation: lt.RequiresDocumentation,
		IsPaid:                lt.IsPaid,
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp
}
