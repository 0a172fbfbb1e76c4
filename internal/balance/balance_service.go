package balance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	balanceerrors "github.com/eman-cickusic/leave-management/internal/balance/errors"
	"github.com/eman-cickusic/leave-management/internal/leavetype"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the quota ledger. All mutations of the used counter go through
// Deduct and Refund so concurrent decisions cannot lose updates.
type Service interface {
	EnsureForEmployee(ctx context.Context, employeeID string) (*LeaveBalance, error)
	GetQuotaForType(ctx context.Context, employeeID, leaveTypeID string) (*LeaveQuota, error)
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	Deduct(ctx context.Context, tx *sql.Tx, quotaID string, days int) error
	Refund(ctx context.Context, tx *sql.Tx, quotaID string, days int) error
	AdjustQuotas(ctx context.Context, actorID, employeeID string, req AdjustQuotasRequest) (BalanceResponse, error)
	BackfillForType(ctx context.Context, tx *sql.Tx, leaveTypeID uuid.UUID, defaultAllocation int) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	typeRepo leavetype.Repository
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, typeRepo leavetype.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, typeRepo: typeRepo, logger: l}
}

// EnsureForEmployee returns the employee's balance, creating it and seeding
// one quota per registered leave type when missing. Safe to call repeatedly:
// existing quotas and their usage are never touched, and a concurrent create
// falls back to re-reading the row the winner inserted.
func (s *service) EnsureForEmployee(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	b, err := s.repo.FindByEmployee(ctx, employeeID)
	if err == nil {
		if seedErr := s.seedMissingQuotas(ctx, b); seedErr != nil {
			return nil, seedErr
		}
		return s.repo.FindByEmployee(ctx, employeeID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &LeaveBalance{
		ID:         uuid.New(),
		EmployeeID: uuid.MustParse(employeeID),
	}
	if err := s.repo.Create(ctx, created); err != nil {
		if isUniqueViolation(err) {
			// Lost the race; the other caller's row is the balance.
			return s.repo.FindByEmployee(ctx, employeeID)
		}
		s.logger.Error("create leave balance failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.seedMissingQuotas(ctx, created); err != nil {
		return nil, err
	}

	s.logger.Info("leave balance created",
		zap.String("balance_id", created.ID.String()),
		zap.String("employee_id", employeeID),
	)
	return s.repo.FindByEmployee(ctx, employeeID)
}

func (s *service) seedMissingQuotas(ctx context.Context, b *LeaveBalance) error {
	types, err := s.typeRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	existing := make(map[uuid.UUID]bool, len(b.Quotas))
	for _, q := range b.Quotas {
		existing[q.LeaveTypeID] = true
	}

	for _, lt := range types {
		if existing[lt.ID] {
			continue
		}
		quota := &LeaveQuota{
			ID:          uuid.New(),
			BalanceID:   b.ID,
			LeaveTypeID: lt.ID,
			Allocation:  lt.DefaultAllocation,
		}
		if err := s.repo.CreateQuota(ctx, quota); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// GetQuotaForType returns the quota row for the employee and type, creating
// it at the type's default allocation when absent.
func (s *service) GetQuotaForType(ctx context.Context, employeeID, leaveTypeID string) (*LeaveQuota, error) {
	b, err := s.EnsureForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	q, err := s.repo.FindQuota(ctx, b.ID.String(), leaveTypeID)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lt, err := s.typeRepo.FindByID(ctx, leaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balanceerrors.ErrQuotaNotFound
		}
		return nil, err
	}

	quota := &LeaveQuota{
		ID:          uuid.New(),
		BalanceID:   b.ID,
		LeaveTypeID: lt.ID,
		Allocation:  lt.DefaultAllocation,
	}
	if err := s.repo.CreateQuota(ctx, quota); err != nil {
		if isUniqueViolation(err) {
			return s.repo.FindQuota(ctx, b.ID.String(), leaveTypeID)
		}
		return nil, err
	}
	return quota, nil
}

func (s *service) GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error) {
	b, err := s.EnsureForEmployee(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

// Deduct consumes days from the quota inside the caller's transaction. The
// repo refuses when the stored remaining is below days, which bubbles up as
// ErrInsufficientBalance so the enclosing decision rolls back.
func (s *service) Deduct(ctx context.Context, tx *sql.Tx, quotaID string, days int) error {
	if days <= 0 {
		return balanceerrors.ErrNonPositiveDays
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	ok, err := repo.Deduct(ctx, quotaID, days)
	if err != nil {
		s.logger.Error("quota deduct failed",
			zap.String("quota_id", quotaID),
			zap.Int("days", days),
			zap.Error(err),
		)
		return err
	}
	if !ok {
		s.logger.Warn("quota deduct refused, insufficient remaining",
			zap.String("quota_id", quotaID),
			zap.Int("days", days),
		)
		return balanceerrors.ErrInsufficientBalance
	}

	s.logger.Info("quota deducted",
		zap.String("quota_id", quotaID),
		zap.Int("days", days),
	)
	return nil
}

func (s *service) Refund(ctx context.Context, tx *sql.Tx, quotaID string, days int) error {
	if days <= 0 {
		return balanceerrors.ErrNonPositiveDays
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	if err := repo.Refund(ctx, quotaID, days); err != nil {
		s.logger.Error("quota refund failed",
			zap.String("quota_id", quotaID),
			zap.Int("days", days),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("quota refunded",
		zap.String("quota_id", quotaID),
		zap.Int("days", days),
	)
	return nil
}

// AdjustQuotas rewrites the entitlement components of the employee's quotas
// and stamps the audit fields. Usage counters are left alone.
func (s *service) AdjustQuotas(ctx context.Context, actorID, employeeID string, req AdjustQuotasRequest) (BalanceResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	b, err := s.EnsureForEmployee(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}

	quotaByID := make(map[string]*LeaveQuota, len(b.Quotas))
	for i := range b.Quotas {
		quotaByID[b.Quotas[i].ID.String()] = &b.Quotas[i]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	for _, adj := range req.Adjustments {
		if adj.Allocation < 0 || adj.CarriedOver < 0 || adj.EmergencyGrant < 0 {
			return BalanceResponse{}, balanceerrors.ErrNegativeAdjustment
		}
		q, ok := quotaByID[adj.QuotaID]
		if !ok {
			return BalanceResponse{}, balanceerrors.ErrQuotaNotFound
		}
		q.Allocation = adj.Allocation
		q.CarriedOver = adj.CarriedOver
		q.EmergencyGrant = adj.EmergencyGrant
		if err := qtx.SaveQuotaEntitlement(ctx, q); err != nil {
			return BalanceResponse{}, err
		}
	}

	now := time.Now().UTC()
	b.LastAdjustedBy = &actorUUID
	b.LastAdjustedAt = &now
	if err := qtx.SaveBalance(ctx, b); err != nil {
		return BalanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return BalanceResponse{}, err
	}

	s.logger.Info("quotas adjusted",
		zap.String("employee_id", employeeID),
		zap.String("adjusted_by", actorID),
		zap.Int("quotas", len(req.Adjustments)),
	)

	updated, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}
	return mapToResponse(*updated), nil
}

// BackfillForType implements leavetype.QuotaBackfiller.
func (s *service) BackfillForType(ctx context.Context, tx *sql.Tx, leaveTypeID uuid.UUID, defaultAllocation int) error {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	return repo.BackfillQuotas(ctx, leaveTypeID.String(), defaultAllocation)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	resp := BalanceResponse{
		ID:         b.ID.String(),
		EmployeeID: b.EmployeeID.String(),
		Quotas:     make([]QuotaResponse, len(b.Quotas)),
	}
	if b.DepartmentID != nil {
		v := b.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if b.LastAdjustedBy != nil {
		v := b.LastAdjustedBy.String()
		resp.LastAdjustedBy = &v
	}
	if b.LastAdjustedAt != nil {
		v := b.LastAdjustedAt.Format(time.RFC3339)
		resp.LastAdjustedAt = &v
	}
	for i, q := range b.Quotas {
		resp.Quotas[i] = QuotaResponse{
			ID:             q.ID.String(),
			LeaveTypeID:    q.LeaveTypeID.String(),
			Allocation:     q.Allocation,
			CarriedOver:    q.CarriedOver,
			EmergencyGrant: q.EmergencyGrant,
			Used:           q.Used,
			Remaining:      q.RemainingDays(),
		}
		resp.TotalRemaining += q.RemainingDays()
	}
	return resp
}
