package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/eman-cickusic/leave-management/internal/balance"
	balanceerrors "github.com/eman-cickusic/leave-management/internal/balance/errors"
	"github.com/eman-cickusic/leave-management/internal/leavetype"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBalanceRepository struct {
	withTxFn               func(tx *sql.Tx) balance.Repository
	createFn               func(ctx context.Context, b *balance.LeaveBalance) error
	findByEmployeeFn       func(ctx context.Context, employeeID string) (*balance.LeaveBalance, error)
	saveBalanceFn          func(ctx context.Context, b *balance.LeaveBalance) error
	createQuotaFn          func(ctx context.Context, q *balance.LeaveQuota) error
	findQuotaFn            func(ctx context.Context, balanceID, leaveTypeID string) (*balance.LeaveQuota, error)
	findQuotaByIDFn        func(ctx context.Context, quotaID string) (*balance.LeaveQuota, error)
	saveQuotaEntitlementFn func(ctx context.Context, q *balance.LeaveQuota) error
	deductFn               func(ctx context.Context, quotaID string, days int) (bool, error)
	refundFn               func(ctx context.Context, quotaID string, days int) error
	backfillQuotasFn       func(ctx context.Context, leaveTypeID string, allocation int) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBalanceRepository) Create(ctx context.Context, b *balance.LeaveBalance) error {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) FindByEmployee(ctx context.Context, employeeID string) (*balance.LeaveBalance, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) SaveBalance(ctx context.Context, b *balance.LeaveBalance) error {
	if f.saveBalanceFn != nil {
		return f.saveBalanceFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) CreateQuota(ctx context.Context, q *balance.LeaveQuota) error {
	if f.createQuotaFn != nil {
		return f.createQuotaFn(ctx, q)
	}
	return nil
}

func (f *fakeBalanceRepository) FindQuota(ctx context.Context, balanceID, leaveTypeID string) (*balance.LeaveQuota, error) {
	if f.findQuotaFn != nil {
		return f.findQuotaFn(ctx, balanceID, leaveTypeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindQuotaByID(ctx context.Context, quotaID string) (*balance.LeaveQuota, error) {
	if f.findQuotaByIDFn != nil {
		return f.findQuotaByIDFn(ctx, quotaID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) SaveQuotaEntitlement(ctx context.Context, q *balance.LeaveQuota) error {
	if f.saveQuotaEntitlementFn != nil {
		return f.saveQuotaEntitlementFn(ctx, q)
	}
	return nil
}

func (f *fakeBalanceRepository) Deduct(ctx context.Context, quotaID string, days int) (bool, error) {
	if f.deductFn != nil {
		return f.deductFn(ctx, quotaID, days)
	}
	return true, nil
}

func (f *fakeBalanceRepository) Refund(ctx context.Context, quotaID string, days int) error {
	if f.refundFn != nil {
		return f.refundFn(ctx, quotaID, days)
	}
	return nil
}

func (f *fakeBalanceRepository) BackfillQuotas(ctx context.Context, leaveTypeID string, allocation int) error {
	if f.backfillQuotasFn != nil {
		return f.backfillQuotasFn(ctx, leaveTypeID, allocation)
	}
	return nil
}

type fakeLeaveTypeRepository struct {
	findAllFn  func(ctx context.Context) ([]leavetype.LeaveType, error)
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeLeaveTypeRepository) WithTx(tx *sql.Tx) leavetype.Repository { return f }

func (f *fakeLeaveTypeRepository) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}

func (f *fakeLeaveTypeRepository) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveTypeRepository) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) FindByCode(ctx context.Context, code string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}

func (f *fakeLeaveTypeRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

type balanceServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  balance.Service
	repo     *fakeBalanceRepository
	typeRepo *fakeLeaveTypeRepository
}

func setupBalanceServiceTest(t *testing.T) *balanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeBalanceRepository{}
	typeRepo := &fakeLeaveTypeRepository{}
	svc := balance.NewService(db, repo, typeRepo)

	return &balanceServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		typeRepo: typeRepo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestBalanceService_EnsureForEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("negative invalid employee id", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.EnsureForEmployee(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidEmployeeID)
	})

	t.Run("success - returns existing balance without creating", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New()
		typeID := uuid.New()
		existing := &balance.LeaveBalance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Quotas: []balance.LeaveQuota{
				{ID: uuid.New(), LeaveTypeID: typeID, Allocation: 20},
			},
		}

		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			assert.Equal(t, employeeID.String(), eid)
			return existing, nil
		}
		deps.typeRepo.findAllFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{{ID: typeID, Code: "VAC", DefaultAllocation: 20}}, nil
		}
		created := false
		deps.repo.createFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			created = true
			return nil
		}

		b, err := deps.service.EnsureForEmployee(ctx, employeeID.String())
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, b.ID)
		assert.False(t, created)
	})

	t.Run("success - creates balance and seeds one quota per type", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New()
		vacID := uuid.New()
		sickID := uuid.New()

		calls := 0
		var createdBalance *balance.LeaveBalance
		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			calls++
			if createdBalance == nil {
				return nil, gorm.ErrRecordNotFound
			}
			return createdBalance, nil
		}
		deps.repo.createFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			assert.Equal(t, employeeID, b.EmployeeID)
			createdBalance = b
			return nil
		}
		deps.typeRepo.findAllFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{
				{ID: vacID, Code: "VAC", DefaultAllocation: 20},
				{ID: sickID, Code: "SICK", DefaultAllocation: 10},
			}, nil
		}

		var seeded []balance.LeaveQuota
		deps.repo.createQuotaFn = func(ctx context.Context, q *balance.LeaveQuota) error {
			seeded = append(seeded, *q)
			return nil
		}

		b, err := deps.service.EnsureForEmployee(ctx, employeeID.String())
		assert.NoError(t, err)
		assert.NotNil(t, b)
		assert.Len(t, seeded, 2)
		assert.Equal(t, 20, seeded[0].Allocation)
		assert.Equal(t, 10, seeded[1].Allocation)
		for _, q := range seeded {
			assert.Equal(t, 0, q.Used)
			assert.Equal(t, b.ID, q.BalanceID)
		}
	})

	t.Run("success - seeds quota for a type added after the balance existed", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New()
		oldTypeID := uuid.New()
		newTypeID := uuid.New()
		existing := &balance.LeaveBalance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Quotas: []balance.LeaveQuota{
				{ID: uuid.New(), LeaveTypeID: oldTypeID, Allocation: 20, Used: 5},
			},
		}

		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return existing, nil
		}
		deps.typeRepo.findAllFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{
				{ID: oldTypeID, Code: "VAC", DefaultAllocation: 20},
				{ID: newTypeID, Code: "SICK", DefaultAllocation: 10},
			}, nil
		}

		var seeded []balance.LeaveQuota
		deps.repo.createQuotaFn = func(ctx context.Context, q *balance.LeaveQuota) error {
			seeded = append(seeded, *q)
			return nil
		}

		_, err := deps.service.EnsureForEmployee(ctx, employeeID.String())
		assert.NoError(t, err)
		assert.Len(t, seeded, 1)
		assert.Equal(t, newTypeID, seeded[0].LeaveTypeID)
	})
}

func TestBalanceService_Deduct(t *testing.T) {
	ctx := context.Background()
	quotaID := uuid.New().String()

	t.Run("negative non positive days", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Deduct(ctx, nil, quotaID, 0)
		assert.ErrorIs(t, err, balanceerrors.ErrNonPositiveDays)

		err = deps.service.Deduct(ctx, nil, quotaID, -3)
		assert.ErrorIs(t, err, balanceerrors.ErrNonPositiveDays)
	})

	t.Run("negative insufficient remaining", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.deductFn = func(ctx context.Context, qid string, days int) (bool, error) {
			assert.Equal(t, quotaID, qid)
			assert.Equal(t, 7, days)
			return false, nil
		}

		err := deps.service.Deduct(ctx, nil, quotaID, 7)
		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.deductFn = func(ctx context.Context, qid string, days int) (bool, error) {
			return true, nil
		}

		err := deps.service.Deduct(ctx, nil, quotaID, 3)
		assert.NoError(t, err)
	})

	t.Run("success - uses caller transaction", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		tx, err := deps.db.BeginTx(ctx, nil)
		assert.NoError(t, err)

		withTxCalled := false
		deps.repo.withTxFn = func(gotTx *sql.Tx) balance.Repository {
			withTxCalled = true
			assert.Equal(t, tx, gotTx)
			return deps.repo
		}

		err = deps.service.Deduct(ctx, tx, quotaID, 2)
		assert.NoError(t, err)
		assert.True(t, withTxCalled)
		assert.NoError(t, tx.Commit())
	})
}

func TestBalanceService_Refund(t *testing.T) {
	ctx := context.Background()
	quotaID := uuid.New().String()

	t.Run("negative non positive days", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Refund(ctx, nil, quotaID, 0)
		assert.ErrorIs(t, err, balanceerrors.ErrNonPositiveDays)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		refunded := 0
		deps.repo.refundFn = func(ctx context.Context, qid string, days int) error {
			refunded = days
			return nil
		}

		err := deps.service.Refund(ctx, nil, quotaID, 4)
		assert.NoError(t, err)
		assert.Equal(t, 4, refunded)
	})

	t.Run("negative repo error propagates", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		repoErr := errors.New("db down")
		deps.repo.refundFn = func(ctx context.Context, qid string, days int) error {
			return repoErr
		}

		err := deps.service.Refund(ctx, nil, quotaID, 4)
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestBalanceService_AdjustQuotas(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	employeeID := uuid.New()
	typeID := uuid.New()

	existingBalance := func() *balance.LeaveBalance {
		return &balance.LeaveBalance{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Quotas: []balance.LeaveQuota{
				{ID: uuid.New(), LeaveTypeID: typeID, Allocation: 20, Used: 5},
			},
		}
	}

	t.Run("success - rewrites entitlement and stamps audit fields", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		b := existingBalance()
		quotaID := b.Quotas[0].ID.String()

		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return b, nil
		}
		deps.typeRepo.findAllFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{{ID: typeID, Code: "VAC", DefaultAllocation: 20}}, nil
		}

		expectTx(t, deps.sqlMock, true)

		var savedQuota *balance.LeaveQuota
		deps.repo.saveQuotaEntitlementFn = func(ctx context.Context, q *balance.LeaveQuota) error {
			savedQuota = q
			return nil
		}
		var savedBalance *balance.LeaveBalance
		deps.repo.saveBalanceFn = func(ctx context.Context, got *balance.LeaveBalance) error {
			savedBalance = got
			return nil
		}

		req := balance.AdjustQuotasRequest{
			Adjustments: []balance.QuotaAdjustment{
				{QuotaID: quotaID, Allocation: 25, CarriedOver: 3, EmergencyGrant: 1},
			},
		}

		resp, err := deps.service.AdjustQuotas(ctx, actorID, employeeID.String(), req)
		assert.NoError(t, err)

		assert.NotNil(t, savedQuota)
		assert.Equal(t, 25, savedQuota.Allocation)
		assert.Equal(t, 3, savedQuota.CarriedOver)
		assert.Equal(t, 1, savedQuota.EmergencyGrant)
		assert.Equal(t, 5, savedQuota.Used)

		assert.NotNil(t, savedBalance)
		assert.NotNil(t, savedBalance.LastAdjustedBy)
		assert.Equal(t, actorID, savedBalance.LastAdjustedBy.String())
		assert.NotNil(t, savedBalance.LastAdjustedAt)

		assert.Len(t, resp.Quotas, 1)
		assert.Equal(t, 25+3+1-5, resp.Quotas[0].Remaining)
	})

	t.Run("negative component rejected", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		b := existingBalance()
		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return b, nil
		}

		expectTx(t, deps.sqlMock, false)

		req := balance.AdjustQuotasRequest{
			Adjustments: []balance.QuotaAdjustment{
				{QuotaID: b.Quotas[0].ID.String(), Allocation: -1},
			},
		}

		_, err := deps.service.AdjustQuotas(ctx, actorID, employeeID.String(), req)
		assert.ErrorIs(t, err, balanceerrors.ErrNegativeAdjustment)
	})

	t.Run("negative unknown quota id", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		b := existingBalance()
		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return b, nil
		}

		expectTx(t, deps.sqlMock, false)

		req := balance.AdjustQuotasRequest{
			Adjustments: []balance.QuotaAdjustment{
				{QuotaID: uuid.New().String(), Allocation: 10},
			},
		}

		_, err := deps.service.AdjustQuotas(ctx, actorID, employeeID.String(), req)
		assert.ErrorIs(t, err, balanceerrors.ErrQuotaNotFound)
	})
}

func TestBalanceService_GetQuotaForType(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	typeID := uuid.New()

	t.Run("success - creates quota at default allocation when absent", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		b := &balance.LeaveBalance{ID: uuid.New(), EmployeeID: employeeID}
		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return b, nil
		}
		deps.typeRepo.findAllFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return nil, nil
		}
		deps.typeRepo.findByIDFn = func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			assert.Equal(t, typeID.String(), id)
			return &leavetype.LeaveType{ID: typeID, Code: "SICK", DefaultAllocation: 10}, nil
		}

		q, err := deps.service.GetQuotaForType(ctx, employeeID.String(), typeID.String())
		assert.NoError(t, err)
		assert.Equal(t, 10, q.Allocation)
		assert.Equal(t, 0, q.Used)
		assert.Equal(t, typeID, q.LeaveTypeID)
	})

	t.Run("success - returns existing quota untouched", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		b := &balance.LeaveBalance{ID: uuid.New(), EmployeeID: employeeID}
		existing := &balance.LeaveQuota{ID: uuid.New(), BalanceID: b.ID, LeaveTypeID: typeID, Allocation: 10, Used: 4}

		deps.repo.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return b, nil
		}
		deps.repo.findQuotaFn = func(ctx context.Context, balanceID, leaveTypeID string) (*balance.LeaveQuota, error) {
			return existing, nil
		}

		q, err := deps.service.GetQuotaForType(ctx, employeeID.String(), typeID.String())
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, q.ID)
		assert.Equal(t, 4, q.Used)
	})
}
