package department_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/eman-cickusic/leave-management/internal/department"
	departmenterrors "github.com/eman-cickusic/leave-management/internal/department/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeDepartmentRepository struct {
	withTxFn       func(tx *sql.Tx) department.Repository
	createFn       func(ctx context.Context, dept *department.Department) error
	findAllFn      func(ctx context.Context) ([]department.Department, error)
	findByIDFn     func(ctx context.Context, id string) (*department.Department, error)
	updateFn       func(ctx context.Context, dept *department.Department) error
	replaceRulesFn func(ctx context.Context, dept *department.Department, rules []department.ApprovalRule) error
	deleteFn       func(ctx context.Context, id string) error
}

func (f *fakeDepartmentRepository) WithTx(tx *sql.Tx) department.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeDepartmentRepository) Create(ctx context.Context, dept *department.Department) error {
	if f.createFn != nil {
		return f.createFn(ctx, dept)
	}
	return nil
}

func (f *fakeDepartmentRepository) FindAll(ctx context.Context) ([]department.Department, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeDepartmentRepository) FindByID(ctx context.Context, id string) (*department.Department, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepartmentRepository) Update(ctx context.Context, dept *department.Department) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, dept)
	}
	return nil
}

func (f *fakeDepartmentRepository) ReplaceRules(ctx context.Context, dept *department.Department, rules []department.ApprovalRule) error {
	if f.replaceRulesFn != nil {
		return f.replaceRulesFn(ctx, dept, rules)
	}
	return nil
}

func (f *fakeDepartmentRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type departmentServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service department.Service
	repo    *fakeDepartmentRepository
}

func setupDepartmentServiceTest(t *testing.T) *departmentServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeDepartmentRepository{}
	svc := department.NewService(db, repo)

	return &departmentServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
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

func TestDepartmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - with explicit rules", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		leadID := uuid.New().String()
		req := department.CreateDepartmentRequest{
			Name:       "Engineering",
			TeamLeadID: &leadID,
			Rules: []department.ApprovalRuleInput{
				{Role: department.RoleHR, Sequence: 2},
				{Role: department.RoleTeamLead, Sequence: 1},
			},
		}

		var created *department.Department
		deps.repo.createFn = func(ctx context.Context, dept *department.Department) error {
			created = dept
			return nil
		}

		resp, err := deps.service.Create(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, "Engineering", created.Name)
		assert.Equal(t, leadID, created.TeamLeadID.String())
		assert.Len(t, created.ApprovalRules, 2)

		// Response rules are ordered by sequence regardless of input order.
		assert.Equal(t, department.RoleTeamLead, resp.Rules[0].Role)
		assert.Equal(t, 1, resp.Rules[0].Sequence)
		assert.Equal(t, department.RoleHR, resp.Rules[1].Role)
	})

	t.Run("success - no rules still reports the default chain", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, department.CreateDepartmentRequest{Name: "Sales"})
		assert.NoError(t, err)
		assert.Len(t, resp.Rules, 2)
		assert.Equal(t, department.RoleTeamLead, resp.Rules[0].Role)
		assert.Equal(t, department.RoleHR, resp.Rules[1].Role)
	})

	t.Run("negative duplicate role", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		req := department.CreateDepartmentRequest{
			Name: "Engineering",
			Rules: []department.ApprovalRuleInput{
				{Role: department.RoleHR, Sequence: 1},
				{Role: department.RoleHR, Sequence: 2},
			},
		}

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, departmenterrors.ErrDuplicateRuleRole)
	})

	t.Run("negative duplicate sequence", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		req := department.CreateDepartmentRequest{
			Name: "Engineering",
			Rules: []department.ApprovalRuleInput{
				{Role: department.RoleTeamLead, Sequence: 1},
				{Role: department.RoleHR, Sequence: 1},
			},
		}

		_, err := deps.service.Create(ctx, req)
		assert.ErrorIs(t, err, departmenterrors.ErrInvalidRuleSequence)
	})

	t.Run("negative duplicate name", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.createFn = func(ctx context.Context, dept *department.Department) error {
			return &pgconn.PgError{Code: "23505"}
		}

		_, err := deps.service.Create(ctx, department.CreateDepartmentRequest{Name: "Engineering"})
		assert.ErrorIs(t, err, departmenterrors.ErrDuplicateName)
	})
}

func TestDepartmentService_GetRouting(t *testing.T) {
	ctx := context.Background()

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetRouting(ctx, "nope")
		assert.ErrorIs(t, err, departmenterrors.ErrInvalidDepartmentID)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetRouting(ctx, uuid.New().String())
		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNotFound)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, got string) (*department.Department, error) {
			assert.Equal(t, id.String(), got)
			return &department.Department{ID: id, Name: "Engineering"}, nil
		}

		dept, err := deps.service.GetRouting(ctx, id.String())
		assert.NoError(t, err)
		assert.Equal(t, id, dept.ID)
	})
}

func TestDepartmentService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success - replaces rules when provided", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, got string) (*department.Department, error) {
			return &department.Department{ID: id, Name: "Engineering"}, nil
		}

		var replaced []department.ApprovalRule
		deps.repo.replaceRulesFn = func(ctx context.Context, dept *department.Department, rules []department.ApprovalRule) error {
			replaced = rules
			return nil
		}

		hrID := uuid.New().String()
		req := department.UpdateDepartmentRequest{
			Name:         "Platform Engineering",
			HRApproverID: &hrID,
			Rules: []department.ApprovalRuleInput{
				{Role: department.RoleHR, Sequence: 1},
			},
		}

		resp, err := deps.service.Update(ctx, id.String(), req)
		assert.NoError(t, err)
		assert.Equal(t, "Platform Engineering", resp.Name)
		assert.Len(t, replaced, 1)
		assert.Equal(t, department.RoleHR, replaced[0].Role)
		assert.Len(t, resp.Rules, 1)
	})

	t.Run("success - nil rules leave the chain alone", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, got string) (*department.Department, error) {
			return &department.Department{ID: id, Name: "Engineering"}, nil
		}
		deps.repo.replaceRulesFn = func(ctx context.Context, dept *department.Department, rules []department.ApprovalRule) error {
			t.Fatal("rules should not be replaced")
			return nil
		}

		_, err := deps.service.Update(ctx, id.String(), department.UpdateDepartmentRequest{Name: "Engineering"})
		assert.NoError(t, err)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupDepartmentServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Update(ctx, id.String(), department.UpdateDepartmentRequest{Name: "X"})
		assert.ErrorIs(t, err, departmenterrors.ErrDepartmentNotFound)
	})
}

func TestDepartment_ApprovalSequence(t *testing.T) {
	leadID := uuid.New()
	hrID := uuid.New()

	t.Run("explicit rules ordered by sequence", func(t *testing.T) {
		dept := department.Department{
			ID: uuid.New(),
			ApprovalRules: []department.ApprovalRule{
				{Role: department.RoleHR, Sequence: 5},
				{Role: department.RoleTeamLead, Sequence: 2},
			},
		}

		seq := dept.ApprovalSequence()
		assert.Len(t, seq, 2)
		assert.Equal(t, department.RoleTeamLead, seq[0].Role)
		assert.Equal(t, 2, seq[0].Sequence)
		assert.Equal(t, department.RoleHR, seq[1].Role)
	})

	t.Run("default chain synthesized when no rules exist", func(t *testing.T) {
		dept := department.Department{ID: uuid.New()}

		seq := dept.ApprovalSequence()
		assert.Len(t, seq, 2)
		assert.Equal(t, department.RoleTeamLead, seq[0].Role)
		assert.Equal(t, 1, seq[0].Sequence)
		assert.Equal(t, department.RoleHR, seq[1].Role)
		assert.Equal(t, 2, seq[1].Sequence)
	})

	t.Run("expected reviewer maps role to the seat holder", func(t *testing.T) {
		dept := department.Department{ID: uuid.New(), TeamLeadID: &leadID, HRApproverID: &hrID}

		assert.Equal(t, &leadID, dept.ExpectedReviewer(department.RoleTeamLead))
		assert.Equal(t, &hrID, dept.ExpectedReviewer(department.RoleHR))
		assert.Nil(t, dept.ExpectedReviewer("OTHER"))
	})

	t.Run("vacant seat yields nil reviewer", func(t *testing.T) {
		dept := department.Department{ID: uuid.New()}
		assert.Nil(t, dept.ExpectedReviewer(department.RoleTeamLead))
	})
}
