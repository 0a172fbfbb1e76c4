package department

import (
	"context"
	"database/sql"
	"errors"

	departmenterrors "github.com/eman-cickusic/leave-management/internal/department/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	GetRouting(ctx context.Context, id string) (*Department, error)
	Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	deptID := uuid.New()
	rules, err := buildRules(deptID, req.Rules)
	if err != nil {
		return DepartmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept := &Department{
		ID:            deptID,
		Name:          req.Name,
		TeamLeadID:    parseOptionalUUID(req.TeamLeadID),
		HRApproverID:  parseOptionalUUID(req.HRApproverID),
		ApprovalRules: rules,
	}

	if err := qtx.Create(ctx, dept); err != nil {
		if isUniqueViolation(err) {
			return DepartmentResponse{}, departmenterrors.ErrDuplicateName
		}
		s.logger.Error("create department failed", zap.Error(err))
		return DepartmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.logger.Info("department created",
		zap.String("department_id", dept.ID.String()),
		zap.String("name", dept.Name),
	)
	return mapToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(depts), nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	dept, err := s.GetRouting(ctx, id)
	if err != nil {
		return DepartmentResponse{}, err
	}
	return mapToResponse(*dept), nil
}

// GetRouting returns the department entity with its rules loaded, for the
// workflow to resolve the approval chain.
func (s *service) GetRouting(ctx context.Context, id string) (*Department, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, departmenterrors.ErrInvalidDepartmentID
	}
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, departmenterrors.ErrDepartmentNotFound
		}
		return nil, err
	}
	return dept, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, departmenterrors.ErrDepartmentNotFound
		}
		return DepartmentResponse{}, err
	}

	dept.Name = req.Name
	dept.TeamLeadID = parseOptionalUUID(req.TeamLeadID)
	dept.HRApproverID = parseOptionalUUID(req.HRApproverID)

	if err := qtx.Update(ctx, dept); err != nil {
		if isUniqueViolation(err) {
			return DepartmentResponse{}, departmenterrors.ErrDuplicateName
		}
		return DepartmentResponse{}, err
	}

	if req.Rules != nil {
		rules, err := buildRules(dept.ID, req.Rules)
		if err != nil {
			return DepartmentResponse{}, err
		}
		if err := qtx.ReplaceRules(ctx, dept, rules); err != nil {
			return DepartmentResponse{}, err
		}
		dept.ApprovalRules = rules
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	return mapToResponse(*dept), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func buildRules(departmentID uuid.UUID, inputs []ApprovalRuleInput) ([]ApprovalRule, error) {
	rules := make([]ApprovalRule, 0, len(inputs))
	seenRole := make(map[string]bool, len(inputs))
	seenSeq := make(map[int]bool, len(inputs))

	for _, in := range inputs {
		if seenRole[in.Role] {
			return nil, departmenterrors.ErrDuplicateRuleRole
		}
		if in.Sequence <= 0 || seenSeq[in.Sequence] {
			return nil, departmenterrors.ErrInvalidRuleSequence
		}
		seenRole[in.Role] = true
		seenSeq[in.Sequence] = true
		rules = append(rules, ApprovalRule{
			ID:           uuid.New(),
			DepartmentID: departmentID,
			Role:         in.Role,
			Sequence:     in.Sequence,
		})
	}
	return rules, nil
}

func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func mapToResponse(dept Department) DepartmentResponse {
	resp := DepartmentResponse{
		ID:    dept.ID.String(),
		Name:  dept.Name,
		Rules: make([]ApprovalRuleResponse, 0, len(dept.ApprovalRules)),
	}
	if dept.TeamLeadID != nil {
		v := dept.TeamLeadID.String()
		resp.TeamLeadID = &v
	}
	if dept.HRApproverID != nil {
		v := dept.HRApproverID.String()
		resp.HRApproverID = &v
	}
	for _, rule := range dept.ApprovalSequence() {
		resp.Rules = append(resp.Rules, ApprovalRuleResponse{
			Role:     rule.Role,
			Sequence: rule.Sequence,
		})
	}
	return resp
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
