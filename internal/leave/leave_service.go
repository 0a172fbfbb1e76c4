package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/eman-cickusic/leave-management/internal/balance"
	"github.com/eman-cickusic/leave-management/internal/department"
	leaveerrors "github.com/eman-cickusic/leave-management/internal/leave/errors"
	"github.com/eman-cickusic/leave-management/internal/leavetype"
	leavetypeerrors "github.com/eman-cickusic/leave-management/internal/leavetype/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// QuotaLedger is the slice of the balance service the workflow needs.
type QuotaLedger interface {
	EnsureForEmployee(ctx context.Context, employeeID string) (*balance.LeaveBalance, error)
	GetQuotaForType(ctx context.Context, employeeID, leaveTypeID string) (*balance.LeaveQuota, error)
	Deduct(ctx context.Context, tx *sql.Tx, quotaID string, days int) error
}

// DepartmentRouting resolves a department with its approval chain loaded.
type DepartmentRouting interface {
	GetRouting(ctx context.Context, id string) (*department.Department, error)
}

// TypeRegistry is satisfied by leavetype.Repository.
type TypeRegistry interface {
	FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

type Service interface {
	Create(ctx context.Context, employeeID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	ListAll(ctx context.Context) ([]LeaveRequestResponse, error)
	ListActionable(ctx context.Context, reviewerID string) ([]LeaveRequestResponse, error)
	InitializeWorkflow(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	RecordDecision(ctx context.Context, requestID, reviewerID string, req DecisionRequest) (DecisionResponse, error)
	IsUserEligible(ctx context.Context, req *LeaveRequest, approval *LeaveApproval, userID uuid.UUID) bool
	NotifyUpcoming(ctx context.Context, withinDays int) (int, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	ledger   QuotaLedger
	routing  DepartmentRouting
	types    TypeRegistry
	notifier Notifier
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger QuotaLedger,
	routing DepartmentRouting,
	types TypeRegistry,
	notifier Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &service{
		db:       db,
		repo:     repo,
		ledger:   ledger,
		routing:  routing,
		types:    types,
		notifier: notifier,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, employeeID string, req CreateLeaveRequestRequest) (LeaveRequestResponse, error) {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidRequestID
	}

	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrEndBeforeStart
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrEndBeforeStart
	}

	lt, err := s.types.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveRequestResponse{}, err
	}

	request := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  empUUID,
		LeaveTypeID: lt.ID,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		Status:      StatusPending,
		PolicyNotes: policyNotes(lt),
	}

	if err := s.validate(ctx, request, lt, nil); err != nil {
		return LeaveRequestResponse{}, err
	}

	bal, err := s.ledger.EnsureForEmployee(ctx, employeeID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	quota, err := s.ledger.GetQuotaForType(ctx, employeeID, req.LeaveTypeID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if remaining := quota.RemainingDays(); request.TotalDays() > remaining {
		return LeaveRequestResponse{}, leaveerrors.InsufficientQuota(lt.Name, request.TotalDays(), remaining)
	}

	if req.DepartmentID != nil && *req.DepartmentID != "" {
		id, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return LeaveRequestResponse{}, leaveerrors.ErrInvalidRequestID
		}
		request.DepartmentID = &id
	} else if bal.DepartmentID != nil {
		request.DepartmentID = bal.DepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Create(ctx, request); err != nil {
		s.logger.Error("create leave request failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := s.initializeWorkflow(ctx, qtx, request); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("total_days", request.TotalDays()),
	)

	s.notifier.RequestSubmitted(ctx, request)
	if current := request.CurrentApproval(); current != nil {
		s.notifier.NextApprover(ctx, request, current)
	}

	return mapToResponse(*request), nil
}

// initializeWorkflow creates one approval row per routing step and moves the
// request into review. A request that already has approvals is left alone.
func (s *service) initializeWorkflow(ctx context.Context, qtx Repository, request *LeaveRequest) error {
	if len(request.Approvals) > 0 {
		return nil
	}

	if request.DepartmentID == nil {
		bal, err := s.ledger.EnsureForEmployee(ctx, request.EmployeeID.String())
		if err != nil {
			return err
		}
		request.DepartmentID = bal.DepartmentID
	}
	if request.DepartmentID == nil {
		return leaveerrors.ErrMissingDepartment
	}

	dept, err := s.routing.GetRouting(ctx, request.DepartmentID.String())
	if err != nil {
		return err
	}

	approvals := make([]LeaveApproval, 0, 2)
	for _, rule := range dept.ApprovalSequence() {
		approvals = append(approvals, LeaveApproval{
			ID:         uuid.New(),
			RequestID:  request.ID,
			Role:       rule.Role,
			Sequence:   rule.Sequence,
			Status:     StatusPending,
			AssignedTo: dept.ExpectedReviewer(rule.Role),
		})
	}

	if err := qtx.CreateApprovals(ctx, approvals); err != nil {
		return err
	}
	if err := qtx.SetStatus(ctx, request.ID.String(), StatusInReview); err != nil {
		return err
	}

	request.Approvals = approvals
	request.Status = StatusInReview
	return nil
}

func (s *service) InitializeWorkflow(ctx context.Context, requestID string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidRequestID
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	if len(request.Approvals) > 0 {
		return mapToResponse(*request), nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	if err := s.initializeWorkflow(ctx, s.repo.WithTx(tx), request); err != nil {
		return LeaveRequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveRequestResponse{}, err
	}

	if current := request.CurrentApproval(); current != nil {
		s.notifier.NextApprover(ctx, request, current)
	}
	return mapToResponse(*request), nil
}

// RecordDecision applies one reviewer decision as a single unit of work. The
// approval mark, the request status change and the final-step deduction
// either all commit or all roll back.
func (s *service) RecordDecision(ctx context.Context, requestID, reviewerID string, req DecisionRequest) (DecisionResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return DecisionResponse{}, leaveerrors.ErrInvalidRequestID
	}
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return DecisionResponse{}, leaveerrors.ErrInvalidRequestID
	}
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return DecisionResponse{}, leaveerrors.ErrInvalidDecision
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionResponse{}, leaveerrors.ErrRequestNotFound
		}
		return DecisionResponse{}, err
	}

	// A rejection resolves the request but leaves later steps PENDING in
	// storage, so terminal requests must be refused before step selection.
	if !request.IsPending() {
		return DecisionResponse{}, leaveerrors.ErrNoPendingApproval
	}

	approval := request.CurrentApproval()
	if approval == nil {
		return DecisionResponse{}, leaveerrors.ErrNoPendingApproval
	}

	if !s.IsUserEligible(ctx, request, approval, reviewerUUID) {
		return DecisionResponse{}, leaveerrors.ErrNotEligible
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DecisionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	marked, err := qtx.MarkApproval(ctx, approval.ID.String(), req.Decision, reviewerUUID, req.Comment)
	if err != nil {
		return DecisionResponse{}, err
	}
	if !marked {
		// A concurrent reviewer got here first.
		return DecisionResponse{}, leaveerrors.ErrApprovalAlreadyDecided
	}
	approval.Status = req.Decision

	now := time.Now().UTC()

	if req.Decision == StatusRejected {
		request.Status = StatusRejected
		request.ReviewedBy = &reviewerUUID
		request.ManagerComment = req.Comment
		request.DecisionDate = &now
		if err := qtx.UpdateDecision(ctx, request); err != nil {
			return DecisionResponse{}, err
		}
		if err := tx.Commit(); err != nil {
			return DecisionResponse{}, err
		}

		s.logger.Info("leave request rejected",
			zap.String("request_id", requestID),
			zap.String("reviewer_id", reviewerID),
			zap.Int("sequence", approval.Sequence),
		)
		s.notifier.RequestRejected(ctx, request)
		return DecisionResponse{RequestID: requestID, Status: StatusRejected}, nil
	}

	if next := request.CurrentApproval(); next != nil {
		if err := qtx.SetStatus(ctx, request.ID.String(), StatusInReview); err != nil {
			return DecisionResponse{}, err
		}
		if err := tx.Commit(); err != nil {
			return DecisionResponse{}, err
		}

		request.Status = StatusInReview
		s.logger.Info("leave request approval step recorded",
			zap.String("request_id", requestID),
			zap.Int("sequence", approval.Sequence),
			zap.Int("next_sequence", next.Sequence),
		)
		s.notifier.NextApprover(ctx, request, next)
		return DecisionResponse{RequestID: requestID, Status: StatusInReview}, nil
	}

	// Final step: the deduction rides the same transaction, so a refused
	// deduct unwinds the approval mark as well.
	quota, err := s.ledger.GetQuotaForType(ctx, request.EmployeeID.String(), request.LeaveTypeID.String())
	if err != nil {
		return DecisionResponse{}, err
	}
	if err := s.ledger.Deduct(ctx, tx, quota.ID.String(), request.TotalDays()); err != nil {
		s.logger.Warn("final approval deduction refused",
			zap.String("request_id", requestID),
			zap.Int("total_days", request.TotalDays()),
			zap.Error(err),
		)
		return DecisionResponse{}, err
	}

	request.Status = StatusApproved
	request.ReviewedBy = &reviewerUUID
	request.ManagerComment = req.Comment
	request.DecisionDate = &now
	if err := qtx.UpdateDecision(ctx, request); err != nil {
		return DecisionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return DecisionResponse{}, err
	}

	s.logger.Info("leave request approved",
		zap.String("request_id", requestID),
		zap.String("reviewer_id", reviewerID),
		zap.Int("total_days", request.TotalDays()),
	)
	s.notifier.RequestApproved(ctx, request)
	return DecisionResponse{RequestID: requestID, Status: StatusApproved}, nil
}

// IsUserEligible reports whether the user may decide the approval. Unassigned
// steps fall back to the department seat for the step's role, so routing
// self-heals when a seat is filled after the step was created.
func (s *service) IsUserEligible(ctx context.Context, req *LeaveRequest, approval *LeaveApproval, userID uuid.UUID) bool {
	if approval.Status != StatusPending {
		return false
	}
	if approval.AssignedTo != nil {
		return *approval.AssignedTo == userID
	}
	if req.DepartmentID == nil {
		return false
	}

	dept, err := s.routing.GetRouting(ctx, req.DepartmentID.String())
	if err != nil {
		s.logger.Warn("eligibility department lookup failed",
			zap.String("request_id", req.ID.String()),
			zap.Error(err),
		)
		return false
	}

	seat := dept.ExpectedReviewer(approval.Role)
	return seat != nil && *seat == userID
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidRequestID
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*request), nil
}

func (s *service) ListMine(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error) {
	reqs, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(reqs), nil
}

func (s *service) ListAll(ctx context.Context) ([]LeaveRequestResponse, error) {
	reqs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(reqs), nil
}

func (s *service) ListActionable(ctx context.Context, reviewerID string) ([]LeaveRequestResponse, error) {
	reqs, err := s.repo.FindActionableForReviewer(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(reqs), nil
}

// NotifyUpcoming pings the notifier for approved requests starting within
// the window. Read-only; returns how many reminders went out.
func (s *service) NotifyUpcoming(ctx context.Context, withinDays int) (int, error) {
	from := today()
	to := from.AddDate(0, 0, withinDays)

	reqs, err := s.repo.UpcomingApproved(ctx, from, to)
	if err != nil {
		return 0, err
	}
	for i := range reqs {
		s.notifier.UpcomingLeave(ctx, &reqs[i])
	}
	return len(reqs), nil
}

func (s *service) validate(ctx context.Context, request *LeaveRequest, lt *leavetype.LeaveType, excludeID *string) error {
	if request.EndDate.Before(request.StartDate) {
		return leaveerrors.ErrEndBeforeStart
	}
	if request.StartDate.Before(today()) {
		return leaveerrors.ErrStartInPast
	}

	duration := request.TotalDays()
	if lt.MaxDaysPerRequest > 0 && duration > lt.MaxDaysPerRequest {
		return leaveerrors.MaxDurationExceeded(lt.Name, lt.MaxDaysPerRequest)
	}
	if lt.MinNoticeDays > 0 {
		notice := int(request.StartDate.Sub(today()).Hours() / 24)
		if notice < lt.MinNoticeDays {
			return leaveerrors.InsufficientNotice(lt.Name, lt.MinNoticeDays)
		}
	}

	overlapping, err := s.repo.HasOverlapping(ctx, request.EmployeeID.String(), request.StartDate, request.EndDate, excludeID)
	if err != nil {
		return err
	}
	if overlapping {
		return leaveerrors.ErrOverlappingRequest
	}
	return nil
}

func policyNotes(lt *leavetype.LeaveType) string {
	var notes []string
	if lt.RequiresDocumentation {
		notes = append(notes, "Supporting documentation required for this leave type.")
	}
	if !lt.IsPaid {
		notes = append(notes, "This leave is unpaid.")
	}
	return strings.Join(notes, "\n")
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func mapToResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             r.ID.String(),
		EmployeeID:     r.EmployeeID.String(),
		LeaveTypeID:    r.LeaveTypeID.String(),
		StartDate:      r.StartDate.Format(dateLayout),
		EndDate:        r.EndDate.Format(dateLayout),
		TotalDays:      r.TotalDays(),
		Reason:         r.Reason,
		Status:         r.Status,
		PolicyNotes:    r.PolicyNotes,
		ManagerComment: r.ManagerComment,
		Approvals:      make([]ApprovalResponse, len(r.Approvals)),
	}
	if r.DepartmentID != nil {
		v := r.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if r.ReviewedBy != nil {
		v := r.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if r.DecisionDate != nil {
		v := r.DecisionDate.Format(time.RFC3339)
		resp.DecisionDate = &v
	}
	for i, a := range r.Approvals {
		ar := ApprovalResponse{
			ID:       a.ID.String(),
			Role:     a.Role,
			Sequence: a.Sequence,
			Status:   a.Status,
			Comment:  a.Comment,
		}
		if a.AssignedTo != nil {
			v := a.AssignedTo.String()
			ar.AssignedTo = &v
		}
		if a.ReviewedBy != nil {
			v := a.ReviewedBy.String()
			ar.ReviewedBy = &v
		}
		if a.DecidedAt != nil {
			v := a.DecidedAt.Format(time.RFC3339)
			ar.DecidedAt = &v
		}
		resp.Approvals[i] = ar
	}
	return resp
}

func mapToListResponse(reqs []LeaveRequest) []LeaveRequestResponse {
	res := make([]LeaveRequestResponse, len(reqs))
	for i, r := range reqs {
		res[i] = mapToResponse(r)
	}
	return res
}
