package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/villagio/leaseflow/internal/app"
	"github.com/villagio/leaseflow/internal/domain"
)

const (
	timeFormat = "2006-01-02T15:04:05Z"
	dateFormat = "2006-01-02"
)

// RequestResponse is the API representation of a rental request.
type RequestResponse struct {
	ID                    string  `json:"id" doc:"Unique identifier"`
	UserID                string  `json:"user_id" doc:"Requesting user"`
	UnitID                string  `json:"unit_id" doc:"Target unit"`
	FullName              string  `json:"full_name" doc:"Applicant name (snapshot)"`
	Email                 string  `json:"email" doc:"Applicant email (snapshot)"`
	Phone                 string  `json:"phone" doc:"Applicant phone (snapshot)"`
	Occupation            string  `json:"occupation" doc:"Applicant occupation (snapshot)"`
	EmergencyContact      string  `json:"emergency_contact" doc:"Emergency contact (snapshot)"`
	LeaseDurationMonths   int     `json:"lease_duration_months" doc:"Requested lease duration"`
	Status                string  `json:"status" doc:"Lifecycle state"`
	RequestDate           string  `json:"request_date" doc:"Submission timestamp (ISO 8601)"`
	DecisionDate          *string `json:"decision_date,omitempty" doc:"Decision timestamp, absent while pending"`
	RejectionReason       string  `json:"rejection_reason,omitempty" doc:"Set only when rejected"`
	RejectionAcknowledged bool    `json:"rejection_acknowledged" doc:"Meaningful only when rejected"`
	LeaseID               string  `json:"lease_id,omitempty" doc:"Set only when approved"`
}

func toRequestResponse(r domain.RentalRequest) RequestResponse {
	resp := RequestResponse{
		ID:                    r.ID,
		UserID:                r.UserID,
		UnitID:                r.UnitID,
		FullName:              r.Applicant.FullName,
		Email:                 r.Applicant.Email,
		Phone:                 r.Applicant.Phone,
		Occupation:            r.Applicant.Occupation,
		EmergencyContact:      r.Applicant.EmergencyContact,
		LeaseDurationMonths:   r.LeaseDurationMonths,
		Status:                string(r.Status),
		RequestDate:           r.RequestDate.Format(timeFormat),
		RejectionReason:       r.RejectionReason,
		RejectionAcknowledged: r.RejectionAcknowledged,
		LeaseID:               r.LeaseID,
	}
	if r.DecisionDate != nil {
		d := r.DecisionDate.Format(timeFormat)
		resp.DecisionDate = &d
	}
	return resp
}

// EligibilityResponse is the booking view the polling client consumes.
type EligibilityResponse struct {
	CanCreateNewRequest     bool `json:"can_create_new_request" doc:"Whether the booking form may be shown"`
	IsPending               bool `json:"is_pending" doc:"Latest request is pending"`
	IsApproved              bool `json:"is_approved" doc:"Latest request is approved"`
	IsRejected              bool `json:"is_rejected" doc:"Latest request is rejected"`
	RequiresAcknowledgement bool `json:"requires_acknowledgement" doc:"Rejection must be acknowledged before resubmitting"`
	HasActiveLease          bool `json:"has_active_lease" doc:"User currently holds an active lease"`
}

// --- Submit ---

type SubmitRequestInput struct {
	Body struct {
		UserID              string `json:"user_id" minLength:"1" doc:"Requesting user id"`
		UnitID              string `json:"unit_id" minLength:"1" doc:"Target unit id"`
		FullName            string `json:"full_name" minLength:"1" maxLength:"255" doc:"Applicant name"`
		Email               string `json:"email" format:"email" doc:"Applicant email"`
		Phone               string `json:"phone" minLength:"1" maxLength:"32" doc:"Applicant phone"`
		Occupation          string `json:"occupation" minLength:"1" maxLength:"255" doc:"Applicant occupation"`
		EmergencyContact    string `json:"emergency_contact" minLength:"1" maxLength:"255" doc:"Emergency contact"`
		LeaseDurationMonths int    `json:"lease_duration_months" minimum:"1" doc:"Requested lease duration in months"`
	}
}

type SubmitRequestOutput struct {
	Body RequestResponse
}

// --- Booking status ---

type BookingStatusInput struct {
	UserID string `path:"userId" doc:"User ID"`
}

type BookingStatusOutput struct {
	Body EligibilityResponse
}

// --- Get / List ---

type GetRequestInput struct {
	ID string `path:"id" doc:"Request ID"`
}

type GetRequestOutput struct {
	Body RequestResponse
}

type ListRequestsInput struct {
	Status string `query:"status" required:"false" enum:"pending,approved,rejected" doc:"Filter by status"`
	UserID string `query:"user_id" required:"false" doc:"Filter by user"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListRequestsOutput struct {
	Body []RequestResponse
}

// --- Approve ---

type ApproveRequestInput struct {
	ID   string `path:"id" doc:"Request ID"`
	Body struct {
		AdminID   string `json:"admin_id" minLength:"1" doc:"Deciding administrator"`
		StartDate string `json:"start_date" pattern:"^\\d{4}-\\d{2}-\\d{2}$" doc:"Lease start (YYYY-MM-DD)"`
		EndDate   string `json:"end_date" pattern:"^\\d{4}-\\d{2}-\\d{2}$" doc:"Lease end (YYYY-MM-DD)"`
	}
}

type LeaseResponse struct {
	ID           string `json:"id" doc:"Lease identifier"`
	RequestID    string `json:"request_id" doc:"Originating request"`
	UnitID       string `json:"unit_id" doc:"Leased unit"`
	TenantUserID string `json:"tenant_user_id" doc:"Tenant"`
	StartDate    string `json:"start_date" doc:"Lease start (YYYY-MM-DD)"`
	EndDate      string `json:"end_date" doc:"Lease end (YYYY-MM-DD)"`
	MonthlyRent  string `json:"monthly_rent" doc:"Monthly rent at approval time"`
	Status       string `json:"status" doc:"Lease state"`
}

type ApproveRequestOutput struct {
	Body LeaseResponse
}

// --- Reject ---

type RejectRequestInput struct {
	ID   string `path:"id" doc:"Request ID"`
	Body struct {
		AdminID string `json:"admin_id" minLength:"1" doc:"Deciding administrator"`
		Reason  string `json:"reason" minLength:"1" doc:"Rejection reason shown to the applicant"`
	}
}

type OKResponse struct {
	OK bool `json:"ok" doc:"Operation succeeded"`
}

type RejectRequestOutput struct {
	Body OKResponse
}

// --- Acknowledge ---

type AcknowledgeInput struct {
	ID   string `path:"id" doc:"Request ID"`
	Body struct {
		UserID string `json:"user_id" minLength:"1" doc:"Owner of the rejected request"`
	}
}

type AcknowledgeOutput struct {
	Body OKResponse
}

// --- Terminate lease ---

type TerminateLeaseInput struct {
	ID   string `path:"id" doc:"Lease ID"`
	Body struct {
		AdminID string `json:"admin_id" minLength:"1" doc:"Administrator ending the lease"`
	}
}

type TerminateLeaseOutput struct {
	Body OKResponse
}

// Register adds all booking API routes to the Huma API.
func Register(api huma.API, svc *app.BookingService) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-request",
		Method:      http.MethodPost,
		Path:        "/api/v1/requests",
		Summary:     "Submit a rental request",
		Tags:        []string{"Requests"},
	}, func(ctx context.Context, input *SubmitRequestInput) (*SubmitRequestOutput, error) {
		applicant := domain.ApplicantSnapshot{
			FullName:         input.Body.FullName,
			Email:            input.Body.Email,
			Phone:            input.Body.Phone,
			Occupation:       input.Body.Occupation,
			EmergencyContact: input.Body.EmergencyContact,
		}
		req, err := svc.Submit(ctx, input.Body.UserID, input.Body.UnitID, applicant, input.Body.LeaseDurationMonths)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SubmitRequestOutput{Body: toRequestResponse(req)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-booking-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userId}/booking-status",
		Summary:     "Get a user's booking eligibility",
		Tags:        []string{"Requests"},
	}, func(ctx context.Context, input *BookingStatusInput) (*BookingStatusOutput, error) {
		e, err := svc.LatestStatus(ctx, input.UserID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &BookingStatusOutput{Body: EligibilityResponse{
			CanCreateNewRequest:     e.CanCreateNewRequest,
			IsPending:               e.IsPending,
			IsApproved:              e.IsApproved,
			IsRejected:              e.IsRejected,
			RequiresAcknowledgement: e.RequiresAcknowledgement,
			HasActiveLease:          e.HasActiveLease,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-request",
		Method:      http.MethodGet,
		Path:        "/api/v1/requests/{id}",
		Summary:     "Get a rental request by ID",
		Tags:        []string{"Requests"},
	}, func(ctx context.Context, input *GetRequestInput) (*GetRequestOutput, error) {
		req, err := svc.GetRequest(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetRequestOutput{Body: toRequestResponse(req)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-requests",
		Method:      http.MethodGet,
		Path:        "/api/v1/requests",
		Summary:     "List rental requests",
		Tags:        []string{"Requests"},
	}, func(ctx context.Context, input *ListRequestsInput) (*ListRequestsOutput, error) {
		filter := domain.RequestFilter{
			UserID: input.UserID,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}

		reqs, err := svc.ListRequests(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]RequestResponse, len(reqs))
		for i, r := range reqs {
			resp[i] = toRequestResponse(r)
		}
		return &ListRequestsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-request",
		Method:      http.MethodPost,
		Path:        "/api/v1/requests/{id}/approve",
		Summary:     "Approve a pending request",
		Tags:        []string{"Decisions"},
	}, func(ctx context.Context, input *ApproveRequestInput) (*ApproveRequestOutput, error) {
		start, err := time.Parse(dateFormat, input.Body.StartDate)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(string(domain.CodeInvalidPeriod),
				&huma.ErrorDetail{Message: "invalid start_date", Location: "body.start_date"})
		}
		end, err := time.Parse(dateFormat, input.Body.EndDate)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(string(domain.CodeInvalidPeriod),
				&huma.ErrorDetail{Message: "invalid end_date", Location: "body.end_date"})
		}

		lease, err := svc.Approve(ctx, input.ID, input.Body.AdminID, start, end)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ApproveRequestOutput{Body: LeaseResponse{
			ID:           lease.ID,
			RequestID:    lease.RequestID,
			UnitID:       lease.UnitID,
			TenantUserID: lease.TenantUserID,
			StartDate:    lease.StartDate.Format(dateFormat),
			EndDate:      lease.EndDate.Format(dateFormat),
			MonthlyRent:  lease.MonthlyRent.String(),
			Status:       string(lease.Status),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-request",
		Method:      http.MethodPost,
		Path:        "/api/v1/requests/{id}/reject",
		Summary:     "Reject a pending request",
		Tags:        []string{"Decisions"},
	}, func(ctx context.Context, input *RejectRequestInput) (*RejectRequestOutput, error) {
		if err := svc.Reject(ctx, input.ID, input.Body.AdminID, input.Body.Reason); err != nil {
			return nil, toHumaError(err)
		}
		return &RejectRequestOutput{Body: OKResponse{OK: true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "acknowledge-rejection",
		Method:      http.MethodPost,
		Path:        "/api/v1/requests/{id}/acknowledge",
		Summary:     "Acknowledge a rejection (idempotent)",
		Tags:        []string{"Requests"},
	}, func(ctx context.Context, input *AcknowledgeInput) (*AcknowledgeOutput, error) {
		if err := svc.Acknowledge(ctx, input.ID, input.Body.UserID); err != nil {
			return nil, toHumaError(err)
		}
		return &AcknowledgeOutput{Body: OKResponse{OK: true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "terminate-lease",
		Method:      http.MethodPost,
		Path:        "/api/v1/leases/{id}/terminate",
		Summary:     "Terminate an active lease",
		Tags:        []string{"Decisions"},
	}, func(ctx context.Context, input *TerminateLeaseInput) (*TerminateLeaseOutput, error) {
		if err := svc.TerminateLease(ctx, input.ID, input.Body.AdminID); err != nil {
			return nil, toHumaError(err)
		}
		return &TerminateLeaseOutput{Body: OKResponse{OK: true}}, nil
	})
}

// guardStatus maps guard codes to HTTP statuses. Conflict-shaped guards
// (state already claimed by someone) are 409; precondition-shaped guards
// are 422.
var guardStatus = map[domain.GuardCode]int{
	domain.CodeAlreadyVillager:         http.StatusConflict,
	domain.CodePendingExists:           http.StatusConflict,
	domain.CodeUnacknowledgedRejection: http.StatusConflict,
	domain.CodeAlreadyDecided:          http.StatusConflict,
	domain.CodeUnitUnavailable:         http.StatusConflict,
	domain.CodeLeaseNotActive:          http.StatusConflict,
	domain.CodeInvalidPeriod:           http.StatusUnprocessableEntity,
	domain.CodeNotRejected:             http.StatusUnprocessableEntity,
}

// toHumaError translates domain errors to Huma HTTP errors. For guard
// violations the error detail is the stable guard code, which is what the
// client branches on.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrUnitNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrLeaseNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrReasonRequired):
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var guardErr *domain.GuardError
	if errors.As(err, &guardErr) {
		status, ok := guardStatus[guardErr.Code]
		if !ok {
			status = http.StatusConflict
		}
		return huma.NewError(status, string(guardErr.Code),
			&huma.ErrorDetail{Message: guardErr.Reason})
	}

	return huma.Error500InternalServerError("internal server error")
}
