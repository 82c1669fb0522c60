package dto

import (
	"miyabi/internal/domains/accesslog/model"
	"miyabi/shared"
	"miyabi/shared/constant"
	"miyabi/shared/timezone"

	"github.com/google/uuid"
)

// RecordAccessRequest describes one successful login.
type RecordAccessRequest struct {
	SubjectID string
	UserType  string `validate:"required,oneof=staff guest"`
	AccessIP  string
}

func (r *RecordAccessRequest) ToModel() model.AccessLog {
	entry := model.AccessLog{
		ID:         uuid.NewString(),
		UserType:   r.UserType,
		AccessedAt: timezone.Now(),
	}

	subject := r.SubjectID
	if r.UserType == model.UserTypeGuest {
		entry.GuestID = &subject
	} else {
		entry.UserID = &subject
	}

	if r.AccessIP != constant.Empty {
		ip := r.AccessIP
		entry.AccessIP = &ip
	}

	return entry
}

type AccessLogResponse struct {
	ID         string  `json:"id"`
	UserType   string  `json:"user_type"`
	UserID     *string `json:"user_id"`
	GuestID    *string `json:"guest_id"`
	Email      *string `json:"email"`
	AccessIP   *string `json:"access_ip"`
	AccessedAt string  `json:"accessed_at"`
}

func (r *AccessLogResponse) FromModel(model model.AccessLog) {
	r.ID = model.ID
	r.UserType = model.UserType
	r.UserID = model.UserID
	r.GuestID = model.GuestID
	r.AccessIP = model.AccessIP
	r.AccessedAt = timezone.Format(model.AccessedAt, constant.DateFormat)

	r.Email = model.UserEmail
	if r.Email == nil {
		r.Email = model.GuestEmail
	}
}

type GetAccessLogsResponse struct {
	AccessLogs []AccessLogResponse `json:"access_logs"`
	TotalPage  int                 `json:"total_page"`
	TotalData  int                 `json:"total_data"`
}

func (r *GetAccessLogsResponse) FromModels(models []model.AccessLog, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.AccessLogs = make([]AccessLogResponse, len(models))
	for i, mod := range models {
		r.AccessLogs[i].FromModel(mod)
	}
}
