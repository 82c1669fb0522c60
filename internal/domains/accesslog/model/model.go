package model

import "time"

const (
	TableName  = "access_logs"
	EntityName = "accesslog"

	FieldID         = "id"
	FieldUserID     = "user_id"
	FieldGuestID    = "guest_id"
	FieldUserType   = "user_type"
	FieldAccessIP   = "access_ip"
	FieldAccessedAt = "accessed_at"
)

const (
	UserTypeStaff = "staff"
	UserTypeGuest = "guest"
)

type AccessLog struct {
	ID         string    `db:"id"`
	UserID     *string   `db:"user_id"`
	GuestID    *string   `db:"guest_id"`
	UserType   string    `db:"user_type"`
	AccessIP   *string   `db:"access_ip"`
	AccessedAt time.Time `db:"accessed_at"`
	UserEmail  *string   `db:"user_email"  table:"users"  column:"email"`
	GuestEmail *string   `db:"guest_email" table:"guests" column:"email"`
}

func (AccessLog) GetJoinQuery() string {
	return "LEFT JOIN users ON users.id = access_logs.user_id " +
		"LEFT JOIN guests ON guests.id = access_logs.guest_id"
}
