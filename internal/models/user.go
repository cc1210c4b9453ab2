package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User is a platform account for dashboard/API access
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Email         string         `gorm:"type:varchar(256);not null;uniqueIndex:ix_users_email;column:email"`
	FirstName     string         `gorm:"type:varchar(100);not null;column:first_name"`
	LastName      string         `gorm:"type:varchar(100);not null;column:last_name"`
	PasswordHash  string         `gorm:"type:varchar(512);not null;column:password_hash"`
	Role          UserRole       `gorm:"type:smallint;not null;index:ix_users_role_is_active,priority:1;column:role"`
	CreatedAt     time.Time      `gorm:"not null;column:created_at"`
	LastLoginAt   sql.NullTime   `gorm:"column:last_login_at"`
	IsActive      bool           `gorm:"not null;default:true;index:ix_users_role_is_active,priority:2;column:is_active"`
	APIKey        sql.NullString `gorm:"type:varchar(128);column:api_key"`
	DailyAPILimit int            `gorm:"not null;default:1000;column:daily_api_limit"`
	APICallsToday int            `gorm:"not null;default:0;column:api_calls_today"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
