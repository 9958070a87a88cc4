package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/scentdesk/usage-backend/internal/services"
)

// AuthGateway is the authentication surface the handlers depend on
type AuthGateway interface {
	Login(ctx context.Context, username, password string, client models.ClientInfo) (*services.LoginResult, error)
	Register(ctx context.Context, input models.RegisterInput) (*models.User, error)
	Logout(ctx context.Context, token string)
	ResolveStaff(ctx context.Context, principal *models.Principal) (*models.Staff, bool, error)
	SessionTTL() time.Duration
}

// UsageRecorder records and lists perfume samplings
type UsageRecorder interface {
	RecordUsage(ctx context.Context, principal *models.Principal, gender, perfumeID string) (*services.RecordResult, error)
	Today(ctx context.Context) (*services.DailySummary, error)
	Logs(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLog, error)
	Location() *time.Location
}

// Catalog manages perfumes
type Catalog interface {
	List(ctx context.Context, order models.PerfumeOrder) ([]models.Perfume, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
	Add(ctx context.Context, form models.PerfumeForm) (*models.Perfume, error)
	Update(ctx context.Context, id uuid.UUID, form models.PerfumeForm) (*models.Perfume, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Perfume, error)
}
