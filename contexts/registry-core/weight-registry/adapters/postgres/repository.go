package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/entities"
	domainerrors "github.com/pk910/pg-onchain-weights/contexts/registry-core/weight-registry/domain/errors"
	"github.com/pk910/pg-onchain-weights/internal/shared/identity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists member and org records so the registry survives
// restarts. List order is insertion order (row id); the swap-with-last
// arena semantics are a memory-adapter concern.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type memberModel struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	Address        string `gorm:"size:42;uniqueIndex"`
	JoinYear       uint16
	JoinMonth      uint8
	PartTimeFactor uint8
	MonthsOnBreak  uint16
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (memberModel) TableName() string {
	return "registry_members"
}

type orgModel struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	Address       string `gorm:"size:42;uniqueIndex"`
	AllocationPpm uint32
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (orgModel) TableName() string {
	return "registry_orgs"
}

// Migrate creates the registry tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&memberModel{}, &orgModel{})
}

func (r *Repository) AddMember(ctx context.Context, record entities.MemberRecord) error {
	row := memberModelFromEntity(record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrMemberExists
		}
		return r.logError("weight_registry_repo_add_member_failed", err, "member", record.Address.Hex())
	}
	return nil
}

func (r *Repository) AddMembers(ctx context.Context, records []entities.MemberRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			row := memberModelFromEntity(record)
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrMemberExists
				}
				return r.logError("weight_registry_repo_import_failed", err, "member", record.Address.Hex())
			}
		}
		return nil
	})
}

func (r *Repository) GetMember(ctx context.Context, address identity.Address) (entities.MemberRecord, error) {
	var row memberModel
	err := r.db.WithContext(ctx).Where("address = ?", address.Hex()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.MemberRecord{}, domainerrors.ErrMemberNotFound
		}
		return entities.MemberRecord{}, r.logError("weight_registry_repo_get_member_failed", err, "member", address.Hex())
	}
	return row.toEntity()
}

func (r *Repository) UpdateMember(ctx context.Context, record entities.MemberRecord) error {
	result := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("address = ?", record.Address.Hex()).
		Updates(map[string]any{
			"months_on_break": record.MonthsOnBreak,
			"active":          record.Active,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("weight_registry_repo_update_member_failed", result.Error, "member", record.Address.Hex())
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) DeleteMember(ctx context.Context, address identity.Address) error {
	result := r.db.WithContext(ctx).Where("address = ?", address.Hex()).Delete(&memberModel{})
	if result.Error != nil {
		return r.logError("weight_registry_repo_delete_member_failed", result.Error, "member", address.Hex())
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context) ([]entities.MemberRecord, error) {
	var rows []memberModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, r.logError("weight_registry_repo_list_members_failed", err)
	}
	records := make([]entities.MemberRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Repository) AddOrg(ctx context.Context, record entities.OrgRecord) error {
	row := orgModelFromEntity(record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrOrgExists
		}
		return r.logError("weight_registry_repo_add_org_failed", err, "org", record.Address.Hex())
	}
	return nil
}

func (r *Repository) GetOrg(ctx context.Context, address identity.Address) (entities.OrgRecord, error) {
	var row orgModel
	err := r.db.WithContext(ctx).Where("address = ?", address.Hex()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OrgRecord{}, domainerrors.ErrOrgNotFound
		}
		return entities.OrgRecord{}, r.logError("weight_registry_repo_get_org_failed", err, "org", address.Hex())
	}
	return row.toEntity()
}

func (r *Repository) UpdateOrg(ctx context.Context, record entities.OrgRecord) error {
	result := r.db.WithContext(ctx).
		Model(&orgModel{}).
		Where("address = ?", record.Address.Hex()).
		Updates(map[string]any{
			"allocation_ppm": record.AllocationPpm,
			"active":         record.Active,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("weight_registry_repo_update_org_failed", result.Error, "org", record.Address.Hex())
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrgNotFound
	}
	return nil
}

func (r *Repository) DeleteOrg(ctx context.Context, address identity.Address) error {
	result := r.db.WithContext(ctx).Where("address = ?", address.Hex()).Delete(&orgModel{})
	if result.Error != nil {
		return r.logError("weight_registry_repo_delete_org_failed", result.Error, "org", address.Hex())
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOrgNotFound
	}
	return nil
}

func (r *Repository) ListOrgs(ctx context.Context) ([]entities.OrgRecord, error) {
	var rows []orgModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, r.logError("weight_registry_repo_list_orgs_failed", err)
	}
	records := make([]entities.OrgRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func memberModelFromEntity(record entities.MemberRecord) memberModel {
	now := time.Now().UTC()
	return memberModel{
		Address:        record.Address.Hex(),
		JoinYear:       record.JoinYear,
		JoinMonth:      record.JoinMonth,
		PartTimeFactor: record.PartTimeFactor,
		MonthsOnBreak:  record.MonthsOnBreak,
		Active:         record.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (m memberModel) toEntity() (entities.MemberRecord, error) {
	address, err := identity.ParseAddress(m.Address)
	if err != nil {
		return entities.MemberRecord{}, err
	}
	return entities.MemberRecord{
		Address:        address,
		JoinYear:       m.JoinYear,
		JoinMonth:      m.JoinMonth,
		PartTimeFactor: m.PartTimeFactor,
		MonthsOnBreak:  m.MonthsOnBreak,
		Active:         m.Active,
	}, nil
}

func orgModelFromEntity(record entities.OrgRecord) orgModel {
	now := time.Now().UTC()
	return orgModel{
		Address:       record.Address.Hex(),
		AllocationPpm: record.AllocationPpm,
		Active:        record.Active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (m orgModel) toEntity() (entities.OrgRecord, error) {
	address, err := identity.ParseAddress(m.Address)
	if err != nil {
		return entities.OrgRecord{}, err
	}
	return entities.OrgRecord{
		Address:       address,
		AllocationPpm: m.AllocationPpm,
		Active:        m.Active,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "registry-core/weight-registry",
		"layer", "adapter-postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("weight registry repository operation failed", fields...)
	return err
}
