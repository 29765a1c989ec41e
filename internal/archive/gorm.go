package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/utils"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN keeps the archive in a shared in-memory SQLite database.
const MemoryDSN = "file::memory:?cache=shared"

// Design is the archived row of one finished search.
type Design struct {
	ID          uint           `gorm:"primarykey" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	SearchID    string         `gorm:"size:64;uniqueIndex" json:"search_id"`
	LaunchMass  float64        `gorm:"index" json:"launch_mass"`
	Fraction    float64        `json:"fraction"`
	StageCount  int            `json:"stage_count"`
	Samples     int            `json:"samples"`
	Feasible    int            `json:"feasible"`
	Sampler     string         `gorm:"size:32" json:"sampler"`
	Requirement datatypes.JSON `json:"requirement"`
	Stages      datatypes.JSON `json:"stages"`
}

// TableName overrides the table name used by Design to `designs`.
func (Design) TableName() string {
	return "designs"
}

// StageList decodes the archived stages, topmost first.
func (d Design) StageList() ([]models.Stage, error) {
	var stages []models.Stage
	if len(d.Stages) == 0 {
		return stages, nil
	}
	if err := json.Unmarshal(d.Stages, &stages); err != nil {
		return nil, fmt.Errorf("decode stages of %s: %w", d.SearchID, err)
	}
	return stages, nil
}

// VehicleRequirement decodes the archived requirement.
func (d Design) VehicleRequirement() (models.VehicleRequirement, error) {
	var vr models.VehicleRequirement
	if err := json.Unmarshal(d.Requirement, &vr); err != nil {
		return vr, fmt.Errorf("decode requirement of %s: %w", d.SearchID, err)
	}
	return vr, nil
}

func newDesign(rec Record) (*Design, error) {
	if rec.Result == nil {
		return nil, fmt.Errorf("search %s has no result", rec.SearchID)
	}
	req, err := json.Marshal(rec.Requirement)
	if err != nil {
		return nil, fmt.Errorf("encode requirement: %w", err)
	}
	stages, err := json.Marshal(rec.Result.Stages)
	if err != nil {
		return nil, fmt.Errorf("encode stages: %w", err)
	}
	return &Design{
		CreatedAt:   rec.timestamp(),
		SearchID:    rec.SearchID,
		LaunchMass:  rec.Result.LaunchMass,
		Fraction:    rec.Result.Fraction,
		StageCount:  len(rec.Result.Stages),
		Samples:     rec.Result.Samples,
		Feasible:    rec.Result.Feasible,
		Sampler:     rec.Result.Sampler,
		Requirement: datatypes.JSON(req),
		Stages:      datatypes.JSON(stages),
	}, nil
}

// GormSink stores designs through gorm in SQLite or Postgres.
type GormSink struct {
	db *gorm.DB
}

// IsPostgresDSN reports whether dsn addresses a Postgres server rather than a SQLite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func dialector(dsn string) gorm.Dialector {
	if IsPostgresDSN(dsn) {
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	}
	if dsn == "" {
		dsn = MemoryDSN
	}
	return sqlite.Open(dsn)
}

// Open connects to the archive database, retrying with exponential backoff,
// and migrates the schema. An empty dsn selects an in-memory SQLite database.
func Open(dsn string, attempts int) (*GormSink, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var db *gorm.DB
	backoff := utils.NewExponentialBackoff(200*time.Millisecond, 5*time.Second, 2)
	err := utils.Retry(attempts, backoff, func() error {
		var err error
		db, err = gorm.Open(dialector(dsn), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			logger.Warn("archive connect failed", "backend", backendName(dsn), "error", err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("open archive (%s): %w", backendName(dsn), err)
	}

	if !IsPostgresDSN(dsn) {
		for _, pragma := range []string{
			"PRAGMA synchronous = NORMAL;",
			"PRAGMA temp_store = MEMORY;",
		} {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("error setting PRAGMA: %w", err)
			}
		}
	}

	sink, err := NewGormSink(db)
	if err != nil {
		return nil, err
	}
	logger.Info("archive ready", "backend", backendName(dsn))
	return sink, nil
}

func backendName(dsn string) string {
	if IsPostgresDSN(dsn) {
		return "postgres"
	}
	return "sqlite"
}

// NewGormSink wraps an open gorm connection and migrates the designs table.
func NewGormSink(db *gorm.DB) (*GormSink, error) {
	if err := db.AutoMigrate(&Design{}); err != nil {
		return nil, fmt.Errorf("migrate designs: %w", err)
	}
	return &GormSink{db: db}, nil
}

func (s *GormSink) Save(ctx context.Context, rec Record) error {
	d, err := newDesign(rec)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("save design %s: %w", rec.SearchID, err)
	}
	return nil
}

// Get returns the design archived for searchID.
func (s *GormSink) Get(ctx context.Context, searchID string) (*Design, error) {
	var d Design
	err := s.db.WithContext(ctx).Where("search_id = ?", searchID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, searchID)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns up to limit designs, lightest first.
func (s *GormSink) List(ctx context.Context, limit int) ([]Design, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Design
	err := s.db.WithContext(ctx).
		Order("launch_mass asc").
		Order("id asc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
