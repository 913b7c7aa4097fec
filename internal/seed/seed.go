package seed

import (
	"context"
	"fmt"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"gorm.io/gorm"
)

// devParts is the demo inventory loaded into an empty dev database.
var devParts = []models.Part{
	{ID: "CONN-001", Name: "Connector, 3 pos", Quantity: 150, Location: models.Location{Rack: "TC6", Row: "E", Bin: "3"}},
	{ID: "CONN-002", Name: "Connector, 4 pos", Quantity: 0, Location: models.Location{Rack: "TC6", Row: "E", Bin: "4"}},
	{ID: "TERM-045", Name: "Terminal, crimp", Quantity: 5000, Location: models.Location{Rack: "TC6", Row: "F", Bin: "2"}},
	{ID: "HSG-220", Name: "Housing, 20 pin", Quantity: 4, Location: models.Location{Rack: "TC6", Row: "F", Bin: "3"}},
	{ID: "WHR-001", Name: "Wire harness, red", Quantity: 300, Location: models.Location{Rack: "TC6", Row: "H", Bin: "1"}},
	{ID: "WHR-002", Name: "Wire harness, blue", Quantity: 12, Location: models.Location{Rack: "TC6", Row: "H", Bin: "2"}},
	{ID: "OLD-001", Name: "Legacy bracket", Quantity: 50, Location: models.Location{Rack: "A1", Row: "2", Bin: "10"}},
}

// devUsers is the demo operator roster.
var devUsers = []models.User{
	{ID: "MOLEX_OPR_1", Name: "Nagendra"},
	{ID: "MOLEX_OPR_2", Name: "Prakash"},
	{ID: "MOLEX_OPR_3", Name: "Anil"},
	{ID: "MOLEX_OPR_4", Name: "Shivu"},
	{ID: "MOLEX_OPR_5", Name: "Rakshita"},
	{ID: "MOLEX_OPR_6", Name: "Siddu"},
	{ID: "MOLEX_OPR_7", Name: "Narayan"},
	{ID: "MOLEX_OPR_8", Name: "Anil.V"},
	{ID: "MOLEX_OPR_9", Name: "Abinandan"},
}

// Run loads the demo dataset into empty tables. Tables holding data are left
// alone, so a restart never clobbers real stock counts.
func Run(ctx context.Context, db *gorm.DB, logg *logger.Logger) error {
	if db == nil {
		return fmt.Errorf("db required")
	}

	seeded := false

	var partCount int64
	if err := db.WithContext(ctx).Model(&models.Part{}).Count(&partCount).Error; err != nil {
		return fmt.Errorf("count parts: %w", err)
	}
	if partCount == 0 {
		parts := make([]models.Part, len(devParts))
		copy(parts, devParts)
		if err := db.WithContext(ctx).Create(&parts).Error; err != nil {
			return fmt.Errorf("seed parts: %w", err)
		}
		seeded = true
	}

	var userCount int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		roster := make([]models.User, len(devUsers))
		copy(roster, devUsers)
		if err := db.WithContext(ctx).Create(&roster).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		seeded = true
	}

	if seeded && logg != nil {
		logg.Info(ctx, "dev dataset seeded")
	}
	return nil
}
