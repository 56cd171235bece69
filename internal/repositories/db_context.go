package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tlemaire/jobmarket/internal/entities"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.Source{})
	if err != nil {
		return fmt.Errorf("failed to migrate Source entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Company{})
	if err != nil {
		return fmt.Errorf("failed to migrate Company entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Location{})
	if err != nil {
		return fmt.Errorf("failed to migrate Location entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.JobOffer{})
	if err != nil {
		return fmt.Errorf("failed to migrate JobOffer entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.AdzunaOffer{}, entities.FranceTravailOffer{}, entities.JSearchOffer{})
	if err != nil {
		return fmt.Errorf("failed to migrate source extension entities: %w", err)
	}

	return nil
}

func (c *DbContext) Ping() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}
	return db.Ping()
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
