package database

import (
	"fmt"
	"fordrax_backend/internal/config"
	"fordrax_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Org{},
		&model.OrgMember{},
		&model.TrainingModule{},
		&model.Question{},
		&model.QuestionChoice{},
		&model.Evaluation{},
		&model.Certificate{},
		&model.EmailJob{},
		&model.Campaign{},
		&model.CampaignAssignment{},
		&model.PhishingSimulation{},
		&model.PhishingEvent{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
