// Package testutil provides an in-memory database and catalog builders for
// package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"lms/backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated, private in-memory SQLite database. A single
// connection keeps writers serialized the way a row lock would.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Catalog seeds levels, modules, topics, questions and tests.
type Catalog struct {
	t  testing.TB
	DB *gorm.DB
}

func NewCatalog(t testing.TB, db *gorm.DB) *Catalog {
	return &Catalog{t: t, DB: db}
}

func (c *Catalog) Level(name string, rank int) models.Level {
	c.t.Helper()
	level := models.Level{Name: name, Rank: rank}
	require.NoError(c.t, c.DB.Create(&level).Error)
	return level
}

func (c *Catalog) Module(name string, levelID uint) models.Module {
	c.t.Helper()
	module := models.Module{Name: name, Description: name + " description", LevelID: levelID}
	require.NoError(c.t, c.DB.Omit("Level").Create(&module).Error)
	return module
}

func (c *Catalog) Topic(name string, moduleID uint) models.Topic {
	c.t.Helper()
	topic := models.Topic{Name: name, ModuleID: moduleID}
	require.NoError(c.t, c.DB.Create(&topic).Error)
	return topic
}

// Question creates a question with optionCount options; the option at
// correct becomes the answer (a negative index leaves it unset).
func (c *Catalog) Question(name string, topicID uint, optionCount, correct int) models.Question {
	c.t.Helper()
	options := make([]models.Option, optionCount)
	for i := range options {
		options[i] = models.Option{Value: fmt.Sprintf("%s option %d", name, i+1)}
	}
	if optionCount > 0 {
		require.NoError(c.t, c.DB.Create(&options).Error)
	}

	question := models.Question{Name: name, TopicID: topicID, Options: options}
	if correct >= 0 && correct < optionCount {
		question.CorrectOptionID = &options[correct].ID
	}
	require.NoError(c.t, c.DB.Omit("Topic", "Options.*").Create(&question).Error)
	return question
}

func (c *Catalog) Test(name string, moduleID uint, questions ...models.Question) models.Test {
	c.t.Helper()
	test := models.Test{Name: name, ModuleID: moduleID, Questions: questions}
	require.NoError(c.t, c.DB.Omit("Questions.*").Create(&test).Error)
	return test
}

func (c *Catalog) User(email string) models.User {
	c.t.Helper()
	user := models.User{Name: email, Email: email}
	require.NoError(c.t, c.DB.Create(&user).Error)
	return user
}

// ModuleWithTest builds a module at the level with one topic and n
// questions, each with three options and the first option correct.
func (c *Catalog) ModuleWithTest(name string, levelID uint, n int) (models.Module, models.Test) {
	c.t.Helper()
	module := c.Module(name, levelID)
	topic := c.Topic(name+" topic", module.ID)
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = c.Question(fmt.Sprintf("%s q%d", name, i+1), topic.ID, 3, 0)
	}
	return module, c.Test(name+" test", module.ID, questions...)
}

// CorrectOption returns the stored answer for a question.
func CorrectOption(q models.Question) uint {
	if q.CorrectOptionID == nil {
		return 0
	}
	return *q.CorrectOptionID
}

// WrongOption returns an option id that is not the answer.
func WrongOption(q models.Question) uint {
	for _, o := range q.Options {
		if q.CorrectOptionID == nil || o.ID != *q.CorrectOptionID {
			return o.ID
		}
	}
	return 0
}
