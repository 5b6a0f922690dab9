package services

import (
	"testing"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/testutil"

	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	catalog  *testutil.Catalog
	cfg      *config.Config
	tracker  *Tracker
	modules  *ModuleTestService
	entrance *EntranceService
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.OpenDB(t)
	return &testEnv{
		db:      db,
		catalog: testutil.NewCatalog(t, db),
		cfg: &config.Config{
			EntranceTestSize: 10,
			EntrancePerLevel: 2,
			PassThreshold:    70,
		},
	}
}

// start wires the services once the entrance module id is known.
func (e *testEnv) start(entranceModuleID uint) *testEnv {
	e.cfg.EntranceModuleID = entranceModuleID
	logger := testutil.Logger()
	e.tracker = NewTracker(e.db, e.cfg.PassThreshold, entranceModuleID, logger)
	e.modules = NewModuleTestService(e.db, e.tracker, e.cfg, logger)
	e.entrance = NewEntranceService(e.db, e.cfg, logger)
	return e
}

// answers answers the first correct questions right and the rest wrong.
func answers(questions []models.Question, correct int) []Answer {
	out := make([]Answer, len(questions))
	for i, q := range questions {
		option := testutil.WrongOption(q)
		if i < correct {
			option = testutil.CorrectOption(q)
		}
		out[i] = Answer{QuestionID: q.ID, SelectedOptionID: option}
	}
	return out
}

func (e *testEnv) setLevel(t *testing.T, user *models.User, levelID uint) {
	t.Helper()
	if err := e.db.Model(user).Update("level_id", levelID).Error; err != nil {
		t.Fatal(err)
	}
}
