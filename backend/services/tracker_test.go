package services

import (
	"context"
	"sync"
	"testing"

	"lms/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitModuleTestOverwritesLatestAttempt(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module, test := e.catalog.ModuleWithTest("Grammar", level.ID, 4)
	user := e.catalog.User("student@example.com")
	e.start(9999)
	ctx := context.Background()

	first, err := e.modules.SubmitModuleTest(ctx, user.ID, module.ID, answers(test.Questions, 4))
	require.NoError(t, err)
	assert.True(t, first.IsPassed)
	assert.Equal(t, 1, first.Attempts)
	assert.Equal(t, 100.0, first.ScorePercent)

	// A worse second attempt flips the test back to failed.
	second, err := e.modules.SubmitModuleTest(ctx, user.ID, module.ID, answers(test.Questions, 1))
	require.NoError(t, err)
	assert.False(t, second.IsPassed)
	assert.Equal(t, 2, second.Attempts)
	assert.Equal(t, 1, second.CorrectCount)
	assert.Equal(t, 4, second.TotalQuestions)
	assert.Equal(t, 25.0, second.ScorePercent)

	var rows []models.TestProgress
	require.NoError(t, e.db.Where("user_id = ?", user.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Attempts)
	assert.Equal(t, 1, rows[0].CorrectAnswers)
	assert.False(t, rows[0].IsPassed)
}

func TestSubmitModuleTestPassThreshold(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module, test := e.catalog.ModuleWithTest("Reading", level.ID, 10)
	user := e.catalog.User("student@example.com")
	e.start(9999)
	ctx := context.Background()

	got, err := e.modules.SubmitModuleTest(ctx, user.ID, module.ID, answers(test.Questions, 7))
	require.NoError(t, err)
	assert.True(t, got.IsPassed, "70%% passes")

	got, err = e.modules.SubmitModuleTest(ctx, user.ID, module.ID, answers(test.Questions, 6))
	require.NoError(t, err)
	assert.False(t, got.IsPassed, "60%% fails")
}

func TestSubmitModuleTestSkipsUnknownQuestions(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module, test := e.catalog.ModuleWithTest("Listening", level.ID, 2)
	_, other := e.catalog.ModuleWithTest("Other", level.ID, 1)
	user := e.catalog.User("student@example.com")
	e.start(9999)

	submitted := append(answers(test.Questions, 2),
		Answer{QuestionID: 424242, SelectedOptionID: 1},
		Answer{QuestionID: other.Questions[0].ID, SelectedOptionID: *other.Questions[0].CorrectOptionID},
	)
	got, err := e.modules.SubmitModuleTest(context.Background(), user.ID, module.ID, submitted)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CorrectCount)
	assert.Equal(t, 2, got.TotalQuestions)
	assert.True(t, got.IsPassed)
}

func TestSubmitModuleTestCountsUnauthoredQuestionAsWrong(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module := e.catalog.Module("Draft", level.ID)
	topic := e.catalog.Topic("Draft topic", module.ID)
	questions := []models.Question{
		e.catalog.Question("q1", topic.ID, 3, 0),
		e.catalog.Question("q2", topic.ID, 3, 0),
		e.catalog.Question("q3", topic.ID, 3, 0),
		e.catalog.Question("q4", topic.ID, 3, -1),
	}
	e.catalog.Test("Draft test", module.ID, questions...)
	user := e.catalog.User("student@example.com")
	e.start(9999)

	submitted := answers(questions[:3], 3)
	submitted = append(submitted, Answer{QuestionID: questions[3].ID, SelectedOptionID: questions[3].Options[0].ID})

	got, err := e.modules.SubmitModuleTest(context.Background(), user.ID, module.ID, submitted)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CorrectCount)
	assert.Equal(t, 4, got.TotalQuestions)
	assert.Equal(t, 75.0, got.ScorePercent)
	assert.True(t, got.IsPassed)
}

func TestSubmitModuleTestNothingResolvable(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module, _ := e.catalog.ModuleWithTest("Writing", level.ID, 2)
	user := e.catalog.User("student@example.com")
	e.start(9999)

	got, err := e.modules.SubmitModuleTest(context.Background(), user.ID, module.ID, []Answer{{QuestionID: 777, SelectedOptionID: 1}})
	require.NoError(t, err)
	assert.Zero(t, got.TotalQuestions)
	assert.Zero(t, got.ScorePercent)
	assert.False(t, got.IsPassed)
	assert.Equal(t, 1, got.Attempts)
}

func TestSubmitModuleTestErrors(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module, test := e.catalog.ModuleWithTest("Grammar", level.ID, 2)
	bare := e.catalog.Module("No test", level.ID)
	user := e.catalog.User("student@example.com")
	e.start(9999)
	ctx := context.Background()

	_, err := e.modules.SubmitModuleTest(ctx, user.ID, module.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.modules.SubmitModuleTest(ctx, user.ID, bare.ID, answers(test.Questions, 1))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.modules.SubmitModuleTest(ctx, 31337, module.ID, answers(test.Questions, 1))
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, e.db.Model(&models.TestProgress{}).Count(&count).Error)
	assert.Zero(t, count, "rejected submissions must not write progress")
}

func TestCourseAggregation(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	var modules []models.Module
	var tests []models.Test
	for _, name := range []string{"A", "B", "C", "D"} {
		m, tt := e.catalog.ModuleWithTest(name, level.ID, 2)
		modules = append(modules, m)
		tests = append(tests, tt)
	}
	user := e.catalog.User("student@example.com")
	e.start(9999)
	ctx := context.Background()

	var got ModuleTestResult
	var err error
	for i := 0; i < 2; i++ {
		got, err = e.modules.SubmitModuleTest(ctx, user.ID, modules[i].ID, answers(tests[i].Questions, 2))
		require.NoError(t, err)
	}
	assert.Equal(t, 50.0, got.CompletionPercentage)
	assert.False(t, got.IsCompleteCourse)

	for i := 2; i < 4; i++ {
		got, err = e.modules.SubmitModuleTest(ctx, user.ID, modules[i].ID, answers(tests[i].Questions, 2))
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0, got.CompletionPercentage)
	assert.True(t, got.IsCompleteCourse)

	var course models.CourseProgress
	require.NoError(t, e.db.Where("user_id = ?", user.ID).First(&course).Error)
	assert.Equal(t, 4, course.PassedTests)
	assert.True(t, course.IsComplete)

	var rows int64
	require.NoError(t, e.db.Model(&models.CourseProgress{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestCourseAggregationIgnoresEntranceTest(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	entrance, _ := e.catalog.ModuleWithTest("Entrance", level.ID, 3)
	module, test := e.catalog.ModuleWithTest("Only", level.ID, 2)
	user := e.catalog.User("student@example.com")
	e.start(entrance.ID)

	got, err := e.modules.SubmitModuleTest(context.Background(), user.ID, module.ID, answers(test.Questions, 2))
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.CompletionPercentage)

	_, err = e.modules.SubmitModuleTest(context.Background(), user.ID, entrance.ID, answers(test.Questions, 2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromotionFollowsRank(t *testing.T) {
	e := newTestEnv(t)
	// created out of rank order so ids and ranks disagree
	top := e.catalog.Level("Advanced", 3)
	low := e.catalog.Level("Beginner", 1)
	mid := e.catalog.Level("Intermediate", 2)

	m1, t1 := e.catalog.ModuleWithTest("Low one", low.ID, 2)
	m2, t2 := e.catalog.ModuleWithTest("Low two", low.ID, 2)
	midModule, _ := e.catalog.ModuleWithTest("Mid one", mid.ID, 2)
	user := e.catalog.User("student@example.com")
	e.setLevel(t, &user, low.ID)
	e.start(9999)
	ctx := context.Background()

	got, err := e.modules.SubmitModuleTest(ctx, user.ID, m1.ID, answers(t1.Questions, 2))
	require.NoError(t, err)
	assert.Nil(t, got.PromotedTo, "one test at the level is still open")

	got, err = e.modules.SubmitModuleTest(ctx, user.ID, m2.ID, answers(t2.Questions, 2))
	require.NoError(t, err)
	require.NotNil(t, got.PromotedTo)
	assert.Equal(t, mid.ID, got.PromotedTo.ID)

	var stored models.User
	require.NoError(t, e.db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.LevelID)
	assert.Equal(t, mid.ID, *stored.LevelID)
	assert.NotEqual(t, top.ID, *stored.LevelID)

	var link models.UserModule
	require.NoError(t, e.db.Where("user_id = ? AND module_id = ?", user.ID, midModule.ID).First(&link).Error)
}

func TestNoPromotionPastTopLevel(t *testing.T) {
	e := newTestEnv(t)
	top := e.catalog.Level("Advanced", 1)
	module, test := e.catalog.ModuleWithTest("Final", top.ID, 2)
	user := e.catalog.User("student@example.com")
	e.setLevel(t, &user, top.ID)
	e.start(9999)

	got, err := e.modules.SubmitModuleTest(context.Background(), user.ID, module.ID, answers(test.Questions, 2))
	require.NoError(t, err)
	assert.Nil(t, got.PromotedTo)

	var stored models.User
	require.NoError(t, e.db.First(&stored, user.ID).Error)
	assert.Equal(t, top.ID, *stored.LevelID)
}

// The test database has a single connection, so the pool already serializes
// the two submissions. This covers the upsert path only; the row lock matters
// on postgres.
func TestConcurrentSubmissionsSerialize(t *testing.T) {
	e := newTestEnv(t)
	level := e.catalog.Level("Beginner", 1)
	module, test := e.catalog.ModuleWithTest("Race", level.ID, 3)
	user := e.catalog.User("student@example.com")
	e.start(9999)
	ctx := context.Background()

	const workers = 2
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.modules.SubmitModuleTest(ctx, user.ID, module.ID, answers(test.Questions, 3))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var rows []models.TestProgress
	require.NoError(t, e.db.Where("user_id = ? AND test_id = ?", user.ID, test.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, workers, rows[0].Attempts)
}
