package model_test

import (
	"encoding/json"
	"quiz_backend/internal/model"
	"quiz_backend/internal/testutil"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicQuestionHidesCorrectness(t *testing.T) {
	q := model.Question{
		Record: model.Record{ID: "q1"},
		QuizID:   "quiz",
		Text:     "2 + 2 = ?",
		Options: []model.QuestionOption{
			{ID: "a", Text: "3", IsCorrect: false},
			{ID: "b", Text: "4", IsCorrect: true},
		},
	}

	data, err := json.Marshal(q.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "isCorrect")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	options := decoded["options"].([]any)
	require.Len(t, options, 2)
	for _, o := range options {
		assert.ElementsMatch(t, []string{"id", "text"}, keys(o.(map[string]any)))
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestFindOption(t *testing.T) {
	q := model.Question{Options: []model.QuestionOption{{ID: "a"}, {ID: "b", IsCorrect: true}}}

	opt, ok := q.FindOption("b")
	assert.True(t, ok)
	assert.True(t, opt.IsCorrect)

	_, ok = q.FindOption("zzz")
	assert.False(t, ok)
}

func TestUserPasswordHashedOnSave(t *testing.T) {
	db := testutil.NewTestDB(t)

	user := &model.User{
		FullName:      "Bob",
		Email:         "bob@example.com",
		Username:      "bob",
		PlainPassword: "s3cret",
	}
	require.NoError(t, db.Create(user).Error)

	assert.NotEqual(t, "s3cret", user.Password)
	assert.Empty(t, user.PlainPassword)
	assert.NotEmpty(t, user.ID)

	var stored model.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.CheckPassword("s3cret"))
	assert.False(t, stored.CheckPassword("wrong"))
	assert.Equal(t, model.RoleUser, stored.Role)

	// 未设置新密码时保存不会改变哈希
	hash := stored.Password
	stored.FullName = "Bobby"
	require.NoError(t, db.Save(&stored).Error)
	assert.Equal(t, hash, stored.Password)
}

func TestUserJSONOmitsSecrets(t *testing.T) {
	user := model.User{
		Username:     "carol",
		Password:     "hash",
		RefreshToken: "token",
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "token")
	assert.NotContains(t, string(data), "password")
}

func TestNormalizeIdentity(t *testing.T) {
	assert.Equal(t, "alice@example.com", model.NormalizeIdentity("  Alice@Example.com "))
}

func TestQuestionOptionsPersistAsJSON(t *testing.T) {
	db := testutil.NewTestDB(t)
	quiz := testutil.CreateQuiz(t, db, "Go basics", "")
	q := testutil.CreateQuestion(t, db, quiz.ID, "Zero value of int?", 1, "nil", "0", "undefined")

	var stored model.Question
	require.NoError(t, db.First(&stored, "id = ?", q.ID).Error)
	require.Len(t, stored.Options, 3)
	assert.Equal(t, "0", stored.Options[1].Text)
	assert.True(t, stored.Options[1].IsCorrect)
	assert.Equal(t, q.Options[1].ID, stored.Options[1].ID)
}

func TestRecordAssignsIDs(t *testing.T) {
	db := testutil.NewTestDB(t)

	generated := &model.Quiz{Title: "Generated"}
	require.NoError(t, db.Create(generated).Error)
	_, err := uuid.Parse(generated.ID)
	assert.NoError(t, err)

	preset := model.NewID()
	kept := &model.Quiz{Record: model.Record{ID: strings.ToUpper(preset)}, Title: "Preset"}
	require.NoError(t, db.Create(kept).Error)
	assert.Equal(t, preset, kept.ID)

	var stored model.Quiz
	require.NoError(t, db.First(&stored, "id = ?", preset).Error)
	assert.Equal(t, "Preset", stored.Title)
	assert.NotEqual(t, generated.ID, stored.ID)
}
