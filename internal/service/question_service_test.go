package service

import (
	"context"
	"encoding/json"
	"quiz_backend/internal/model"
	"quiz_backend/internal/testutil"
	"quiz_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddQuestions(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz := testutil.CreateQuiz(t, s.db, "Math", "")

	created, err := s.question.AddQuestions(ctx, quiz.ID, []QuestionReq{
		{Text: " 1+1? ", Options: []OptionReq{{Text: "2", IsCorrect: true}, {Text: "3"}}},
		{Text: "2*3?", Options: []OptionReq{{Text: "5"}, {Text: "6", IsCorrect: true}, {Text: "7"}}},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "1+1?", created[0].Text)
	assert.Equal(t, 1, created[1].Position)

	seen := map[string]bool{}
	for _, q := range created {
		for _, o := range q.Options {
			assert.True(t, util.IsValidID(o.ID))
			assert.False(t, seen[o.ID], "option ids must be unique")
			seen[o.ID] = true
		}
	}
	assert.Contains(t, s.cache.invalidated, quiz.ID)

	// 单题也返回列表
	single, err := s.question.AddQuestions(ctx, quiz.ID, []QuestionReq{
		{Text: "3-1?", Options: []OptionReq{{Text: "2", IsCorrect: true}, {Text: "1"}}},
	})
	require.NoError(t, err)
	assert.Len(t, single, 1)
}

func TestAddQuestionsValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz := testutil.CreateQuiz(t, s.db, "Math", "")
	valid := QuestionReq{Text: "ok", Options: []OptionReq{{Text: "a", IsCorrect: true}, {Text: "b"}}}

	tests := []struct {
		name   string
		quizID string
		reqs   []QuestionReq
		status int
		errs   int
	}{
		{"empty body", quiz.ID, nil, 400, 0},
		{"unknown quiz", model.NewID(), []QuestionReq{valid}, 404, 0},
		{"blank text", quiz.ID, []QuestionReq{{Text: " ", Options: valid.Options}}, 400, 1},
		{"one option", quiz.ID, []QuestionReq{{Text: "x", Options: []OptionReq{{Text: "a", IsCorrect: true}}}}, 400, 1},
		{"blank option", quiz.ID, []QuestionReq{{Text: "x", Options: []OptionReq{{Text: "a", IsCorrect: true}, {Text: ""}}}}, 400, 1},
		{"no correct option", quiz.ID, []QuestionReq{{Text: "x", Options: []OptionReq{{Text: "a"}, {Text: "b"}}}}, 400, 1},
		{"second item invalid", quiz.ID, []QuestionReq{valid, {Text: "", Options: nil}}, 400, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.question.AddQuestions(ctx, tt.quizID, tt.reqs)
			var appErr *util.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Len(t, appErr.Errors, tt.errs)
		})
	}

	// 校验失败时一条也不写入
	count, err := s.question.QuestionRepo.CountByQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListQuestionsHidesCorrectness(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz, q1, q2 := seedQuiz(t, s)

	public, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, q1.ID, public[0].ID)
	assert.Equal(t, q2.ID, public[1].ID)
	assert.Equal(t, q1.Options[0].ID, public[0].Options[0].ID)

	raw, err := json.Marshal(public)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isCorrect")

	cached, ok := s.cache.Get(ctx, quiz.ID)
	require.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestListQuestionsNotFoundKinds(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	empty := testutil.CreateQuiz(t, s.db, "Empty", "")

	_, err := s.question.ListQuestions(ctx, model.NewID())
	assert.ErrorIs(t, err, util.ErrQuizNotFound)

	_, err = s.question.ListQuestions(ctx, empty.ID)
	assert.ErrorIs(t, err, util.ErrNoQuestions)
}

func TestAddQuestionsRefreshesCachedList(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz, _, _ := seedQuiz(t, s)

	before, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	_, err = s.question.AddQuestions(ctx, quiz.ID, []QuestionReq{
		{Text: "Capital of Spain?", Options: []OptionReq{{Text: "Madrid", IsCorrect: true}, {Text: "Lisbon"}}},
	})
	require.NoError(t, err)

	after, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, after, 3)
}

func TestListQuestionsIgnoresStaleCacheAfterDelete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz, _, _ := seedQuiz(t, s)

	listed, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	_, err = s.quiz.DeleteQuiz(ctx, quiz.ID, "")
	require.NoError(t, err)

	// 并发读取在删除之后才写回缓存
	s.cache.Set(ctx, quiz.ID, listed)

	_, err = s.question.ListQuestions(ctx, quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestListQuestionsIgnoresShortCachedList(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz, _, _ := seedQuiz(t, s)

	before, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)

	_, err = s.question.AddQuestions(ctx, quiz.ID, []QuestionReq{
		{Text: "Capital of Spain?", Options: []OptionReq{{Text: "Madrid", IsCorrect: true}, {Text: "Lisbon"}}},
	})
	require.NoError(t, err)

	// 添加题目之后迟到的旧列表
	s.cache.Set(ctx, quiz.ID, before)

	after, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, after, 3)

	cached, ok := s.cache.Get(ctx, quiz.ID)
	require.True(t, ok)
	assert.Len(t, cached, 3)
}

func TestListQuestionsServesFreshCacheHit(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	quiz, _, _ := seedQuiz(t, s)

	_, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)

	// 命中时直接返回缓存内容
	marker := []model.PublicQuestion{{ID: "cached-1"}, {ID: "cached-2"}}
	s.cache.Set(ctx, quiz.ID, marker)

	got, err := s.question.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, marker, got)
}
