package service

import (
	"context"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/testutil"
	"quiz_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(id string, correct string, options ...string) model.Question {
	q := model.Question{Text: "question " + id}
	q.ID = id
	for _, o := range options {
		q.Options = append(q.Options, model.QuestionOption{ID: o, Text: o, IsCorrect: o == correct})
	}
	return q
}

func TestScoreAnswers(t *testing.T) {
	questions := []model.Question{
		question("q1", "a", "a", "b"),
		question("q2", "d", "c", "d"),
	}

	tests := []struct {
		name    string
		answers []model.SubmittedAnswer
		want    int
	}{
		{
			name:    "one right one wrong",
			answers: []model.SubmittedAnswer{{QuestionID: "q1", OptionID: "a"}, {QuestionID: "q2", OptionID: "c"}},
			want:    1,
		},
		{
			name:    "unknown question ignored",
			answers: []model.SubmittedAnswer{{QuestionID: "zzz", OptionID: "a"}, {QuestionID: "q2", OptionID: "d"}},
			want:    1,
		},
		{
			name:    "unknown option ignored",
			answers: []model.SubmittedAnswer{{QuestionID: "q1", OptionID: "nope"}},
			want:    0,
		},
		{
			name: "duplicate answers count once",
			answers: []model.SubmittedAnswer{
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q1", OptionID: "a"},
			},
			want: 1,
		},
		{
			name:    "first answer for a question wins",
			answers: []model.SubmittedAnswer{{QuestionID: "q1", OptionID: "b"}, {QuestionID: "q1", OptionID: "a"}},
			want:    0,
		},
		{
			name:    "all correct",
			answers: []model.SubmittedAnswer{{QuestionID: "q2", OptionID: "d"}, {QuestionID: "q1", OptionID: "a"}},
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreAnswers(questions, tt.answers)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, len(questions))
		})
	}
}

func TestScoreAnswersBoundedForAdversarialInput(t *testing.T) {
	questions := []model.Question{question("q1", "a", "a", "b")}

	answers := make([]model.SubmittedAnswer, 0, 500)
	for i := 0; i < 500; i++ {
		answers = append(answers, model.SubmittedAnswer{QuestionID: "q1", OptionID: "a"})
		answers = append(answers, model.SubmittedAnswer{QuestionID: fmt.Sprintf("x%d", i), OptionID: "a"})
	}

	assert.Equal(t, 1, ScoreAnswers(questions, answers))
}

func seedQuiz(t *testing.T, s *services) (*model.Quiz, *model.Question, *model.Question) {
	t.Helper()
	quiz := testutil.CreateQuiz(t, s.db, "Capitals", "")
	q1 := testutil.CreateQuestion(t, s.db, quiz.ID, "Capital of France?", 0, "Paris", "Rome")
	q2 := testutil.CreateQuestion(t, s.db, quiz.ID, "Capital of Italy?", 1, "Paris", "Rome")
	return quiz, q1, q2
}

func TestSubmitQuizScoresAndPersists(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "student", model.RoleUser)
	quiz, q1, q2 := seedQuiz(t, s)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.submission.now = func() time.Time { return fixed }

	attempt, err := s.submission.SubmitQuiz(ctx, quiz.ID, user.ID, []model.SubmittedAnswer{
		{QuestionID: q1.ID, OptionID: q1.Options[0].ID},
		{QuestionID: q2.ID, OptionID: q2.Options[0].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Score)
	assert.Equal(t, 2, attempt.TotalQuestions)
	assert.Equal(t, user.ID, attempt.UserID)
	assert.True(t, attempt.SubmittedAt.Equal(fixed))
	assert.Len(t, attempt.SubmittedAnswers, 2)
}

func TestSubmitQuizIgnoresUnknownQuestion(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "student", model.RoleUser)
	quiz, _, q2 := seedQuiz(t, s)

	attempt, err := s.submission.SubmitQuiz(ctx, quiz.ID, user.ID, []model.SubmittedAnswer{
		{QuestionID: model.NewID(), OptionID: model.NewID()},
		{QuestionID: q2.ID, OptionID: q2.Options[1].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Score)
	assert.Equal(t, 2, attempt.TotalQuestions)
}

func TestResubmitOverwritesAttempt(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "student", model.RoleUser)
	quiz, q1, q2 := seedQuiz(t, s)

	first, err := s.submission.SubmitQuiz(ctx, quiz.ID, user.ID, []model.SubmittedAnswer{
		{QuestionID: q1.ID, OptionID: q1.Options[0].ID},
		{QuestionID: q2.ID, OptionID: q2.Options[1].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Score)

	second, err := s.submission.SubmitQuiz(ctx, quiz.ID, user.ID, []model.SubmittedAnswer{
		{QuestionID: q1.ID, OptionID: q1.Options[1].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 0, second.Score)

	attempts, err := s.submission.ListAttempts(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 0, attempts[0].Score)

	mine, err := s.submission.GetAttempt(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, mine.ID)
}

func TestSubmitQuizValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "student", model.RoleUser)
	quiz, q1, _ := seedQuiz(t, s)
	empty := testutil.CreateQuiz(t, s.db, "Empty", "")
	answer := []model.SubmittedAnswer{{QuestionID: q1.ID, OptionID: q1.Options[0].ID}}

	tooMany := make([]model.SubmittedAnswer, util.MaxAnswersPerSubmit+1)

	tests := []struct {
		name    string
		quizID  string
		userID  string
		answers []model.SubmittedAnswer
		status  int
		message string
	}{
		{"no user", quiz.ID, "", answer, 401, util.ErrUnauthorized.Message},
		// 未登录优先于其他校验
		{"no user and no answers", model.NewID(), "", nil, 401, util.ErrUnauthorized.Message},
		{"no answers", quiz.ID, user.ID, nil, 400, "Answers are required and should be a non-empty array"},
		{"empty answers before quiz lookup", model.NewID(), user.ID, []model.SubmittedAnswer{}, 400, "Answers are required and should be a non-empty array"},
		{"too many answers", quiz.ID, user.ID, tooMany, 400, fmt.Sprintf("At most %d answers can be submitted", util.MaxAnswersPerSubmit)},
		{"unknown quiz", model.NewID(), user.ID, answer, 404, util.ErrQuizNotFound.Message},
		{"malformed quiz id", "not-a-uuid", user.ID, answer, 404, util.ErrQuizNotFound.Message},
		{"quiz without questions", empty.ID, user.ID, answer, 404, util.ErrNoQuestions.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.submission.SubmitQuiz(ctx, tt.quizID, tt.userID, tt.answers)
			var appErr *util.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	count, err := s.quiz.AttemptRepo.CountByQuiz(ctx, empty.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetAttemptNotFound(t *testing.T) {
	s := newServices(t)
	user := testutil.CreateUser(t, s.db, "student", model.RoleUser)
	quiz, _, _ := seedQuiz(t, s)

	_, err := s.submission.GetAttempt(context.Background(), quiz.ID, user.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)

	_, err = s.submission.ListAttempts(context.Background(), model.NewID())
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}
