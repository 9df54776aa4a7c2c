package util

const (
	MinOptionsPerQuestion  = 2
	MaxQuestionsPerRequest = 200
	MaxAnswersPerSubmit    = 1000
)
