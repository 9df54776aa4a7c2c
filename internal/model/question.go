package model

import "gorm.io/datatypes"

// QuestionOption 嵌入在题目中的选项
// swagger:model QuestionOption
type QuestionOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// swagger:model Question
type Question struct {
	Record
	QuizID   string                              `gorm:"size:36;index;not null" json:"quizId"`
	Text     string                              `gorm:"type:text;not null" json:"text"`
	Options  datatypes.JSONSlice[QuestionOption] `json:"options"`
	Position int                                 `gorm:"default:0" json:"position"` // 同批次内的顺序
}

func (Question) TableName() string {
	return "questions"
}

// FindOption 按选项ID查找
func (q *Question) FindOption(optionID string) (QuestionOption, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return QuestionOption{}, false
}

// PublicOption 面向答题用户的选项，不含正确性标记
type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PublicQuestion 面向答题用户的题目投影
// swagger:model PublicQuestion
type PublicQuestion struct {
	ID      string         `json:"id"`
	QuizID  string         `json:"quizId"`
	Text    string         `json:"text"`
	Options []PublicOption `json:"options"`
}

func (q *Question) Public() PublicQuestion {
	options := make([]PublicOption, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, PublicOption{ID: opt.ID, Text: opt.Text})
	}
	return PublicQuestion{
		ID:      q.ID,
		QuizID:  q.QuizID,
		Text:    q.Text,
		Options: options,
	}
}
