package model

// swagger:model Quiz
type Quiz struct {
	Record
	Title     string `gorm:"size:255;not null" json:"title"`
	CreatedBy string `gorm:"size:36;index" json:"createdBy,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
