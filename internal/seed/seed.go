// Package seed 从 YAML 文件批量导入测验与题目
package seed

import (
	"context"
	"fmt"
	"os"
	"quiz_backend/internal/service"
	"quiz_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Option struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

type Question struct {
	Text    string   `yaml:"text"`
	Options []Option `yaml:"options"`
}

type Quiz struct {
	Title     string     `yaml:"title"`
	Questions []Question `yaml:"questions"`
}

type Document struct {
	Quizzes []Quiz `yaml:"quizzes"`
}

// Result 导入统计
type Result struct {
	Created   int
	Skipped   int
	Questions int
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &doc, nil
}

func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

type Importer struct {
	Quizzes   *service.QuizService
	Questions *service.QuestionService
}

func NewImporter(quizzes *service.QuizService, questions *service.QuestionService) *Importer {
	return &Importer{Quizzes: quizzes, Questions: questions}
}

// Import 按标题跳过已存在的测验，其余逐个创建并写入题目；
// 某个测验的题目无法写入时该测验不会保留
func (i *Importer) Import(ctx context.Context, creatorID string, doc *Document) (*Result, error) {
	existing, err := i.Quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]bool, len(existing))
	for _, q := range existing {
		titles[strings.ToLower(q.Title)] = true
	}

	res := &Result{}
	for _, item := range doc.Quizzes {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if titles[key] {
			res.Skipped++
			logger.Log.Info("seed quiz exists, skipped", zap.String("title", item.Title))
			continue
		}

		// 先校验题目，避免留下没有题目的测验
		reqs := toRequests(item.Questions)
		if len(reqs) > 0 {
			if err := service.ValidateQuestions(reqs); err != nil {
				return res, fmt.Errorf("quiz %q questions: %w", item.Title, err)
			}
		}

		quiz, err := i.Quizzes.CreateQuiz(ctx, creatorID, service.CreateQuizReq{Title: item.Title})
		if err != nil {
			return res, fmt.Errorf("quiz %q: %w", item.Title, err)
		}

		if len(reqs) > 0 {
			created, err := i.Questions.AddQuestions(ctx, quiz.ID, reqs)
			if err != nil {
				// 题目写入失败时删除刚建的测验，下次导入可重试
				if _, delErr := i.Quizzes.DeleteQuiz(ctx, quiz.ID, creatorID); delErr != nil {
					logger.Log.Error("seed rollback failed", zap.String("quizId", quiz.ID), zap.Error(delErr))
				}
				return res, fmt.Errorf("quiz %q questions: %w", item.Title, err)
			}
			res.Questions += len(created)
		}

		titles[key] = true
		res.Created++
	}

	return res, nil
}

func toRequests(questions []Question) []service.QuestionReq {
	reqs := make([]service.QuestionReq, 0, len(questions))
	for _, q := range questions {
		opts := make([]service.OptionReq, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, service.OptionReq{Text: o.Text, IsCorrect: o.Correct})
		}
		reqs = append(reqs, service.QuestionReq{Text: q.Text, Options: opts})
	}
	return reqs
}
