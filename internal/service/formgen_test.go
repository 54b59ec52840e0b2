package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

func newFormGenService(t *testing.T) FormGenService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.FormQuestion{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return NewFormGenService(repository.NewQuestionRepository(db), nil)
}

func TestFormGenEnsureDefaults(t *testing.T) {
	svc := newFormGenService(t)
	ctx := context.Background()

	if err := svc.EnsureDefaults(ctx); err != nil {
		t.Fatalf("EnsureDefaults error: %v", err)
	}
	questions, err := svc.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 seeded questions, got %d", len(questions))
	}
	if questions[0].Text != "Question 1" || questions[1].Text != "Question 2" {
		t.Fatalf("unexpected seeded questions: %+v", questions)
	}

	// 已有问题时不再重复预置
	if err := svc.EnsureDefaults(ctx); err != nil {
		t.Fatalf("second EnsureDefaults error: %v", err)
	}
	questions, _ = svc.ListQuestions(ctx)
	if len(questions) != 2 {
		t.Fatalf("EnsureDefaults must be idempotent, got %d questions", len(questions))
	}
}

func TestFormGenQuestionCRUD(t *testing.T) {
	svc := newFormGenService(t)
	ctx := context.Background()

	q, err := svc.AddQuestion(ctx, QuestionRequest{Text: "Shift location?", SortOrder: 1})
	if err != nil {
		t.Fatalf("AddQuestion error: %v", err)
	}
	if q.ID == 0 {
		t.Fatalf("expected assigned question id")
	}

	updated, err := svc.UpdateQuestion(ctx, q.ID, QuestionRequest{Text: "Business location?", SortOrder: 2})
	if err != nil {
		t.Fatalf("UpdateQuestion error: %v", err)
	}
	if updated.Text != "Business location?" || updated.SortOrder != 2 {
		t.Fatalf("unexpected updated question: %+v", updated)
	}

	if err := svc.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuestion error: %v", err)
	}
	questions, err := svc.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions error: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected no questions after delete, got %d", len(questions))
	}
}

func TestFormGenQuestionNotFound(t *testing.T) {
	svc := newFormGenService(t)
	ctx := context.Background()

	if _, err := svc.UpdateQuestion(ctx, 999, QuestionRequest{Text: "x"}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if err := svc.DeleteQuestion(ctx, 999); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}
