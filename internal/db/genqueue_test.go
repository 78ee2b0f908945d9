//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/testutil/testdb"
)

func genRequest() models.GenRequest {
	return models.GenRequest{
		ID:           uuid.NewString(),
		UserID:       "u1",
		UserEmail:    "t@example.com",
		BookTitle:    "Hatchet",
		Chapter:      "3",
		NumQuestions: 8,
		Difficulty:   models.DifficultyMedium,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestGenQueue_ClaimAndConsume(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	req := genRequest()
	if err := db.EnqueueGenRequest(ctx, h.DB, req); err != nil {
		t.Fatal(err)
	}

	claimed, err := db.ClaimGenRequest(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if claimed == nil || claimed.ID != req.ID {
		t.Fatalf("получили %#v", claimed)
	}
	// заявка помечена processing — второй слушатель её не возьмёт
	second, err := db.ClaimGenRequest(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if second != nil {
		t.Fatalf("заявка выдана дважды: %#v", second)
	}

	res := models.GenResult{
		RequestID: req.ID,
		Status:    models.GenCompleted,
		Quiz: &models.Quiz{Title: "Hatchet: Chapter 3", Questions: []models.Question{
			{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2},
		}},
		InputTokens:  100,
		OutputTokens: 400,
		Timestamp:    time.Now().UTC(),
	}
	if err := db.WriteGenResult(ctx, h.DB, res); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetGenResult(ctx, h.DB, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != models.GenCompleted || got.Quiz == nil {
		t.Fatalf("получили %#v", got)
	}
	if got.Quiz.Questions[0].CorrectAnswer != 2 {
		t.Fatal("квиз не пережил сериализацию")
	}

	// исход потребляется — второй запрос видит пусто
	if err := db.ConsumeGenResult(ctx, h.DB, req.ID); err != nil {
		t.Fatal(err)
	}
	gone, err := db.GetGenResult(ctx, h.DB, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Fatalf("исход должен быть удалён, получили %#v", gone)
	}
}

func TestGenQueue_ErrorResult(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	req := genRequest()
	if err := db.EnqueueGenRequest(ctx, h.DB, req); err != nil {
		t.Fatal(err)
	}
	res := models.GenResult{
		RequestID: req.ID,
		Status:    models.GenError,
		Error:     "Daily limit of 5 quiz generations reached",
		Timestamp: time.Now().UTC(),
	}
	if err := db.WriteGenResult(ctx, h.DB, res); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetGenResult(ctx, h.DB, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != models.GenError || got.Quiz != nil || got.Error == "" {
		t.Fatalf("получили %#v", got)
	}
}

func TestPurgeStaleGenRows(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	old := genRequest()
	old.CreatedAt = time.Now().Add(-2 * time.Hour).UTC()
	fresh := genRequest()
	if err := db.EnqueueGenRequest(ctx, h.DB, old); err != nil {
		t.Fatal(err)
	}
	if err := db.EnqueueGenRequest(ctx, h.DB, fresh); err != nil {
		t.Fatal(err)
	}

	n, err := db.PurgeStaleGenRows(ctx, h.DB, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("удалено %d строк, ожидали 1", n)
	}
	left, err := db.ClaimGenRequest(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if left == nil || left.ID != fresh.ID {
		t.Fatalf("свежая заявка должна остаться: %#v", left)
	}
}
