//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/db"
	"github.com/hearthside/homeschool-hub/internal/models"
	"github.com/hearthside/homeschool-hub/internal/testutil/testdb"
)

func TestReadingStatus_CycleOfThree(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	book := models.Book{ID: "hatchet", Title: "Hatchet", Author: "Gary Paulsen"}
	if err := db.AssignBook(ctx, h.DB, book, []string{"u1", "u2"}, "t@example.com"); err != nil {
		t.Fatal(err)
	}

	// три клика возвращают статус в исходное assigned
	want := []models.ReadingStatus{models.ReadingInProcess, models.ReadingCompleted, models.ReadingAssigned}
	for i, w := range want {
		got, err := db.CycleReadingStatus(ctx, h.DB, "u1", "hatchet")
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("клик %d: получили %q, ожидали %q", i+1, got, w)
		}
	}

	// статус соседа не трогается
	list, err := db.ListReading(ctx, h.DB, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != models.ReadingAssigned {
		t.Fatalf("u2: %#v", list)
	}
}

func TestCycleReadingStatus_NotFound(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	_, err = db.CycleReadingStatus(context.Background(), h.DB, "u1", "ghost")
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("ожидали not-found, получили %v", err)
	}
}
