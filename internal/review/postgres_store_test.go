package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestPostgresInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := NewPostgresStore(mock)

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(pgxmock.AnyArg(), "+1555", "Dana", "Coffee Maker", "Great product!", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	stored, err := store.Insert(context.Background(), Review{
		ContactNumber: "+1555",
		UserName:      "Dana",
		ProductName:   "Coffee Maker",
		Body:          "Great product!",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected an assigned timestamp")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresListAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	store := NewPostgresStore(mock)

	newest := uuid.New()
	oldest := uuid.New()
	now := time.Now()
	mock.ExpectQuery("SELECT id, contact_number").
		WillReturnRows(pgxmock.NewRows([]string{"id", "contact_number", "user_name", "product_name", "product_review", "created_at"}).
			AddRow(newest, "+1555", "Dana", "Coffee Maker", "Great product!", now).
			AddRow(oldest, "+1666", "Sam", "Kettle", "Does the job.", now.Add(-time.Hour)))

	listed, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(listed))
	}
	if listed[0].ID != newest || listed[1].ID != oldest {
		t.Error("expected store order to be preserved")
	}
	if listed[0].Body != "Great product!" {
		t.Errorf("unexpected body %q", listed[0].Body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
