package cart

import (
	"context"
	"testing"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubCartRepo struct {
	reads int
}

func (s *stubCartRepo) WithTx(*gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindByUserID(context.Context, string) (*models.Cart, error) {
	s.reads++
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindByUserIDForUpdate(context.Context, string) (*models.Cart, error) {
	s.reads++
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) EnsureExists(context.Context, string) error { return nil }

func (s *stubCartRepo) Save(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	return cart, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts struct{}

func (stubProducts) FindByID(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func newStubService(t *testing.T, repo CartRepository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, stubProducts{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, stubTx{}, stubProducts{}); err == nil {
		t.Fatal("expected error for missing repo")
	}
	if _, err := NewService(&stubCartRepo{}, nil, stubProducts{}); err == nil {
		t.Fatal("expected error for missing tx runner")
	}
}

func TestSetQuantityValidatesBeforeReading(t *testing.T) {
	repo := &stubCartRepo{}
	svc := newStubService(t, repo)

	_, err := svc.SetQuantity(context.Background(), "u1", "p1", 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.reads != 0 {
		t.Fatalf("expected no repository reads, got %d", repo.reads)
	}
}

func TestGetCartWithoutRowReturnsEmpty(t *testing.T) {
	svc := newStubService(t, &stubCartRepo{})

	got, err := svc.GetCart(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || got.ID != nil || len(got.Items) != 0 || got.Items == nil {
		t.Fatalf("unexpected empty cart %+v", got)
	}
}

func TestAddItemRequiresUserAndProduct(t *testing.T) {
	svc := newStubService(t, &stubCartRepo{})

	if _, err := svc.AddItem(context.Background(), " ", ProductRef{ProductID: "p1"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}
	if _, err := svc.AddItem(context.Background(), "u1", ProductRef{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing product, got %v", err)
	}
}
