package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/pkg/auth"
	"github.com/polkiloo/orderdesk/internal/storage/files"
	testhelpers "github.com/polkiloo/orderdesk/internal/test"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

const testAdminID = int64(42)

type facadeFixture struct {
	facade   *DeskFacade
	orders   *testhelpers.OrderRepositoryStub
	audit    *testhelpers.AuditRepositoryStub
	notifier *testhelpers.NotifierStub
}

func newFacadeFixture(t *testing.T) *facadeFixture {
	t.Helper()

	store, err := files.NewStore(filepath.Join(t.TempDir(), "uploads"), filepath.Join(t.TempDir(), "delivered"), 1<<20)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	orders := testhelpers.NewOrderRepositoryStub()
	audit := &testhelpers.AuditRepositoryStub{}
	notifier := &testhelpers.NotifierStub{}
	templates := &testhelpers.TemplateRepositoryStub{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	intake := usecase.NewIntakeUseCase(orders, store, 3, 200, 500)
	lifecycle := usecase.NewLifecycleUseCase(orders, audit, store, &testhelpers.GatewayStub{}, notifier, logger, 200, testAdminID)
	browse := usecase.NewBrowseUseCase(orders, audit, store, 30*24*time.Hour)
	templateUC := usecase.NewTemplateUseCase(templates)

	strategy := testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return testAdminID, nil }}
	facade := NewDeskFacade(intake, lifecycle, browse, templateUC,
		testhelpers.HasherStub{}, strategy, testAdminID, "hash:secret")

	return &facadeFixture{facade: facade, orders: orders, audit: audit, notifier: notifier}
}

func TestDeskFacadeLogin(t *testing.T) {
	fixture := newFacadeFixture(t)

	token, err := fixture.facade.Login("secret")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := fixture.facade.Login("wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	id, err := fixture.facade.ParseToken("anything")
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if id != testAdminID {
		t.Fatalf("expected id %d, got %d", testAdminID, id)
	}
}

func TestDeskFacadeLoginWithoutConfiguredHash(t *testing.T) {
	fixture := newFacadeFixture(t)
	fixture.facade.adminPasswordHash = ""

	if _, err := fixture.facade.Login("secret"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials without hash, got %v", err)
	}
}

func TestDeskFacadeParseTokenForeignID(t *testing.T) {
	fixture := newFacadeFixture(t)
	fixture.facade.strategy = testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return testAdminID + 1, nil }}

	if _, err := fixture.facade.ParseToken("anything"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign id, got %v", err)
	}
}

func TestDeskFacadeOrderFlow(t *testing.T) {
	fixture := newFacadeFixture(t)
	fixture.orders.Seed(&model.Order{ID: "o1", RequesterID: 7, Status: model.OrderStatusNew})

	order, err := fixture.facade.TakeOrder(context.Background(), "o1", testAdminID, "admin")
	if err != nil {
		t.Fatalf("take order: %v", err)
	}
	if order.Status != model.OrderStatusInProgress {
		t.Fatalf("unexpected status %q", order.Status)
	}

	listed, err := fixture.facade.Orders(context.Background(), model.OrderStatusInProgress)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one in-progress order, got %v err=%v", listed, err)
	}

	if err := fixture.facade.SendMessage(context.Background(), "o1", model.SenderRoleFulfiller, "hello"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	history, err := fixture.facade.History(context.Background(), "o1")
	if err != nil || len(history) != 1 || history[0].Body != "hello" {
		t.Fatalf("unexpected history %v err=%v", history, err)
	}
}

func TestDeskFacadeTemplates(t *testing.T) {
	fixture := newFacadeFixture(t)

	created, err := fixture.facade.CreateTemplate(context.Background(), "greeting", "general", "Hello!")
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	listed, err := fixture.facade.Templates(context.Background())
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one template, got %v err=%v", listed, err)
	}

	if err := fixture.facade.DeleteTemplate(context.Background(), created.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	if _, err := fixture.facade.Template(context.Background(), created.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeskFacadeRetentionFeeds(t *testing.T) {
	fixture := newFacadeFixture(t)
	now := time.Now()
	completedAt := now.Add(-40 * 24 * time.Hour)
	fixture.orders.Seed(&model.Order{ID: "active", RequesterID: 7, Status: model.OrderStatusInProgress, Deadline: now.Add(72 * time.Hour)})
	fixture.orders.Seed(&model.Order{
		ID:             "old",
		RequesterID:    7,
		Status:         model.OrderStatusCompleted,
		CompletedAt:    &completedAt,
		DeliveredFiles: []string{"result.pdf"},
	})

	inProgress, err := fixture.facade.OrdersInProgress(context.Background())
	if err != nil || len(inProgress) != 1 || inProgress[0].ID != "active" {
		t.Fatalf("unexpected in-progress feed %v err=%v", inProgress, err)
	}

	expired, err := fixture.facade.OrdersPastRetention(context.Background(), now.Add(-30*24*time.Hour))
	if err != nil || len(expired) != 1 || expired[0].ID != "old" {
		t.Fatalf("unexpected retention feed %v err=%v", expired, err)
	}

	if err := fixture.facade.PurgeDeliveredFiles(context.Background(), expired[0]); err != nil {
		t.Fatalf("purge delivered: %v", err)
	}

	if err := fixture.facade.RemindDeadline(context.Background(), inProgress[0], 3); err != nil {
		t.Fatalf("remind deadline: %v", err)
	}
	if len(fixture.notifier.For(testAdminID)) == 0 {
		t.Fatal("expected reminder notification for the assigned admin")
	}
}
