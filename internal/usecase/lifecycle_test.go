package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/test"
)

const testAdminID = int64(99)

type lifecycleFixture struct {
	uc       *LifecycleUseCase
	orders   *test.OrderRepositoryStub
	audit    *test.AuditRepositoryStub
	notifier *test.NotifierStub
	gateway  *test.GatewayStub
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	orders := test.NewOrderRepositoryStub()
	audit := &test.AuditRepositoryStub{}
	notifier := &test.NotifierStub{}
	gateway := &test.GatewayStub{VerifyOK: true}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	uc := NewLifecycleUseCase(orders, audit, newTestStore(t), gateway, notifier, logger, 200, testAdminID)
	uc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return &lifecycleFixture{uc: uc, orders: orders, audit: audit, notifier: notifier, gateway: gateway}
}

func (f *lifecycleFixture) seed(id string, status model.OrderStatus) {
	f.orders.Seed(&model.Order{ID: id, RequesterID: 7, Status: status})
}

func TestLifecycleHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusNew)

	order, err := f.uc.Take(ctx, "o1", testAdminID, "mentor")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if order.Status != model.OrderStatusInProgress || order.FulfillerID != testAdminID {
		t.Fatalf("unexpected order after take: %+v", order)
	}

	order, err = f.uc.SetPrice(ctx, "o1", 1500)
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	if order.Status != model.OrderStatusWaitingPayment || order.FinalAmount != 1500 || order.PaymentLink == "" {
		t.Fatalf("unexpected order after pricing: %+v", order)
	}

	order, err = f.uc.ConfirmPayment(ctx, "o1")
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if order.Status != model.OrderStatusPaid || order.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("unexpected order after payment: %+v", order)
	}

	order, err = f.uc.Deliver(ctx, "o1", []Upload{{Name: "solution.pdf", Content: strings.NewReader("done")}})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if order.Status != model.OrderStatusWorkUploaded || len(order.DeliveredFiles) != 1 {
		t.Fatalf("unexpected order after delivery: %+v", order)
	}

	order, err = f.uc.Accept(ctx, "o1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if order.Status != model.OrderStatusCompleted || order.CompletedAt == nil {
		t.Fatalf("unexpected order after accept: %+v", order)
	}

	if got := f.notifier.For(7); len(got) == 0 {
		t.Error("requester must be notified along the way")
	}
	if len(f.audit.Actions) == 0 {
		t.Error("fulfiller actions must be audited")
	}
}

func TestLifecycleRevisionLoopAppendsFiles(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.orders.Seed(&model.Order{ID: "o1", RequesterID: 7, Status: model.OrderStatusPaid, PaymentLink: "https://pay.test/o1"})

	if _, err := f.uc.Deliver(ctx, "o1", []Upload{{Name: "v1.pdf", Content: strings.NewReader("first")}}); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := f.uc.RequestRevision(ctx, "o1"); err != nil {
		t.Fatalf("request revision: %v", err)
	}
	order, err := f.uc.Deliver(ctx, "o1", []Upload{{Name: "v2.pdf", Content: strings.NewReader("second")}})
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if len(order.DeliveredFiles) != 2 {
		t.Fatalf("expected both deliveries kept, got %v", order.DeliveredFiles)
	}
	if order.Status != model.OrderStatusWorkUploaded {
		t.Fatalf("unexpected status %s", order.Status)
	}
}

func TestLifecycleIllegalTransitions(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusNew)
	f.seed("done", model.OrderStatusCompleted)

	if _, err := f.uc.Accept(ctx, "o1"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("accept on new: expected ErrInvalidTransition, got %v", err)
	}
	if got := f.orders.Get("o1"); got.Status != model.OrderStatusNew || got.CompletedAt != nil {
		t.Fatalf("rejected accept must not mutate the order, got %+v", got)
	}
	if _, err := f.uc.ConfirmPayment(ctx, "o1"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("confirm on new: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.uc.Deliver(ctx, "done", []Upload{{Name: "late.pdf", Content: strings.NewReader("x")}}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("deliver on completed: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.uc.Cancel(ctx, "done", model.SenderRoleFulfiller); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("cancel on completed: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.uc.Take(ctx, "missing", 1, "x"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("take on missing order: expected ErrNotFound, got %v", err)
	}
}

func TestLifecycleSetPriceBelowMinimum(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusNew)

	if _, err := f.uc.SetPrice(ctx, "o1", 199); !errors.Is(err, domainErrors.ErrBudgetTooLow) {
		t.Fatalf("expected ErrBudgetTooLow, got %v", err)
	}
	if got := f.orders.Get("o1"); got.Status != model.OrderStatusNew {
		t.Fatalf("order must be untouched, got %s", got.Status)
	}
}

func TestLifecycleLostRaceSurfacesAsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusWorkUploaded)
	f.orders.UpdateStatusFn = func(context.Context, string, []model.OrderStatus, model.OrderStatus) (bool, error) {
		return false, nil
	}

	if _, err := f.uc.RequestRevision(ctx, "o1"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on lost race, got %v", err)
	}
}

func TestLifecycleConfirmPaymentRequiresLink(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusWaitingPayment)

	if _, err := f.uc.ConfirmPayment(ctx, "o1"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected rejection without a payment link, got %v", err)
	}
}

func TestLifecycleHandlePaymentCallback(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.orders.Seed(&model.Order{
		ID:          "o1",
		RequesterID: 7,
		Status:      model.OrderStatusWaitingPayment,
		FinalAmount: 1500,
		PaymentLink: "https://pay.test/o1",
	})

	params := map[string]string{"InvId": "o1", "OutSum": "1500"}
	orderID, err := f.uc.HandlePaymentCallback(ctx, params)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if orderID != "o1" {
		t.Fatalf("unexpected order id %q", orderID)
	}
	if got := f.orders.Get("o1"); got.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid status, got %s", got.Status)
	}
}

func TestLifecycleHandlePaymentCallbackRejections(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.orders.Seed(&model.Order{
		ID:          "o1",
		RequesterID: 7,
		Status:      model.OrderStatusWaitingPayment,
		FinalAmount: 1500,
		PaymentLink: "https://pay.test/o1",
	})

	if _, err := f.uc.HandlePaymentCallback(ctx, map[string]string{"OutSum": "1500"}); !domainErrors.IsValidation(err) {
		t.Fatalf("missing InvId: expected validation error, got %v", err)
	}
	if _, err := f.uc.HandlePaymentCallback(ctx, map[string]string{"InvId": "o1", "OutSum": "999"}); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("amount mismatch: expected ErrInvalidCredentials, got %v", err)
	}

	f.gateway.VerifyOK = false
	if _, err := f.uc.HandlePaymentCallback(ctx, map[string]string{"InvId": "o1", "OutSum": "1500"}); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("bad signature: expected ErrInvalidCredentials, got %v", err)
	}
	if got := f.orders.Get("o1"); got.Status != model.OrderStatusWaitingPayment {
		t.Fatalf("rejected callback must not change status, got %s", got.Status)
	}
}

func TestLifecycleCancelNotifiesCounterpart(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusInProgress)
	f.seed("o2", model.OrderStatusInProgress)

	if _, err := f.uc.Cancel(ctx, "o1", model.SenderRoleFulfiller); err != nil {
		t.Fatalf("cancel by fulfiller: %v", err)
	}
	if got := f.notifier.For(7); len(got) != 1 {
		t.Fatalf("requester must be notified, got %v", got)
	}

	if _, err := f.uc.Cancel(ctx, "o2", model.SenderRoleRequester); err != nil {
		t.Fatalf("cancel by requester: %v", err)
	}
	if got := f.notifier.For(testAdminID); len(got) != 1 {
		t.Fatalf("fulfiller must be notified, got %v", got)
	}
}

func TestLifecycleForceComplete(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusWaitingPayment)

	order, err := f.uc.ForceComplete(ctx, "o1")
	if err != nil {
		t.Fatalf("force complete: %v", err)
	}
	if order.Status != model.OrderStatusCompleted || order.CompletedAt == nil {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(f.audit.Actions) == 0 || f.audit.Actions[len(f.audit.Actions)-1].Action != "force_complete" {
		t.Fatalf("force completion must be audited, got %v", f.audit.Actions)
	}
}

func TestLifecycleNotificationFailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusNew)
	f.notifier.Err = errors.New("transport down")

	order, err := f.uc.Take(ctx, "o1", testAdminID, "mentor")
	if err != nil {
		t.Fatalf("take with failing notifier: %v", err)
	}
	if order.Status != model.OrderStatusInProgress {
		t.Fatalf("transition must commit despite notification failure, got %s", order.Status)
	}
}

func TestLifecyclePurge(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusCancelled)

	if err := f.uc.Purge(ctx, "o1"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if f.orders.Get("o1") != nil {
		t.Fatal("order row must be deleted")
	}
	if err := f.uc.Purge(ctx, "o1"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("second purge must report not found, got %v", err)
	}
}

func TestLifecycleSendMessage(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusInProgress)

	if err := f.uc.SendMessage(ctx, "o1", model.SenderRoleRequester, "any progress?"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if len(f.audit.Messages) != 1 || f.audit.Messages[0].Sender != model.SenderRoleRequester {
		t.Fatalf("message must be recorded, got %v", f.audit.Messages)
	}
	if got := f.notifier.For(testAdminID); len(got) != 1 {
		t.Fatalf("counterpart must be notified, got %v", got)
	}
}

func TestLifecycleUpdateTags(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	f.seed("o1", model.OrderStatusInProgress)

	if err := f.uc.UpdateTags(ctx, "o1", []string{"urgent", "vip"}); err != nil {
		t.Fatalf("update tags: %v", err)
	}
	if got := f.orders.Get("o1"); len(got.Tags) != 2 {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	if err := f.uc.UpdateTags(ctx, "missing", nil); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLifecycleAcceptRequiresUploadedWork(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)

	for _, status := range []model.OrderStatus{
		model.OrderStatusNew,
		model.OrderStatusInProgress,
		model.OrderStatusWaitingPayment,
		model.OrderStatusPaid,
		model.OrderStatusRevisionRequested,
	} {
		id := "o-" + string(status)
		f.seed(id, status)
		if _, err := f.uc.Accept(ctx, id); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("accept on %s: expected ErrInvalidTransition, got %v", status, err)
		}
		if got := f.orders.Get(id); got.Status != status || got.CompletedAt != nil {
			t.Fatalf("accept on %s must not mutate the order, got %+v", status, got)
		}
	}

	f.seed("ready", model.OrderStatusWorkUploaded)
	order, err := f.uc.Accept(ctx, "ready")
	if err != nil {
		t.Fatalf("accept on work_uploaded: %v", err)
	}
	if order.Status != model.OrderStatusCompleted || order.CompletedAt == nil {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestLifecycleRemindDeadlineNotifiesBothParties(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	deadline := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
	order := model.Order{ID: "o1", RequesterID: 7, FulfillerID: 42, Status: model.OrderStatusInProgress, Deadline: deadline}

	if err := f.uc.RemindDeadline(ctx, order, 3); err != nil {
		t.Fatalf("remind deadline: %v", err)
	}
	if len(f.notifier.For(7)) != 1 {
		t.Fatalf("expected one reminder for the requester, got %v", f.notifier.Sent)
	}
	if len(f.notifier.For(42)) != 1 {
		t.Fatalf("expected one reminder for the fulfiller, got %v", f.notifier.Sent)
	}
}
