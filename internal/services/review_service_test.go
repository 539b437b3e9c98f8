package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
)

// completedTask drives a fresh task through start and completion with a
// reported usage of qtyUsed for the seeded supply item.
func completedTask(t *testing.T, f *fakeStore, qtyUsed int) (*models.Task, *models.User, *models.SupplyItem) {
	t.Helper()
	manager, operator, property, item := seedWorld(t, f)
	svc := NewTaskService(f, NewAssignmentService(f), nil)
	ctx := context.Background()
	op := operatorActor(operator.ID)

	task := createCleaningTask(t, svc, manager, operator, property)
	if _, err := svc.Start(ctx, op, task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	steps := []*models.ChecklistOp{
		{Op: "toggle_subtask", AreaIndex: 0, SubTaskID: 1},
		{Op: "add_photo", AreaIndex: 0, PhotoURL: "kitchen.jpg"},
		{Op: "set_area", AreaIndex: 0, Completed: true},
		{Op: "set_supply_usage", SupplyID: 1, Checked: true, QtyUsed: qtyUsed},
	}
	for _, step := range steps {
		if _, err := svc.MutateChecklist(ctx, op, task.ID, step); err != nil {
			t.Fatalf("checklist step %s: %v", step.Op, err)
		}
	}
	res, err := svc.Complete(ctx, op, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return res.Task, manager, item
}

func TestApprovePostsConsumption(t *testing.T) {
	f := newFakeStore()
	task, manager, item := completedTask(t, f, 4)
	ctx := context.Background()

	if err := f.Inventory().UpsertBalance(ctx, item.ID, 10); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)
	res, err := svc.Approve(ctx, managerActor(manager.ID), task.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.AlreadyApplied || res.Task.Status != models.StatusApproved {
		t.Fatalf("unexpected result: %+v", res)
	}

	balance, _ := f.Inventory().GetBalance(ctx, item.ID)
	if balance.QtyOnHand != 6 {
		t.Fatalf("balance = %d, want 6", balance.QtyOnHand)
	}
	txns, _ := f.Inventory().ListTransactions(ctx, item.ID, 0)
	if len(txns) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(txns))
	}
	if txns[0].Type != models.TxnConsumptionOut || txns[0].Qty != -4 {
		t.Fatalf("unexpected ledger row: %+v", txns[0])
	}
	if txns[0].ReferenceID == nil || *txns[0].ReferenceID != task.ID {
		t.Fatalf("ledger row should reference task %d: %+v", task.ID, txns[0])
	}
}

func TestApproveIdempotent(t *testing.T) {
	f := newFakeStore()
	task, manager, item := completedTask(t, f, 4)
	ctx := context.Background()
	f.Inventory().UpsertBalance(ctx, item.ID, 10)

	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := svc.Approve(ctx, managerActor(manager.ID), task.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	res, err := svc.Approve(ctx, managerActor(manager.ID), task.ID)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if !res.AlreadyApplied {
		t.Fatal("second approve should report AlreadyApplied")
	}

	// Consumption posted exactly once.
	txns, _ := f.Inventory().ListTransactions(ctx, item.ID, 0)
	if len(txns) != 1 {
		t.Fatalf("expected one ledger row after duplicate approve, got %d", len(txns))
	}
	balance, _ := f.Inventory().GetBalance(ctx, item.ID)
	if balance.QtyOnHand != 6 {
		t.Fatalf("balance = %d, want 6", balance.QtyOnHand)
	}
}

func TestApproveAtomicWithLedgerFailure(t *testing.T) {
	f := newFakeStore()
	task, manager, item := completedTask(t, f, 4)
	ctx := context.Background()
	f.Inventory().UpsertBalance(ctx, item.ID, 10)

	f.failAppendTxn = errors.New("ledger write failed")
	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := svc.Approve(ctx, managerActor(manager.ID), task.ID); err == nil {
		t.Fatal("approve should fail when the ledger write fails")
	}

	// The status change must have rolled back with the ledger write.
	got, _ := f.Tasks().Get(ctx, task.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("task status = %s, want COMPLETED after rollback", got.Status)
	}
	balance, _ := f.Inventory().GetBalance(ctx, item.ID)
	if balance.QtyOnHand != 10 {
		t.Fatalf("balance = %d, want untouched 10", balance.QtyOnHand)
	}

	// Clearing the fault lets the same approval go through.
	f.failAppendTxn = nil
	res, err := svc.Approve(ctx, managerActor(manager.ID), task.ID)
	if err != nil {
		t.Fatalf("retry approve: %v", err)
	}
	if res.Task.Status != models.StatusApproved {
		t.Fatalf("status = %s, want APPROVED", res.Task.Status)
	}
}

func TestApproveClampsShortage(t *testing.T) {
	f := newFakeStore()
	task, manager, item := completedTask(t, f, 4)
	ctx := context.Background()
	f.Inventory().UpsertBalance(ctx, item.ID, 2)

	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := svc.Approve(ctx, managerActor(manager.ID), task.ID); err != nil {
		t.Fatalf("approve should not block on shortage: %v", err)
	}

	balance, _ := f.Inventory().GetBalance(ctx, item.ID)
	if balance.QtyOnHand != 0 {
		t.Fatalf("balance = %d, want clamped 0", balance.QtyOnHand)
	}
	txns, _ := f.Inventory().ListTransactions(ctx, item.ID, 0)
	if len(txns) != 1 || !strings.Contains(txns[0].Notes, "clamped") {
		t.Fatalf("ledger row should note the clamp: %+v", txns)
	}
}

func TestApproveReleasesAutoAssignedSlot(t *testing.T) {
	f := newFakeStore()
	manager, _, property, _ := seedWorld(t, f)
	worker := addUser(t, f, models.User{Name: "W", Email: "w@x.it", CanManageOperations: true})
	tasks := NewTaskService(f, NewAssignmentService(f), nil)
	ctx := context.Background()
	mgr := managerActor(manager.ID)

	task, err := tasks.Create(ctx, mgr, &models.CreateTaskRequest{
		PropertyID: property.ID, Type: models.TaskTypeMaintenance,
		ScheduledDate: "2026-09-01", PickAssignee: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := f.Users().Get(ctx, worker.ID)
	if got.OperationCount != 1 {
		t.Fatalf("operation count = %d, want 1 after routing", got.OperationCount)
	}

	if _, err := tasks.Start(ctx, mgr, task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := tasks.Complete(ctx, mgr, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	review := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := review.Approve(ctx, mgr, task.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _ = f.Users().Get(ctx, worker.ID)
	if got.OperationCount != 0 {
		t.Fatalf("operation count = %d, want 0 after approval", got.OperationCount)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFakeStore()
	task, manager, _ := completedTask(t, f, 0)
	ctx := context.Background()

	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := svc.Reject(ctx, managerActor(manager.ID), task.ID, ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	res, err := svc.Reject(ctx, managerActor(manager.ID), task.ID, "photos are blurry")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.Task.Status != models.StatusRejected || res.Task.RejectionNotes != "photos are blurry" {
		t.Fatalf("unexpected task: %+v", res.Task)
	}

	// Rejection posts nothing to the ledger.
	all, _ := f.Inventory().ListTransactions(ctx, 1, 0)
	if len(all) != 0 {
		t.Fatalf("reject must not touch inventory, got %d rows", len(all))
	}
}

func TestReopenCycle(t *testing.T) {
	f := newFakeStore()
	task, manager, _ := completedTask(t, f, 0)
	ctx := context.Background()
	mgr := managerActor(manager.ID)

	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)

	// Reopen before rejection is a state conflict naming both states.
	_, err := svc.Reopen(ctx, mgr, task.ID, "please redo")
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), string(models.StatusRejected)) ||
		!strings.Contains(err.Error(), string(models.StatusCompleted)) {
		t.Fatalf("conflict should name required and actual state, got %q", err.Error())
	}

	if _, err := svc.Reject(ctx, mgr, task.ID, "missing photos"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := svc.Reopen(ctx, mgr, task.ID, ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("empty note: expected validation error, got %v", err)
	}

	res, err := svc.Reopen(ctx, mgr, task.ID, "redo the kitchen")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := res.Task
	if got.Status != models.StatusInProgress || got.ReopenNote != "redo the kitchen" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.CompletedAt != nil || got.ReviewedAt != nil || got.ReviewedBy != nil {
		t.Fatalf("reopen should clear completion and review marks: %+v", got)
	}
}

func TestReviewBeforeCompletionConflicts(t *testing.T) {
	f := newFakeStore()
	manager, operator, property, _ := seedWorld(t, f)
	tasks := NewTaskService(f, NewAssignmentService(f), nil)
	ctx := context.Background()
	mgr := managerActor(manager.ID)

	task := createCleaningTask(t, tasks, manager, operator, property)
	if _, err := tasks.Start(ctx, operatorActor(operator.ID), task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Reviewing work still in progress is a conflict, not a quiet success:
	// the marker is reserved for duplicates of a verdict already given.
	review := NewReviewService(f, NewAssignmentService(f), nil, nil)
	_, err := review.Approve(ctx, mgr, task.ID)
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("approve in progress: expected state conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), string(models.StatusInProgress)) {
		t.Fatalf("conflict should name the actual state, got %q", err.Error())
	}
	if _, err := review.Reject(ctx, mgr, task.ID, "too early"); !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Fatalf("reject in progress: expected state conflict, got %v", err)
	}

	got, _ := f.Tasks().Get(ctx, task.ID)
	if got.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS untouched", got.Status)
	}
}

func TestApproveClearsRejectionNotes(t *testing.T) {
	f := newFakeStore()
	task, manager, _ := completedTask(t, f, 0)
	ctx := context.Background()
	mgr := managerActor(manager.ID)

	review := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := review.Reject(ctx, mgr, task.ID, "photos are blurry"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := review.Reopen(ctx, mgr, task.ID, "retake them"); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	tasks := NewTaskService(f, NewAssignmentService(f), nil)
	if _, err := tasks.Complete(ctx, mgr, task.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}

	res, err := review.Approve(ctx, mgr, task.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Task.Status != models.StatusApproved {
		t.Fatalf("status = %s, want APPROVED", res.Task.Status)
	}
	if res.Task.RejectionNotes != "" {
		t.Fatalf("rejection notes = %q after approval, want cleared", res.Task.RejectionNotes)
	}
}

func TestReviewRequiresManager(t *testing.T) {
	f := newFakeStore()
	task, _, _ := completedTask(t, f, 0)
	ctx := context.Background()
	op := operatorActor(99)

	svc := NewReviewService(f, NewAssignmentService(f), nil, nil)
	if _, err := svc.Approve(ctx, op, task.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("approve: expected forbidden, got %v", err)
	}
	if _, err := svc.Reject(ctx, op, task.ID, "nope"); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("reject: expected forbidden, got %v", err)
	}
	if _, err := svc.Reopen(ctx, op, task.ID, "again"); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("reopen: expected forbidden, got %v", err)
	}
}
