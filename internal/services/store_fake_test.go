package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// fakeStore is an in-memory repositories.Store for service tests. WithTx
// snapshots the state before running the closure and restores it on
// error, mirroring a database rollback, which is what the approval
// atomicity tests lean on.
type fakeStore struct {
	mu sync.Mutex

	users       map[int]*models.User
	properties  map[int]*models.Property
	supplyItems map[int]*models.SupplyItem
	tasks       map[int]*models.Task
	usages      map[int]map[int]*models.TaskSupplyUsage // taskID -> supplyItemID
	txns        []*models.InventoryTransaction
	balances    map[int]*models.InventoryBalance
	leads       map[int]*models.Lead
	reports     map[int]*models.MaintenanceReport
	nextID      int

	// fault injection
	failAppendTxn error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[int]*models.User{},
		properties:  map[int]*models.Property{},
		supplyItems: map[int]*models.SupplyItem{},
		tasks:       map[int]*models.Task{},
		usages:      map[int]map[int]*models.TaskSupplyUsage{},
		balances:    map[int]*models.InventoryBalance{},
		leads:       map[int]*models.Lead{},
		reports:     map[int]*models.MaintenanceReport{},
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

type fakeState struct {
	Users       map[int]*models.User
	Properties  map[int]*models.Property
	SupplyItems map[int]*models.SupplyItem
	Tasks       map[int]*models.Task
	Usages      map[int]map[int]*models.TaskSupplyUsage
	Txns        []*models.InventoryTransaction
	Balances    map[int]*models.InventoryBalance
	Leads       map[int]*models.Lead
	Reports     map[int]*models.MaintenanceReport
	NextID      int
}

func (f *fakeStore) snapshot() *fakeState {
	raw, err := json.Marshal(fakeState{
		Users: f.users, Properties: f.properties, SupplyItems: f.supplyItems,
		Tasks: f.tasks, Usages: f.usages, Txns: f.txns, Balances: f.balances,
		Leads: f.leads, Reports: f.reports, NextID: f.nextID,
	})
	if err != nil {
		panic(err)
	}
	var s fakeState
	if err := json.Unmarshal(raw, &s); err != nil {
		panic(err)
	}
	return &s
}

func (f *fakeStore) restore(s *fakeState) {
	f.users, f.properties, f.supplyItems = s.Users, s.Properties, s.SupplyItems
	f.tasks, f.usages, f.txns, f.balances = s.Tasks, s.Usages, s.Txns, s.Balances
	f.leads, f.reports, f.nextID = s.Leads, s.Reports, s.NextID
	if f.usages == nil {
		f.usages = map[int]map[int]*models.TaskSupplyUsage{}
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(repositories.Store) error) error {
	saved := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(saved)
		return err
	}
	return nil
}

func (f *fakeStore) Users() repositories.UserRepository                { return &fakeUserRepo{f} }
func (f *fakeStore) Properties() repositories.PropertyRepository       { return &fakePropertyRepo{f} }
func (f *fakeStore) SupplyItems() repositories.SupplyItemRepository    { return &fakeSupplyItemRepo{f} }
func (f *fakeStore) Tasks() repositories.TaskRepository                { return &fakeTaskRepo{f} }
func (f *fakeStore) SupplyUsages() repositories.SupplyUsageRepository  { return &fakeUsageRepo{f} }
func (f *fakeStore) Inventory() repositories.InventoryRepository       { return &fakeInventoryRepo{f} }
func (f *fakeStore) Leads() repositories.LeadRepository                { return &fakeLeadRepo{f} }
func (f *fakeStore) Reports() repositories.MaintenanceReportRepository { return &fakeReportRepo{f} }

// --- users ---

type fakeUserRepo struct{ f *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u.ID = r.f.id()
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	r.f.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Get(ctx context.Context, id int) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, apperr.NotFound("user %d not found", id)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, u := range r.f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[u.ID]; !ok {
		return apperr.NotFound("user %d not found", u.ID)
	}
	cp := *u
	r.f.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ListEligibleAssignees(ctx context.Context, category models.AssignmentCategory) ([]*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, u := range r.f.users {
		if !u.IsActive {
			continue
		}
		if u.Role != models.RoleManager && u.Role != models.RoleAdmin {
			continue
		}
		if !u.IsSuperAdmin && !u.CanManage(category) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) AdjustAssignmentCount(ctx context.Context, userID int, category models.AssignmentCategory, delta int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[userID]
	if !ok {
		return apperr.NotFound("user %d not found", userID)
	}
	apply := func(v int) int {
		v += delta
		if v < 0 {
			return 0
		}
		return v
	}
	switch category {
	case models.CategoryLeads:
		u.LeadCount = apply(u.LeadCount)
	case models.CategoryAnalyses:
		u.AnalysisCount = apply(u.AnalysisCount)
	case models.CategoryOperations:
		u.OperationCount = apply(u.OperationCount)
	case models.CategoryOnboarding:
		u.OnboardingCount = apply(u.OnboardingCount)
	}
	return nil
}

// --- properties ---

type fakePropertyRepo struct{ f *fakeStore }

func (r *fakePropertyRepo) Create(ctx context.Context, p *models.Property) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p.ID = r.f.id()
	cp := *p
	r.f.properties[p.ID] = &cp
	return nil
}

func (r *fakePropertyRepo) Get(ctx context.Context, id int) (*models.Property, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.properties[id]
	if !ok {
		return nil, apperr.NotFound("property %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) List(ctx context.Context) ([]*models.Property, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Property
	for _, p := range r.f.properties {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePropertyRepo) Update(ctx context.Context, p *models.Property) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.properties[p.ID]; !ok {
		return apperr.NotFound("property %d not found", p.ID)
	}
	cp := *p
	r.f.properties[p.ID] = &cp
	return nil
}

func (r *fakePropertyRepo) Deactivate(ctx context.Context, id int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.properties[id]
	if !ok {
		return apperr.NotFound("property %d not found", id)
	}
	p.IsActive = false
	return nil
}

// --- supply items ---

type fakeSupplyItemRepo struct{ f *fakeStore }

func (r *fakeSupplyItemRepo) Create(ctx context.Context, i *models.SupplyItem) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	i.ID = r.f.id()
	cp := *i
	r.f.supplyItems[i.ID] = &cp
	return nil
}

func (r *fakeSupplyItemRepo) Get(ctx context.Context, id int) (*models.SupplyItem, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	i, ok := r.f.supplyItems[id]
	if !ok {
		return nil, apperr.NotFound("supply item %d not found", id)
	}
	cp := *i
	return &cp, nil
}

func (r *fakeSupplyItemRepo) List(ctx context.Context) ([]*models.SupplyItem, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.SupplyItem
	for _, i := range r.f.supplyItems {
		cp := *i
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *fakeSupplyItemRepo) Update(ctx context.Context, i *models.SupplyItem) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.supplyItems[i.ID]; !ok {
		return apperr.NotFound("supply item %d not found", i.ID)
	}
	cp := *i
	r.f.supplyItems[i.ID] = &cp
	return nil
}

func (r *fakeSupplyItemRepo) Deactivate(ctx context.Context, id int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	i, ok := r.f.supplyItems[id]
	if !ok {
		return apperr.NotFound("supply item %d not found", id)
	}
	i.IsActive = false
	return nil
}

// --- tasks ---

type fakeTaskRepo struct{ f *fakeStore }

func (r *fakeTaskRepo) Create(ctx context.Context, t *models.Task) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t.ID = r.f.id()
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	cp := *t
	r.f.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) Get(ctx context.Context, id int) (*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task %d not found", id)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) List(ctx context.Context) ([]*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Task
	for _, t := range r.f.tasks {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) ListByAssignee(ctx context.Context, userID int) ([]*models.Task, error) {
	all, _ := r.List(ctx)
	var out []*models.Task
	for _, t := range all {
		if t.IsAssignee(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByProperty(ctx context.Context, propertyID int) ([]*models.Task, error) {
	all, _ := r.List(ctx)
	var out []*models.Task
	for _, t := range all {
		if t.PropertyID == propertyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) UpdateChecklist(ctx context.Context, id int, checklist models.Checklist) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok {
		return apperr.NotFound("task %d not found", id)
	}
	t.Checklist = checklist
	return nil
}

func (r *fakeTaskRepo) UpdateNotes(ctx context.Context, id int, notes string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok {
		return apperr.NotFound("task %d not found", id)
	}
	t.Notes = notes
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.tasks[id]; !ok {
		return apperr.NotFound("task %d not found", id)
	}
	delete(r.f.tasks, id)
	return nil
}

func (r *fakeTaskRepo) transition(id int, from, to models.TaskStatus, mutate func(*models.Task)) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok {
		return false, nil
	}
	if t.Status != from {
		return false, nil
	}
	t.Status = to
	if mutate != nil {
		mutate(t)
	}
	return true, nil
}

func (r *fakeTaskRepo) Start(ctx context.Context, id int) (bool, error) {
	return r.transition(id, models.StatusTodo, models.StatusInProgress, nil)
}

func (r *fakeTaskRepo) Complete(ctx context.Context, id int, at time.Time) (bool, error) {
	return r.transition(id, models.StatusInProgress, models.StatusCompleted, func(t *models.Task) {
		t.CompletedAt = &at
	})
}

func (r *fakeTaskRepo) Approve(ctx context.Context, id, reviewerID int) (bool, error) {
	return r.transition(id, models.StatusCompleted, models.StatusApproved, func(t *models.Task) {
		now := time.Now()
		t.ReviewedAt = &now
		t.ReviewedBy = &reviewerID
		t.RejectionNotes = ""
	})
}

func (r *fakeTaskRepo) Reject(ctx context.Context, id, reviewerID int, reason string) (bool, error) {
	return r.transition(id, models.StatusCompleted, models.StatusRejected, func(t *models.Task) {
		now := time.Now()
		t.ReviewedAt = &now
		t.ReviewedBy = &reviewerID
		t.RejectionNotes = reason
	})
}

func (r *fakeTaskRepo) Reopen(ctx context.Context, id int, note string) (bool, error) {
	return r.transition(id, models.StatusRejected, models.StatusInProgress, func(t *models.Task) {
		now := time.Now()
		t.ReopenNote = note
		t.ReopenedAt = &now
		t.CompletedAt = nil
		t.ReviewedAt = nil
		t.ReviewedBy = nil
	})
}

// --- supply usages ---

type fakeUsageRepo struct{ f *fakeStore }

func (r *fakeUsageRepo) ListByTask(ctx context.Context, taskID int) ([]*models.TaskSupplyUsage, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.TaskSupplyUsage
	for _, u := range r.f.usages[taskID] {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplyItemID < out[j].SupplyItemID })
	return out, nil
}

func (r *fakeUsageRepo) Upsert(ctx context.Context, u *models.TaskSupplyUsage) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	byItem, ok := r.f.usages[u.TaskID]
	if !ok {
		byItem = map[int]*models.TaskSupplyUsage{}
		r.f.usages[u.TaskID] = byItem
	}
	if existing, ok := byItem[u.SupplyItemID]; ok {
		u.ID = existing.ID
	} else {
		u.ID = r.f.id()
	}
	cp := *u
	byItem[u.SupplyItemID] = &cp
	return nil
}

func (r *fakeUsageRepo) DeleteByTask(ctx context.Context, taskID int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.usages, taskID)
	return nil
}

// --- inventory ---

type fakeInventoryRepo struct{ f *fakeStore }

func (r *fakeInventoryRepo) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failAppendTxn != nil {
		return r.f.failAppendTxn
	}
	txn.ID = r.f.id()
	txn.CreatedAt = time.Now()
	cp := *txn
	r.f.txns = append(r.f.txns, &cp)
	return nil
}

func (r *fakeInventoryRepo) ListTransactions(ctx context.Context, supplyItemID, limit int) ([]*models.InventoryTransaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.InventoryTransaction
	for i := len(r.f.txns) - 1; i >= 0; i-- {
		if r.f.txns[i].SupplyItemID == supplyItemID {
			cp := *r.f.txns[i]
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) ListAllTransactions(ctx context.Context) ([]*models.InventoryTransaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.InventoryTransaction
	for _, t := range r.f.txns {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInventoryRepo) SumTransactions(ctx context.Context, supplyItemID int) (int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	sum := 0
	for _, t := range r.f.txns {
		if t.SupplyItemID == supplyItemID {
			sum += t.Qty
		}
	}
	return sum, nil
}

func (r *fakeInventoryRepo) GetBalance(ctx context.Context, supplyItemID int) (*models.InventoryBalance, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.balances[supplyItemID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeInventoryRepo) UpsertBalance(ctx context.Context, supplyItemID, qtyOnHand int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.balances[supplyItemID]
	if !ok {
		b = &models.InventoryBalance{SupplyItemID: supplyItemID}
		r.f.balances[supplyItemID] = b
	}
	b.QtyOnHand = qtyOnHand
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeInventoryRepo) SetReorderPoint(ctx context.Context, supplyItemID, reorderPoint int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.balances[supplyItemID]
	if !ok {
		b = &models.InventoryBalance{SupplyItemID: supplyItemID}
		r.f.balances[supplyItemID] = b
	}
	b.ReorderPoint = reorderPoint
	return nil
}

func (r *fakeInventoryRepo) ListBalances(ctx context.Context) ([]*models.BalanceView, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.BalanceView
	for _, item := range r.f.supplyItems {
		if !item.IsActive {
			continue
		}
		qty, reorder := 0, 0
		if b, ok := r.f.balances[item.ID]; ok {
			qty, reorder = b.QtyOnHand, b.ReorderPoint
		}
		out = append(out, &models.BalanceView{
			SupplyItemID: item.ID,
			Name:         item.Name,
			Unit:         item.Unit,
			QtyOnHand:    qty,
			ReorderPoint: reorder,
			Level:        models.DeriveLevel(qty, item.LowThreshold),
			NeedsReorder: reorder > 0 && qty <= reorder,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplyItemID < out[j].SupplyItemID })
	return out, nil
}

// --- leads ---

type fakeLeadRepo struct{ f *fakeStore }

func (r *fakeLeadRepo) Create(ctx context.Context, l *models.Lead) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	l.ID = r.f.id()
	cp := *l
	r.f.leads[l.ID] = &cp
	return nil
}

func (r *fakeLeadRepo) Get(ctx context.Context, id int) (*models.Lead, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	l, ok := r.f.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead %d not found", id)
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLeadRepo) List(ctx context.Context) ([]*models.Lead, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Lead
	for _, l := range r.f.leads {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLeadRepo) ListByAssignee(ctx context.Context, userID int) ([]*models.Lead, error) {
	all, _ := r.List(ctx)
	var out []*models.Lead
	for _, l := range all {
		if l.AssignedUserID != nil && *l.AssignedUserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	l, ok := r.f.leads[id]
	if !ok {
		return apperr.NotFound("lead %d not found", id)
	}
	l.Status = status
	return nil
}

// --- maintenance reports ---

type fakeReportRepo struct{ f *fakeStore }

func (r *fakeReportRepo) Create(ctx context.Context, m *models.MaintenanceReport) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m.ID = r.f.id()
	cp := *m
	r.f.reports[m.ID] = &cp
	return nil
}

func (r *fakeReportRepo) Get(ctx context.Context, id int) (*models.MaintenanceReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.reports[id]
	if !ok {
		return nil, apperr.NotFound("maintenance report %d not found", id)
	}
	cp := *m
	return &cp, nil
}

func (r *fakeReportRepo) List(ctx context.Context) ([]*models.MaintenanceReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.MaintenanceReport
	for _, m := range r.f.reports {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReportRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.reports[id]
	if !ok {
		return apperr.NotFound("maintenance report %d not found", id)
	}
	m.Status = status
	return nil
}

func (r *fakeReportRepo) DetachFromTask(ctx context.Context, taskID int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, m := range r.f.reports {
		if m.TaskID != nil && *m.TaskID == taskID {
			m.TaskID = nil
		}
	}
	return nil
}
