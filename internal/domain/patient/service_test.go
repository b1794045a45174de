package patient

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	store  map[uuid.UUID]*Patient
	mrnSeq int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Patient)}
}
func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New(); m.store[p.ID] = p; return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return p, nil
}
func (m *mockRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.store { if p.MRN == mrn { return p, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.store[p.ID]; !ok { return fmt.Errorf("not found") }; m.store[p.ID] = p; return nil
}
func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := m.store[id]; if !ok { return fmt.Errorf("not found") }; p.Active = active; return nil
}
func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient; for _, p := range m.store { r = append(r, p) }; return r, len(r), nil
}
func (m *mockRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient
	for _, p := range m.store {
		if mrn, ok := params["mrn"]; ok && p.MRN != mrn { continue }
		if params["active"] == "true" && !p.Active { continue }
		r = append(r, p)
	}
	return r, len(r), nil
}
func (m *mockRepo) NextMRN(_ context.Context) (int64, error) { m.mrnSeq++; return m.mrnSeq, nil }

func newTestService() *Service { return NewService(newMockRepo()) }

func TestCreate_GeneratesMRN(t *testing.T) {
	svc := newTestService()
	p := &Patient{FirstName: "Maya", LastName: "Torres"}
	if err := svc.Create(context.Background(), p); err != nil { t.Fatalf("unexpected error: %v", err) }
	if p.MRN != "P-000001" { t.Errorf("expected generated MRN P-000001, got %q", p.MRN) }
	if !p.Active { t.Error("expected new patient to be active") }
}

func TestCreate_KeepsSuppliedMRN(t *testing.T) {
	svc := newTestService()
	p := &Patient{MRN: "ORTHO-42", FirstName: "Maya", LastName: "Torres"}
	if err := svc.Create(context.Background(), p); err != nil { t.Fatalf("unexpected error: %v", err) }
	if p.MRN != "ORTHO-42" { t.Errorf("expected MRN ORTHO-42, got %q", p.MRN) }
}

func TestCreate_DuplicateMRN(t *testing.T) {
	svc := newTestService()
	svc.Create(context.Background(), &Patient{MRN: "P-1", FirstName: "Maya", LastName: "Torres"})
	err := svc.Create(context.Background(), &Patient{MRN: "P-1", FirstName: "Liam", LastName: "Okafor"})
	if err == nil { t.Fatal("expected duplicate MRN error") }
}

func TestCreate_MissingName(t *testing.T) {
	svc := newTestService()
	if err := svc.Create(context.Background(), &Patient{FirstName: "Maya"}); err == nil { t.Error("expected error for missing last name") }
	if err := svc.Create(context.Background(), &Patient{LastName: "Torres"}); err == nil { t.Error("expected error for missing first name") }
	if err := svc.Create(context.Background(), &Patient{FirstName: "  ", LastName: "Torres"}); err == nil { t.Error("expected error for blank first name") }
}

func TestCreate_InvalidGender(t *testing.T) {
	svc := newTestService()
	g := "robot"
	err := svc.Create(context.Background(), &Patient{FirstName: "Maya", LastName: "Torres", Gender: &g})
	if err == nil { t.Fatal("expected error for invalid gender") }
}

func TestUpdate_MRNImmutable(t *testing.T) {
	svc := newTestService()
	p := &Patient{MRN: "P-1", FirstName: "Maya", LastName: "Torres"}
	svc.Create(context.Background(), p)

	upd := &Patient{ID: p.ID, MRN: "P-999", FirstName: "Maya", LastName: "Torres-Reyes"}
	if err := svc.Update(context.Background(), upd); err != nil { t.Fatalf("unexpected error: %v", err) }
	if upd.MRN != "P-1" { t.Errorf("expected MRN to stay P-1, got %q", upd.MRN) }
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService()
	err := svc.Update(context.Background(), &Patient{ID: uuid.New(), FirstName: "Maya", LastName: "Torres"})
	if err == nil { t.Fatal("expected error for unknown patient") }
}

func TestDeactivateReactivate(t *testing.T) {
	svc := newTestService()
	p := &Patient{FirstName: "Maya", LastName: "Torres"}
	svc.Create(context.Background(), p)

	if err := svc.Deactivate(context.Background(), p.ID); err != nil { t.Fatalf("unexpected error: %v", err) }
	got, _ := svc.Get(context.Background(), p.ID)
	if got.Active { t.Error("expected patient inactive after deactivation") }

	if err := svc.Reactivate(context.Background(), p.ID); err != nil { t.Fatalf("unexpected error: %v", err) }
	got, _ = svc.Get(context.Background(), p.ID)
	if !got.Active { t.Error("expected patient active after reactivation") }
}

func TestDeactivate_NotFound(t *testing.T) {
	svc := newTestService()
	if err := svc.Deactivate(context.Background(), uuid.New()); err == nil { t.Fatal("expected error") }
}

func TestSearch_ByMRN(t *testing.T) {
	svc := newTestService()
	svc.Create(context.Background(), &Patient{MRN: "P-1", FirstName: "Maya", LastName: "Torres"})
	svc.Create(context.Background(), &Patient{MRN: "P-2", FirstName: "Liam", LastName: "Okafor"})

	items, total, err := svc.Search(context.Background(), map[string]string{"mrn": "P-2"}, 20, 0)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if total != 1 || items[0].FirstName != "Liam" { t.Errorf("expected single match Liam, got %d items", total) }
}
