package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/config"
	"github.com/meliofog/iam-stock/internal/model"
	"github.com/meliofog/iam-stock/internal/repository"
	pkgerrors "github.com/meliofog/iam-stock/pkg/errors"
)

// ── 共享内存存储 ──
// 模拟 uq_records_name / uq_equipment_sn 唯一索引与 ON DELETE CASCADE

type mockStore struct {
	records   map[string]*model.Record
	equipment map[string]*model.Equipment
	seq       int
}

func newMockStore() *mockStore {
	return &mockStore{
		records:   make(map[string]*model.Record),
		equipment: make(map[string]*model.Equipment),
	}
}

// nextID 生成可通过 uuid.Parse 的有序主键，便于断言
func (s *mockStore) nextID() string {
	s.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq)
}

func newMockRepository(s *mockStore) *repository.Repository {
	return &repository.Repository{
		Record:    &mockRecordRepo{s: s},
		Equipment: &mockEquipmentRepo{s: s},
	}
}

// ── Mock RecordRepository ──

type mockRecordRepo struct {
	s *mockStore
}

func (m *mockRecordRepo) Create(_ context.Context, rec *model.Record) error {
	for _, r := range m.s.records {
		if r.Name == rec.Name {
			return fmt.Errorf("%w: uq_records_name", pkgerrors.ErrDuplicateKey)
		}
	}
	if rec.RecordID == "" {
		rec.RecordID = m.s.nextID()
	}
	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	cp := *rec
	cp.Equipment = nil
	m.s.records[rec.RecordID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id string) (*model.Record, error) {
	if r, ok := m.s.records[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecordRepo) GetByName(_ context.Context, name string) (*model.Record, error) {
	for _, r := range m.s.records {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecordRepo) GetOrCreate(ctx context.Context, name string) (*model.Record, bool, error) {
	if r, err := m.GetByName(ctx, name); err == nil {
		return r, false, nil
	}
	rec := &model.Record{Name: name}
	if err := m.Create(ctx, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (m *mockRecordRepo) List(_ context.Context, name string, offset, limit int) ([]model.RecordStats, int64, error) {
	var stats []model.RecordStats
	for _, r := range m.s.records {
		if name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) {
			continue
		}
		st := model.RecordStats{Record: *r}
		for _, e := range m.s.equipment {
			if e.RecordID != r.RecordID {
				continue
			}
			st.ItemsCount++
			if e.DeliveryStatus == model.DeliveryStatusInProgress {
				st.InProgressCount++
			}
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	total := int64(len(stats))
	if limit > 0 {
		stats = paginate(stats, offset, limit)
	}
	return stats, total, nil
}

func (m *mockRecordRepo) Update(_ context.Context, rec *model.Record) error {
	for id, r := range m.s.records {
		if id != rec.RecordID && r.Name == rec.Name {
			return fmt.Errorf("%w: uq_records_name", pkgerrors.ErrDuplicateKey)
		}
	}
	rec.UpdatedAt = time.Now()
	cp := *rec
	cp.Equipment = nil
	m.s.records[rec.RecordID] = &cp
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for eid, e := range m.s.equipment {
		if e.RecordID == id {
			delete(m.s.equipment, eid)
		}
	}
	delete(m.s.records, id)
	return nil
}

func (m *mockRecordRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.records)), nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	s *mockStore
}

func (m *mockEquipmentRepo) snTaken(sn *string, selfID string) bool {
	if sn == nil {
		return false
	}
	for id, e := range m.s.equipment {
		if id != selfID && e.SN != nil && *e.SN == *sn {
			return true
		}
	}
	return false
}

func (m *mockEquipmentRepo) store(eq *model.Equipment) {
	cp := *eq
	cp.Record = nil
	m.s.equipment[eq.EquipmentID] = &cp
}

func (m *mockEquipmentRepo) withRecord(e *model.Equipment) model.Equipment {
	cp := *e
	if r, ok := m.s.records[e.RecordID]; ok {
		rc := *r
		cp.Record = &rc
	}
	return cp
}

func (m *mockEquipmentRepo) Create(_ context.Context, eq *model.Equipment) error {
	if _, ok := m.s.records[eq.RecordID]; !ok {
		return fmt.Errorf("foreign key violation: record %s", eq.RecordID)
	}
	if m.snTaken(eq.SN, "") {
		return fmt.Errorf("%w: uq_equipment_sn", pkgerrors.ErrDuplicateKey)
	}
	if eq.EquipmentID == "" {
		eq.EquipmentID = m.s.nextID()
	}
	now := time.Now()
	eq.CreatedAt, eq.UpdatedAt = now, now
	m.store(eq)
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.Equipment, error) {
	if e, ok := m.s.equipment[id]; ok {
		cp := m.withRecord(e)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) GetBySN(_ context.Context, sn string) (*model.Equipment, error) {
	for _, e := range m.s.equipment {
		if e.SN != nil && *e.SN == sn {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) List(_ context.Context, filter repository.EquipmentFilter, offset, limit int) ([]model.Equipment, int64, error) {
	var items []model.Equipment
	for _, e := range m.s.equipment {
		if filter.RecordID != "" && e.RecordID != filter.RecordID {
			continue
		}
		if filter.SN != "" && (e.SN == nil || !strings.Contains(strings.ToLower(*e.SN), strings.ToLower(filter.SN))) {
			continue
		}
		items = append(items, m.withRecord(e))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].RecordID != items[j].RecordID {
			return items[i].RecordID < items[j].RecordID
		}
		return items[i].OrderIndex < items[j].OrderIndex
	})

	total := int64(len(items))
	if limit > 0 {
		items = paginate(items, offset, limit)
	}
	return items, total, nil
}

func (m *mockEquipmentRepo) ListByRecord(_ context.Context, recordID string) ([]model.Equipment, error) {
	var items []model.Equipment
	for _, e := range m.s.equipment {
		if e.RecordID == recordID {
			items = append(items, *e)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OrderIndex < items[j].OrderIndex })
	return items, nil
}

func (m *mockEquipmentRepo) Update(_ context.Context, eq *model.Equipment) error {
	if _, ok := m.s.equipment[eq.EquipmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.snTaken(eq.SN, eq.EquipmentID) {
		return fmt.Errorf("%w: uq_equipment_sn", pkgerrors.ErrDuplicateKey)
	}
	eq.UpdatedAt = time.Now()
	m.store(eq)
	return nil
}

func (m *mockEquipmentRepo) UpdateReceptionDateByRecord(_ context.Context, recordID string, date *time.Time, year *int, quarter *string) (int64, error) {
	var n int64
	for _, e := range m.s.equipment {
		if e.RecordID != recordID {
			continue
		}
		e.ReceptionDate, e.Year, e.Quarter = date, year, quarter
		n++
	}
	return n, nil
}

func (m *mockEquipmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.equipment[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.equipment, id)
	return nil
}

func (m *mockEquipmentRepo) MaxOrderIndex(_ context.Context, recordID string) (int, error) {
	max := 0
	for _, e := range m.s.equipment {
		if e.RecordID == recordID && e.OrderIndex > max {
			max = e.OrderIndex
		}
	}
	return max, nil
}

func (m *mockEquipmentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.equipment)), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ── Mock Locker ──

type mockLocker struct {
	held     bool
	err      error
	acquired int
	released int
}

func (l *mockLocker) AcquireLock(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	l.held = true
	l.acquired++
	return "token", true, nil
}

func (l *mockLocker) ReleaseLock(_ context.Context, _ string, token string) error {
	if token == "token" {
		l.held = false
		l.released++
	}
	return nil
}

// ── 测试辅助 ──

func testExportConfig() config.ExportConfig {
	return config.ExportConfig{
		SheetName:   "Sheet1",
		ColumnWidth: 20,
		HeaderColor: "#0000FF",
		AccentColor: "#FFFF00",
	}
}

func setupTestServices(locker Locker) (*Service, *mockStore) {
	store := newMockStore()
	repo := newMockRepository(store)
	cfg := &config.Config{
		Import: config.ImportConfig{LockTTL: time.Minute},
		Export: testExportConfig(),
	}
	return NewService(cfg, repo, locker, zap.NewNop()), store
}

// buildWorkbook 生成内存 xlsx：第一行为表头，其余为数据行
func buildWorkbook(t *testing.T, headers []string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	h := make([]interface{}, len(headers))
	for i, v := range headers {
		h[i] = v
	}
	if err := f.SetSheetRow("Sheet1", "A1", &h); err != nil {
		t.Fatalf("写入表头失败: %v", err)
	}
	for i, row := range rows {
		r := row
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+2), &r); err != nil {
			t.Fatalf("写入第 %d 行失败: %v", i+1, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("生成 xlsx 失败: %v", err)
	}
	return buf
}

var importHeaders = []string{
	"Dossier", "Design.", "Ref", "SN", "SN Rempl", "Reception date",
	"Delivery status", "Delivery date", "BL", "YEAR", "QUARTER",
}
