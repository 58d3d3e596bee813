package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dashboard"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

func TestStoreLifecycle(t *testing.T) {
	st := NewStore(time.Minute, 10)
	defer st.Stop()

	s := st.Create()
	if s.ID == "" {
		t.Fatalf("empty id")
	}
	got, ok := st.Get(s.ID)
	if !ok || got != s {
		t.Fatalf("get returned %v %v", got, ok)
	}
	same, created := st.GetOrCreate(s.ID)
	if created || same != s {
		t.Fatalf("GetOrCreate should reuse the live session")
	}
	fresh, created := st.GetOrCreate("unknown")
	if !created || fresh.ID == "unknown" {
		t.Fatalf("GetOrCreate should mint a new id for unknown sessions")
	}
	if !st.Delete(s.ID) {
		t.Fatalf("delete reported false")
	}
	if _, ok := st.Get(s.ID); ok {
		t.Fatalf("deleted session still found")
	}
	if _, ok := st.Get(""); ok {
		t.Fatalf("empty id must miss")
	}
}

func TestStoreExpiry(t *testing.T) {
	st := NewStore(20*time.Millisecond, 10)
	defer st.Stop()
	s := st.Create()
	time.Sleep(40 * time.Millisecond)
	if _, ok := st.Get(s.ID); ok {
		t.Fatalf("session should have expired")
	}
}

func TestDashboardsSaveAndLoad(t *testing.T) {
	s := newSession("s1")
	err := s.WithCurrent(func(d *dashboard.Dashboard) error {
		_, err := d.AddPanel(dashboard.Panel{ChartType: "bar", Config: map[string]any{"x": "a", "y": "b"}})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDashboard("summer"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveDashboard(" "); err == nil {
		t.Fatalf("expected error for blank name")
	}
	// Editing the current dashboard must not change the snapshot.
	_ = s.WithCurrent(func(d *dashboard.Dashboard) error {
		return d.RemovePanel(d.Panels[0].ID)
	})
	if len(s.Current().Panels) != 0 {
		t.Fatalf("panel not removed")
	}
	if err := s.LoadDashboard("summer"); err != nil {
		t.Fatalf("load: %v", err)
	}
	cur := s.Current()
	if len(cur.Panels) != 1 || cur.Name != "summer" {
		t.Fatalf("loaded dashboard: %+v", cur)
	}
	if names := s.Dashboards(); len(names) != 1 || names[0] != "summer" {
		t.Fatalf("names = %v", names)
	}
	if err := s.LoadDashboard("winter"); !errors.Is(err, ErrNoDashboard) {
		t.Fatalf("expected ErrNoDashboard, got %v", err)
	}
	if err := s.DeleteDashboard("summer"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestStateAndDatasets(t *testing.T) {
	s := newSession("s1")
	s.Set("currency", "EUR")
	if v, ok := s.Get("currency"); !ok || v != "EUR" {
		t.Fatalf("state = %v %v", v, ok)
	}
	s.Set("currency", nil)
	if _, ok := s.Get("currency"); ok {
		t.Fatalf("nil should delete")
	}
	s.PutDataset("b", &dataset.Table{})
	s.PutDataset("a", &dataset.Table{})
	if names := s.DatasetNames(); len(names) != 2 || names[0] != "a" {
		t.Fatalf("datasets = %v", names)
	}
	v := s.Snapshot()
	if v.ID != "s1" || v.Current == nil || len(v.Datasets) != 2 {
		t.Fatalf("snapshot = %+v", v)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newSession("s1")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set("k", i)
			_ = s.WithCurrent(func(d *dashboard.Dashboard) error {
				_, err := d.AddPanel(dashboard.Panel{ChartType: "pie"})
				return err
			})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	if n := len(s.Current().Panels); n != 16 {
		t.Fatalf("panels = %d", n)
	}
}
