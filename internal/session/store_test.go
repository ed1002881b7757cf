package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/bloomly/internal/models"
)

func newClockedStore(now *time.Time) *Store {
	store := NewStore()
	store.now = func() time.Time { return *now }
	return store
}

func TestStoreRoundTripIsolatesState(t *testing.T) {
	store := NewStore()
	state := models.WizardState{Step: models.StepLogin, SymptomSelection: models.SymptomSelection{"Cramps"}}

	id := store.Create(state)
	state.SymptomSelection[0] = "Acne"

	loaded, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if loaded.SymptomSelection[0] != "Cramps" {
		t.Fatalf("expected stored copy to be isolated, got %v", loaded.SymptomSelection)
	}

	loaded.Step = models.StepCycleInput
	if err := store.Put(id, loaded); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	again, _ := store.Get(id)
	if again.Step != models.StepCycleInput {
		t.Fatalf("expected updated step, got %s", again.Step)
	}

	store.Delete(id)
	if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Put(id, loaded); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on put after delete, got %v", err)
	}
}

func TestStoreSweepRemovesIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newClockedStore(&now)

	idle := store.Create(models.WizardState{Step: models.StepSplash})
	now = now.Add(50 * time.Minute)
	active := store.Create(models.WizardState{Step: models.StepSplash})
	now = now.Add(20 * time.Minute)

	if removed := store.Sweep(now, time.Hour); removed != 1 {
		t.Fatalf("expected 1 removed session, got %d", removed)
	}
	if _, err := store.Get(idle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected idle session removed, got %v", err)
	}
	if _, err := store.Get(active); err != nil {
		t.Fatalf("expected active session kept, got %v", err)
	}
}

func TestStoreGetRefreshesActivity(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newClockedStore(&now)

	id := store.Create(models.WizardState{Step: models.StepSplash})
	now = now.Add(45 * time.Minute)
	if _, err := store.Get(id); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	now = now.Add(45 * time.Minute)

	if removed := store.Sweep(now, time.Hour); removed != 0 {
		t.Fatalf("expected recently read session to survive, removed %d", removed)
	}
}

func TestStoreConcurrentSessions(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for worker := 0; worker < 16; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := store.Create(models.WizardState{Step: models.StepSplash})
			state, err := store.Get(id)
			if err != nil {
				t.Errorf("Get() unexpected error: %v", err)
				return
			}
			state.Step = models.StepLogin
			if err := store.Put(id, state); err != nil {
				t.Errorf("Put() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.Len() != 16 {
		t.Fatalf("expected 16 sessions, got %d", store.Len())
	}
}

func TestParseSchedule(t *testing.T) {
	for _, expression := range []string{"", "@every 5m", "*/10 * * * *", "@hourly"} {
		if _, err := ParseSchedule(expression); err != nil {
			t.Errorf("ParseSchedule(%q) unexpected error: %v", expression, err)
		}
	}
	if _, err := ParseSchedule("every five minutes"); err == nil {
		t.Fatal("expected invalid schedule error")
	}
}

func TestStartSweeperRejectsInvalidSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := StartSweeper(ctx, NewStore(), "nonsense", time.Hour); err == nil {
		t.Fatal("expected invalid schedule error")
	}
	if err := StartSweeper(ctx, NewStore(), "@every 1h", time.Hour); err != nil {
		t.Fatalf("StartSweeper() unexpected error: %v", err)
	}
}
