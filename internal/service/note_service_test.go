package service

import (
	"errors"
	"testing"

	"notesaides-api/internal/domain"
	"notesaides-api/internal/event"
	"notesaides-api/internal/repository"
)

type mockNoteRepo struct {
	notes map[string]*domain.Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes: make(map[string]*domain.Note),
	}
}

func (m *mockNoteRepo) Create(note *domain.Note) error {
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteRepo) FindByID(id string) (*domain.Note, error) {
	if n, exists := m.notes[id]; exists {
		return n, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockNoteRepo) List(userID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	for _, n := range m.notes {
		if n.UserID == userID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (m *mockNoteRepo) Update(note *domain.Note) error {
	if _, exists := m.notes[note.ID]; exists {
		m.notes[note.ID] = note
		return nil
	}
	return repository.ErrNotFound
}

func (m *mockNoteRepo) Delete(id string) error {
	if _, exists := m.notes[id]; exists {
		delete(m.notes, id)
		return nil
	}
	return repository.ErrNotFound
}

func newRecordingBus() (*event.Bus, *[]domain.ChangeEvent) {
	bus := event.NewBus()
	events := &[]domain.ChangeEvent{}
	bus.Subscribe("recorder", func(e domain.ChangeEvent) {
		*events = append(*events, e)
	})
	return bus, events
}

func TestNoteService_Create(t *testing.T) {
	repo := newMockNoteRepo()
	bus, events := newRecordingBus()
	svc := NewNoteService(repo, bus)

	note, err := svc.Create("user1", &domain.CreateNoteRequest{Title: "groceries", Content: "milk"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if note.ID == "" {
		t.Error("expected note ID to be generated")
	}
	if note.Title != "groceries" {
		t.Errorf("expected title groceries, got %s", note.Title)
	}

	if len(*events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(*events))
	}
	e := (*events)[0]
	if e.Type != domain.ChangeCreated || e.UserID != "user1" || e.NoteID != note.ID {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestNoteService_List(t *testing.T) {
	repo := newMockNoteRepo()
	bus, _ := newRecordingBus()
	svc := NewNoteService(repo, bus)

	svc.Create("user1", &domain.CreateNoteRequest{Title: "n1"})
	svc.Create("user1", &domain.CreateNoteRequest{Title: "n2"})
	svc.Create("user2", &domain.CreateNoteRequest{Title: "n3"})

	list, err := svc.List("user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(list) != 2 {
		t.Errorf("expected 2 notes, got %d", len(list))
	}
}

func TestNoteService_GetByID(t *testing.T) {
	repo := newMockNoteRepo()
	bus, _ := newRecordingBus()
	svc := NewNoteService(repo, bus)

	note, _ := svc.Create("user1", &domain.CreateNoteRequest{Title: "mine", Content: "secret"})

	got, err := svc.GetByID("user1", note.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Content != "secret" {
		t.Errorf("expected content secret, got %s", got.Content)
	}

	// Another user's lookup must look like a missing note.
	if _, err := svc.GetByID("user2", note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound for non-owner, got %v", err)
	}
}

func TestNoteService_Update(t *testing.T) {
	repo := newMockNoteRepo()
	bus, events := newRecordingBus()
	svc := NewNoteService(repo, bus)

	note, _ := svc.Create("user1", &domain.CreateNoteRequest{Title: "old", Content: "body"})

	newTitle := "new"
	updated, err := svc.Update("user1", note.ID, &domain.UpdateNoteRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Title != "new" {
		t.Errorf("expected title new, got %s", updated.Title)
	}
	if updated.Content != "body" {
		t.Errorf("unspecified field should be preserved, got %s", updated.Content)
	}

	if len(*events) != 2 {
		t.Fatalf("expected 2 events (create + update), got %d", len(*events))
	}
	if (*events)[1].Type != domain.ChangeUpdated {
		t.Errorf("expected updated event, got %s", (*events)[1].Type)
	}
}

func TestNoteService_UpdateByNonOwnerEmitsNoEvent(t *testing.T) {
	repo := newMockNoteRepo()
	bus, events := newRecordingBus()
	svc := NewNoteService(repo, bus)

	note, _ := svc.Create("user1", &domain.CreateNoteRequest{Title: "mine"})
	published := len(*events)

	title := "hijacked"
	_, err := svc.Update("user2", note.ID, &domain.UpdateNoteRequest{Title: &title})
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}

	if len(*events) != published {
		t.Errorf("rejected update must not publish: got %d extra events", len(*events)-published)
	}
	if repo.notes[note.ID].Title != "mine" {
		t.Error("note was modified by a non-owner")
	}
}

func TestNoteService_Delete(t *testing.T) {
	repo := newMockNoteRepo()
	bus, events := newRecordingBus()
	svc := NewNoteService(repo, bus)

	note, _ := svc.Create("user1", &domain.CreateNoteRequest{Title: "doomed"})

	if err := svc.Delete("user1", note.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.GetByID("user1", note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Error("note should be gone after delete")
	}

	last := (*events)[len(*events)-1]
	if last.Type != domain.ChangeDeleted || last.NoteID != note.ID {
		t.Errorf("unexpected delete event: %+v", last)
	}
}

func TestNoteService_DeleteByNonOwnerEmitsNoEvent(t *testing.T) {
	repo := newMockNoteRepo()
	bus, events := newRecordingBus()
	svc := NewNoteService(repo, bus)

	note, _ := svc.Create("user1", &domain.CreateNoteRequest{Title: "mine"})
	published := len(*events)

	if err := svc.Delete("user2", note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}

	if len(*events) != published {
		t.Errorf("rejected delete must not publish: got %d extra events", len(*events)-published)
	}
	if _, exists := repo.notes[note.ID]; !exists {
		t.Error("note was deleted by a non-owner")
	}
}

func TestNoteService_FailedWriteEmitsNoEvent(t *testing.T) {
	repo := &failingNoteRepo{}
	bus, events := newRecordingBus()
	svc := NewNoteService(repo, bus)

	if _, err := svc.Create("user1", &domain.CreateNoteRequest{Title: "n"}); err == nil {
		t.Fatal("expected create to fail")
	}

	if len(*events) != 0 {
		t.Errorf("failed write must not publish, got %d events", len(*events))
	}
}

type failingNoteRepo struct{}

func (f *failingNoteRepo) Create(note *domain.Note) error            { return errors.New("db down") }
func (f *failingNoteRepo) FindByID(id string) (*domain.Note, error)  { return nil, errors.New("db down") }
func (f *failingNoteRepo) List(userID string) ([]*domain.Note, error) { return nil, errors.New("db down") }
func (f *failingNoteRepo) Update(note *domain.Note) error            { return errors.New("db down") }
func (f *failingNoteRepo) Delete(id string) error                    { return errors.New("db down") }
