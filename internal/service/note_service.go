package service

import (
	"errors"
	"time"

	"notesaides-api/internal/domain"
	"notesaides-api/internal/event"
	"notesaides-api/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo repository.NoteRepository
	bus  *event.Bus
}

func NewNoteService(repo repository.NoteRepository, bus *event.Bus) *NoteService {
	return &NoteService{
		repo: repo,
		bus:  bus,
	}
}

func (s *NoteService) Create(userID string, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	note := &domain.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(note); err != nil {
		return nil, err
	}

	s.publish(userID, domain.ChangeCreated, note.ID)

	return note.ToResponse(), nil
}

func (s *NoteService) List(userID string) ([]*domain.NoteResponse, error) {
	notes, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, n.ToResponse())
	}

	return responses, nil
}

func (s *NoteService) GetByID(userID, noteID string) (*domain.NoteResponse, error) {
	note, err := s.findOwned(userID, noteID)
	if err != nil {
		return nil, err
	}

	return note.ToResponse(), nil
}

func (s *NoteService) Update(userID, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	note, err := s.findOwned(userID, noteID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	s.publish(userID, domain.ChangeUpdated, note.ID)

	return note.ToResponse(), nil
}

func (s *NoteService) Delete(userID, noteID string) error {
	note, err := s.findOwned(userID, noteID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(note.ID); err != nil {
		return err
	}

	s.publish(userID, domain.ChangeDeleted, note.ID)

	return nil
}

// findOwned resolves a note and enforces ownership. A note owned by
// another user is reported as not found.
func (s *NoteService) findOwned(userID, noteID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	if note.UserID != userID {
		return nil, ErrNoteNotFound
	}

	return note, nil
}

// publish runs only after the repository write has succeeded, so a client
// refetching in response to the event always sees the new state.
func (s *NoteService) publish(userID string, changeType domain.ChangeType, noteID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(domain.ChangeEvent{
		UserID: userID,
		Type:   changeType,
		NoteID: noteID,
	})
}
