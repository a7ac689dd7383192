package repository

import (
	"context"
	"fmt"
	"net/http"

	"notesaides-api/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByEmail(email string) (*domain.User, error)
	FindByID(id string) (*domain.User, error)
	FindByResetToken(token string) (*domain.User, error)
	Update(user *domain.User) error
	EmailExists(email string) (bool, error)
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *userRepository) Create(user *domain.User) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("user:%s", user.ID)
	_, err := db.Put(context.Background(), docID, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	return r.findOne(map[string]interface{}{"email": email})
}

func (r *userRepository) FindByID(id string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("user:%s", id)
	row := db.Get(context.Background(), docID)

	var user domain.User
	if err := row.ScanDoc(&user); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &user, nil
}

func (r *userRepository) FindByResetToken(token string) (*domain.User, error) {
	return r.findOne(map[string]interface{}{"reset_token": token})
}

func (r *userRepository) findOne(selector map[string]interface{}) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": selector,
		"limit":    1,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var user domain.User
	if err := rows.ScanDoc(&user); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(user *domain.User) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("user:%s", user.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch existing user for update: %w", err)
	}

	existingDoc["email"] = user.Email
	existingDoc["password_hash"] = user.PasswordHash

	if user.ResetToken != nil {
		existingDoc["reset_token"] = *user.ResetToken
	} else {
		delete(existingDoc, "reset_token")
	}
	if user.ResetTokenExpiry != nil {
		existingDoc["reset_token_expiry"] = *user.ResetTokenExpiry
	} else {
		delete(existingDoc, "reset_token_expiry")
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
