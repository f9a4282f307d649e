package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

const (
	UserRoleAdmin  = "A"
	UserRoleNormal = "N"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func userFromDoc(id string, data map[string]any) *User {
	return &User{
		ID:        id,
		Username:  utils.DocString(data, "username"),
		Name:      utils.DocString(data, fieldName),
		Password:  utils.DocString(data, "password"),
		Role:      utils.DocString(data, "role"),
		IsActive:  utils.DocBool(data, "isActive"),
		CreatedAt: utils.DocTime(data, fieldCreatedAt),
	}
}

func (u *User) doc() map[string]any {
	return map[string]any{
		"username":     u.Username,
		fieldName:      u.Name,
		"password":     u.Password,
		"role":         u.Role,
		"isActive":     u.IsActive,
		fieldCreatedAt: u.CreatedAt,
	}
}

// UpsertUser creates or replaces a user keyed by username. The user set
// is small (a handful of estimators per deployment), so the lookup scan
// below is fine without an index.
func UpsertUser(ctx context.Context, username, name, password, role string) (*User, error) {
	s := config.GetStore()
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	existing, err := GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}
	user := &User{
		Username:  username,
		Name:      name,
		Password:  string(hashed),
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if existing != nil {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	} else {
		user.ID = s.NewDocID(collectionUsers)
	}
	if err := s.Set(ctx, collectionUsers+"/"+user.ID, user.doc()); err != nil {
		return nil, utils.ClassifyStoreError(err)
	}
	return user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s := config.GetStore()
	docs, err := s.Documents(ctx, collectionUsers)
	if err != nil {
		return nil, utils.ClassifyStoreError(err)
	}
	for _, doc := range docs {
		if utils.DocString(doc.Data, "username") == username {
			return userFromDoc(doc.ID, doc.Data), nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func GetUser(ctx context.Context, id string) (*User, error) {
	s := config.GetStore()
	doc, err := s.Get(ctx, collectionUsers+"/"+id)
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}
	return userFromDoc(id, doc.Data), nil
}
