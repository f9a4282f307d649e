package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Client     string    `json:"client"`
	Location   string    `json:"location"`
	Status     string    `json:"status"`
	BudgetOpen bool      `json:"budgetOpen"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type NewProject struct {
	Name     string `json:"name"`
	Client   string `json:"client"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

const (
	fieldClient     = "client"
	fieldLocation   = "location"
	fieldStatus     = "status"
	fieldBudgetOpen = "budgetOpen"
)

func projectFromDoc(id string, data map[string]any) *Project {
	return &Project{
		ID:         id,
		Name:       utils.DocString(data, fieldName),
		Client:     utils.DocString(data, fieldClient),
		Location:   utils.DocString(data, fieldLocation),
		Status:     utils.DocString(data, fieldStatus),
		BudgetOpen: utils.DocBool(data, fieldBudgetOpen),
		CreatedAt:  utils.DocTime(data, fieldCreatedAt),
		UpdatedAt:  utils.DocTime(data, fieldUpdatedAt),
	}
}

// CreateProject provisions the project document and its two budget
// summaries in one batch, so a project can never exist without its
// summary chain (and line-item creates can rely on that).
func CreateProject(ctx context.Context, input *NewProject) (*Project, error) {
	logger := config.GetLogger()
	s := config.GetStore()
	now := time.Now().UTC()
	project := &Project{
		ID:         s.NewDocID(collectionProjects),
		Name:       input.Name,
		Client:     input.Client,
		Location:   input.Location,
		Status:     input.Status,
		BudgetOpen: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	batch := s.NewBatch()
	batch.Set(ProjectPath(project.ID), map[string]any{
		fieldName:       project.Name,
		fieldClient:     project.Client,
		fieldLocation:   project.Location,
		fieldStatus:     project.Status,
		fieldBudgetOpen: project.BudgetOpen,
		fieldCreatedAt:  project.CreatedAt,
		fieldUpdatedAt:  project.UpdatedAt,
	})
	batch.Set(SummaryPath(project.ID, HierarchyBudget), newSummaryDoc(now))
	batch.Set(SummaryPath(project.ID, HierarchyExtra), newSummaryDoc(now))
	if err := batch.Commit(ctx); err != nil {
		config.LogError(logger, "project.go", "CreateProject", project.ID, input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return project, nil
}

type ProjectFields struct {
	Name       *string `json:"name"`
	Client     *string `json:"client"`
	Location   *string `json:"location"`
	Status     *string `json:"status"`
	BudgetOpen *bool   `json:"budgetOpen"`
}

func UpdateProject(ctx context.Context, projectID string, fields *ProjectFields) (*Project, error) {
	logger := config.GetLogger()
	s := config.GetStore()
	path := ProjectPath(projectID)

	var out *Project
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(path)
		if err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		out = projectFromDoc(projectID, doc.Data)
		var updates []store.Update
		if fields.Name != nil {
			out.Name = *fields.Name
			updates = append(updates, store.Update{Field: fieldName, Value: *fields.Name})
		}
		if fields.Client != nil {
			out.Client = *fields.Client
			updates = append(updates, store.Update{Field: fieldClient, Value: *fields.Client})
		}
		if fields.Location != nil {
			out.Location = *fields.Location
			updates = append(updates, store.Update{Field: fieldLocation, Value: *fields.Location})
		}
		if fields.Status != nil {
			out.Status = *fields.Status
			updates = append(updates, store.Update{Field: fieldStatus, Value: *fields.Status})
		}
		if fields.BudgetOpen != nil {
			out.BudgetOpen = *fields.BudgetOpen
			updates = append(updates, store.Update{Field: fieldBudgetOpen, Value: *fields.BudgetOpen})
		}
		if len(updates) == 0 {
			return nil
		}
		out.UpdatedAt = time.Now().UTC()
		updates = append(updates, store.Update{Field: fieldUpdatedAt, Value: out.UpdatedAt})
		tx.Update(path, updates)
		return nil
	})
	if err != nil {
		config.LogError(logger, "project.go", "UpdateProject", path, fields, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return out, nil
}

func GetProject(ctx context.Context, projectID string) (*Project, error) {
	s := config.GetStore()
	doc, err := s.Get(ctx, ProjectPath(projectID))
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}
	return projectFromDoc(projectID, doc.Data), nil
}

func ListProjects(ctx context.Context) ([]*Project, error) {
	s := config.GetStore()
	docs, err := s.Documents(ctx, collectionProjects)
	if err != nil {
		return nil, utils.ClassifyStoreError(err)
	}
	out := make([]*Project, 0, len(docs))
	for _, doc := range docs {
		out = append(out, projectFromDoc(doc.ID, doc.Data))
	}
	return out, nil
}

// EnsureBudgetOpen rejects mutations on a project whose budget has been
// closed, when the enforcement flag is on.
func EnsureBudgetOpen(ctx context.Context, projectID string) error {
	if !config.EnforceBudgetOpen() {
		return nil
	}
	project, err := GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.BudgetOpen {
		return utils.ErrorBudgetClosed
	}
	return nil
}
