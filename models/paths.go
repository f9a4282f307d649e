package models

import (
	"fmt"

	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

// AggregatePath names the summary chain above one line-item collection.
// It is a value, not a type hierarchy: the plain budget and the extra
// budget run through the same repository code, and only the ancestor
// resolution below differs. ActivityID must be set exactly when the
// hierarchy is the extra budget.
type AggregatePath struct {
	ProjectID  string
	Hierarchy  Hierarchy
	ActivityID string
}

func (p AggregatePath) Validate() error {
	if p.ProjectID == "" {
		return fmt.Errorf("%w: project id required", utils.ErrorRecordNotFound)
	}
	if !p.Hierarchy.Valid() {
		return fmt.Errorf("unknown hierarchy %q", p.Hierarchy)
	}
	if p.Hierarchy == HierarchyExtra && p.ActivityID == "" {
		return fmt.Errorf("extra budget line items live under an activity")
	}
	if p.Hierarchy == HierarchyBudget && p.ActivityID != "" {
		return fmt.Errorf("plain budget has no activity level")
	}
	return nil
}

func (p AggregatePath) ProjectPath() string {
	return collectionProjects + "/" + p.ProjectID
}

// SummaryPath is the project-level summary document for the hierarchy.
func (p AggregatePath) SummaryPath() string {
	return p.ProjectPath() + "/" + collectionBudgets + "/" + string(p.Hierarchy)
}

// ActivityPath is the activity document, or "" in the plain hierarchy.
func (p AggregatePath) ActivityPath() string {
	if p.ActivityID == "" {
		return ""
	}
	return p.SummaryPath() + "/" + collectionActivities + "/" + p.ActivityID
}

// Ancestors lists every summary document a line-item delta fans out to,
// deepest first. One entry in the plain hierarchy, two in the extra
// hierarchy (activity, then project summary).
func (p AggregatePath) Ancestors() []string {
	if ap := p.ActivityPath(); ap != "" {
		return []string{ap, p.SummaryPath()}
	}
	return []string{p.SummaryPath()}
}

// Collection is the line-item collection for a kind, attached to the
// deepest ancestor.
func (p AggregatePath) Collection(kind LineItemKind) string {
	if ap := p.ActivityPath(); ap != "" {
		return ap + "/" + string(kind)
	}
	return p.SummaryPath() + "/" + string(kind)
}

func (p AggregatePath) ItemPath(kind LineItemKind, id string) string {
	return p.Collection(kind) + "/" + id
}

// SubMaterialCollection is the child collection of one material.
func (p AggregatePath) SubMaterialCollection(materialID string) string {
	return p.ItemPath(KindMaterial, materialID) + "/" + collectionSubMaterials
}

func SummaryPath(projectID string, h Hierarchy) string {
	return AggregatePath{ProjectID: projectID, Hierarchy: h}.SummaryPath()
}

func ProjectPath(projectID string) string {
	return collectionProjects + "/" + projectID
}
