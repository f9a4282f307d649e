package models

// LineItemKind names one of the four line-item collections. The value
// doubles as the collection segment in document paths.
type LineItemKind string

const (
	KindMaterial    LineItemKind = "materials"
	KindLabor       LineItemKind = "labors"
	KindSubcontract LineItemKind = "subcontracts"
	KindOther       LineItemKind = "others"
)

// LineItemKinds lists every kind in walk order.
var LineItemKinds = []LineItemKind{KindMaterial, KindLabor, KindSubcontract, KindOther}

func (k LineItemKind) Valid() bool {
	switch k {
	case KindMaterial, KindLabor, KindSubcontract, KindOther:
		return true
	}
	return false
}

// SumField is the summary field this kind's subtotals aggregate into.
func (k LineItemKind) SumField() string {
	switch k {
	case KindMaterial:
		return FieldSumMaterials
	case KindLabor:
		return FieldSumLabors
	case KindSubcontract:
		return FieldSumSubcontracts
	default:
		return FieldSumOthers
	}
}

// Hierarchy selects one of the two parallel budget trees a project
// owns. The plain budget holds line items directly under its summary;
// the extra budget adds an activity level between summary and items.
type Hierarchy string

const (
	HierarchyBudget Hierarchy = "budget"
	HierarchyExtra  Hierarchy = "extraBudget"
)

func (h Hierarchy) Valid() bool {
	return h == HierarchyBudget || h == HierarchyExtra
}

// Document field names shared by summaries and activities. These match
// what the browser client historically wrote, so they are wire format.
const (
	FieldSumMaterials    = "sumMaterials"
	FieldSumLabors       = "sumLabors"
	FieldSumSubcontracts = "sumSubcontracts"
	FieldSumOthers       = "sumOthers"
	FieldExchange        = "exchange"
	FieldAdminFee        = "adminFee"
	FieldCreationDate    = "creationDate"
)

// SumFields lists the four running totals in a fixed order.
var SumFields = []string{FieldSumMaterials, FieldSumLabors, FieldSumSubcontracts, FieldSumOthers}

const (
	collectionProjects     = "projects"
	collectionBudgets      = "budgets"
	collectionActivities   = "activities"
	collectionSubMaterials = "subMaterials"
	collectionUsers        = "users"
)
