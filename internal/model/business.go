package model

// BusinessStage describes how established a business is. Used by the
// capital-injection heuristic.
type BusinessStage string

// Business stages.
const (
	StagePreRevenue  BusinessStage = "pre_revenue"
	StageEarly       BusinessStage = "early"
	StageEstablished BusinessStage = "established"
)

// BusinessContext is the optional per-business profile consulted by the
// signal detector and the AI classifier.
type BusinessContext struct {
	ID              string
	Name            string
	Type            string // e.g. "sole_proprietor", "limited"
	Industry        string
	Stage           BusinessStage
	HasPriorRevenue bool
}
