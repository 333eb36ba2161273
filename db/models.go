package db

import "time"

// Project is one workspace a conversation can be scoped to.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Objective   string    `json:"objective"`
	Methodology string    `json:"methodology"` // Agile, Waterfall, Hybrid
	Status      string    `json:"status"`      // Ativo, Suspenso, Concluído, Em Risco
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date,omitempty"`
	Budget      string    `json:"budget,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Risk is one entry of a project's risk matrix.
type Risk struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Description string `json:"description"`
	Impact      int    `json:"impact"`      // 1..5
	Probability int    `json:"probability"` // 1..5
	Exposure    int    `json:"exposure"`    // impact * probability
	Mitigation  string `json:"mitigation"`
	Owner       string `json:"owner"`
	ReviewDate  string `json:"review_date,omitempty"`
}
