package db

import (
	"database/sql"
	"fmt"
	"time"

	"pm-cockpit/agents"
)

// CreateProject inserts a new project workspace.
func (db *DB) CreateProject(p *Project) error {
	now := time.Now()
	_, err := db.conn.Exec(
		`INSERT INTO projects (id, name, objective, methodology, status, start_date, end_date, budget, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Objective, p.Methodology, p.Status, p.StartDate, p.EndDate, p.Budget, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetProject retrieves a project by id.
func (db *DB) GetProject(id string) (*Project, error) {
	var p Project
	err := db.conn.QueryRow(
		"SELECT id, name, objective, methodology, status, start_date, end_date, budget, created_at, updated_at FROM projects WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.Objective, &p.Methodology, &p.Status, &p.StartDate, &p.EndDate, &p.Budget, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns every project, most recently updated first.
func (db *DB) ListProjects() ([]*Project, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, objective, methodology, status, start_date, end_date, budget, created_at, updated_at FROM projects ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Objective, &p.Methodology, &p.Status, &p.StartDate, &p.EndDate, &p.Budget, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// UpdateProject overwrites a project's editable fields.
func (db *DB) UpdateProject(p *Project) error {
	_, err := db.conn.Exec(
		`UPDATE projects SET name = ?, objective = ?, methodology = ?, status = ?, start_date = ?, end_date = ?, budget = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Objective, p.Methodology, p.Status, p.StartDate, p.EndDate, p.Budget, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// DeleteProject removes a project together with its risks and every agent
// conversation scoped to it.
func (db *DB) DeleteProject(id string) error {
	if _, err := db.conn.Exec("DELETE FROM risks WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete project risks: %w", err)
	}
	for _, def := range agents.Definitions {
		if err := db.ClearChat(ChatKey(id, def.ID)); err != nil {
			return err
		}
	}
	if _, err := db.conn.Exec("DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// CreateRisk inserts one risk matrix entry. Exposure is derived, never
// stored independently of impact and probability.
func (db *DB) CreateRisk(r *Risk) error {
	r.Exposure = r.Impact * r.Probability
	_, err := db.conn.Exec(
		`INSERT INTO risks (id, project_id, description, impact, probability, exposure, mitigation, owner, review_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.Description, r.Impact, r.Probability, r.Exposure, r.Mitigation, r.Owner, r.ReviewDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create risk: %w", err)
	}
	return nil
}

// ListRisks returns a project's risks ordered by exposure, highest first.
func (db *DB) ListRisks(projectID string) ([]*Risk, error) {
	rows, err := db.conn.Query(
		"SELECT id, project_id, description, impact, probability, exposure, mitigation, owner, review_date FROM risks WHERE project_id = ? ORDER BY exposure DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list risks: %w", err)
	}
	defer rows.Close()

	var risks []*Risk
	for rows.Next() {
		var r Risk
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Description, &r.Impact, &r.Probability, &r.Exposure, &r.Mitigation, &r.Owner, &r.ReviewDate); err != nil {
			return nil, fmt.Errorf("failed to scan risk: %w", err)
		}
		risks = append(risks, &r)
	}
	return risks, rows.Err()
}

// UpdateRisk overwrites one risk entry, recomputing its exposure.
func (db *DB) UpdateRisk(r *Risk) error {
	r.Exposure = r.Impact * r.Probability
	_, err := db.conn.Exec(
		`UPDATE risks SET description = ?, impact = ?, probability = ?, exposure = ?, mitigation = ?, owner = ?, review_date = ? WHERE id = ?`,
		r.Description, r.Impact, r.Probability, r.Exposure, r.Mitigation, r.Owner, r.ReviewDate, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update risk: %w", err)
	}
	return nil
}
