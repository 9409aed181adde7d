package models

import "database/sql"

// CostCenter is a node in a per-user hierarchy. The parent graph must stay
// acyclic; services check that before any parent change.
type CostCenter struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
	Level    int    `json:"level"`
}

func (c *CostCenter) Create(q Queryer) error {
	res, err := q.Exec(
		`INSERT INTO cost_centers (user_id, code, name, parent_id, level) VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Code, c.Name, nullableID(c.ParentID), c.Level,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (c *CostCenter) Update(q Queryer) (bool, error) {
	res, err := q.Exec(
		`UPDATE cost_centers SET code = ?, name = ?, parent_id = ?, level = ? WHERE id = ? AND user_id = ?`,
		c.Code, c.Name, nullableID(c.ParentID), c.Level, c.ID, c.UserID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func GetCostCenterByID(q Queryer, userID, id int64) (*CostCenter, error) {
	var c CostCenter
	var parentID sql.NullInt64
	err := q.QueryRow(
		`SELECT id, user_id, code, name, parent_id, level FROM cost_centers WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &parentID, &c.Level)
	if err != nil {
		return nil, err
	}
	c.ParentID = fromNullID(parentID)
	return &c, nil
}

func ListCostCenters(q Queryer, userID int64) ([]CostCenter, error) {
	rows, err := q.Query(
		`SELECT id, user_id, code, name, parent_id, level FROM cost_centers WHERE user_id = ? ORDER BY code, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var centers []CostCenter
	for rows.Next() {
		var c CostCenter
		var parentID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &parentID, &c.Level); err != nil {
			return nil, err
		}
		c.ParentID = fromNullID(parentID)
		centers = append(centers, c)
	}
	return centers, rows.Err()
}

func DeleteCostCenter(q Queryer, userID, id int64) (bool, error) {
	res, err := q.Exec(`DELETE FROM cost_centers WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountCostCenterDependents reports rows that block cost-center deletion.
func CountCostCenterDependents(q Queryer, userID, id int64) (children, allocations, obligations int, err error) {
	err = q.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM cost_centers WHERE user_id = ? AND parent_id = ?),
			(SELECT COUNT(*) FROM cost_allocations WHERE user_id = ? AND cost_center_id = ?),
			(SELECT COUNT(*) FROM obligations WHERE user_id = ? AND cost_center_id = ?)`,
		userID, id, userID, id, userID, id,
	).Scan(&children, &allocations, &obligations)
	return
}
