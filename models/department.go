package models

// DepartmentCount is the active headcount of one department.
type DepartmentCount struct {
	Department string `bson:"_id" json:"department"`
	Count      int64  `bson:"count" json:"count"`
}
