package models

// Employee is a row of the external employee directory. The QA core only
// reads it; ownership stays with the upstream HR system.
type Employee struct {
	EmpCode      int    `gorm:"primaryKey;column:emp_code" json:"emp_code"`
	EmpName      string `gorm:"column:emp_name" json:"emp_name"`
	Password     string `gorm:"column:password" json:"-"`
	StatusID     int    `gorm:"column:status_id" json:"status_id"`
	DepartmentID int    `gorm:"column:department_id" json:"department_id"`
}

// ModuleAccess is the per-employee entitlement row for a named module.
// AccessCode "111" grants access; every other value denies.
type ModuleAccess struct {
	EmpCode    int    `gorm:"column:emp_code" json:"emp_code"`
	ModuleCode string `gorm:"column:module_code" json:"module_code"`
	AccessCode string `gorm:"column:access_code" json:"access_code"`
}

const (
	// EmployeeActive is the status_id of an active employee.
	EmployeeActive = 1

	// QAModuleCode names the module checked at login.
	QAModuleCode = "QA"

	// AccessGranted is the entitlement code that opens the QA portal.
	AccessGranted = "111"
)

func (Employee) TableName() string {
	return "employee_master"
}

func (ModuleAccess) TableName() string {
	return "tbl_module_access"
}
