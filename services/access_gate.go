package services

import (
	"errors"
	"fmt"

	"qa-release-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials covers unknown/inactive employee and password
	// mismatch alike; callers must not reveal which.
	ErrInvalidCredentials = errors.New("invalid emp code or password")

	// ErrNotEntitled means the credentials were correct but the employee has
	// no QA module access. Distinct from ErrInvalidCredentials on purpose.
	ErrNotEntitled = errors.New("not entitled to the QA module")
)

// CredentialVerifier compares a supplied password with the stored value.
// The directory still stores plaintext; PlaintextVerifier reproduces that
// comparison, BcryptVerifier is the drop-in once cmd/hash-passwords has run.
type CredentialVerifier interface {
	Verify(stored, supplied string) bool
}

type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return stored == supplied
}

type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// AccessGate is the two-step login check: credentials first, then the QA
// module entitlement. Only the conjunction authorizes token issuance.
// No lockout or rate limiting exists at this layer.
type AccessGate struct {
	db       *gorm.DB
	verifier CredentialVerifier
}

func NewAccessGate(db *gorm.DB, verifier CredentialVerifier) *AccessGate {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &AccessGate{db: db, verifier: verifier}
}

// Authenticate validates the credential pair and the QA entitlement and
// returns the employee on success.
func (g *AccessGate) Authenticate(empCode int, password string) (*models.Employee, error) {
	emp, err := g.FindEmployee(empCode)
	if err != nil {
		return nil, err
	}
	if emp == nil || emp.StatusID != models.EmployeeActive {
		return nil, ErrInvalidCredentials
	}
	if !g.verifier.Verify(emp.Password, password) {
		return nil, ErrInvalidCredentials
	}

	code, err := g.ModuleAccessCode(empCode)
	if err != nil {
		return nil, err
	}
	if code != models.AccessGranted {
		return nil, ErrNotEntitled
	}

	return emp, nil
}

// FindEmployee loads an active employee by code. Returns nil without error
// when no active row exists.
func (g *AccessGate) FindEmployee(empCode int) (*models.Employee, error) {
	var emp models.Employee
	tx := g.db.Raw(
		`SELECT emp_code, emp_name, password, status_id, department_id
		 FROM employee_master
		 WHERE emp_code = ? AND status_id = 1`, empCode).Scan(&emp)
	if tx.Error != nil {
		return nil, fmt.Errorf("employee lookup: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return &emp, nil
}

// ModuleAccessCode returns the raw entitlement code for the QA module.
// A missing row reads as "000" (denied), matching the directory's contract.
func (g *AccessGate) ModuleAccessCode(empCode int) (string, error) {
	var code string
	tx := g.db.Raw(
		`SELECT access_code FROM tbl_module_access
		 WHERE emp_code = ? AND module_code = ?`, empCode, models.QAModuleCode).Scan(&code)
	if tx.Error != nil {
		return "", fmt.Errorf("module access lookup: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return "000", nil
	}
	return code, nil
}
