package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var (
	employeePattern = regexp.MustCompile(`(?s)SELECT emp_code, emp_name, password, status_id, department_id.*FROM employee_master.*emp_code = \? AND status_id = 1`)
	accessPattern   = regexp.MustCompile(`(?s)SELECT access_code FROM tbl_module_access.*emp_code = \? AND module_code = \?`)
)

func employeeRow() [][]driver.Value {
	return [][]driver.Value{{int64(1001), "ANITA RAO", "pw1", int64(1), int64(3)}}
}

func TestAuthenticateGrantsOnCredentialsAndEntitlement(t *testing.T) {
	steps := []*queryStep{
		{
			pattern: employeePattern,
			args:    []driver.Value{int64(1001)},
			columns: []string{"emp_code", "emp_name", "password", "status_id", "department_id"},
			rows:    employeeRow(),
		},
		{
			pattern: accessPattern,
			args:    []driver.Value{int64(1001), "QA"},
			columns: []string{"access_code"},
			rows:    [][]driver.Value{{"111"}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gate := NewAccessGate(db, PlaintextVerifier{})

	emp, err := gate.Authenticate(1001, "pw1")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if emp.EmpCode != 1001 || emp.EmpName != "ANITA RAO" {
		t.Fatalf("unexpected employee: %+v", emp)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthenticateDeniesWithoutEntitlement(t *testing.T) {
	steps := []*queryStep{
		{
			pattern: employeePattern,
			args:    []driver.Value{int64(1001)},
			columns: []string{"emp_code", "emp_name", "password", "status_id", "department_id"},
			rows:    employeeRow(),
		},
		{
			pattern: accessPattern,
			args:    []driver.Value{int64(1001), "QA"},
			columns: []string{"access_code"},
			rows:    [][]driver.Value{{"000"}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gate := NewAccessGate(db, PlaintextVerifier{})

	// Credentials were right; the failure must classify as NotEntitled.
	if _, err := gate.Authenticate(1001, "pw1"); !errors.Is(err, ErrNotEntitled) {
		t.Fatalf("expected ErrNotEntitled, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthenticateDeniesWrongPasswordWithoutEntitlementCheck(t *testing.T) {
	steps := []*queryStep{
		{
			pattern: employeePattern,
			args:    []driver.Value{int64(1001)},
			columns: []string{"emp_code", "emp_name", "password", "status_id", "department_id"},
			rows:    employeeRow(),
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gate := NewAccessGate(db, PlaintextVerifier{})

	if _, err := gate.Authenticate(1001, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// The entitlement query must not have run.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthenticateDeniesUnknownEmployee(t *testing.T) {
	steps := []*queryStep{
		{
			pattern: employeePattern,
			args:    []driver.Value{int64(9999)},
			columns: []string{"emp_code", "emp_name", "password", "status_id", "department_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gate := NewAccessGate(db, PlaintextVerifier{})

	if _, err := gate.Authenticate(9999, "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestModuleAccessCodeDefaultsToDenied(t *testing.T) {
	steps := []*queryStep{
		{
			pattern: accessPattern,
			args:    []driver.Value{int64(1002), "QA"},
			columns: []string{"access_code"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gate := NewAccessGate(db, nil)

	code, err := gate.ModuleAccessCode(1002)
	if err != nil {
		t.Fatalf("ModuleAccessCode returned error: %v", err)
	}
	if code != "000" {
		t.Fatalf("expected default code 000, got %q", code)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCredentialVerifiers(t *testing.T) {
	plain := PlaintextVerifier{}
	if !plain.Verify("pw1", "pw1") || plain.Verify("pw1", "pw2") {
		t.Fatal("plaintext verifier misbehaved")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}
	bc := BcryptVerifier{}
	if !bc.Verify(string(hash), "pw1") {
		t.Fatal("bcrypt verifier rejected the right password")
	}
	if bc.Verify(string(hash), "pw2") {
		t.Fatal("bcrypt verifier accepted the wrong password")
	}
}
