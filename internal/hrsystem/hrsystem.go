// Package hrsystem provides the fictional HRSystem sample dataset that
// every demonstration runs against. The contents are deterministic:
// builders return the same departments, employees, and rowguids on
// every call, so demo expectations and fingerprints stay stable.
package hrsystem

import (
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FocuswithJustin/TallyBook/core/table"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// rowguidSpace is the UUID namespace for generated rowguids. Rowguids
// are name-based (version 5 style) so the dataset is reproducible.
var rowguidSpace = uuid.MustParse("9c1bbe9d-3bf4-44e4-9f7a-1f6e5a2c8d07")

// Department is one row of the departments table.
type Department struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Region string `json:"region" db:"region"`
}

// Employee is one row of the employees table. Department is NULL for
// contractors not yet assigned to one; Bonus is NULL where none was
// granted.
type Employee struct {
	ID         int                 `json:"id" db:"id"`
	RowGUID    uuid.UUID           `json:"rowguid" db:"rowguid"`
	FirstName  string              `json:"first_name" db:"first_name"`
	LastName   string              `json:"last_name" db:"last_name"`
	Department null.String         `json:"department" db:"department"`
	JobTitle   string              `json:"job_title" db:"job_title"`
	Region     string              `json:"region" db:"region"`
	Salary     decimal.Decimal     `json:"salary" db:"salary"`
	Bonus      decimal.NullDecimal `json:"bonus" db:"bonus"`
	HireDate   time.Time           `json:"hire_date" db:"hire_date"`
	Gender     string              `json:"gender" db:"gender"`
}

// Departments returns the sample departments.
func Departments() []Department {
	return []Department{
		{ID: 1, Name: "Engineering", Region: "North America"},
		{ID: 2, Name: "Finance", Region: "Europe"},
		{ID: 3, Name: "Sales", Region: "North America"},
		{ID: 4, Name: "Marketing", Region: "Europe"},
	}
}

// Employees returns the sample employees. The set is built to exercise
// the demonstration catalog: salary ties for ranking, NULL bonuses and
// a NULL department for null handling, and hire dates spread across
// years for date bucketing.
func Employees() []Employee {
	return []Employee{
		emp(1, "Alice", "Anders", "Engineering", "Principal Engineer", "North America", "98000.00", "5000.00", "2015-03-09", "F"),
		emp(2, "Bruno", "Castillo", "Engineering", "Senior Engineer", "North America", "87500.00", "", "2016-11-21", "M"),
		emp(3, "Chen", "Wei", "Engineering", "Senior Engineer", "North America", "87500.00", "3000.00", "2017-02-14", "M"),
		emp(4, "Dana", "Whitfield", "Engineering", "Engineer", "North America", "71000.00", "1500.00", "2019-07-01", "F"),
		emp(5, "Elif", "Yilmaz", "Engineering", "Engineer", "Europe", "69500.00", "", "2020-01-13", "F"),
		emp(6, "Farid", "Haddad", "Finance", "Controller", "Europe", "83000.00", "4200.00", "2015-09-30", "M"),
		emp(7, "Greta", "Lindqvist", "Finance", "Analyst", "Europe", "64000.00", "", "2018-04-23", "F"),
		emp(8, "Hana", "Sato", "Finance", "Analyst", "Europe", "66400.00", "1200.00", "2021-08-02", "F"),
		emp(9, "Igor", "Petrov", "Sales", "Account Executive", "Europe", "58000.00", "7500.00", "2017-10-05", "M"),
		emp(10, "Jules", "Moreau", "Sales", "Account Executive", "North America", "61500.00", "6400.00", "2018-12-17", "M"),
		emp(11, "Kim", "Reyes", "Sales", "Sales Lead", "North America", "75250.00", "8000.00", "2016-05-26", "F"),
		emp(12, "Liam", "O'Shea", "Marketing", "Marketing Manager", "Europe", "72000.00", "2500.00", "2019-03-11", "M"),
		emp(13, "Mara", "Vogel", "", "Contractor", "Europe", "54000.00", "", "2022-06-06", "F"),
	}
}

// emp builds one employee literal. Empty dept means NULL department,
// empty bonus means NULL bonus.
func emp(id int, first, last, dept, title, region, salary, bonus, hired, gender string) Employee {
	e := Employee{
		ID:        id,
		RowGUID:   RowGUID(id),
		FirstName: first,
		LastName:  last,
		JobTitle:  title,
		Region:    region,
		Salary:    decimal.RequireFromString(salary),
		HireDate:  mustDate(hired),
		Gender:    gender,
	}
	if dept != "" {
		e.Department = null.StringFrom(dept)
	}
	if bonus != "" {
		e.Bonus = decimal.NewNullDecimal(decimal.RequireFromString(bonus))
	}
	return e
}

// RowGUID returns the deterministic rowguid for an employee ID.
func RowGUID(id int) uuid.UUID {
	return uuid.NewSHA1(rowguidSpace, []byte(fmt.Sprintf("employee/%d", id)))
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// EmployeeTable materializes the employees as a core table ready for
// tallying.
func EmployeeTable() *table.Table {
	t := table.New(table.Schema{
		{Name: "id", Kind: value.KindInt},
		{Name: "rowguid", Kind: value.KindString},
		{Name: "first_name", Kind: value.KindString},
		{Name: "last_name", Kind: value.KindString},
		{Name: "department", Kind: value.KindString},
		{Name: "job_title", Kind: value.KindString},
		{Name: "region", Kind: value.KindString},
		{Name: "salary", Kind: value.KindDecimal},
		{Name: "bonus", Kind: value.KindDecimal},
		{Name: "hire_date", Kind: value.KindTime},
		{Name: "gender", Kind: value.KindString},
	})
	for _, e := range Employees() {
		dept := value.Null()
		if e.Department.Valid {
			dept = value.NewString(e.Department.String)
		}
		bonus := value.Null()
		if e.Bonus.Valid {
			bonus = value.NewDecimal(e.Bonus.Decimal)
		}
		t.MustAppendRow(
			value.NewInt(int64(e.ID)),
			value.NewString(e.RowGUID.String()),
			value.NewString(e.FirstName),
			value.NewString(e.LastName),
			dept,
			value.NewString(e.JobTitle),
			value.NewString(e.Region),
			value.NewDecimal(e.Salary),
			bonus,
			value.NewTime(e.HireDate),
			value.NewString(e.Gender),
		)
	}
	return t
}

// DepartmentTable materializes the departments as a core table.
func DepartmentTable() *table.Table {
	t := table.New(table.Schema{
		{Name: "id", Kind: value.KindInt},
		{Name: "name", Kind: value.KindString},
		{Name: "region", Kind: value.KindString},
	})
	for _, d := range Departments() {
		t.MustAppendRow(
			value.NewInt(int64(d.ID)),
			value.NewString(d.Name),
			value.NewString(d.Region),
		)
	}
	return t
}
