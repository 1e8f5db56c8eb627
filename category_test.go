package budget

import (
	"errors"
	"testing"

	"github.com/etnz/budget/date"
)

func TestCategoryBudget_TargetFor(t *testing.T) {
	january := date.MustWindow(day("2025-01-01"), day("2025-02-01"))
	testCases := []struct {
		name   string
		budget CategoryBudget
		window date.Window
		want   string
	}{
		{"monthly in a month", CategoryBudget{Amount: dec("300"), Period: date.Every(date.Monthly)}, january, "300"},
		{"weekly mondays", CategoryBudget{Amount: dec("25"), Period: date.Every(date.Weekly)}, january, "100"},
		{"weekly fridays", CategoryBudget{Amount: dec("25"), Period: date.Every(date.Weekly), ReferenceDate: ptr(day("2025-01-03"))}, january, "125"},
		{"yearly outside", CategoryBudget{Amount: dec("1200"), Period: date.Every(date.Yearly), ReferenceDate: ptr(day("2024-06-01"))}, january, "0"},
		{"monthly in a quarter", CategoryBudget{Amount: dec("10"), Period: date.Every(date.Monthly)}, date.MustWindow(day("2025-01-01"), day("2025-04-01")), "30"},
		{"zero window", CategoryBudget{Amount: dec("10"), Period: date.Every(date.Monthly)}, date.Window{}, "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.budget.TargetFor(tc.window); !got.Equal(dec(tc.want)) {
				t.Errorf("TargetFor(%s) = %s, want %s", tc.window, got, tc.want)
			}
		})
	}
}

func TestCategory_Validate(t *testing.T) {
	self := "c1"
	testCases := []struct {
		name    string
		c       Category
		wantErr bool
	}{
		{"valid", Category{ID: "c1", Name: "Food"}, false},
		{"no id", Category{Name: "Food"}, true},
		{"no name", Category{ID: "c1"}, true},
		{"own parent", Category{ID: "c1", Name: "Food", ParentID: &self}, true},
		{"invalid period", Category{ID: "c1", Name: "Food", Budget: &CategoryBudget{Amount: dec("1")}}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidInput)
			}
		})
	}
}
