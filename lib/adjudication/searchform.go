// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"fmt"
	"net/url"
	"slices"
)

// Population selects which kind of event a search runs over.
type Population string

const (
	PopulationCandidate Population = "candidate"
	PopulationCanonical Population = "canonical"
)

// Valid reports whether the population is one the service searches.
func (population Population) Valid() bool {
	return population == PopulationCandidate || population == PopulationCanonical
}

// FilterRows is the number of filter and sort rows on a search form.
const FilterRows = 3

// Comparators accepted by the service for a filter row.
var Comparators = []string{"eq", "ne", "gt", "ge", "lt", "le", "contains", "starts", "ends"}

// SortOrders accepted by the service for a sort row.
var SortOrders = []string{"asc", "desc"}

// Filter is one filter row. A row with an empty Field is unused.
type Filter struct {
	Field   string
	Compare string
	Value   string
}

// Sort is one sort row. A row with an empty Field is unused.
type Sort struct {
	Field string
	Order string
}

// SearchForm is the state of one population's search form: a free
// text term plus fixed filter and sort rows.
type SearchForm struct {
	Term    string
	Filters [FilterRows]Filter
	Sorts   [FilterRows]Sort
}

// Empty reports whether the form has neither a term nor any filter.
// The service rejects such a search.
func (form SearchForm) Empty() bool {
	if form.Term != "" {
		return false
	}
	for _, filter := range form.Filters {
		if filter.Field != "" && filter.Value != "" {
			return false
		}
	}
	return true
}

// Validate checks comparators and sort orders against the values the
// service accepts.
func (form SearchForm) Validate() error {
	for row, filter := range form.Filters {
		if filter.Compare != "" && !slices.Contains(Comparators, filter.Compare) {
			return validationf(fmt.Sprintf("Unknown comparison %q in filter %d.", filter.Compare, row+1))
		}
	}
	for row, sort := range form.Sorts {
		if sort.Order != "" && !slices.Contains(SortOrders, sort.Order) {
			return validationf(fmt.Sprintf("Unknown sort order %q in sort %d.", sort.Order, row+1))
		}
	}
	return nil
}

// ClearRow empties filter and sort row index. Out-of-range rows are
// ignored.
func (form *SearchForm) ClearRow(index int) {
	if index < 0 || index >= FilterRows {
		return
	}
	form.Filters[index] = Filter{}
	form.Sorts[index] = Sort{}
}

// Parameter names. Each population has its own copy of every field,
// prefixed by the population name.
func searchInputParam(population Population) string {
	return string(population) + "_search_input"
}

func rowParam(population Population, field string, row int) string {
	return fmt.Sprintf("%s_%s_%d", population, field, row)
}

var rowFields = []string{"filter_field", "filter_compare", "filter_value", "sort_field", "sort_order"}

// DeclaredFields lists every location parameter a population's search
// form owns.
func DeclaredFields(population Population) []string {
	fields := []string{searchInputParam(population)}
	for row := range FilterRows {
		for _, field := range rowFields {
			fields = append(fields, rowParam(population, field, row))
		}
	}
	return fields
}

// RowFields lists the location parameters of one filter/sort row.
func RowFields(population Population, row int) []string {
	fields := make([]string, 0, len(rowFields))
	for _, field := range rowFields {
		fields = append(fields, rowParam(population, field, row))
	}
	return fields
}

// Params returns every declared field with its current value, empty
// fields included.
func (form SearchForm) Params(population Population) map[string]string {
	params := map[string]string{searchInputParam(population): form.Term}
	for row := range FilterRows {
		filter, sort := form.Filters[row], form.Sorts[row]
		params[rowParam(population, "filter_field", row)] = filter.Field
		params[rowParam(population, "filter_compare", row)] = filter.Compare
		params[rowParam(population, "filter_value", row)] = filter.Value
		params[rowParam(population, "sort_field", row)] = sort.Field
		params[rowParam(population, "sort_order", row)] = sort.Order
	}
	return params
}

// Values returns the form as a request body.
func (form SearchForm) Values(population Population) url.Values {
	values := url.Values{}
	for name, value := range form.Params(population) {
		values.Set(name, value)
	}
	return values
}

// Fields returns the form as editable fields in declaration order.
// Comparator and sort order fields offer the accepted values, with an
// empty choice first for an unused row.
func (form SearchForm) Fields(population Population) []FormField {
	params := form.Params(population)
	fields := []FormField{{
		Name:  searchInputParam(population),
		Label: "Search",
		Value: params[searchInputParam(population)],
	}}
	labels := map[string]string{
		"filter_field":   "Filter %d field",
		"filter_compare": "Filter %d comparison",
		"filter_value":   "Filter %d value",
		"sort_field":     "Sort %d field",
		"sort_order":     "Sort %d order",
	}
	for row := range FilterRows {
		for _, field := range rowFields {
			name := rowParam(population, field, row)
			formField := FormField{
				Name:  name,
				Label: fmt.Sprintf(labels[field], row+1),
				Value: params[name],
			}
			switch field {
			case "filter_compare":
				formField.Options = append([]string{""}, Comparators...)
			case "sort_order":
				formField.Options = append([]string{""}, SortOrders...)
			}
			fields = append(fields, formField)
		}
	}
	return fields
}

// SearchFormFromValues decodes a population's form from location or
// echoed query parameters. Missing fields are empty.
func SearchFormFromValues(population Population, values url.Values) SearchForm {
	form := SearchForm{Term: values.Get(searchInputParam(population))}
	for row := range FilterRows {
		form.Filters[row] = Filter{
			Field:   values.Get(rowParam(population, "filter_field", row)),
			Compare: values.Get(rowParam(population, "filter_compare", row)),
			Value:   values.Get(rowParam(population, "filter_value", row)),
		}
		form.Sorts[row] = Sort{
			Field: values.Get(rowParam(population, "sort_field", row)),
			Order: values.Get(rowParam(population, "sort_order", row)),
		}
	}
	return form
}

// declaredSubset keeps only the entries of echoed that are declared
// fields of population.
func declaredSubset(population Population, echoed map[string]string) map[string]string {
	declared := DeclaredFields(population)
	subset := make(map[string]string)
	for name, value := range echoed {
		if slices.Contains(declared, name) {
			subset[name] = value
		}
	}
	return subset
}
