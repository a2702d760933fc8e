// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

Profile amounts are *int64 so that "absent" and zero stay distinct: impact
formulas that require a missing value are skipped, not evaluated with 0.

FormulaSet keeps formulas in declaration order through JSON and YAML, since
the last contributing formula supplies an impact's explanation.
*/
package models
