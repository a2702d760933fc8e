// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package impact turns measure formulas and a voter profile into dollar impacts.

Calculate evaluates every formula whose required inputs are present, in
declaration order, and sums the results. The explanation comes from the last
formula that contributed. Positive totals are savings, negative totals costs.

	result := impact.Calculate(measure, profile)
	// result.Impact == "$1,200/year", result.Direction == "positive"

Reporter computes a whole ballot concurrently and keeps ballot order. A
measure that cannot be read comes back as a neutral placeholder.
*/
package impact
