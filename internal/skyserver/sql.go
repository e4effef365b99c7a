// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package skyserver

import (
	"fmt"
	"strings"
)

// targetFlags maps symbolic target-flag names, in substitution order, to
// their bit-mask values. See http://www.sdss3.org/dr9/spectro/targets.php
// for the flag catalog.
var targetFlags = []struct {
	name  string
	value int64
}{
	// ANCILLARY_TARGET1
	{"WHITEDWARF_NEW", 1 << 42},
	{"WHITEDWARF_SDSS", 1 << 43},
	// BOSS_TARGET1
	{"STD_WD", 1 << 21},
	// LEGACY_TARGET1
	{"STAR_WHITE_DWARF", 1 << 19},
	// SEGUE1_TARGET1
	{"SEGUE1_CWD", 1 << 17},
	{"SEGUE1_WD", 1 << 19},
	// SEGUE2_TARGET1
	{"SEGUE2_CWD", 1 << 10},
}

// classNames are spectroscopic class literals quoted on substitution.
var classNames = []string{"GALAXY", "QSO", "STAR"}

// Prepare rewrites a user-supplied SQL statement into the form the service
// accepts: comments stripped, symbolic flag and class names substituted.
func Prepare(stmt string) string {
	return SubstituteFlags(RemoveComments(stmt))
}

// RemoveComments strips "--" comments from a SQL statement. Each line is
// truncated at the first "--" and the fragments are joined, each preceded
// by a single space, collapsing the statement onto one line.
func RemoveComments(stmt string) string {
	var b strings.Builder
	for _, line := range strings.Split(stmt, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(" ")
		b.WriteString(line)
	}
	return b.String()
}

// SubstituteFlags replaces target-flag names with CAST(value AS BIGINT)
// expressions and class names with quoted literals. Flags are handled
// before classes so STAR_WHITE_DWARF never collides with the STAR class.
func SubstituteFlags(stmt string) string {
	for _, f := range targetFlags {
		if strings.Contains(stmt, f.name) {
			stmt = strings.ReplaceAll(stmt, f.name, fmt.Sprintf("CAST(%d AS BIGINT)", f.value))
		}
	}
	for _, c := range classNames {
		if strings.Contains(stmt, c) {
			stmt = strings.ReplaceAll(stmt, c, "'"+c+"'")
		}
	}
	return stmt
}
