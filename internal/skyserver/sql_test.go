// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package skyserver

import "testing"

func TestRemoveComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no comment", "select 1", " select 1"},
		{"trailing comment", "select 1 -- pick one", " select 1 "},
		{"multi-line", "select top 1 x -- c\nfrom y", " select top 1 x  from y"},
		{"full-line comment", "-- all comment\nselect 1", "  select 1"},
		{"comment only", "-- nothing here", " "},
		{"empty", "", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveComments(tt.input); got != tt.want {
				t.Errorf("RemoveComments(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSubstituteFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"ancillary flag",
			"where (s.ancillary_target1 & WHITEDWARF_NEW) > 0",
			"where (s.ancillary_target1 & CAST(4398046511104 AS BIGINT)) > 0",
		},
		{
			"class literal",
			"where s.class = STAR",
			"where s.class = 'STAR'",
		},
		{
			"flag containing a class name",
			"where t & STAR_WHITE_DWARF > 0",
			"where t & CAST(524288 AS BIGINT) > 0",
		},
		{
			"flag and class together",
			"WHITEDWARF_SDSS and QSO",
			"CAST(8796093022208 AS BIGINT) and 'QSO'",
		},
		{
			"segue flags",
			"SEGUE1_CWD | SEGUE2_CWD",
			"CAST(131072 AS BIGINT) | CAST(1024 AS BIGINT)",
		},
		{
			"boss standard flag",
			"b & STD_WD",
			"b & CAST(2097152 AS BIGINT)",
		},
		{"untouched", "select 1 from t", "select 1 from t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubstituteFlags(tt.input); got != tt.want {
				t.Errorf("SubstituteFlags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	input := "select top 1 s.plate -- keep it small\nfrom bestdr9..SpecObj as s where s.class = STAR"
	want := " select top 1 s.plate  from bestdr9..SpecObj as s where s.class = 'STAR'"
	if got := Prepare(input); got != want {
		t.Errorf("Prepare(%q) = %q, want %q", input, got, want)
	}
}
