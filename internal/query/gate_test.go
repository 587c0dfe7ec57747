package query

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	policy := DefaultPolicy()

	readOnly := []string{
		"SELECT * FROM users",
		"select id from users",
		"  select * from t",
		"\n\tSELECT 1",
		"SELECT(1)",
	}
	for _, sql := range readOnly {
		t.Run(sql, func(t *testing.T) {
			if got := policy.Classify(sql); got != ReadOnly {
				t.Errorf("expected read-only, got %s", got)
			}
		})
	}

	mutating := []string{
		"INSERT INTO t VALUES (1)",
		"update t set a = 1",
		"DELETE FROM t",
		"DROP TABLE t",
		"CREATE TABLE t (id INT)",
		"ALTER TABLE t ADD COLUMN a INT",
		"TRUNCATE t",
		"SHOW TABLES", // SHOW is mutating under the default policy
		"selection_helper()",
	}
	for _, sql := range mutating {
		t.Run(sql, func(t *testing.T) {
			if got := policy.Classify(sql); got != Mutating {
				t.Errorf("expected mutating, got %s", got)
			}
		})
	}
}

func TestPolicyWithShow(t *testing.T) {
	policy := PolicyWithShow()
	if policy.Classify("SHOW TABLES") != ReadOnly {
		t.Error("expected SHOW to classify as read-only under the show policy")
	}
	if policy.Classify("show databases") != ReadOnly {
		t.Error("expected lowercase show to classify as read-only")
	}
	if policy.Classify("INSERT INTO t VALUES (1)") != Mutating {
		t.Error("expected INSERT to stay mutating")
	}
}

func TestEnforce(t *testing.T) {
	policy := DefaultPolicy()

	if err := policy.Enforce("SELECT 1", ReadOnly); err != nil {
		t.Errorf("unexpected error for SELECT on read path: %v", err)
	}
	if err := policy.Enforce("DELETE FROM t", Mutating); err != nil {
		t.Errorf("unexpected error for DELETE on write path: %v", err)
	}

	err := policy.Enforce("DROP TABLE t", ReadOnly)
	if err == nil {
		t.Fatal("expected DROP to be rejected on read path")
	}
	if !strings.Contains(err.Error(), "only read-only queries are permitted") {
		t.Errorf("unexpected message: %v", err)
	}

	err = policy.Enforce("SELECT * FROM t", Mutating)
	if err == nil {
		t.Fatal("expected SELECT to be rejected on write path")
	}
	if !strings.Contains(err.Error(), "query tool") {
		t.Errorf("expected redirect to query tool, got: %v", err)
	}

	if err := policy.Enforce("   ", ReadOnly); err == nil {
		t.Error("expected empty statement to be rejected")
	}
}

func TestQuoteIdentifier(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"users", "`users`"},
		{"weird name", "`weird name`"},
		{"inject`; DROP TABLE t", "`inject``; DROP TABLE t`"},
	}
	for _, tc := range cases {
		if got := QuoteIdentifier(tc.in); got != tc.want {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
