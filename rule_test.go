/*
diskuse -- refuse uploads based on filesystem usage
Copyright (C) 2016-2022 Sergey Matveev <stargrave@stargrave.org>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, version 3 of the License.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package diskuse

import (
	"math"
	"testing"
	"testing/quick"
)

func freeEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseDirective(t *testing.T) {
	if !HaveStatfs {
		t.Skip("no statfs")
	}
	for _, c := range []struct {
		line  string
		none  bool
		free  float64
		scope ScopeKind
		expr  []string
	}{
		{line: "90", free: 0.1},
		{line: "MaxDiskUsage 42.5", free: 0.575},
		{line: "none", none: true},
		{line: "NoNe", none: true},
		{line: "90 user alice", free: 0.1, scope: ScopeUser, expr: []string{"alice"}},
		{line: "50 group staff,!guests", free: 0.5, scope: ScopeGroup, expr: []string{"staff", "!guests"}},
		{line: "none class internal", none: true, scope: ScopeClass, expr: []string{"internal"}},
	} {
		rule, err := ParseDirectiveLine(c.line)
		if err != nil {
			t.Fatalf("%q: %v", c.line, err)
		}
		if c.none {
			if rule.MinFree != nil {
				t.Errorf("%q: expected none, got %v", c.line, *rule.MinFree)
			}
		} else if rule.MinFree == nil || !freeEq(*rule.MinFree, c.free) {
			t.Errorf("%q: bad MinFree", c.line)
		}
		if rule.Scope != c.scope {
			t.Errorf("%q: scope %s != %s", c.line, rule.Scope, c.scope)
		}
		if len(rule.Expr) != len(c.expr) {
			t.Fatalf("%q: expr %v != %v", c.line, rule.Expr, c.expr)
		}
		for i := range c.expr {
			if rule.Expr[i] != c.expr[i] {
				t.Errorf("%q: expr %v != %v", c.line, rule.Expr, c.expr)
			}
		}
	}
}

func TestParseDirectiveErrors(t *testing.T) {
	if !HaveStatfs {
		t.Skip("no statfs")
	}
	for _, line := range []string{
		"",
		"0",
		"100",
		"-5",
		"150",
		"abc",
		"90%",
		"NaN",
		"90 user",
		"90 host example",
		"90 user alice bob",
		"90 user ,",
	} {
		if _, err := ParseDirectiveLine(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
}

func TestPercentRoundTrip(t *testing.T) {
	f := func(raw uint32) bool {
		percent := float64(raw%9999+1) / 100
		free := PercentToFree(percent)
		if free <= 0 || free >= 1 {
			return false
		}
		return math.Abs(FreeToPercent(free)-percent) < 1e-9
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

type countingClassifier struct {
	ExprClassifier
	calls int
}

func (c *countingClassifier) MatchUser(expr []string, id *Identity) bool {
	c.calls++
	return c.ExprClassifier.MatchUser(expr, id)
}

func (c *countingClassifier) MatchGroup(expr []string, id *Identity) bool {
	c.calls++
	return c.ExprClassifier.MatchGroup(expr, id)
}

func (c *countingClassifier) MatchClass(expr []string, id *Identity) bool {
	c.calls++
	return c.ExprClassifier.MatchClass(expr, id)
}

func mustRules(t *testing.T, lines ...string) []*Rule {
	if !HaveStatfs {
		t.Skip("no statfs")
	}
	rules := make([]*Rule, 0, len(lines))
	for _, line := range lines {
		rule, err := ParseDirectiveLine(line)
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		rules = append(rules, rule)
	}
	return rules
}

func TestRuleMatches(t *testing.T) {
	rules := mustRules(t, "90", "90 user alice", "90 group staff", "90 class internal")
	id := &Identity{User: "bob", Group: "staff", Class: "external"}
	cl := &countingClassifier{}
	expected := []bool{true, false, true, false}
	for i, rule := range rules {
		if got := rule.Matches(id, cl); got != expected[i] {
			t.Errorf("%s: %v", rule, got)
		}
	}
	if cl.calls != 3 {
		t.Errorf("unscoped rule must not consult classifier: %d calls", cl.calls)
	}
}
