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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DirectiveName = "MaxDiskUsage"
	NoneKeyword   = "none"
)

type ScopeKind int

const (
	ScopeUnscoped ScopeKind = iota
	ScopeUser
	ScopeGroup
	ScopeClass
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUnscoped:
		return "unscoped"
	case ScopeUser:
		return "user"
	case ScopeGroup:
		return "group"
	case ScopeClass:
		return "class"
	}
	return "unknown"
}

func ScopeKindParse(s string) (ScopeKind, error) {
	switch s {
	case "user":
		return ScopeUser, nil
	case "group":
		return ScopeGroup, nil
	case "class":
		return ScopeClass, nil
	}
	return ScopeUnscoped, fmt.Errorf("unknown classifier used: '%s'", s)
}

// Rule is a single parsed MaxDiskUsage directive.
type Rule struct {
	// Percentage argument as it was written.
	Raw string
	// Minimal free fraction of the filesystem. nil means the explicit
	// "none", that nullifies inherited limits.
	MinFree *float64
	Scope   ScopeKind
	// Classifier expression tokens, empty for unscoped rules.
	Expr []string
}

func (r *Rule) String() string {
	if r.Scope == ScopeUnscoped {
		return r.Raw
	}
	return fmt.Sprintf("%s %s %s", r.Raw, r.Scope, strings.Join(r.Expr, ","))
}

// Matches asks the corresponding classifier whether the rule applies
// to the session identity. Unscoped rules always match.
func (r *Rule) Matches(id *Identity, cl Classifier) bool {
	switch r.Scope {
	case ScopeUnscoped:
		return true
	case ScopeUser:
		return cl.MatchUser(r.Expr, id)
	case ScopeGroup:
		return cl.MatchGroup(r.Expr, id)
	case ScopeClass:
		return cl.MatchClass(r.Expr, id)
	}
	return false
}

func PercentToFree(percent float64) float64 {
	return 1.0 - percent/100.0
}

func FreeToPercent(free float64) float64 {
	return (1.0 - free) * 100.0
}

// PercentParse parses maximal disk usage percentage and converts it to
// the minimal free fraction.
func PercentParse(s string) (float64, error) {
	percent, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(percent) {
		return 0, fmt.Errorf("'%s' is not a valid percentage", s)
	}
	if percent <= 0 || percent >= 100 {
		return 0, errors.New("percent must be greater than 0, less than 100")
	}
	return PercentToFree(percent), nil
}

// ExprParse splits comma separated classifier expression arguments
// into tokens.
func ExprParse(args []string) []string {
	var tokens []string
	for _, arg := range args {
		for _, tok := range strings.Split(arg, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// ParseDirective builds the Rule from MaxDiskUsage arguments: either
// "PERCENT|none" or "PERCENT|none {user|group|class} EXPR".
func ParseDirective(args []string) (*Rule, error) {
	if !HaveStatfs {
		return nil, fmt.Errorf(
			"the %s directive can not be used on this system, "+
				"as it does not have statfs(2) or statvfs(2)",
			DirectiveName,
		)
	}
	if len(args) != 1 && len(args) != 3 {
		return nil, errors.New("incorrect number of parameters")
	}
	rule := Rule{Raw: args[0]}
	if len(args) == 3 {
		scope, err := ScopeKindParse(args[1])
		if err != nil {
			return nil, err
		}
		rule.Scope = scope
		rule.Expr = ExprParse(args[2:])
		if len(rule.Expr) == 0 {
			return nil, errors.New("empty classifier expression")
		}
	}
	if !strings.EqualFold(args[0], NoneKeyword) {
		free, err := PercentParse(args[0])
		if err != nil {
			return nil, err
		}
		rule.MinFree = &free
	}
	return &rule, nil
}

// ParseDirectiveLine is ParseDirective over the whitespace separated
// arguments string, like "90 user alice,bob". Leading directive name
// is optional.
func ParseDirectiveLine(line string) (*Rule, error) {
	args := strings.Fields(line)
	if len(args) > 0 && strings.EqualFold(args[0], DirectiveName) {
		args = args[1:]
	}
	return ParseDirective(args)
}
