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

import "strings"

// Identity of the logged in session.
type Identity struct {
	User string
	// Primary group.
	Group string
	// Supplementary groups.
	Groups []string
	Class  string
}

func (id *Identity) InGroup(name string) bool {
	if id.Group == name {
		return true
	}
	for _, g := range id.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Classifier answers whether the session satisfies the expression of
// the corresponding classifier kind.
type Classifier interface {
	MatchUser(expr []string, id *Identity) bool
	MatchGroup(expr []string, id *Identity) bool
	MatchClass(expr []string, id *Identity) bool
}

// ExprClassifier evaluates expressions the way FTP servers usually do:
// user and class expressions are OR-lists, group expressions are
// AND-lists. "!" prefix negates the token.
type ExprClassifier struct{}

func exprToken(tok string) (string, bool) {
	if strings.HasPrefix(tok, "!") {
		return tok[1:], true
	}
	return tok, false
}

func (ExprClassifier) MatchUser(expr []string, id *Identity) bool {
	for _, tok := range expr {
		name, neg := exprToken(tok)
		if (id.User == name) != neg {
			return true
		}
	}
	return false
}

func (ExprClassifier) MatchGroup(expr []string, id *Identity) bool {
	if len(expr) == 0 {
		return false
	}
	for _, tok := range expr {
		name, neg := exprToken(tok)
		if id.InGroup(name) == neg {
			return false
		}
	}
	return true
}

func (ExprClassifier) MatchClass(expr []string, id *Identity) bool {
	for _, tok := range expr {
		name, neg := exprToken(tok)
		if (id.Class == name) != neg {
			return true
		}
	}
	return false
}
