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

import "testing"

func TestExprClassifierUser(t *testing.T) {
	var cl ExprClassifier
	alice := &Identity{User: "alice"}
	if !cl.MatchUser([]string{"bob", "alice"}, alice) {
		t.Error("OR-list must match any")
	}
	if cl.MatchUser([]string{"bob"}, alice) {
		t.Error("unexpected match")
	}
	if !cl.MatchUser([]string{"!bob"}, alice) {
		t.Error("negation must match other users")
	}
	if cl.MatchUser([]string{"!alice"}, alice) {
		t.Error("negation must not match the user")
	}
	if cl.MatchUser(nil, alice) {
		t.Error("empty expression must not match")
	}
}

func TestExprClassifierGroup(t *testing.T) {
	var cl ExprClassifier
	id := &Identity{User: "alice", Group: "users", Groups: []string{"staff", "ftp"}}
	if !cl.MatchGroup([]string{"users", "staff"}, id) {
		t.Error("AND-list of member groups must match")
	}
	if cl.MatchGroup([]string{"staff", "wheel"}, id) {
		t.Error("AND-list with foreign group must not match")
	}
	if !cl.MatchGroup([]string{"ftp", "!wheel"}, id) {
		t.Error("negated foreign group must match")
	}
	if cl.MatchGroup([]string{"!ftp"}, id) {
		t.Error("negated member group must not match")
	}
	if cl.MatchGroup(nil, id) {
		t.Error("empty expression must not match")
	}
}

func TestExprClassifierClass(t *testing.T) {
	var cl ExprClassifier
	id := &Identity{User: "alice", Class: "internal"}
	if !cl.MatchClass([]string{"dmz", "internal"}, id) {
		t.Error("OR-list must match any")
	}
	if cl.MatchClass([]string{"dmz"}, id) {
		t.Error("unexpected match")
	}
	if !cl.MatchClass([]string{"!dmz"}, &Identity{User: "bob"}) {
		t.Error("classless session must match negated class")
	}
}
