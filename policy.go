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

// Policy holds the limit resolved for the session. Zero value is
// unresolved. It is not safe for concurrent use: each session owns
// its own Policy.
type Policy struct {
	resolved bool
	rule     *Rule
	minFree  *float64
}

func (p *Policy) Resolved() bool {
	return p.resolved
}

// Rule returns the rule that won the resolution, nil if none matched.
func (p *Policy) Rule() *Rule {
	return p.rule
}

// Resolve returns minimal free fraction applicable to the identity, or
// nil if there is no policy in effect. Rules are scanned in the given
// order and the first matching one wins, even if it is "none". Only the
// first call scans rules and consults the classifier, subsequent calls
// return the cached result.
func (p *Policy) Resolve(rules []*Rule, id *Identity, cl Classifier) *float64 {
	if p.resolved {
		return p.minFree
	}
	p.resolved = true
	for _, rule := range rules {
		if rule.Matches(id, cl) {
			p.rule = rule
			p.minFree = rule.MinFree
			break
		}
	}
	return p.minFree
}
