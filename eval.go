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

type Decision struct {
	Deny bool

	// Directory whose filesystem was queried, empty if no query was made.
	Probe string
	// Whether the free fraction was successfully sampled.
	Known bool
	Free  float64
	Stat  *FSStat
	Err   error

	// Used space fractions: allowed by the limit and the current one.
	MaxUsage float64
	CurUsage float64
}

// ProbeDir strips the final path segment, leaving the trailing slash.
// Path without any slash is returned as is.
func ProbeDir(pth string) string {
	if i := strings.LastIndexByte(pth, '/'); i >= 0 {
		return pth[:i+1]
	}
	return pth
}

// Evaluate compares the current free fraction of the filesystem holding
// pth with minFree. Upload is denied only when both values are known
// and the free fraction is strictly below the limit. nil minFree does
// not touch the filesystem at all. Any statistics failure allows.
func Evaluate(pth string, minFree *float64, stat Stater) Decision {
	var d Decision
	if minFree == nil {
		return d
	}
	d.MaxUsage = 1.0 - *minFree
	d.Probe = ProbeDir(pth)
	s, err := stat(d.Probe)
	if err == nil {
		d.Free, err = s.FreeFraction()
	}
	if err != nil {
		d.Err = err
		return d
	}
	d.Known = true
	d.Stat = s
	d.CurUsage = 1.0 - d.Free
	d.Deny = d.Free < *minFree
	return d
}
