//go:build !linux && !darwin && !freebsd && !dragonfly && !netbsd && !openbsd
// +build !linux,!darwin,!freebsd,!dragonfly,!netbsd,!openbsd

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

const HaveStatfs = false

func StatFS(path string) (*FSStat, error) {
	return nil, ErrNoStatfs
}
